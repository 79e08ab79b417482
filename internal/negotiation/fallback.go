package negotiation

import (
	"bytes"
	"strings"
	"text/template"
)

var fallbackSubjects = map[string]string{
	KindInitial:    "Partnership inquiry for {{.Supplier}}",
	KindCounter:    "Re: Proposal revision for {{.Supplier}}",
	KindFollowUp:   "Following up on our discussion with {{.Supplier}}",
	KindAcceptance: "Agreement confirmation with {{.Supplier}}",
}

var fallbackOpenings = map[string]string{
	KindInitial:    "We are reviewing suppliers for an upcoming requirement and would like to explore working with {{.Supplier}}.",
	KindCounter:    "Thank you for your proposal. After reviewing it internally we would like to suggest a few adjustments.",
	KindFollowUp:   "I wanted to follow up on our recent conversation and confirm the next steps.",
	KindAcceptance: "We are pleased to confirm that we accept the terms discussed with {{.Supplier}}.",
}

var fallbackTones = map[string]string{
	KindInitial:    "professional",
	KindCounter:    "collaborative",
	KindFollowUp:   "friendly",
	KindAcceptance: "appreciative",
}

var fallbackBody = template.Must(template.New("body").Parse(`Dear {{.Supplier}} team,

{{.Opening}}
{{- if .Context}}

{{.Context}}
{{- end}}
{{- if .KeyPoints}}

In particular we would like to discuss:
{{- range .KeyPoints}}
- {{.}}
{{- end}}
{{- end}}

We look forward to your response.

Best regards,
Procurement Team`))

type fallbackData struct {
	Supplier  string
	Opening   string
	Context   string
	KeyPoints []string
}

// FallbackMessage renders the local message for req. The output depends only on
// req.
func FallbackMessage(req MessageRequest) Message {
	supplier := strings.TrimSpace(req.Supplier)
	if supplier == "" {
		supplier = "Supplier"
	}
	kind := strings.ToLower(strings.TrimSpace(req.Type))
	subject, ok := fallbackSubjects[kind]
	if !ok {
		subject = "Regarding our business with {{.Supplier}}"
	}
	opening, ok := fallbackOpenings[kind]
	if !ok {
		opening = "We would like to discuss our ongoing business with {{.Supplier}}."
	}
	tone, ok := fallbackTones[kind]
	if !ok {
		tone = "professional"
	}
	data := fallbackData{Supplier: supplier, Context: strings.TrimSpace(req.AdditionalContext)}
	data.Opening = render(opening, data)
	for _, kp := range req.KeyPoints {
		if kp = strings.TrimSpace(kp); kp != "" {
			data.KeyPoints = append(data.KeyPoints, kp)
		}
	}
	var body bytes.Buffer
	_ = fallbackBody.Execute(&body, data)
	keyPoints := data.KeyPoints
	if len(keyPoints) == 0 {
		keyPoints = []string{"Pricing", "Delivery schedule", "Payment terms"}
	}
	return Message{
		Subject:       render(subject, data),
		Body:          body.String(),
		SuggestedTone: tone,
		KeyPoints:     keyPoints,
		Fallback:      true,
	}
}

func render(text string, data fallbackData) string {
	tpl, err := template.New("line").Parse(text)
	if err != nil {
		return text
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return text
	}
	return buf.String()
}

// FallbackStrategies returns the fixed strategies used when the generator is
// unavailable.
func FallbackStrategies() []Strategy {
	return []Strategy{
		{
			Title:       "Volume Discount",
			Description: "Consolidate purchases to negotiate tiered pricing.",
			Approach:    "Commit to a larger annual volume in exchange for a percentage discount on unit prices.",
			Savings:     "5-15%",
			Confidence:  "high",
		},
		{
			Title:       "Early Payment Terms",
			Description: "Offer faster payment in exchange for a discount.",
			Approach:    "Propose 2/10 net 30 terms so invoices paid within ten days earn a two percent discount.",
			Savings:     "2-3%",
			Confidence:  "medium",
		},
		{
			Title:       "Long-term Contract",
			Description: "Trade contract length for price stability.",
			Approach:    "Offer a multi-year agreement with locked pricing and annual review clauses.",
			Savings:     "8-12%",
			Confidence:  "medium",
		},
	}
}
