package negotiation

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/noah-isme/backend-procure/internal/compliance"
	"github.com/noah-isme/backend-procure/internal/supplier"
)

// Dossier is a narrative briefing on a supplier for negotiation prep.
type Dossier struct {
	SupplierID     int        `json:"supplierId"`
	SupplierName   string     `json:"supplierName"`
	CompositeScore float64    `json:"compositeScore"`
	Compliance     string     `json:"complianceStatus"`
	Strategies     []Strategy `json:"strategies"`
	Report         string     `json:"report"`
	GeneratedAt    time.Time  `json:"generatedAt"`
}

var dossierTemplate = template.Must(template.New("dossier").Funcs(template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"date":  func(t *time.Time) string { return t.Format("2006-01-02") },
	"upper": strings.ToUpper,
}).Parse(`NEGOTIATION DOSSIER: {{.S.Name}}
Generated {{.GeneratedAt.Format "2006-01-02"}}

OVERVIEW
{{.S.Name}} is a {{.S.Category}}{{if .S.Subcategory}} ({{.S.Subcategory}}){{end}} supplier based in {{.S.Location}}.
{{- if .S.Description}}
{{.S.Description}}
{{- end}}
Status: {{.S.Status}}. Rating {{printf "%.1f" .S.Rating}}/5, composite score {{printf "%.1f" .Score}}.

PERFORMANCE
- Reliability: {{.S.ReliabilityScore}}
- Quality: {{.S.QualityScore}}
- Delivery: {{.S.DeliveryScore}}
- Communication: {{.S.CommunicationScore}}
{{- with .Weakest}}
Weakest area is {{.Name}} at {{.Value}}; raise it as a service-level condition.
{{- end}}

COMPLIANCE: {{upper .Compliance}}
{{- range .S.Certifications}}
- {{.Name}}{{if .ExpiresAt}} (expires {{date .ExpiresAt}}){{end}}{{if not .Valid}} [NOT VALID]{{end}}
{{- end}}
{{- range .Missing}}
- Missing: {{.Name}}
{{- end}}

PRODUCTS
{{- range .S.Products}}
- {{.Name}}: {{money .UnitPrice}} per unit, MOQ {{.MinOrderQuantity}}{{if .LeadTime}}, lead time {{.LeadTime}}{{end}}
{{- else}}
- No products on file
{{- end}}

RISKS
{{- range .S.RiskFactors}}
- [{{upper .Level}}] {{.Category}}: {{.Description}}
{{- else}}
- No risk factors recorded
{{- end}}

RECOMMENDED APPROACHES
{{- range .Strategies}}
- {{.Title}} ({{.Savings}}, {{.Confidence}} confidence): {{.Approach}}
{{- end}}
`))

type scoreArea struct {
	Name  string
	Value int
}

type dossierData struct {
	S           supplier.Supplier
	Score       float64
	Compliance  string
	Missing     []compliance.Requirement
	Weakest     *scoreArea
	Strategies  []Strategy
	GeneratedAt time.Time
}

// Dossier builds the briefing for supplierID. Strategies come from the
// generator when reachable.
func (s *Service) Dossier(ctx context.Context, supplierID int) (Dossier, error) {
	sup, err := s.suppliers.Get(ctx, supplierID)
	if err != nil {
		return Dossier{}, err
	}
	data := dossierData{
		S:           sup,
		Score:       supplier.CompositeScore(sup),
		Compliance:  sup.ComplianceStatus,
		Weakest:     weakest(sup),
		GeneratedAt: s.now().UTC(),
	}
	if s.compliance != nil {
		summary, err := s.compliance.SupplierSummary(ctx, supplierID)
		if err != nil {
			s.logger.Warn().Err(err).Int("supplier_id", supplierID).Msg("dossier compliance summary")
		} else {
			data.Missing = summary.Missing
			if summary.Status != compliance.StatusUnknown {
				data.Compliance = summary.Status
			}
		}
	}
	data.Strategies = s.Strategies(ctx, StrategyQuery{
		Supplier:    sup.Name,
		Category:    sup.Category,
		Description: sup.Description,
	}).Items

	var buf bytes.Buffer
	if err := dossierTemplate.Execute(&buf, data); err != nil {
		return Dossier{}, fmt.Errorf("render dossier: %w", err)
	}
	return Dossier{
		SupplierID:     sup.ID,
		SupplierName:   sup.Name,
		CompositeScore: data.Score,
		Compliance:     data.Compliance,
		Strategies:     data.Strategies,
		Report:         buf.String(),
		GeneratedAt:    data.GeneratedAt,
	}, nil
}

func weakest(s supplier.Supplier) *scoreArea {
	areas := []scoreArea{
		{"reliability", s.ReliabilityScore},
		{"quality", s.QualityScore},
		{"delivery", s.DeliveryScore},
		{"communication", s.CommunicationScore},
	}
	sort.SliceStable(areas, func(i, j int) bool { return areas[i].Value < areas[j].Value })
	if areas[0].Value >= 90 {
		return nil
	}
	return &areas[0]
}
