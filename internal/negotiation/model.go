package negotiation

// Message kinds understood by the generator. Unknown kinds are forwarded
// as-is and get the generic fallback.
const (
	KindInitial    = "initial"
	KindCounter    = "counter-offer"
	KindFollowUp   = "follow-up"
	KindAcceptance = "acceptance"
)

// MessageRequest asks for a negotiation message addressed to a supplier.
type MessageRequest struct {
	Type              string   `json:"type"`
	SupplierID        int      `json:"supplierId,omitempty"`
	Supplier          string   `json:"supplier,omitempty"`
	AdditionalContext string   `json:"additionalContext,omitempty"`
	KeyPoints         []string `json:"keyPoints,omitempty"`
}

// Message is a generated draft. Fallback is set when the generator could not be
// reached and the text came from the local template.
type Message struct {
	Subject       string   `json:"subject"`
	Body          string   `json:"body"`
	SuggestedTone string   `json:"suggested_tone"`
	KeyPoints     []string `json:"key_points"`
	Fallback      bool     `json:"fallback"`
}

// StrategyQuery describes what the strategies are for.
type StrategyQuery struct {
	Supplier    string
	Category    string
	Description string
}

// Strategy is one negotiation approach with its expected outcome.
type Strategy struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Approach    string `json:"approach"`
	Savings     string `json:"savings"`
	Confidence  string `json:"confidence"`
}

// Strategies wraps a strategy list with its provenance.
type Strategies struct {
	Items    []Strategy `json:"strategies"`
	Fallback bool       `json:"fallback"`
}
