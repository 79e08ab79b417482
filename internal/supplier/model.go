package supplier

import (
	"errors"
	"time"
)

// ErrNotFound is returned when no supplier carries the requested id.
var ErrNotFound = errors.New("supplier: not found")

// Compliance states shared with the compliance package.
const (
	ComplianceCompliant    = "compliant"
	ComplianceReview       = "review"
	ComplianceNonCompliant = "non-compliant"
)

// Lifecycle states.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Supplier is a catalog entry.
type Supplier struct {
	ID                 int             `json:"id"`
	Name               string          `json:"name" validate:"required,max=200"`
	Description        string          `json:"description,omitempty" validate:"max=2000"`
	Category           string          `json:"category" validate:"required"`
	Subcategory        string          `json:"subcategory,omitempty"`
	Location           string          `json:"location" validate:"required"`
	Region             string          `json:"region,omitempty"`
	Rating             float64         `json:"rating" validate:"gte=0,lte=5"`
	ReliabilityScore   int             `json:"reliabilityScore" validate:"gte=0,lte=100"`
	QualityScore       int             `json:"qualityScore" validate:"gte=0,lte=100"`
	DeliveryScore      int             `json:"deliveryScore" validate:"gte=0,lte=100"`
	CommunicationScore int             `json:"communicationScore" validate:"gte=0,lte=100"`
	ComplianceStatus   string          `json:"complianceStatus" validate:"omitempty,oneof=compliant review non-compliant"`
	Status             string          `json:"status" validate:"omitempty,oneof=active inactive"`
	ContactEmail       string          `json:"contactEmail,omitempty" validate:"omitempty,email"`
	Certifications     []Certification `json:"certifications" validate:"dive"`
	Products           []Product       `json:"products" validate:"dive"`
	RiskFactors        []RiskFactor    `json:"riskFactors" validate:"dive"`
	Performance        []MonthlyMetric `json:"performanceHistory"`
	CreatedAt          time.Time       `json:"createdAt"`
}

// Certification is a named certificate with its validity window.
type Certification struct {
	Name      string     `json:"name" validate:"required"`
	Valid     bool       `json:"valid"`
	ExpiresAt *time.Time `json:"expirationDate,omitempty"`
}

// Product is an item a supplier offers.
type Product struct {
	Name             string  `json:"name" validate:"required"`
	Description      string  `json:"description,omitempty"`
	Category         string  `json:"category,omitempty"`
	LeadTime         string  `json:"leadTime,omitempty"`
	MinOrderQuantity int     `json:"minOrderQuantity" validate:"gte=0"`
	UnitPrice        float64 `json:"unitPrice" validate:"gte=0"`
}

// RiskFactor flags one risk dimension.
type RiskFactor struct {
	Category    string `json:"category" validate:"required"`
	Level       string `json:"level" validate:"oneof=low medium high"`
	Description string `json:"description,omitempty"`
}

// MonthlyMetric is one point of performance history.
type MonthlyMetric struct {
	Month          string  `json:"month"`
	OnTimeDelivery float64 `json:"onTimeDelivery"`
	QualityRating  float64 `json:"qualityRating"`
	ResponseTime   float64 `json:"responseTime"`
	CostVariance   float64 `json:"costVariance"`
}

// FindProduct returns the product with the given name (case-insensitive).
func (s Supplier) FindProduct(name string) (Product, bool) {
	for _, p := range s.Products {
		if equalFold(p.Name, name) {
			return p, true
		}
	}
	return Product{}, false
}

func (s Supplier) clone() Supplier {
	out := s
	out.Certifications = append([]Certification(nil), s.Certifications...)
	out.Products = append([]Product(nil), s.Products...)
	out.RiskFactors = append([]RiskFactor(nil), s.RiskFactors...)
	out.Performance = append([]MonthlyMetric(nil), s.Performance...)
	return out
}

// ValidComplianceStatus reports whether status is one of the known compliance states.
func ValidComplianceStatus(status string) bool {
	switch status {
	case ComplianceCompliant, ComplianceReview, ComplianceNonCompliant:
		return true
	}
	return false
}
