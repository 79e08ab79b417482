package order

import (
	"errors"
	"time"

	"github.com/noah-isme/backend-procure/internal/pricing"
)

var (
	// ErrNotFound is returned when no order carries the requested id.
	ErrNotFound = errors.New("order: not found")
	// ErrVersionConflict is returned when an update carries a stale version stamp.
	ErrVersionConflict = errors.New("order: version conflict")
)

// Order statuses. Transitions are driven externally; any known status may follow any other.
const (
	StatusDraft      = "draft"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// Statuses lists every known order status.
func Statuses() []string {
	return []string{StatusDraft, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}
}

// ValidStatus reports whether s is a known status.
func ValidStatus(s string) bool {
	for _, known := range Statuses() {
		if s == known {
			return true
		}
	}
	return false
}

// Order is a persisted purchase order.
type Order struct {
	ID           string             `json:"id"`
	SupplierID   int                `json:"supplierId"`
	SupplierName string             `json:"supplierName,omitempty"`
	OrderDate    time.Time          `json:"orderDate"`
	DeliveryDate *time.Time         `json:"deliveryDate,omitempty"`
	PaymentTerms string             `json:"paymentTerms,omitempty"`
	Items        []pricing.LineItem `json:"items"`
	Subtotal     float64            `json:"subtotal"`
	Tax          float64            `json:"tax"`
	Shipping     float64            `json:"shipping"`
	GrandTotal   float64            `json:"grandTotal"`
	Status       string             `json:"status"`
	Notes        string             `json:"notes,omitempty"`
	Version      int                `json:"version"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

// ListFilter narrows List results.
type ListFilter struct {
	Status     string
	SupplierID int
	Limit      int
	Offset     int
}

func (o Order) clone() Order {
	out := o
	out.Items = append([]pricing.LineItem(nil), o.Items...)
	if o.DeliveryDate != nil {
		d := *o.DeliveryDate
		out.DeliveryDate = &d
	}
	return out
}
