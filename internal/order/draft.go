package order

import (
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-procure/internal/common"
	"github.com/noah-isme/backend-procure/internal/pricing"
	"github.com/noah-isme/backend-procure/internal/supplier"
)

// Accepted date layouts for order and delivery dates.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

// Draft is the editable order form. Every mutator recomputes totals, so
// Subtotal and GrandTotal are always consistent with Items, Tax and Shipping.
type Draft struct {
	SupplierID   int                `json:"supplierId" validate:"required"`
	OrderDate    string             `json:"orderDate,omitempty"`
	DeliveryDate string             `json:"deliveryDate" validate:"required"`
	PaymentTerms string             `json:"paymentTerms,omitempty"`
	Items        []pricing.LineItem `json:"items" validate:"min=1,dive"`
	Tax          float64            `json:"tax"`
	Shipping     float64            `json:"shipping"`
	Notes        string             `json:"notes,omitempty"`
	Subtotal     float64            `json:"subtotal"`
	GrandTotal   float64            `json:"grandTotal"`
}

// NewDraft returns a form with a single empty line.
func NewDraft() *Draft {
	d := &Draft{}
	d.AddItem()
	return d
}

// Recompute refreshes line totals, subtotal and grand total. Invalid tax or
// shipping values are normalised to zero.
func (d *Draft) Recompute() {
	totals := pricing.Recompute(d.Items, d.Tax, d.Shipping)
	d.Items = totals.Items
	d.Tax = totals.Tax
	d.Shipping = totals.Shipping
	d.Subtotal = totals.Subtotal
	d.GrandTotal = totals.GrandTotal
}

// AddItem appends an empty line with quantity 1.
func (d *Draft) AddItem() {
	d.Items = append(d.Items, pricing.LineItem{Quantity: 1})
	d.Recompute()
}

// RemoveItem deletes line i. It is a no-op when i is out of range or only one line remains.
func (d *Draft) RemoveItem(i int) bool {
	if len(d.Items) <= 1 || i < 0 || i >= len(d.Items) {
		return false
	}
	d.Items = append(d.Items[:i:i], d.Items[i+1:]...)
	d.Recompute()
	return true
}

// SelectProduct copies name, description and unit price from a catalog product into line i.
func (d *Draft) SelectProduct(i int, p supplier.Product) bool {
	if i < 0 || i >= len(d.Items) {
		return false
	}
	d.Items[i].ProductName = p.Name
	d.Items[i].Description = p.Description
	d.Items[i].UnitPrice = p.UnitPrice
	d.Recompute()
	return true
}

// SetQuantity edits the quantity of line i.
func (d *Draft) SetQuantity(i int, q float64) bool {
	if i < 0 || i >= len(d.Items) {
		return false
	}
	d.Items[i].Quantity = q
	d.Recompute()
	return true
}

// SetUnitPrice edits the unit price of line i.
func (d *Draft) SetUnitPrice(i int, p float64) bool {
	if i < 0 || i >= len(d.Items) {
		return false
	}
	d.Items[i].UnitPrice = p
	d.Recompute()
	return true
}

// SetTax edits the tax amount.
func (d *Draft) SetTax(v float64) {
	d.Tax = v
	d.Recompute()
}

// SetShipping edits the shipping amount.
func (d *Draft) SetShipping(v float64) {
	d.Shipping = v
	d.Recompute()
}

// FillFromCatalog selects the catalog product for every line whose name matches
// a product of s and whose unit price has not been set.
func (d *Draft) FillFromCatalog(s supplier.Supplier) {
	for i, it := range d.Items {
		if it.UnitPrice > 0 || strings.TrimSpace(it.ProductName) == "" {
			continue
		}
		if p, ok := s.FindProduct(it.ProductName); ok {
			d.SelectProduct(i, p)
		}
	}
}

// Validate collects every field that would block submission. Saving a draft never validates.
func (d *Draft) Validate(v *validator.Validate) common.ValidationErrors {
	errs := common.ValidationErrors{}
	if err := common.ValidateStruct(v, d); err != nil {
		if verrs, ok := err.(common.ValidationErrors); ok {
			for field, msg := range verrs {
				errs.Add(field, msg)
			}
		} else {
			errs.Add("_", err.Error())
		}
	}
	if strings.TrimSpace(d.DeliveryDate) != "" {
		if _, err := parseDate(d.DeliveryDate); err != nil {
			errs.Add("deliveryDate", "must be a date (YYYY-MM-DD)")
		}
	}
	if strings.TrimSpace(d.OrderDate) != "" {
		if _, err := parseDate(d.OrderDate); err != nil {
			errs.Add("orderDate", "must be a date (YYYY-MM-DD)")
		}
	}
	return errs
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}
