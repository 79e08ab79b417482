package order

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-procure/internal/pricing"
	"github.com/noah-isme/backend-procure/internal/supplier"
)

func TestDraftStartsWithOneLine(t *testing.T) {
	d := NewDraft()
	require.Len(t, d.Items, 1)
	require.Equal(t, 1.0, d.Items[0].Quantity)
	require.Zero(t, d.GrandTotal)
}

func TestDraftRemoveLastItemIsNoop(t *testing.T) {
	d := NewDraft()
	require.False(t, d.RemoveItem(0))
	require.Len(t, d.Items, 1)

	d.AddItem()
	require.False(t, d.RemoveItem(5))
	require.False(t, d.RemoveItem(-1))
	require.True(t, d.RemoveItem(1))
	require.Len(t, d.Items, 1)
	require.False(t, d.RemoveItem(0))
}

func TestDraftMutationsRecomputeTotals(t *testing.T) {
	d := NewDraft()
	require.True(t, d.SelectProduct(0, supplier.Product{Name: "Steel Beams", Description: "I-beam", UnitPrice: 15}))
	require.True(t, d.SetQuantity(0, 3))
	require.Equal(t, 45.0, d.Items[0].Total)
	require.Equal(t, 45.0, d.Subtotal)

	d.AddItem()
	require.True(t, d.SetUnitPrice(1, 10))
	require.True(t, d.SetQuantity(1, 2))
	require.Equal(t, 65.0, d.Subtotal)

	d.SetTax(6.5)
	d.SetShipping(20)
	require.Equal(t, 91.5, d.GrandTotal)

	require.True(t, d.RemoveItem(0))
	require.Equal(t, 20.0, d.Subtotal)
	require.Equal(t, 46.5, d.GrandTotal)

	d.SetShipping(-5)
	require.Zero(t, d.Shipping)
	require.Equal(t, 26.5, d.GrandTotal)
}

func TestDraftRemoveDoesNotCorruptTail(t *testing.T) {
	d := &Draft{Items: []pricing.LineItem{{ProductName: "a"}, {ProductName: "b"}, {ProductName: "c"}}}
	backing := d.Items
	require.True(t, d.RemoveItem(1))
	require.Equal(t, []string{"a", "c"}, []string{d.Items[0].ProductName, d.Items[1].ProductName})
	require.Equal(t, "b", backing[1].ProductName)
}

func TestDraftFillFromCatalog(t *testing.T) {
	sup := supplier.Fixtures()[3]
	d := &Draft{Items: []pricing.LineItem{
		{ProductName: "steel beams", Quantity: 3},
		{ProductName: "Aluminium Sheet", Quantity: 1, UnitPrice: 30},
		{ProductName: "Unknown", Quantity: 1},
	}}
	d.FillFromCatalog(sup)
	require.Equal(t, "Steel Beams", d.Items[0].ProductName)
	require.Equal(t, 45.0, d.Items[0].Total)
	require.Equal(t, 30.0, d.Items[1].UnitPrice)
	require.Zero(t, d.Items[2].UnitPrice)
}

func TestDraftValidate(t *testing.T) {
	d := NewDraft()
	errs := d.Validate(nil)
	require.Contains(t, errs, "supplierId")
	require.Contains(t, errs, "deliveryDate")
	require.Contains(t, errs, "items[0].productName")
	require.Contains(t, errs, "items[0].unitPrice")
	require.NotContains(t, errs, "items[0].quantity")

	d.SupplierID = 4
	d.DeliveryDate = "next week"
	d.SelectProduct(0, supplier.Product{Name: "Steel Beams", UnitPrice: 15})
	d.SetQuantity(0, 0)
	errs = d.Validate(nil)
	require.Equal(t, "must be a date (YYYY-MM-DD)", errs["deliveryDate"])
	require.Contains(t, errs, "items[0].quantity")
	require.Len(t, errs, 2)

	d.DeliveryDate = "2024-09-30"
	d.SetQuantity(0, 2)
	require.True(t, d.Validate(nil).Empty())
}

func TestDraftValidateRequiresItems(t *testing.T) {
	d := &Draft{SupplierID: 1, DeliveryDate: "2024-09-30"}
	errs := d.Validate(nil)
	require.Contains(t, errs, "items")
}
