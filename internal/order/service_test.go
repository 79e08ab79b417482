package order_test

import (
	"context"
	"errors"
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-procure/internal/common"
	"github.com/noah-isme/backend-procure/internal/events"
	"github.com/noah-isme/backend-procure/internal/order"
	"github.com/noah-isme/backend-procure/internal/pricing"
	"github.com/noah-isme/backend-procure/internal/supplier"
)

type capturePublisher struct {
	topics []string
}

func (c *capturePublisher) Emit(_ context.Context, topic, _ string, _ any) (events.Event, error) {
	c.topics = append(c.topics, topic)
	return events.Event{}, nil
}

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*order.Service, *capturePublisher) {
	t.Helper()
	pub := &capturePublisher{}
	svc, err := order.NewService(order.ServiceConfig{
		Store:     order.NewMemoryStore(),
		Suppliers: supplier.NewMemoryStore(supplier.Fixtures()...),
		Events:    pub,
		Now:       func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return svc, pub
}

func appErr(t *testing.T, err error) *common.AppError {
	t.Helper()
	var ae *common.AppError
	require.True(t, errors.As(err, &ae), "expected AppError, got %v", err)
	return ae
}

func TestCreateDraftSkipsLineValidation(t *testing.T) {
	svc, pub := newService(t)
	o, err := svc.Create(context.Background(), order.CreateInput{Draft: order.Draft{SupplierID: 4}})
	require.NoError(t, err)
	require.Equal(t, order.StatusDraft, o.Status)
	require.Len(t, o.Items, 1)
	require.Equal(t, "Precision Metals Inc", o.SupplierName)
	require.Equal(t, 1, o.Version)
	require.Equal(t, []string{events.TopicOrderCreated}, pub.topics)
}

func TestCreateSubmitValidates(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Create(context.Background(), order.CreateInput{
		Draft:  order.Draft{SupplierID: 4, Items: []pricing.LineItem{{ProductName: "Steel Beams"}}},
		Submit: true,
	})
	ae := appErr(t, err)
	require.Equal(t, http.StatusUnprocessableEntity, ae.HTTPStatus)
	details := ae.Details.(map[string]string)
	require.Contains(t, details, "deliveryDate")
	require.Contains(t, details, "items[0].quantity")
	require.NotContains(t, details, "items[0].unitPrice", "price should come from the catalog")
}

func TestCreateSubmitComputesTotalsServerSide(t *testing.T) {
	svc, _ := newService(t)
	o, err := svc.Create(context.Background(), order.CreateInput{
		Draft: order.Draft{
			SupplierID:   4,
			DeliveryDate: "2024-07-15",
			PaymentTerms: "Net 30",
			Items: []pricing.LineItem{
				{ProductName: "Steel Beams", Quantity: 3, Total: 1},
				{ProductName: "Aluminium Sheet", Quantity: 2, UnitPrice: 40},
			},
			Tax:        12,
			Shipping:   8,
			GrandTotal: 99999,
		},
		Submit: true,
	})
	require.NoError(t, err)
	require.Equal(t, order.StatusProcessing, o.Status)
	require.Equal(t, 45.0, o.Items[0].Total)
	require.Equal(t, 125.0, o.Subtotal)
	require.Equal(t, 145.0, o.GrandTotal)
	require.NotNil(t, o.DeliveryDate)
	require.Equal(t, "2024-07-15", o.DeliveryDate.Format("2006-01-02"))
	require.Equal(t, fixedNow, o.OrderDate)

	got, err := svc.Get(context.Background(), o.ID)
	require.NoError(t, err)
	require.Equal(t, o.GrandTotal, got.GrandTotal)
}

func TestCreateUnknownSupplier(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Create(context.Background(), order.CreateInput{Draft: order.Draft{SupplierID: 99}})
	ae := appErr(t, err)
	require.Equal(t, http.StatusUnprocessableEntity, ae.HTTPStatus)
	require.Contains(t, ae.Details.(map[string]string), "supplierId")
}

func TestQuoteReportsErrorsWithoutPersisting(t *testing.T) {
	svc, _ := newService(t)
	q, err := svc.Quote(context.Background(), order.Draft{
		SupplierID: 1,
		Items:      []pricing.LineItem{{ProductName: "Conveyor Belt", Quantity: 5}},
		Tax:        -1,
	})
	require.NoError(t, err)
	require.Equal(t, 6000.0, q.Draft.Subtotal)
	require.Equal(t, 6000.0, q.Draft.GrandTotal)
	require.Contains(t, q.Errors, "deliveryDate")

	_, total, err := svc.List(context.Background(), order.ListFilter{})
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestUpdateStatusVersioning(t *testing.T) {
	svc, pub := newService(t)
	ctx := context.Background()
	o, err := svc.Create(ctx, order.CreateInput{Draft: order.Draft{SupplierID: 1}})
	require.NoError(t, err)

	v := 1
	updated, err := svc.UpdateStatus(ctx, o.ID, "Processing", &v)
	require.NoError(t, err)
	require.Equal(t, order.StatusProcessing, updated.Status)
	require.Equal(t, 2, updated.Version)

	_, err = svc.UpdateStatus(ctx, o.ID, order.StatusShipped, &v)
	require.Equal(t, http.StatusConflict, appErr(t, err).HTTPStatus)

	updated, err = svc.UpdateStatus(ctx, o.ID, order.StatusDraft, nil)
	require.NoError(t, err)
	require.Equal(t, 3, updated.Version)

	_, err = svc.UpdateStatus(ctx, o.ID, "lost", nil)
	require.Equal(t, http.StatusUnprocessableEntity, appErr(t, err).HTTPStatus)

	_, err = svc.UpdateStatus(ctx, "00000000-0000-0000-0000-000000000000", order.StatusShipped, nil)
	require.Equal(t, http.StatusNotFound, appErr(t, err).HTTPStatus)

	require.Equal(t, []string{events.TopicOrderCreated, events.TopicOrderStatusChanged, events.TopicOrderStatusChanged}, pub.topics)
}

func TestListFilters(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	for _, id := range []int{1, 2, 1} {
		_, err := svc.Create(ctx, order.CreateInput{Draft: order.Draft{SupplierID: id}})
		require.NoError(t, err)
	}
	items, total, err := svc.List(ctx, order.ListFilter{SupplierID: 1, Limit: 1})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, items, 1)

	_, _, err = svc.List(ctx, order.ListFilter{Status: "bogus"})
	require.Equal(t, http.StatusBadRequest, appErr(t, err).HTTPStatus)

	_, err = svc.Get(ctx, "not-a-uuid")
	require.Equal(t, http.StatusNotFound, appErr(t, err).HTTPStatus)
}

func TestMemoryStoreRejectsNegativeWindow(t *testing.T) {
	store := order.NewMemoryStore()
	_, _, err := store.List(context.Background(), order.ListFilter{Offset: -1})
	require.Error(t, err)
	_, _, err = store.List(context.Background(), order.ListFilter{Limit: -1})
	require.Error(t, err)

	items, total, err := store.List(context.Background(), order.ListFilter{Offset: math.MaxInt32, Limit: 20})
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, items)
}
