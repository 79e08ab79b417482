package reports_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-procure/internal/order"
	"github.com/noah-isme/backend-procure/internal/pricing"
	"github.com/noah-isme/backend-procure/internal/reports"
	"github.com/noah-isme/backend-procure/internal/supplier"
)

type countingOrders struct {
	orders []order.Order
	calls  int
}

func (c *countingOrders) List(context.Context, order.ListFilter) ([]order.Order, int, error) {
	c.calls++
	return c.orders, len(c.orders), nil
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleOrders() []order.Order {
	mk := func(id string, supplierID int, date, status string, total float64) order.Order {
		return order.Order{
			ID:         id,
			SupplierID: supplierID,
			OrderDate:  day(date),
			Status:     status,
			Items:      []pricing.LineItem{{ProductName: "x", Quantity: 1, UnitPrice: total, Total: total}},
			GrandTotal: total,
		}
	}
	return []order.Order{
		mk("a", 1, "2024-04-10", order.StatusDelivered, 1000.10),
		mk("b", 1, "2024-05-02", order.StatusProcessing, 250.20),
		mk("c", 3, "2024-05-20", order.StatusShipped, 1500),
		mk("d", 3, "2024-05-21", order.StatusCancelled, 999),
		mk("e", 5, "2024-05-22", order.StatusDraft, 10),
	}
}

func newService(t *testing.T, orders *countingOrders, rdb *redis.Client) *reports.Service {
	t.Helper()
	sup, err := supplier.NewService(supplier.ServiceConfig{Store: supplier.NewMemoryStore(supplier.Fixtures()...)})
	require.NoError(t, err)
	return &reports.Service{
		Orders:    orders,
		Suppliers: sup,
		R:         rdb,
		TTL:       time.Minute,
		Now:       func() time.Time { return time.Date(2024, 5, 31, 15, 0, 0, 0, time.UTC) },
	}
}

func TestSummaryAggregates(t *testing.T) {
	svc := newService(t, &countingOrders{orders: sampleOrders()}, nil)
	got, err := svc.Summary(context.Background(), reports.Range{})
	require.NoError(t, err)

	require.Equal(t, 5, got.OrderCount)
	require.Equal(t, 2750.3, got.TotalSpend)
	require.Equal(t, 916.77, got.AverageOrderValue)
	require.Equal(t, reports.StatusTotal{Count: 1, Spend: 1000.1}, got.OrdersByStatus[order.StatusDelivered])
	require.Equal(t, reports.StatusTotal{Count: 1}, got.OrdersByStatus[order.StatusCancelled])
	require.Equal(t, reports.StatusTotal{Count: 1}, got.OrdersByStatus[order.StatusDraft])

	require.Equal(t, []reports.SupplierSpend{
		{SupplierID: 3, SupplierName: "Green Packaging Co", Orders: 1, Spend: 1500},
		{SupplierID: 1, SupplierName: "Acme Industrial Supply", Orders: 2, Spend: 1250.3},
	}, got.SpendBySupplier)
	require.Equal(t, []reports.MonthSpend{{Month: "2024-04", Spend: 1000.1}, {Month: "2024-05", Spend: 1750.2}}, got.SpendByMonth)

	require.Equal(t, 6, got.SupplierCount)
	require.Equal(t, 5, got.ActiveSuppliers)
	require.Equal(t, map[string]int{"compliant": 3, "review": 2, "non-compliant": 1}, got.SuppliersByStatus)
	require.Equal(t, 4.32, got.AverageRating)
	require.Equal(t, 50.0, got.ComplianceRatePct)
}

func TestSummaryRange(t *testing.T) {
	svc := newService(t, &countingOrders{orders: sampleOrders()}, nil)
	got, err := svc.Summary(context.Background(), reports.Range{From: day("2024-05-01"), To: day("2024-05-21")})
	require.NoError(t, err)
	require.Equal(t, 2, got.OrderCount)
	require.Equal(t, 1750.2, got.TotalSpend)
}

func TestSummaryCached(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	orders := &countingOrders{orders: sampleOrders()}
	svc := newService(t, orders, rdb)

	first, err := svc.Summary(context.Background(), reports.Range{})
	require.NoError(t, err)
	second, err := svc.Summary(context.Background(), reports.Range{})
	require.NoError(t, err)
	require.Equal(t, 1, orders.calls)
	require.Equal(t, first.TotalSpend, second.TotalSpend)
	require.True(t, mr.Exists("procure:reports:summary:-:-"))

	mr.FastForward(2 * time.Minute)
	_, err = svc.Summary(context.Background(), reports.Range{})
	require.NoError(t, err)
	require.Equal(t, 2, orders.calls)
}

func TestSummaryHandler(t *testing.T) {
	h := &reports.Handler{Svc: newService(t, &countingOrders{orders: sampleOrders()}, nil)}
	r := chi.NewRouter()
	r.Route("/api/v1/reports", h.Routes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/summary?days=12", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data reports.Summary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 3, resp.Data.OrderCount)

	for _, q := range []string{"from=yesterday", "to=2024-13-01", "from=2024-05-10&to=2024-05-01"} {
		bad := httptest.NewRecorder()
		r.ServeHTTP(bad, httptest.NewRequest(http.MethodGet, "/api/v1/reports/summary?"+q, nil))
		require.Equal(t, http.StatusBadRequest, bad.Code, q)
	}
}
