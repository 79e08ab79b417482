package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-procure/internal/order"
	"github.com/noah-isme/backend-procure/internal/supplier"
)

// OrderLister is the order read access reports need.
type OrderLister interface {
	List(ctx context.Context, f order.ListFilter) ([]order.Order, int, error)
}

// SupplierLister is the supplier read access reports need.
type SupplierLister interface {
	List(ctx context.Context, criteria supplier.Criteria) ([]supplier.Supplier, error)
}

// Service computes dashboard summaries, cached in Redis when configured.
type Service struct {
	Orders    OrderLister
	Suppliers SupplierLister
	R         *redis.Client
	TTL       time.Duration
	Now       func() time.Time
}

// Range bounds orders by order date, inclusive of From and exclusive of To.
// Zero values are open ends.
type Range struct {
	From time.Time
	To   time.Time
}

// StatusTotal is the order count and spend for one status.
type StatusTotal struct {
	Count int     `json:"count"`
	Spend float64 `json:"spend"`
}

// SupplierSpend is committed spend with one supplier.
type SupplierSpend struct {
	SupplierID   int     `json:"supplierId"`
	SupplierName string  `json:"supplierName"`
	Orders       int     `json:"orders"`
	Spend        float64 `json:"spend"`
}

// MonthSpend is committed spend in one calendar month (YYYY-MM).
type MonthSpend struct {
	Month string  `json:"month"`
	Spend float64 `json:"spend"`
}

// Summary is the reporting page payload.
type Summary struct {
	GeneratedAt       time.Time              `json:"generatedAt"`
	OrderCount        int                    `json:"orderCount"`
	TotalSpend        float64                `json:"totalSpend"`
	OrdersByStatus    map[string]StatusTotal `json:"ordersByStatus"`
	SpendBySupplier   []SupplierSpend        `json:"spendBySupplier"`
	SpendByMonth      []MonthSpend           `json:"spendByMonth"`
	SupplierCount     int                    `json:"supplierCount"`
	ActiveSuppliers   int                    `json:"activeSuppliers"`
	SuppliersByStatus map[string]int         `json:"suppliersByComplianceStatus"`
	AverageRating     float64                `json:"averageRating"`
	AverageOrderValue float64                `json:"averageOrderValue"`
	ComplianceRatePct float64                `json:"complianceRatePct"`
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func cacheKey(parts ...any) string {
	formatted := make([]string, 0, len(parts))
	for _, part := range parts {
		formatted = append(formatted, fmt.Sprint(part))
	}
	return strings.Join(formatted, ":")
}

func dayOrOpen(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02")
}

// committed reports whether an order counts toward spend.
func committed(status string) bool {
	return status != order.StatusDraft && status != order.StatusCancelled
}

// Summary aggregates orders within rg and the whole supplier catalog.
func (s *Service) Summary(ctx context.Context, rg Range) (Summary, error) {
	if s == nil || s.Orders == nil || s.Suppliers == nil {
		return Summary{}, fmt.Errorf("reports service not configured")
	}
	key := cacheKey("procure", "reports", "summary", dayOrOpen(rg.From), dayOrOpen(rg.To))
	if cached, ok := s.fromCache(ctx, key); ok {
		return cached, nil
	}
	orders, _, err := s.Orders.List(ctx, order.ListFilter{})
	if err != nil {
		return Summary{}, fmt.Errorf("list orders: %w", err)
	}
	suppliers, err := s.Suppliers.List(ctx, supplier.Criteria{})
	if err != nil {
		return Summary{}, fmt.Errorf("list suppliers: %w", err)
	}
	out := build(orders, suppliers, rg)
	out.GeneratedAt = s.now().UTC()
	s.store(ctx, key, out)
	return out, nil
}

func build(orders []order.Order, suppliers []supplier.Supplier, rg Range) Summary {
	out := Summary{
		OrdersByStatus:    map[string]StatusTotal{},
		SuppliersByStatus: map[string]int{},
		SpendBySupplier:   []SupplierSpend{},
		SpendByMonth:      []MonthSpend{},
	}
	for _, st := range order.Statuses() {
		out.OrdersByStatus[st] = StatusTotal{}
	}
	names := make(map[int]string, len(suppliers))
	for _, sup := range suppliers {
		names[sup.ID] = sup.Name
	}

	total := decimal.Zero
	statusSpend := map[string]decimal.Decimal{}
	bySupplier := map[int]*SupplierSpend{}
	supplierSpend := map[int]decimal.Decimal{}
	monthSpend := map[string]decimal.Decimal{}
	committedCount := 0
	for _, o := range orders {
		if !rg.From.IsZero() && o.OrderDate.Before(rg.From) {
			continue
		}
		if !rg.To.IsZero() && !o.OrderDate.Before(rg.To) {
			continue
		}
		out.OrderCount++
		st := out.OrdersByStatus[o.Status]
		st.Count++
		out.OrdersByStatus[o.Status] = st
		if !committed(o.Status) {
			continue
		}
		amount := decimal.NewFromFloat(o.GrandTotal)
		committedCount++
		total = total.Add(amount)
		statusSpend[o.Status] = statusSpend[o.Status].Add(amount)
		supplierSpend[o.SupplierID] = supplierSpend[o.SupplierID].Add(amount)
		ss, ok := bySupplier[o.SupplierID]
		if !ok {
			name := names[o.SupplierID]
			if name == "" {
				name = o.SupplierName
			}
			ss = &SupplierSpend{SupplierID: o.SupplierID, SupplierName: name}
			bySupplier[o.SupplierID] = ss
		}
		ss.Orders++
		month := o.OrderDate.UTC().Format("2006-01")
		monthSpend[month] = monthSpend[month].Add(amount)
	}

	out.TotalSpend = total.Round(2).InexactFloat64()
	if committedCount > 0 {
		out.AverageOrderValue = total.Div(decimal.NewFromInt(int64(committedCount))).Round(2).InexactFloat64()
	}
	for st, amount := range statusSpend {
		t := out.OrdersByStatus[st]
		t.Spend = amount.Round(2).InexactFloat64()
		out.OrdersByStatus[st] = t
	}
	for id, ss := range bySupplier {
		ss.Spend = supplierSpend[id].Round(2).InexactFloat64()
		out.SpendBySupplier = append(out.SpendBySupplier, *ss)
	}
	sort.Slice(out.SpendBySupplier, func(i, j int) bool {
		a, b := out.SpendBySupplier[i], out.SpendBySupplier[j]
		if a.Spend != b.Spend {
			return a.Spend > b.Spend
		}
		return a.SupplierID < b.SupplierID
	})
	for month, amount := range monthSpend {
		out.SpendByMonth = append(out.SpendByMonth, MonthSpend{Month: month, Spend: amount.Round(2).InexactFloat64()})
	}
	sort.Slice(out.SpendByMonth, func(i, j int) bool { return out.SpendByMonth[i].Month < out.SpendByMonth[j].Month })

	ratings := decimal.Zero
	compliant := 0
	for _, sup := range suppliers {
		out.SupplierCount++
		if sup.Status != supplier.StatusInactive {
			out.ActiveSuppliers++
		}
		out.SuppliersByStatus[sup.ComplianceStatus]++
		if sup.ComplianceStatus == supplier.ComplianceCompliant {
			compliant++
		}
		ratings = ratings.Add(decimal.NewFromFloat(sup.Rating))
	}
	if out.SupplierCount > 0 {
		n := decimal.NewFromInt(int64(out.SupplierCount))
		out.AverageRating = ratings.Div(n).Round(2).InexactFloat64()
		out.ComplianceRatePct = decimal.NewFromInt(int64(compliant * 100)).Div(n).Round(1).InexactFloat64()
	}
	return out
}

func (s *Service) fromCache(ctx context.Context, key string) (Summary, bool) {
	if s.R == nil || s.TTL <= 0 {
		return Summary{}, false
	}
	data, err := s.R.Get(ctx, key).Bytes()
	if err != nil {
		return Summary{}, false
	}
	var out Summary
	if err := json.Unmarshal(data, &out); err != nil {
		return Summary{}, false
	}
	return out, true
}

func (s *Service) store(ctx context.Context, key string, value any) {
	if s.R == nil || s.TTL <= 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = s.R.Set(ctx, key, data, s.TTL).Err()
}
