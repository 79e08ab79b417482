package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-procure/internal/common"
	"github.com/noah-isme/backend-procure/internal/events"
	"github.com/noah-isme/backend-procure/internal/obs"
	"github.com/noah-isme/backend-procure/internal/supplier"
)

// SupplierLookup resolves the supplier an order refers to.
type SupplierLookup interface {
	GetByID(ctx context.Context, id int) (supplier.Supplier, error)
}

// Service creates, lists and transitions orders.
type Service struct {
	store     Store
	suppliers SupplierLookup
	events    events.Publisher
	validate  *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store     Store
	Suppliers SupplierLookup
	Events    events.Publisher
	Validator *validator.Validate
	Logger    zerolog.Logger
	Now       func() time.Time
}

// CreateInput is the body of POST /orders. Submit selects validation and the initial status.
type CreateInput struct {
	Draft
	Submit bool `json:"submit"`
}

// Quote is a recomputed draft plus the fields that would block submission.
type Quote struct {
	Draft  Draft                   `json:"draft"`
	Errors common.ValidationErrors `json:"errors"`
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("order: store is required")
	}
	if cfg.Suppliers == nil {
		return nil, errors.New("order: supplier lookup is required")
	}
	v := cfg.Validator
	if v == nil {
		v = common.NewValidator()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:     cfg.Store,
		suppliers: cfg.Suppliers,
		events:    cfg.Events,
		validate:  v,
		logger:    cfg.Logger,
		now:       now,
	}, nil
}

// Quote recomputes totals and reports validation problems without persisting anything.
func (s *Service) Quote(ctx context.Context, d Draft) (Quote, error) {
	sup, err := s.resolveSupplier(ctx, d.SupplierID)
	if err != nil {
		return Quote{}, err
	}
	if sup != nil {
		d.FillFromCatalog(*sup)
	}
	d.Recompute()
	return Quote{Draft: d, Errors: d.Validate(s.validate)}, nil
}

// Create persists a new order. Drafts skip line validation; submissions must pass
// Validate and start in processing.
func (s *Service) Create(ctx context.Context, in CreateInput) (Order, error) {
	d := in.Draft
	if len(d.Items) == 0 && !in.Submit {
		d.AddItem()
	}
	sup, err := s.resolveSupplier(ctx, d.SupplierID)
	if err != nil {
		return Order{}, err
	}
	if sup != nil {
		d.FillFromCatalog(*sup)
	}
	d.Recompute()

	status := StatusDraft
	if in.Submit {
		if verrs := d.Validate(s.validate); !verrs.Empty() {
			return Order{}, verrs.AsAppError()
		}
		status = StatusProcessing
	}

	now := s.now().UTC()
	o := Order{
		ID:           uuid.NewString(),
		SupplierID:   d.SupplierID,
		OrderDate:    now,
		PaymentTerms: strings.TrimSpace(d.PaymentTerms),
		Items:        d.Items,
		Subtotal:     d.Subtotal,
		Tax:          d.Tax,
		Shipping:     d.Shipping,
		GrandTotal:   d.GrandTotal,
		Status:       status,
		Notes:        strings.TrimSpace(d.Notes),
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if sup != nil {
		o.SupplierName = sup.Name
	}
	if t, err := parseDate(d.OrderDate); err == nil {
		o.OrderDate = t
	}
	if t, err := parseDate(d.DeliveryDate); err == nil {
		o.DeliveryDate = &t
	}
	if err := s.store.Create(ctx, o); err != nil {
		return Order{}, fmt.Errorf("create order: %w", err)
	}
	obs.IncOrderCreated(status)
	s.emit(ctx, events.TopicOrderCreated, o.ID, map[string]any{
		"id":         o.ID,
		"supplierId": o.SupplierID,
		"status":     o.Status,
		"grandTotal": o.GrandTotal,
	})
	return o, nil
}

// Get returns one order.
func (s *Service) Get(ctx context.Context, id string) (Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Order{}, common.NotFound("order", err)
	}
	o, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Order{}, common.NotFound("order", err)
		}
		return Order{}, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// List returns a page of orders and the total match count.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Order, int, error) {
	if f.Status != "" && !ValidStatus(f.Status) {
		return nil, 0, common.BadRequest("status", "unknown order status", nil)
	}
	items, total, err := s.store.List(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return items, total, nil
}

// UpdateStatus sets a new status. When expectedVersion is non-nil it must match
// the stored version or a 409 conflict is returned.
func (s *Service) UpdateStatus(ctx context.Context, id, status string, expectedVersion *int) (Order, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !ValidStatus(status) {
		verrs := common.ValidationErrors{}
		verrs.Add("status", "must be one of: "+strings.Join(Statuses(), " "))
		return Order{}, verrs.AsAppError()
	}
	before, err := s.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	updated, err := s.store.UpdateStatus(ctx, id, status, expectedVersion, s.now().UTC())
	switch {
	case errors.Is(err, ErrNotFound):
		return Order{}, common.NotFound("order", err)
	case errors.Is(err, ErrVersionConflict):
		return Order{}, common.Conflict("order was modified by another request", err)
	case err != nil:
		return Order{}, fmt.Errorf("update order status: %w", err)
	}
	s.emit(ctx, events.TopicOrderStatusChanged, id, map[string]any{
		"id":      id,
		"from":    before.Status,
		"to":      updated.Status,
		"version": updated.Version,
	})
	return updated, nil
}

func (s *Service) resolveSupplier(ctx context.Context, id int) (*supplier.Supplier, error) {
	if id == 0 {
		return nil, nil
	}
	sup, err := s.suppliers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, supplier.ErrNotFound) {
			verrs := common.ValidationErrors{}
			verrs.Add("supplierId", "unknown supplier")
			return nil, verrs.AsAppError()
		}
		return nil, fmt.Errorf("resolve supplier: %w", err)
	}
	return &sup, nil
}

func (s *Service) emit(ctx context.Context, topic, id string, payload any) {
	if s.events == nil {
		return
	}
	if _, err := s.events.Emit(ctx, topic, id, payload); err != nil {
		s.logger.Warn().Err(err).Str("topic", topic).Msg("emit order event")
	}
}
