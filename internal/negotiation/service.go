package negotiation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-procure/internal/common"
	"github.com/noah-isme/backend-procure/internal/compliance"
	"github.com/noah-isme/backend-procure/internal/obs"
	"github.com/noah-isme/backend-procure/internal/resilience"
	"github.com/noah-isme/backend-procure/internal/supplier"
)

// Generator produces messages and strategies. Client is the production implementation.
type Generator interface {
	GenerateMessage(ctx context.Context, req MessageRequest) (Message, error)
	FetchStrategies(ctx context.Context, q StrategyQuery) ([]Strategy, error)
}

// SupplierLookup resolves supplier ids.
type SupplierLookup interface {
	Get(ctx context.Context, id int) (supplier.Supplier, error)
}

// ComplianceLookup summarises a supplier's compliance documents.
type ComplianceLookup interface {
	SupplierSummary(ctx context.Context, supplierID int) (compliance.Summary, error)
}

// Service wraps the generator with fallbacks and builds dossiers.
type Service struct {
	generator  Generator
	suppliers  SupplierLookup
	compliance ComplianceLookup
	logger     zerolog.Logger
	now        func() time.Time
}

// ServiceConfig groups Service dependencies. Compliance is optional.
type ServiceConfig struct {
	Generator  Generator
	Suppliers  SupplierLookup
	Compliance ComplianceLookup
	Logger     zerolog.Logger
	Now        func() time.Time
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Suppliers == nil {
		return nil, errors.New("negotiation: suppliers are required")
	}
	svc := &Service{
		generator:  cfg.Generator,
		suppliers:  cfg.Suppliers,
		compliance: cfg.Compliance,
		logger:     cfg.Logger,
		now:        cfg.Now,
	}
	if svc.generator == nil {
		svc.generator = Client{}
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc, nil
}

// Message generates a negotiation message. Generator failures are not errors:
// the templated fallback is returned with Fallback set.
func (s *Service) Message(ctx context.Context, req MessageRequest) (Message, error) {
	req.Type = strings.TrimSpace(req.Type)
	req.Supplier = strings.TrimSpace(req.Supplier)
	verrs := common.ValidationErrors{}
	if req.Type == "" {
		verrs.Add("type", "is required")
	}
	if req.SupplierID <= 0 && req.Supplier == "" {
		verrs.Add("supplier", "supplier or supplierId is required")
	}
	if !verrs.Empty() {
		return Message{}, verrs.AsAppError()
	}
	if req.SupplierID > 0 {
		sup, err := s.suppliers.Get(ctx, req.SupplierID)
		if err != nil {
			return Message{}, err
		}
		req.Supplier = sup.Name
	}

	msg, err := s.generator.GenerateMessage(ctx, req)
	if err != nil {
		s.degraded("message", err)
		return FallbackMessage(req), nil
	}
	obs.IncNegotiation("message", "ok")
	return msg, nil
}

// Strategies fetches strategies for q, falling back to the fixed set on any failure.
func (s *Service) Strategies(ctx context.Context, q StrategyQuery) Strategies {
	q.Supplier = strings.TrimSpace(q.Supplier)
	q.Category = strings.TrimSpace(q.Category)
	q.Description = strings.TrimSpace(q.Description)
	items, err := s.generator.FetchStrategies(ctx, q)
	if err != nil {
		s.degraded("strategies", err)
		return Strategies{Items: FallbackStrategies(), Fallback: true}
	}
	obs.IncNegotiation("strategies", "ok")
	return Strategies{Items: items}
}

func (s *Service) degraded(kind string, err error) {
	result := "fallback"
	switch {
	case errors.Is(err, ErrNotConfigured):
		result = "disabled"
	case errors.Is(err, resilience.ErrOpenCircuit):
		result = "circuit_open"
	}
	obs.IncNegotiation(kind, result)
	evt := s.logger.Warn()
	if result == "disabled" {
		evt = s.logger.Debug()
	}
	evt.Err(err).Str("kind", kind).Str("result", result).Msg("negotiation generator unavailable, using fallback")
}
