package supplier

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-procure/internal/common"
	"github.com/noah-isme/backend-procure/internal/events"
	"github.com/noah-isme/backend-procure/internal/obs"
)

// Service orchestrates catalog reads, writes, search, and caching.
type Service struct {
	store    Store
	cache    *Cache
	events   events.Publisher
	validate *validator.Validate
	logger   zerolog.Logger
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store     Store
	Cache     *Cache
	Events    events.Publisher
	Validator *validator.Validate
	Logger    zerolog.Logger
}

// SearchResult carries a search response and whether it came from the cache.
type SearchResult struct {
	Items  []Supplier
	Cached bool
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("supplier: store is required")
	}
	v := cfg.Validator
	if v == nil {
		v = common.NewValidator()
	}
	return &Service{
		store:    cfg.Store,
		cache:    cfg.Cache,
		events:   cfg.Events,
		validate: v,
		logger:   cfg.Logger,
	}, nil
}

// List returns the catalog narrowed by criteria, in insertion order unless a sort is requested.
func (s *Service) List(ctx context.Context, criteria Criteria) ([]Supplier, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	if criteria.IsZero() {
		return all, nil
	}
	return Search(all, criteria), nil
}

// Get returns a single supplier.
func (s *Service) Get(ctx context.Context, id int) (Supplier, error) {
	sup, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Supplier{}, common.NotFound("supplier", err)
		}
		return Supplier{}, fmt.Errorf("get supplier: %w", err)
	}
	return sup, nil
}

// Create validates input and appends it to the catalog with a fresh id.
func (s *Service) Create(ctx context.Context, input Supplier) (Supplier, error) {
	input.ID = 0
	input.Name = strings.TrimSpace(input.Name)
	input.Category = strings.TrimSpace(input.Category)
	input.Location = strings.TrimSpace(input.Location)
	if input.Status == "" {
		input.Status = StatusActive
	}
	if input.ComplianceStatus == "" {
		input.ComplianceStatus = ComplianceReview
	}
	if err := common.ValidateStruct(s.validate, input); err != nil {
		var verrs common.ValidationErrors
		if errors.As(err, &verrs) {
			return Supplier{}, verrs.AsAppError()
		}
		return Supplier{}, err
	}
	created, err := s.store.Add(ctx, input)
	if err != nil {
		return Supplier{}, fmt.Errorf("add supplier: %w", err)
	}
	s.invalidate(ctx)
	s.emit(ctx, events.TopicSupplierCreated, created.ID, map[string]any{
		"id":       created.ID,
		"name":     created.Name,
		"category": created.Category,
	})
	return created, nil
}

// Search runs the filter pipeline over the catalog, consulting the cache first.
func (s *Service) Search(ctx context.Context, criteria Criteria) (SearchResult, error) {
	criteria = ApplyQueryPolicy(criteria)
	key, err := s.cache.SearchKey(ctx, criteria)
	if err != nil {
		s.logger.Warn().Err(err).Msg("supplier search cache key")
	}
	if key != "" {
		var cached []Supplier
		if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
			obs.IncSupplierSearch("hit", len(cached))
			return SearchResult{Items: cached, Cached: true}, nil
		}
	}
	all, err := s.store.List(ctx)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search suppliers: %w", err)
	}
	items := Search(all, criteria)
	if key != "" {
		if err := s.cache.SetJSON(ctx, key, items); err != nil {
			s.logger.Warn().Err(err).Msg("supplier search cache store")
		}
		obs.IncSupplierSearch("miss", len(items))
	} else {
		obs.IncSupplierSearch("disabled", len(items))
	}
	return SearchResult{Items: items}, nil
}

// Recommend returns the top suppliers for a category.
func (s *Service) Recommend(ctx context.Context, category string, limit int) ([]Recommendation, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("recommend suppliers: %w", err)
	}
	return Recommend(all, category, limit), nil
}

// UpdateComplianceStatus rewrites the supplier's aggregate compliance status.
func (s *Service) UpdateComplianceStatus(ctx context.Context, id int, status string) error {
	if !ValidComplianceStatus(status) {
		return common.BadRequest("complianceStatus", "unknown compliance status", nil)
	}
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return common.NotFound("supplier", err)
		}
		return err
	}
	if current.ComplianceStatus == status {
		return nil
	}
	if err := s.store.UpdateComplianceStatus(ctx, id, status); err != nil {
		return fmt.Errorf("update compliance status: %w", err)
	}
	s.invalidate(ctx)
	s.emit(ctx, events.TopicSupplierStatusChanged, id, map[string]any{
		"id":   id,
		"from": current.ComplianceStatus,
		"to":   status,
	})
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("supplier cache invalidate")
	}
}

func (s *Service) emit(ctx context.Context, topic string, id int, payload any) {
	if s.events == nil {
		return
	}
	if _, err := s.events.Emit(ctx, topic, strconv.Itoa(id), payload); err != nil {
		s.logger.Warn().Err(err).Str("topic", topic).Msg("emit supplier event")
	}
}
