package compliance

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-procure/internal/common"
	"github.com/noah-isme/backend-procure/internal/events"
	"github.com/noah-isme/backend-procure/internal/lock"
	"github.com/noah-isme/backend-procure/internal/obs"
	"github.com/noah-isme/backend-procure/internal/supplier"
)

// Suppliers is the slice of the supplier service compliance depends on.
type Suppliers interface {
	Get(ctx context.Context, id int) (supplier.Supplier, error)
	UpdateComplianceStatus(ctx context.Context, id int, status string) error
}

// Service tracks compliance documents and keeps supplier aggregates current.
type Service struct {
	store     Store
	suppliers Suppliers
	catalog   Catalog
	decider   Decider
	locker    lock.Runner
	lockTTL   time.Duration
	events    events.Publisher
	logger    zerolog.Logger
	now       func() time.Time
}

// ServiceConfig groups Service dependencies. Decider defaults to RuleDecider and
// Locker to an in-process lock.
type ServiceConfig struct {
	Store     Store
	Suppliers Suppliers
	Catalog   *Catalog
	Decider   Decider
	Locker    lock.Runner
	LockTTL   time.Duration
	Events    events.Publisher
	Logger    zerolog.Logger
	Now       func() time.Time
}

// Upload describes a document submitted for analysis.
type Upload struct {
	SupplierID int
	FileName   string
	Category   string
	ExpiresAt  *time.Time
	Notes      string
	Content    io.Reader
}

// Summary is a supplier's items with their aggregate status.
type Summary struct {
	SupplierID   int           `json:"supplierId"`
	Status       string        `json:"status"`
	Items        []Item        `json:"items"`
	Requirements []Requirement `json:"requirements"`
	Missing      []Requirement `json:"missing"`
}

// SweepResult reports what an expiry sweep changed.
type SweepResult struct {
	Expired   int   `json:"expired"`
	Expiring  int   `json:"expiring"`
	Suppliers []int `json:"suppliers"`
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("compliance: store is required")
	}
	if cfg.Suppliers == nil {
		return nil, errors.New("compliance: suppliers are required")
	}
	svc := &Service{
		store:     cfg.Store,
		suppliers: cfg.Suppliers,
		decider:   cfg.Decider,
		locker:    cfg.Locker,
		lockTTL:   cfg.LockTTL,
		events:    cfg.Events,
		logger:    cfg.Logger,
		now:       cfg.Now,
	}
	if cfg.Catalog != nil {
		svc.catalog = *cfg.Catalog
	} else {
		svc.catalog = DefaultCatalog()
	}
	if svc.decider == nil {
		svc.decider = RuleDecider{}
	}
	if svc.locker == nil {
		svc.locker = &lock.Local{}
	}
	if svc.lockTTL <= 0 {
		svc.lockTTL = 10 * time.Second
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc, nil
}

// Requirements lists the requirements applying to category (all when empty).
func (s *Service) Requirements(category string) []Requirement {
	return s.catalog.For(category)
}

// AnalyzeDocument records an uploaded document. The type is inferred from the
// file name and the new item starts in review.
func (s *Service) AnalyzeDocument(ctx context.Context, up Upload) (Item, error) {
	verrs := common.ValidationErrors{}
	if up.SupplierID <= 0 {
		verrs.Add("supplierId", "is required")
	}
	if strings.TrimSpace(up.FileName) == "" {
		verrs.Add("file", "is required")
	}
	if !verrs.Empty() {
		return Item{}, verrs.AsAppError()
	}
	if _, err := s.suppliers.Get(ctx, up.SupplierID); err != nil {
		return Item{}, err
	}
	checksum := ""
	if up.Content != nil {
		h := sha256.New()
		if _, err := io.Copy(h, up.Content); err != nil {
			return Item{}, common.BadRequest("file", "could not read upload", err)
		}
		checksum = hex.EncodeToString(h.Sum(nil))
	}
	analysis := AnalyzeFileName(up.FileName)
	category := strings.TrimSpace(up.Category)
	if category == "" {
		category = analysis.Category
	}
	notes := analysis.Notes
	if n := strings.TrimSpace(up.Notes); n != "" {
		notes = n
	}
	item := Item{
		ID:           uuid.NewString(),
		SupplierID:   up.SupplierID,
		DocumentType: analysis.DocumentType,
		FileName:     up.FileName,
		Checksum:     checksum,
		Status:       StatusReview,
		ExpiresAt:    up.ExpiresAt,
		Category:     category,
		LastChecked:  s.now().UTC(),
		Notes:        notes,
	}
	if err := s.store.Create(ctx, item); err != nil {
		return Item{}, fmt.Errorf("create compliance item: %w", err)
	}
	s.emit(ctx, events.TopicComplianceUploaded, item.ID, map[string]any{
		"supplierId":   item.SupplierID,
		"documentType": item.DocumentType,
	})
	if err := s.refreshSupplier(ctx, item.SupplierID); err != nil {
		return Item{}, err
	}
	return item, nil
}

// Verify applies the decider to one item and rewrites the supplier aggregate.
// Concurrent verifications of the same item are serialised.
func (s *Service) Verify(ctx context.Context, itemID string) (Item, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		verrs := common.ValidationErrors{}
		verrs.Add("itemId", "is required")
		return Item{}, verrs.AsAppError()
	}
	var out Item
	err := s.locker.WithLock(ctx, "compliance:verify:"+itemID, s.lockTTL, func(ctx context.Context) error {
		item, err := s.store.Get(ctx, itemID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return common.NotFound("compliance item", err)
			}
			return err
		}
		now := s.now().UTC()
		previous := item.Status
		item.Status = s.decider.Decide(ctx, item, now)
		if !supplier.ValidComplianceStatus(item.Status) {
			return fmt.Errorf("decider returned unknown status %q", item.Status)
		}
		item.LastChecked = now
		if err := s.store.Update(ctx, item); err != nil {
			return fmt.Errorf("update compliance item: %w", err)
		}
		obs.IncComplianceVerification(item.Status)
		s.emit(ctx, events.TopicComplianceVerified, item.ID, map[string]any{
			"supplierId": item.SupplierID,
			"from":       previous,
			"to":         item.Status,
		})
		out = item
		return s.refreshSupplier(ctx, item.SupplierID)
	})
	if err != nil {
		return Item{}, err
	}
	return out, nil
}

// Items lists tracked items, optionally for one supplier.
func (s *Service) Items(ctx context.Context, f Filter) ([]Item, error) {
	items, err := s.store.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list compliance items: %w", err)
	}
	return items, nil
}

// SupplierSummary aggregates a supplier's items and lists mandatory requirements
// with no matching document on file.
func (s *Service) SupplierSummary(ctx context.Context, supplierID int) (Summary, error) {
	sup, err := s.suppliers.Get(ctx, supplierID)
	if err != nil {
		return Summary{}, err
	}
	items, err := s.Items(ctx, Filter{SupplierID: supplierID})
	if err != nil {
		return Summary{}, err
	}
	reqs := s.catalog.For(sup.Category)
	have := map[string]bool{}
	for _, it := range items {
		if it.Status != StatusNonCompliant {
			have[it.DocumentType] = true
		}
	}
	missing := []Requirement{}
	for _, r := range reqs {
		if r.Mandatory && !have[r.DocumentType] {
			missing = append(missing, r)
		}
	}
	return Summary{
		SupplierID:   supplierID,
		Status:       Aggregate(items),
		Items:        items,
		Requirements: reqs,
		Missing:      missing,
	}, nil
}

// Sweep marks expired items non-compliant and compliant items expiring within
// warning as review, then refreshes the affected suppliers.
func (s *Service) Sweep(ctx context.Context, warning time.Duration) (SweepResult, error) {
	items, err := s.store.List(ctx, Filter{})
	if err != nil {
		return SweepResult{}, fmt.Errorf("sweep list: %w", err)
	}
	now := s.now().UTC()
	var res SweepResult
	touched := map[int]bool{}
	for _, listed := range items {
		if listed.ExpiresAt == nil {
			continue
		}
		var changed *Item
		err := s.locker.WithLock(ctx, "compliance:verify:"+listed.ID, s.lockTTL, func(ctx context.Context) error {
			it, err := s.store.Get(ctx, listed.ID)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					return nil
				}
				return err
			}
			if !sweepItem(&it, now, warning) {
				return nil
			}
			if err := s.store.Update(ctx, it); err != nil {
				return err
			}
			changed = &it
			return nil
		})
		if err != nil {
			return res, fmt.Errorf("sweep update %s: %w", listed.ID, err)
		}
		if changed == nil {
			continue
		}
		if changed.Status == StatusNonCompliant {
			res.Expired++
			s.emit(ctx, events.TopicComplianceExpired, changed.ID, map[string]any{"supplierId": changed.SupplierID})
		} else {
			res.Expiring++
		}
		if !touched[changed.SupplierID] {
			touched[changed.SupplierID] = true
			res.Suppliers = append(res.Suppliers, changed.SupplierID)
		}
	}
	for _, id := range res.Suppliers {
		if err := s.refreshSupplier(ctx, id); err != nil {
			s.logger.Warn().Err(err).Int("supplier_id", id).Msg("sweep refresh supplier")
		}
	}
	return res, nil
}

// sweepItem applies expiry rules to it and reports whether it changed.
func sweepItem(it *Item, now time.Time, warning time.Duration) bool {
	if it.ExpiresAt == nil {
		return false
	}
	switch {
	case it.Expired(now) && it.Status != StatusNonCompliant:
		it.Status = StatusNonCompliant
		it.Notes = "expired on " + it.ExpiresAt.Format("2006-01-02")
	case !it.Expired(now) && warning > 0 && it.ExpiresAt.Sub(now) <= warning && it.Status == StatusCompliant:
		it.Status = StatusReview
		it.Notes = "expires on " + it.ExpiresAt.Format("2006-01-02")
	default:
		return false
	}
	it.LastChecked = now
	return true
}

// refreshSupplier rewrites the supplier status to the aggregate of its items.
// An empty item list leaves the supplier untouched.
func (s *Service) refreshSupplier(ctx context.Context, supplierID int) error {
	items, err := s.store.List(ctx, Filter{SupplierID: supplierID})
	if err != nil {
		return fmt.Errorf("list supplier items: %w", err)
	}
	status := Aggregate(items)
	if status == StatusUnknown {
		return nil
	}
	if err := s.suppliers.UpdateComplianceStatus(ctx, supplierID, status); err != nil {
		return fmt.Errorf("update supplier compliance: %w", err)
	}
	return nil
}

func (s *Service) emit(ctx context.Context, topic, id string, payload any) {
	if s.events == nil {
		return
	}
	if _, err := s.events.Emit(ctx, topic, id, payload); err != nil {
		s.logger.Warn().Err(err).Str("topic", topic).Msg("emit compliance event")
	}
}
