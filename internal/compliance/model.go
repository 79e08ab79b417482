package compliance

import (
	"errors"
	"time"

	"github.com/noah-isme/backend-procure/internal/supplier"
)

// ErrNotFound is returned when no compliance item carries the requested id.
var ErrNotFound = errors.New("compliance: not found")

// Item statuses, plus Unknown for the aggregate of an empty list.
const (
	StatusCompliant    = supplier.ComplianceCompliant
	StatusReview       = supplier.ComplianceReview
	StatusNonCompliant = supplier.ComplianceNonCompliant
	StatusUnknown      = "unknown"
)

// Item is one tracked compliance document.
type Item struct {
	ID           string     `json:"id"`
	SupplierID   int        `json:"supplierId"`
	DocumentType string     `json:"documentType"`
	FileName     string     `json:"fileName,omitempty"`
	Checksum     string     `json:"checksum,omitempty"`
	Status       string     `json:"status"`
	ExpiresAt    *time.Time `json:"expiryDate,omitempty"`
	Category     string     `json:"category"`
	LastChecked  time.Time  `json:"lastChecked"`
	Notes        string     `json:"notes,omitempty"`
}

// Expired reports whether the item expired at or before now.
func (i Item) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && !i.ExpiresAt.After(now)
}

// Filter narrows List results.
type Filter struct {
	SupplierID int
	Status     string
}
