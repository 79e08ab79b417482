package compliance

import (
	"context"
	"strings"
	"time"
)

// Decider chooses the outcome of verifying a compliance item.
type Decider interface {
	Decide(ctx context.Context, item Item, now time.Time) string
}

// DeciderFunc adapts a function to Decider.
type DeciderFunc func(ctx context.Context, item Item, now time.Time) string

// Decide implements Decider.
func (f DeciderFunc) Decide(ctx context.Context, item Item, now time.Time) string {
	return f(ctx, item, now)
}

// Fixed always returns status.
func Fixed(status string) Decider {
	return DeciderFunc(func(context.Context, Item, time.Time) string { return status })
}

// RuleDecider is the default verification policy: expired documents are
// non-compliant, documents whose notes flag something missing stay in review,
// everything else is compliant.
type RuleDecider struct{}

// Decide implements Decider.
func (RuleDecider) Decide(_ context.Context, item Item, now time.Time) string {
	if item.Expired(now) {
		return StatusNonCompliant
	}
	if strings.Contains(strings.ToLower(item.Notes), "missing") {
		return StatusReview
	}
	return StatusCompliant
}
