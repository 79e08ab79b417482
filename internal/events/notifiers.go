package events

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-procure/internal/obs"
)

// LogNotifier writes one structured line per event.
type LogNotifier struct {
	Logger zerolog.Logger
}

// Notify implements Notifier.
func (n LogNotifier) Notify(ctx context.Context, ev Event) error {
	n.Logger.Info().
		Str("event_id", ev.ID.String()).
		Str("topic", ev.Topic).
		Str("aggregate_id", ev.AggregateID).
		RawJSON("payload", ev.Payload).
		Msg("domain event")
	return nil
}

// MetricsNotifier counts events per topic.
type MetricsNotifier struct{}

// Notify implements Notifier.
func (MetricsNotifier) Notify(_ context.Context, ev Event) error {
	obs.IncDomainEvent(ev.Topic)
	return nil
}
