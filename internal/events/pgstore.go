package events

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore appends events to the domain_events table.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

// InsertDomainEvent implements EventStore.
func (s PostgresStore) InsertDomainEvent(ctx context.Context, ev Event) error {
	const q = `INSERT INTO domain_events (id, topic, aggregate_id, payload, occurred_at)
VALUES ($1, $2, $3, $4, $5)`
	_, err := s.Pool.Exec(ctx, q, ev.ID, ev.Topic, ev.AggregateID, []byte(ev.Payload), ev.OccurredAt)
	return err
}
