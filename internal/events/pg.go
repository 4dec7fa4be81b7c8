package events

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const insertEventSQL = `
INSERT INTO domain_events (id, topic, aggregate_id, payload)
VALUES ($1, $2, $3, $4)
RETURNING occurred_at`

// PGStore persists domain events to Postgres.
type PGStore struct {
	Pool *pgxpool.Pool
}

// InsertDomainEvent implements EventStore.
func (s PGStore) InsertDomainEvent(ctx context.Context, topic, aggregateID string, payload []byte) (DomainEvent, error) {
	ev := DomainEvent{
		ID:          uuid.NewString(),
		Topic:       topic,
		AggregateID: aggregateID,
		Payload:     payload,
	}
	row := s.Pool.QueryRow(ctx, insertEventSQL, ev.ID, topic, aggregateID, payload)
	if err := row.Scan(&ev.OccurredAt); err != nil {
		return DomainEvent{}, err
	}
	return ev, nil
}
