package infrastructure

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mercato/order-system/shared/events"
	"github.com/mercato/order-system/shared/models"
	"github.com/pkg/errors"
)

var _ events.EventStore = (*PostgresEventStore)(nil)

// PostgresEventStore persists events to the event_stream table as an
// append-only audit log.
type PostgresEventStore struct {
	db *sqlx.DB
}

// NewPostgresEventStore creates a new PostgresEventStore
func NewPostgresEventStore(db *sqlx.DB) *PostgresEventStore {
	return &PostgresEventStore{db: db}
}

type eventRow struct {
	ID            string    `db:"id"`
	AggregateID   string    `db:"aggregate_id"`
	Topic         string    `db:"topic"`
	EventType     string    `db:"event_type"`
	Version       string    `db:"version"`
	Data          []byte    `db:"data"`
	Metadata      []byte    `db:"metadata"`
	CorrelationID string    `db:"correlation_id"`
	Timestamp     time.Time `db:"timestamp"`
}

// SaveEvents appends events for an aggregate to the stream
func (s *PostgresEventStore) SaveEvents(ctx context.Context, aggregateID models.ID, evts []*events.Event) error {
	if len(evts) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO event_stream (id, aggregate_id, topic, event_type, version, data, metadata, correlation_id, timestamp)
		VALUES (:id, :aggregate_id, :topic, :event_type, :version, :data, :metadata, :correlation_id, :timestamp)`

	for _, event := range evts {
		row, err := toEventRow(aggregateID, event)
		if err != nil {
			return err
		}
		if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
			return errors.Wrap(err, "failed to insert event")
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}

	return nil
}

// GetEvents returns all events for an aggregate in append order
func (s *PostgresEventStore) GetEvents(ctx context.Context, aggregateID models.ID) ([]*events.Event, error) {
	var rows []eventRow
	query := `SELECT * FROM event_stream WHERE aggregate_id = $1 ORDER BY timestamp ASC`
	if err := s.db.SelectContext(ctx, &rows, query, aggregateID.String()); err != nil {
		return nil, errors.Wrap(err, "failed to query events")
	}

	return toEvents(rows)
}

// GetEventsByType returns a page of events of one type across aggregates
func (s *PostgresEventStore) GetEventsByType(ctx context.Context, eventType string, offset, limit int) ([]*events.Event, error) {
	var rows []eventRow
	query := `SELECT * FROM event_stream WHERE event_type = $1 ORDER BY timestamp ASC OFFSET $2 LIMIT $3`
	if err := s.db.SelectContext(ctx, &rows, query, eventType, offset, limit); err != nil {
		return nil, errors.Wrap(err, "failed to query events by type")
	}

	return toEvents(rows)
}

func toEventRow(aggregateID models.ID, event *events.Event) (*eventRow, error) {
	data, err := event.MarshalPayload()
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal event payload")
	}

	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal event metadata")
	}

	return &eventRow{
		ID:            event.ID.String(),
		AggregateID:   aggregateID.String(),
		Topic:         event.Topic.String(),
		EventType:     event.EventType,
		Version:       event.Version,
		Data:          data,
		Metadata:      metadata,
		CorrelationID: event.CorrelationID.String(),
		Timestamp:     event.Timestamp,
	}, nil
}

func toEvents(rows []eventRow) ([]*events.Event, error) {
	result := make([]*events.Event, len(rows))
	for i, row := range rows {
		metadata := make(events.Metadata)
		if len(row.Metadata) > 0 {
			if err := json.Unmarshal(row.Metadata, &metadata); err != nil {
				return nil, errors.Wrap(err, "failed to unmarshal event metadata")
			}
		}

		result[i] = &events.Event{
			ID:            models.ID(row.ID),
			AggregateID:   models.ID(row.AggregateID),
			Topic:         events.Topic(row.Topic),
			EventType:     row.EventType,
			Version:       row.Version,
			Data:          json.RawMessage(row.Data),
			Metadata:      metadata,
			CorrelationID: models.ID(row.CorrelationID),
			Timestamp:     row.Timestamp,
		}
	}
	return result, nil
}
