package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/target/event-planner/internal/core"
	"github.com/target/event-planner/internal/data/pgxutil"
	"github.com/target/event-planner/internal/domain/model"
	apperrors "github.com/target/event-planner/internal/errors"
)

var _ core.EventRepository = (*EventRepo)(nil)

// EventRepo provides database operations for events.
type EventRepo struct {
	DB *sql.DB
}

// NewEventRepo creates a new EventRepo.
func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{DB: db}
}

const (
	eventListQuery = `SELECT id, name, date, location FROM events ORDER BY id`

	eventGetByIDQuery = `SELECT id, name, date, location FROM events WHERE id = $1`

	// The table lock serializes id allocation so that id = max(id)+1 holds even
	// when the highest event was deleted.
	eventLockQuery = `LOCK TABLE events IN SHARE ROW EXCLUSIVE MODE`

	eventInsertQuery = `
		INSERT INTO events (id, name, date, location)
		SELECT COALESCE(MAX(id), 0) + 1, $1, $2, $3 FROM events
		RETURNING id, name, date, location`

	eventUpdateQuery = `
		UPDATE events SET name = $2, date = $3, location = $4, updated_at = now()
		WHERE id = $1
		RETURNING id, name, date, location`

	eventDeleteQuery = `DELETE FROM events WHERE id = $1`
)

// List returns all events ordered by id.
func (r *EventRepo) List(ctx context.Context) ([]*model.Event, error) {
	var out []*model.Event
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, eventListQuery)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.Event])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", apperrors.MapDBError(err))
	}
	if out == nil {
		out = []*model.Event{}
	}
	return out, nil
}

// Create inserts a new event with the next id.
func (r *EventRepo) Create(ctx context.Context, req *model.CreateEventRequest) (*model.Event, error) {
	if req == nil {
		return nil, errors.New("create event request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	var out model.Event
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, eventLockQuery); err != nil {
				return err
			}
			rows, err := tx.Query(ctx, eventInsertQuery, req.Name, req.Date, req.Location)
			if err != nil {
				return err
			}
			out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Event])
			return err
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create event: %w", apperrors.MapDBError(err))
	}
	return &out, nil
}

// GetByID retrieves an event by id.
func (r *EventRepo) GetByID(ctx context.Context, id int) (*model.Event, error) {
	return r.queryOne(ctx, id, eventGetByIDQuery, id)
}

// Update replaces the name, date and location of an event.
func (r *EventRepo) Update(ctx context.Context, id int, req *model.UpdateEventRequest) (*model.Event, error) {
	if req == nil {
		return nil, errors.New("update event request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	return r.queryOne(ctx, id, eventUpdateQuery, id, req.Name, req.Date, req.Location)
}

// Delete removes an event by id.
func (r *EventRepo) Delete(ctx context.Context, id int) error {
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, eventDeleteQuery, id)
		if err != nil {
			return err
		}
		affected = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete event: %w", apperrors.MapDBError(err))
	}
	if affected == 0 {
		return apperrors.NotFound("Event not found")
	}
	return nil
}

func (r *EventRepo) queryOne(ctx context.Context, id int, q string, args ...any) (*model.Event, error) {
	var ev model.Event
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		ev, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Event])
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("Event not found")
	}
	if err != nil {
		return nil, fmt.Errorf("event %d: %w", id, apperrors.MapDBError(err))
	}
	return &ev, nil
}
