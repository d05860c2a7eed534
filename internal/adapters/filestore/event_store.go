// Package filestore persists events as a pretty-printed JSON array in a single file.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/target/event-planner/internal/core"
	"github.com/target/event-planner/internal/domain/model"
	apperrors "github.com/target/event-planner/internal/errors"
)

var _ core.EventRepository = (*EventStore)(nil)

// EventStore is a file-backed core.EventRepository.
//
// All calls on one EventStore are serialized by mu, and every mutation replaces
// the file atomically (temp file, fsync, rename), so readers never see a partial
// write and no update is lost within the process.
type EventStore struct {
	path string
	mu   sync.RWMutex
}

// NewEventStore creates an EventStore for path. The file and its directory are
// created on the first write.
func NewEventStore(path string) *EventStore {
	return &EventStore{path: path}
}

// Path returns the backing file path.
func (s *EventStore) Path() string { return s.path }

// List returns all events in file order.
func (s *EventStore) List(ctx context.Context) ([]*model.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read()
}

// Create appends a new event with id max+1 (1 when the file is empty).
func (s *EventStore) Create(ctx context.Context, req *model.CreateEventRequest) (*model.Event, error) {
	if req == nil {
		return nil, errors.New("create event request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	var created *model.Event
	err := s.mutate(ctx, func(events []*model.Event) ([]*model.Event, error) {
		created = &model.Event{ID: model.NextEventID(events)}
		req.Apply(created)
		return append(events, created), nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID returns the event with id.
func (s *EventStore) GetByID(ctx context.Context, id int) (*model.Event, error) {
	events, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(events, id)
	if i < 0 {
		return nil, apperrors.NotFound("Event not found")
	}
	return events[i], nil
}

// Update replaces name, date and location of the event with id.
func (s *EventStore) Update(ctx context.Context, id int, req *model.UpdateEventRequest) (*model.Event, error) {
	if req == nil {
		return nil, errors.New("update event request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	var updated *model.Event
	err := s.mutate(ctx, func(events []*model.Event) ([]*model.Event, error) {
		i := indexOf(events, id)
		if i < 0 {
			return nil, apperrors.NotFound("Event not found")
		}
		req.Apply(events[i])
		updated = events[i]
		return events, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the event with id. The file is not rewritten when id is unknown.
func (s *EventStore) Delete(ctx context.Context, id int) error {
	return s.mutate(ctx, func(events []*model.Event) ([]*model.Event, error) {
		i := indexOf(events, id)
		if i < 0 {
			return nil, apperrors.NotFound("Event not found")
		}
		return slices.Delete(events, i, i+1), nil
	})
}

// mutate runs fn over the current events under the write lock and persists the result.
// When fn returns an error nothing is written.
func (s *EventStore) mutate(ctx context.Context, fn func([]*model.Event) ([]*model.Event, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.read()
	if err != nil {
		return err
	}
	next, err := fn(events)
	if err != nil {
		return err
	}
	return s.write(next)
}

// read loads the event array. A missing or blank file is an empty store.
func (s *EventStore) read() ([]*model.Event, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []*model.Event{}, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "read events file")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []*model.Event{}, nil
	}

	var events []*model.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeInternal, "decode events file %s", s.path)
	}
	if events == nil {
		events = []*model.Event{}
	}
	return events, nil
}

func (s *EventStore) write(events []*model.Event) (err error) {
	if events == nil {
		events = []*model.Event{}
	}
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("encode events: %w", err)
	}

	dir := filepath.Dir(s.path)
	if mkErr := os.MkdirAll(dir, 0o750); mkErr != nil {
		return apperrors.Wrap(mkErr, apperrors.ErrCodeInternal, "create events directory")
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "create temp events file")
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, removeIfExists(tmp.Name()))
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return errors.Join(apperrors.Wrap(err, apperrors.ErrCodeInternal, "write events"), tmp.Close())
	}
	if err = tmp.Sync(); err != nil {
		return errors.Join(apperrors.Wrap(err, apperrors.ErrCodeInternal, "sync events"), tmp.Close())
	}
	if err = tmp.Close(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "close temp events file")
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "replace events file")
	}
	return nil
}

func removeIfExists(name string) error {
	if err := os.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func indexOf(events []*model.Event, id int) int {
	return slices.IndexFunc(events, func(e *model.Event) bool { return e != nil && e.ID == id })
}
