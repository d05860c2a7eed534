package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/event-planner/internal/core"
	"github.com/target/event-planner/internal/domain/model"
	apperrors "github.com/target/event-planner/internal/errors"
)

// EventServiceOptions groups dependencies for EventService.
type EventServiceOptions struct {
	Repo   core.EventRepository // Required: event repository
	Logger *slog.Logger         // Optional: structured logger
}

// EventService provides business logic for event operations.
//
// Inputs are trimmed and validated here so every backend sees the same
// rules: name, date and location are all required.
type EventService struct {
	repo   core.EventRepository
	logger *slog.Logger
}

// NewEventService constructs a new EventService.
func NewEventService(opts EventServiceOptions) (*EventService, error) {
	if opts.Repo == nil {
		return nil, errors.New("EventRepository is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "event_service")
	}

	return &EventService{
		repo:   opts.Repo,
		logger: logger,
	}, nil
}

// MustNewEventService constructs a new EventService and panics on error.
// Use this when you're certain the options are valid (e.g., in main.go).
func MustNewEventService(opts EventServiceOptions) *EventService {
	svc, err := NewEventService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast during startup wiring when configuration is invalid
		panic(fmt.Sprintf("failed to create EventService: %v", err))
	}
	return svc
}

// List returns every stored event.
func (s *EventService) List(ctx context.Context) ([]*model.Event, error) {
	events, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// Get returns the event with id.
func (s *EventService) Get(ctx context.Context, id int) (*model.Event, error) {
	if id <= 0 {
		return nil, apperrors.NotFound("Event not found")
	}
	ev, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return ev, nil
}

// Create validates req and stores a new event.
func (s *EventService) Create(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	ev, err := s.repo.Create(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "event created", "event_id", ev.ID, "name", ev.Name)
	}
	return ev, nil
}

// Update replaces the fields of the event with id.
func (s *EventService) Update(ctx context.Context, id int, req model.UpdateEventRequest) (*model.Event, error) {
	if id <= 0 {
		return nil, apperrors.NotFound("Event not found")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	ev, err := s.repo.Update(ctx, id, &req)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "event updated", "event_id", ev.ID)
	}
	return ev, nil
}

// Delete removes the event with id.
func (s *EventService) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return apperrors.NotFound("Event not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "event deleted", "event_id", id)
	}
	return nil
}
