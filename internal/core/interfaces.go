package core

import (
	"context"

	"github.com/target/event-planner/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// These interfaces define the contracts between the service layer and data layer.
// Service implementations should depend on these interfaces, not concrete implementations.

// EventRepository defines the interface for event data operations.
//
// Implementations must be safe for concurrent use: each call observes the
// result of every call that returned before it started, and no mutation is lost.
// Create assigns ID = max(existing IDs)+1, or 1 for an empty store.
// GetByID, Update and Delete return an errors.NotFound AppError for unknown ids
// and leave the store unchanged in that case.
type EventRepository interface {
	List(ctx context.Context) ([]*model.Event, error)
	Create(ctx context.Context, req *model.CreateEventRequest) (*model.Event, error)
	GetByID(ctx context.Context, id int) (*model.Event, error)
	Update(ctx context.Context, id int, req *model.UpdateEventRequest) (*model.Event, error)
	Delete(ctx context.Context, id int) error
}
