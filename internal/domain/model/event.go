package model

import (
	"errors"
	"strings"
)

// ErrEventFieldsRequired is returned when name, date or location is blank.
var ErrEventFieldsRequired = errors.New("All fields are required") //nolint:staticcheck // shown to users verbatim

// Event is a planned event. IDs are positive and unique within a store.
type Event struct {
	ID       int    `json:"id"       db:"id"`
	Name     string `json:"name"     db:"name"`
	Date     string `json:"date"     db:"date"`
	Location string `json:"location" db:"location"`
}

// CreateEventRequest represents parameters to create an Event.
type CreateEventRequest struct {
	Name     string `json:"name"`
	Date     string `json:"date"`
	Location string `json:"location"`
}

// UpdateEventRequest replaces every field of an existing Event.
type UpdateEventRequest = CreateEventRequest

// Normalize trims surrounding whitespace from every field.
func (r *CreateEventRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Date = strings.TrimSpace(r.Date)
	r.Location = strings.TrimSpace(r.Location)
}

// Validate normalizes the request and checks that all fields are present.
func (r *CreateEventRequest) Validate() error {
	r.Normalize()
	if r.Name == "" || r.Date == "" || r.Location == "" {
		return ErrEventFieldsRequired
	}
	return nil
}

// Apply copies the request fields onto e.
func (r *CreateEventRequest) Apply(e *Event) {
	e.Name = r.Name
	e.Date = r.Date
	e.Location = r.Location
}

// NextEventID returns max(id)+1, or 1 when events is empty.
func NextEventID(events []*Event) int {
	maxID := 0
	for _, e := range events {
		if e != nil && e.ID > maxID {
			maxID = e.ID
		}
	}
	return maxID + 1
}
