package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEventRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateEventRequest
		wantErr error
	}{
		{name: "all fields", req: CreateEventRequest{Name: "Picnic", Date: "2026-06-01", Location: "Park"}},
		{name: "missing name", req: CreateEventRequest{Date: "2026-06-01", Location: "Park"}, wantErr: ErrEventFieldsRequired},
		{name: "blank date", req: CreateEventRequest{Name: "Picnic", Date: "   ", Location: "Park"}, wantErr: ErrEventFieldsRequired},
		{name: "missing location", req: CreateEventRequest{Name: "Picnic", Date: "2026-06-01"}, wantErr: ErrEventFieldsRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCreateEventRequest_ValidateAcceptsLongFields(t *testing.T) {
	long := strings.Repeat("x", 1000)
	req := CreateEventRequest{Name: long, Date: "d", Location: long}
	require.NoError(t, req.Validate())
	assert.Len(t, req.Name, 1000)
}

func TestCreateEventRequest_NormalizeAndApply(t *testing.T) {
	req := CreateEventRequest{Name: "  Gala ", Date: " 2026-12-31", Location: "Hall  "}
	require.NoError(t, req.Validate())

	ev := &Event{ID: 4, Name: "old"}
	req.Apply(ev)
	assert.Equal(t, Event{ID: 4, Name: "Gala", Date: "2026-12-31", Location: "Hall"}, *ev)
}

func TestNextEventID(t *testing.T) {
	assert.Equal(t, 1, NextEventID(nil))
	assert.Equal(t, 1, NextEventID([]*Event{}))
	// max+1, not last+1: ids need not be sorted
	assert.Equal(t, 10, NextEventID([]*Event{{ID: 9}, {ID: 2}, nil, {ID: 5}}))
}
