package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/event-planner/internal/domain/model"
)

func eventForm(name, date, location string) url.Values {
	return url.Values{"name": {name}, "date": {date}, "location": {location}}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestHome_ListsEvents(t *testing.T) {
	app := newTestApp(t, testAppOptions{})
	app.seed(t, "Picnic", "Concert")

	rec := app.do(http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Title  string         `json:"title"`
		Events []*model.Event `json:"events"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Event Planner", body.Title)
	require.Len(t, body.Events, 2)
	assert.Equal(t, "Picnic", body.Events[0].Name)
	assert.Equal(t, 2, body.Events[1].ID)
}

func TestHome_EmptyStoreRendersEmptyList(t *testing.T) {
	app := newTestApp(t, testAppOptions{})
	rec := app.do(http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"events":[]`)
}

func TestCreateEvent(t *testing.T) {
	app := newTestApp(t, testAppOptions{})
	app.seed(t, "Picnic")
	id := app.login(t, "editor")

	t.Run("anonymous is sent home", func(t *testing.T) {
		for _, method := range []string{http.MethodGet, http.MethodPost} {
			rec := app.do(method, "/create-event", "", eventForm("A", "B", "C"))
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/", rec.Header().Get("Location"))
		}
		events, err := app.store.List(context.Background())
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})

	t.Run("form view", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/create-event", id, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Create New Event")
	})

	t.Run("missing field", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/create-event", id, eventForm("Gala", "", "Hall"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "All fields are required", decodeError(t, rec))
	})

	t.Run("stores with next id", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/create-event", id, eventForm("Gala", "2025-12-31", "Hall"))
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))

		ev, err := app.store.GetByID(context.Background(), 2)
		require.NoError(t, err)
		assert.Equal(t, "Gala", ev.Name)
	})
}

func TestCreateEvent_JSONBody(t *testing.T) {
	app := newTestApp(t, testAppOptions{})
	id := app.login(t, "admin")

	req := httptest.NewRequest(http.MethodPost, "/create-event",
		strings.NewReader(`{"name":"Run","date":"2025-04-01","location":"Track"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: id})
	rec := httptest.NewRecorder()
	app.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	ev, err := app.store.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Track", ev.Location)
}

func TestShowEvent(t *testing.T) {
	app := newTestApp(t, testAppOptions{})
	app.seed(t, "Picnic")

	tests := []struct {
		name       string
		target     string
		roles      []string
		anonymous  bool
		wantStatus int
		wantError  string
		wantPerms  [2]bool
	}{
		{name: "unknown id", target: "/events/99", anonymous: true, wantStatus: http.StatusNotFound, wantError: "Event not found"},
		{name: "non numeric id", target: "/events/abc", anonymous: true, wantStatus: http.StatusNotFound, wantError: "Event not found"},
		{name: "anonymous", target: "/events/1", anonymous: true, wantStatus: http.StatusForbidden, wantError: "You need to log in to view event details."},
		{name: "no roles", target: "/events/1", wantStatus: http.StatusForbidden, wantError: "You need to log in to view event details."},
		{name: "admin", target: "/events/1", roles: []string{"admin"}, wantStatus: http.StatusOK, wantPerms: [2]bool{true, true}},
		{name: "editor", target: "/events/1", roles: []string{"editor"}, wantStatus: http.StatusOK, wantPerms: [2]bool{true, false}},
		{name: "viewer", target: "/events/1", roles: []string{"Viewer"}, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sid := ""
			if !tt.anonymous {
				sid = app.login(t, tt.roles...)
			}
			rec := app.do(http.MethodGet, tt.target, sid, nil)
			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, decodeError(t, rec))
				return
			}

			var body struct {
				Title     string       `json:"title"`
				Event     *model.Event `json:"event"`
				CanEdit   bool         `json:"canEdit"`
				CanDelete bool         `json:"canDelete"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "Event: Picnic", body.Title)
			assert.Equal(t, tt.wantPerms, [2]bool{body.CanEdit, body.CanDelete})
		})
	}
}

func TestEditEvent(t *testing.T) {
	app := newTestApp(t, testAppOptions{})
	app.seed(t, "Picnic")
	id := app.login(t, "editor")

	t.Run("anonymous is sent home", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/events/1/edit", "", eventForm("X", "Y", "Z"))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	})

	t.Run("form view", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/events/1/edit", id, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Edit Event: Picnic")
	})

	t.Run("unknown id", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/events/42/edit", id, eventForm("X", "Y", "Z"))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("blank field", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/events/1/edit", id, eventForm("X", " ", "Z"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("updates and redirects to detail", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/events/1/edit", id, eventForm("Picnic 2", "2025-07-04", "Beach"))
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/events/1", rec.Header().Get("Location"))

		ev, err := app.store.GetByID(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, model.Event{ID: 1, Name: "Picnic 2", Date: "2025-07-04", Location: "Beach"}, *ev)
	})
}

func TestDeleteEvent(t *testing.T) {
	app := newTestApp(t, testAppOptions{})
	app.seed(t, "Picnic", "Concert")
	id := app.login(t, "admin")

	rec := app.do(http.MethodPost, "/events/99/delete", id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(http.MethodPost, "/events/1/delete", id, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	events, err := app.store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Concert", events[0].Name)
}

func TestRolePermissionsEnforced(t *testing.T) {
	app := newTestApp(t, testAppOptions{enforce: true})
	app.seed(t, "Picnic")

	viewer := app.login(t, "Viewer")
	editor := app.login(t, "editor")
	admin := app.login(t, "admin")

	rec := app.do(http.MethodPost, "/events/1/edit", viewer, eventForm("X", "Y", "Z"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "You do not have permission to perform this action.", decodeError(t, rec))

	rec = app.do(http.MethodPost, "/events/1/delete", editor, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(http.MethodPost, "/events/1/edit", editor, eventForm("X", "Y", "Z"))
	assert.Equal(t, http.StatusFound, rec.Code)

	rec = app.do(http.MethodPost, "/events/1/delete", admin, nil)
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestRolePermissionsNotEnforcedByDefault(t *testing.T) {
	app := newTestApp(t, testAppOptions{})
	app.seed(t, "Picnic")
	viewer := app.login(t, "Viewer")

	rec := app.do(http.MethodPost, "/events/1/delete", viewer, nil)
	assert.Equal(t, http.StatusFound, rec.Code)
}
