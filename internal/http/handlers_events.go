package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	domainauth "github.com/target/event-planner/internal/domain/auth"
	"github.com/target/event-planner/internal/domain/model"
	apperrors "github.com/target/event-planner/internal/errors"
	"github.com/target/event-planner/internal/service"
)

const (
	msgEventNotFound   = "Event not found"
	msgLoginForDetails = "You need to log in to view event details."
)

// EventServiceInterface defines the event operations the HTTP layer needs.
type EventServiceInterface interface {
	List(ctx context.Context) ([]*model.Event, error)
	Get(ctx context.Context, id int) (*model.Event, error)
	Create(ctx context.Context, req model.CreateEventRequest) (*model.Event, error)
	Update(ctx context.Context, id int, req model.UpdateEventRequest) (*model.Event, error)
	Delete(ctx context.Context, id int) error
}

// EventHandlers serves the event pages and form posts.
type EventHandlers struct {
	Events EventServiceInterface
	Auth   AuthServiceInterface
	Logger *slog.Logger
}

func (h *EventHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type homeView struct {
	Title  string                `json:"title"`
	User   *domainauth.User      `json:"user"`
	Events []*model.Event        `json:"events"`
	Login  *service.LoginContext `json:"login"`
}

// Home lists events and issues a fresh login challenge for the session.
// GET /.
func (h *EventHandlers) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := GetSessionFromContext(ctx)

	login, err := h.Auth.PrepareLogin(ctx, sess)
	if err != nil {
		h.logger().ErrorContext(ctx, "prepare login failed", "error", err)
		WriteErrorMessage(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	events, err := h.Events.List(ctx)
	if err != nil {
		h.logger().ErrorContext(ctx, "list events failed", "error", err)
		writeAppError(w, err, "Failed to load events")
		return
	}
	if events == nil {
		events = []*model.Event{}
	}

	WriteJSON(w, http.StatusOK, homeView{
		Title:  "Event Planner",
		User:   CurrentUser(ctx),
		Events: events,
		Login:  login,
	})
}

type formView struct {
	Title string           `json:"title"`
	User  *domainauth.User `json:"user"`
	Event *model.Event     `json:"event,omitempty"`
}

// CreateForm returns the data for the new-event form.
// GET /create-event.
func (h *EventHandlers) CreateForm(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, formView{Title: "Create New Event", User: CurrentUser(r.Context())})
}

// Create stores a new event from the posted form and redirects home.
// POST /create-event.
func (h *EventHandlers) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := readEventForm(w, r)
	if !ok {
		return
	}
	if _, err := h.Events.Create(r.Context(), req); err != nil {
		h.writeEventError(r.Context(), w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

type detailView struct {
	Title string           `json:"title"`
	User  *domainauth.User `json:"user"`
	Event *model.Event     `json:"event"`
	domainauth.Permissions
}

// Show returns one event with the viewer's permissions.
// Unknown ids are 404 before the role check; viewers without roles get 403.
// GET /events/{id}.
func (h *EventHandlers) Show(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ev, ok := h.loadEvent(w, r)
	if !ok {
		return
	}

	user := CurrentUser(ctx)
	perms, hasRoles := h.Auth.Permissions(user)
	if !hasRoles {
		WriteErrorMessage(w, http.StatusForbidden, msgLoginForDetails)
		return
	}

	WriteJSON(w, http.StatusOK, detailView{
		Title:       "Event: " + ev.Name,
		User:        user,
		Event:       ev,
		Permissions: perms,
	})
}

// EditForm returns the data for the edit form.
// GET /events/{id}/edit.
func (h *EventHandlers) EditForm(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.loadEvent(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, formView{Title: "Edit Event: " + ev.Name, User: CurrentUser(r.Context()), Event: ev})
}

// Update replaces an event from the posted form and redirects to its page.
// POST /events/{id}/edit.
func (h *EventHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	req, ok := readEventForm(w, r)
	if !ok {
		return
	}
	if _, err := h.Events.Update(r.Context(), id, req); err != nil {
		h.writeEventError(r.Context(), w, err)
		return
	}
	http.Redirect(w, r, "/events/"+strconv.Itoa(id), http.StatusFound)
}

// Delete removes an event and redirects home.
// POST /events/{id}/delete.
func (h *EventHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	if err := h.Events.Delete(r.Context(), id); err != nil {
		h.writeEventError(r.Context(), w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *EventHandlers) loadEvent(w http.ResponseWriter, r *http.Request) (*model.Event, bool) {
	id, ok := eventID(w, r)
	if !ok {
		return nil, false
	}
	ev, err := h.Events.Get(r.Context(), id)
	if err != nil {
		h.writeEventError(r.Context(), w, err)
		return nil, false
	}
	return ev, true
}

func (h *EventHandlers) writeEventError(ctx context.Context, w http.ResponseWriter, err error) {
	if !apperrors.IsNotFound(err) && !apperrors.IsValidation(err) {
		h.logger().ErrorContext(ctx, "event operation failed", "error", err)
	}
	writeAppError(w, err, "Internal Server Error")
}

// eventID parses the {id} path value. Non-numeric ids are reported as not found.
func eventID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		WriteErrorMessage(w, http.StatusNotFound, msgEventNotFound)
		return 0, false
	}
	return id, true
}

func readEventForm(w http.ResponseWriter, r *http.Request) (model.CreateEventRequest, bool) {
	vals, err := formValues(r)
	if err != nil {
		WriteErrorMessage(w, http.StatusBadRequest, "Invalid form data")
		return model.CreateEventRequest{}, false
	}
	return model.CreateEventRequest{
		Name:     vals.Get("name"),
		Date:     vals.Get("date"),
		Location: vals.Get("location"),
	}, true
}
