package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	handlers "beleske/handler"
	"beleske/internal/note/model"
	"beleske/internal/note/service"
	"beleske/middleware"
	"beleske/pkg/form"
	"beleske/pkg/logger"
	"beleske/store"
)

type NoteHandler struct {
	Service *service.NoteService
	View    *handlers.Renderer
}

func NewNoteHandler(service *service.NoteService, view *handlers.Renderer) *NoteHandler {
	return &NoteHandler{Service: service, View: view}
}

// List renders the notes visible to the caller.
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	notes, err := h.Service.List(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		h.fail(w, r, "loading", err)
		return
	}
	h.View.Render(w, r, http.StatusOK, "index.html", notes)
}

func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.View.Render(w, r, http.StatusOK, "create-note.html", model.NoteForm{})
		return
	}

	f, err := readNoteForm(r)
	if err != nil {
		h.badForm(w, r, "adding", err)
		return
	}
	if _, err := h.Service.Create(r.Context(), middleware.UserID(r.Context()), f.Title, f.Content); err != nil {
		if errors.Is(err, service.ErrUnauthenticated) {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		h.fail(w, r, "adding", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// Note shows a note on GET and overwrites it on POST.
func (h *NoteHandler) Note(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(r)
	if !ok {
		h.View.NotFound(w, r)
		return
	}
	userID := middleware.UserID(r.Context())

	if r.Method != http.MethodPost {
		note, err := h.Service.Get(r.Context(), userID, id)
		if err != nil {
			h.fail(w, r, "loading", err)
			return
		}
		h.View.Render(w, r, http.StatusOK, "note.html", note)
		return
	}

	f, err := readNoteForm(r)
	if err != nil {
		h.badForm(w, r, "updating", err)
		return
	}
	if _, err := h.Service.Update(r.Context(), userID, id, f.Title, f.Content); err != nil {
		h.fail(w, r, "updating", err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/note/%d", id), http.StatusFound)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(r)
	if !ok {
		h.View.NotFound(w, r)
		return
	}
	if err := h.Service.Delete(r.Context(), middleware.UserID(r.Context()), id); err != nil {
		h.fail(w, r, "deleting", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// Search matches the submitted text against note titles.
func (h *NoteHandler) Search(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		logger.Sugar.Infof("Rejecting malformed search form: %v", err)
		http.Error(w, "Malformed search form", http.StatusBadRequest)
		return
	}
	f := model.SearchForm{Searched: r.PostFormValue("searched")}
	page := model.SearchPage{Searched: f.Searched, Errors: form.Validate(&f)}
	if !page.Errors.Valid() {
		h.View.Render(w, r, http.StatusOK, "search.html", page)
		return
	}

	notes, err := h.Service.Search(r.Context(), middleware.UserID(r.Context()), f.Searched)
	if err != nil {
		h.fail(w, r, "searching", err)
		return
	}
	page.Notes = notes
	h.View.Render(w, r, http.StatusOK, "search.html", page)
}

// fail maps a service error onto the response.
func (h *NoteHandler) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.View.NotFound(w, r)
		return
	case errors.Is(err, service.ErrForbidden):
		http.Error(w, "You do not have access to this note", http.StatusForbidden)
		return
	}

	logger.Sugar.Errorw("Note request failed",
		"request_id", middleware.RequestID(r.Context()),
		"action", action,
		"error", err,
	)

	msg := fmt.Sprintf("There was an issue %s your note", action)
	switch {
	case errors.Is(err, store.ErrDuplicate), errors.Is(err, store.ErrConstraint):
		http.Error(w, msg+": the title or content was rejected", http.StatusBadRequest)
	case errors.Is(err, store.ErrUnavailable):
		http.Error(w, msg+": the database is unavailable, try again later", http.StatusServiceUnavailable)
	default:
		http.Error(w, msg, http.StatusInternalServerError)
	}
}

var errIncompleteForm = errors.New("note_title and note_content are required fields")

// readNoteForm requires both fields to be present; an empty value is allowed.
func readNoteForm(r *http.Request) (model.NoteForm, error) {
	if err := r.ParseForm(); err != nil {
		return model.NoteForm{}, err
	}
	if !r.PostForm.Has("note_title") || !r.PostForm.Has("note_content") {
		return model.NoteForm{}, errIncompleteForm
	}
	return model.NoteForm{
		Title:   r.PostForm.Get("note_title"),
		Content: r.PostForm.Get("note_content"),
	}, nil
}

// badForm answers 400 without touching storage.
func (h *NoteHandler) badForm(w http.ResponseWriter, r *http.Request, action string, err error) {
	logger.Sugar.Infow("Rejecting note form",
		"request_id", middleware.RequestID(r.Context()),
		"action", action,
		"error", err,
	)
	http.Error(w, fmt.Sprintf("There was an issue %s your note: the form was incomplete", action), http.StatusBadRequest)
}

func noteID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
