package handler

import (
	"errors"
	"net/http"

	"forget-me-not/internal/domain"
	"forget-me-not/internal/service"
	"forget-me-not/internal/view"

	"github.com/gorilla/mux"
)

const notesPath = "/notes"

type NoteHandler struct {
	*Responder
	service *service.NoteService
}

func NewNoteHandler(responder *Responder, service *service.NoteService) *NoteHandler {
	return &NoteHandler{
		Responder: responder,
		service:   service,
	}
}

func noteForm(r *http.Request) *domain.NoteForm {
	return &domain.NoteForm{
		Title:   r.PostFormValue("title"),
		Details: r.PostFormValue("details"),
	}
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	notes, err := h.service.List(r.Context())
	if err != nil {
		h.ServerError(w, r, err)
		return
	}

	h.Render(w, r, http.StatusOK, view.NotesIndex, &view.Page{
		Title: "Notes",
		Data:  map[string]interface{}{"notes": notes},
	})
}

func (h *NoteHandler) AddForm(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, http.StatusOK, view.NotesAdd, &view.Page{
		Title: "Add note",
		Data:  map[string]interface{}{"title": "", "details": ""},
	})
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	form := noteForm(r)

	_, err := h.service.Create(r.Context(), currentUserID(r), form)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			h.Render(w, r, http.StatusUnprocessableEntity, view.NotesAdd, &view.Page{
				Title:  "Add note",
				Errors: verr.Messages(),
				Data:   map[string]interface{}{"title": form.Title, "details": form.Details},
			})
			return
		}
		h.ServerError(w, r, err)
		return
	}

	h.Redirect(w, r, notesPath, domain.FlashSuccess, "Note saved")
}

func (h *NoteHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	note, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.noteError(w, r, err)
		return
	}

	h.Render(w, r, http.StatusOK, view.NotesEdit, &view.Page{
		Title: "Edit note",
		Data: map[string]interface{}{
			"id":      note.ID,
			"title":   note.Title,
			"details": note.Details,
		},
	})
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	form := noteForm(r)

	_, err := h.service.Update(r.Context(), id, form)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			h.Render(w, r, http.StatusUnprocessableEntity, view.NotesEdit, &view.Page{
				Title:  "Edit note",
				Errors: verr.Messages(),
				Data: map[string]interface{}{
					"id":      id,
					"title":   form.Title,
					"details": form.Details,
				},
			})
			return
		}
		h.noteError(w, r, err)
		return
	}

	h.Redirect(w, r, notesPath, domain.FlashSuccess, "Note updated")
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.noteError(w, r, err)
		return
	}

	h.Redirect(w, r, notesPath, domain.FlashSuccess, "Note deleted")
}

func (h *NoteHandler) noteError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrNoteNotFound) {
		h.NotFound(w, r)
		return
	}
	h.ServerError(w, r, err)
}
