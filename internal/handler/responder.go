package handler

import (
	"bytes"
	"log/slog"
	"net/http"

	"forget-me-not/internal/middleware"
	"forget-me-not/internal/service"
	"forget-me-not/internal/view"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Responder renders pages and redirects for the HTML handlers. Every
// response path commits the session before writing headers.
type Responder struct {
	views    view.Renderer
	sessions *service.SessionService
	logger   *slog.Logger
}

func NewResponder(views view.Renderer, sessions *service.SessionService, logger *slog.Logger) *Responder {
	return &Responder{
		views:    views,
		sessions: sessions,
		logger:   logger,
	}
}

// Render shows a page to the current user, consuming pending flash messages.
func (h *Responder) Render(w http.ResponseWriter, r *http.Request, status int, name string, page *view.Page) {
	if page == nil {
		page = &view.Page{}
	}
	if page.Data == nil {
		page.Data = map[string]interface{}{}
	}
	page.User = middleware.GetUser(r)

	if sess := middleware.GetSession(r); sess != nil {
		page.Flash = sess.PopFlashes()
		if err := h.sessions.Commit(r.Context(), w, sess); err != nil {
			h.ServerError(w, r, err)
			return
		}
	}

	var buf bytes.Buffer
	if err := h.views.Render(&buf, name, page); err != nil {
		h.ServerError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// Redirect queues a flash message for the next page and sends the browser
// to url.
func (h *Responder) Redirect(w http.ResponseWriter, r *http.Request, url, kind, message string) {
	if sess := middleware.GetSession(r); sess != nil {
		sess.AddFlash(kind, message)
		if err := h.sessions.Commit(r.Context(), w, sess); err != nil {
			h.ServerError(w, r, err)
			return
		}
	}

	http.Redirect(w, r, url, http.StatusFound)
}

func (h *Responder) NotFound(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, http.StatusNotFound, view.NotFound, &view.Page{Title: "Not found"})
}

func (h *Responder) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, http.StatusMethodNotAllowed, view.NotAllowed, &view.Page{Title: "Method not allowed"})
}

// ServerError logs err and shows the generic error page. The session is left
// untouched so a broken session store cannot loop back here.
func (h *Responder) ServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", chimw.GetReqID(r.Context()),
		"err", err,
	)

	var buf bytes.Buffer
	page := &view.Page{Title: "Error", User: middleware.GetUser(r), Data: map[string]interface{}{}}
	if err := h.views.Render(&buf, view.ServerError, page); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	buf.WriteTo(w)
}

func currentUserID(r *http.Request) string {
	if user := middleware.GetUser(r); user != nil {
		return user.ID
	}
	return ""
}

