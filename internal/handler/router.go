package handler

import (
	"log/slog"
	"net/http"

	"forget-me-not/internal/middleware"
	"forget-me-not/internal/service"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
)

type Handlers struct {
	Responder *Responder
	Pages     *PageHandler
	Notes     *NoteHandler
	Users     *UserHandler
	WebSocket *WebSocketHandler
}

// NewRouter builds the routes and wraps them in the middleware chain. The
// chain sits outside the router so method override happens before routes are
// matched, and the access log sees failures from the session layers.
func NewRouter(h *Handlers, sessions *service.SessionService, users middleware.UserFinder, logger *slog.Logger) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(h.Responder.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(h.Responder.MethodNotAllowed)

	requireAuth := middleware.RequireAuth(sessions, loginPath, h.Responder.ServerError)
	protected := func(fn http.HandlerFunc) http.Handler {
		return requireAuth(fn)
	}

	r.HandleFunc("/", h.Pages.Index).Methods(http.MethodGet)
	r.HandleFunc("/about", h.Pages.About).Methods(http.MethodGet)
	r.HandleFunc("/health", h.Pages.Health).Methods(http.MethodGet)

	r.HandleFunc(loginPath, h.Users.LoginForm).Methods(http.MethodGet)
	r.HandleFunc(loginPath, h.Users.Login).Methods(http.MethodPost)
	r.HandleFunc("/users/logout", h.Users.Logout).Methods(http.MethodGet)
	r.HandleFunc(registerPath, h.Users.RegisterForm).Methods(http.MethodGet)
	r.HandleFunc(registerPath, h.Users.Register).Methods(http.MethodPost)

	r.Handle(notesPath, protected(h.Notes.List)).Methods(http.MethodGet)
	r.Handle(notesPath, protected(h.Notes.Create)).Methods(http.MethodPost)
	r.Handle("/notes/add", protected(h.Notes.AddForm)).Methods(http.MethodGet)
	r.Handle("/notes/edit/{id}", protected(h.Notes.EditForm)).Methods(http.MethodGet)
	r.Handle("/notes/{id}", protected(h.Notes.Update)).Methods(http.MethodPut, http.MethodPatch)
	r.Handle("/notes/{id}", protected(h.Notes.Delete)).Methods(http.MethodDelete)

	r.HandleFunc("/ws", h.WebSocket.HandleConnection).Methods(http.MethodGet)

	var handler http.Handler = r
	handler = middleware.IdentityMiddleware(users, h.Responder.ServerError)(handler)
	handler = middleware.SessionMiddleware(sessions, h.Responder.ServerError)(handler)
	handler = chimw.Recoverer(handler)
	handler = middleware.LoggerMiddleware(logger)(handler)
	handler = middleware.MethodOverride(handler)
	handler = chimw.RealIP(handler)
	handler = chimw.RequestID(handler)

	return handler
}
