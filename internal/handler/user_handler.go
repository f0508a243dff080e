package handler

import (
	"errors"
	"net/http"

	"forget-me-not/internal/domain"
	"forget-me-not/internal/middleware"
	"forget-me-not/internal/service"
	"forget-me-not/internal/view"
)

const (
	loginPath    = "/users/login"
	registerPath = "/users/register"
)

type UserHandler struct {
	*Responder
	auth     *service.AuthService
	sessions *service.SessionService
}

func NewUserHandler(responder *Responder, auth *service.AuthService, sessions *service.SessionService) *UserHandler {
	return &UserHandler{
		Responder: responder,
		auth:      auth,
		sessions:  sessions,
	}
}

func (h *UserHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, http.StatusOK, view.UsersLogin, &view.Page{
		Title: "Login",
		Data:  map[string]interface{}{"email": ""},
	})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	form := &domain.LoginForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}

	user, err := h.auth.Authenticate(r.Context(), form.Email, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.Redirect(w, r, loginPath, domain.FlashAuth, "Invalid email or password")
			return
		}
		h.ServerError(w, r, err)
		return
	}

	sess, err := h.sessions.Login(r.Context(), middleware.GetSession(r), user)
	if err != nil {
		h.ServerError(w, r, err)
		return
	}

	h.Redirect(w, middleware.WithSession(r, sess), notesPath, domain.FlashSuccess, "Welcome back, "+user.Name)
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Logout(r.Context(), middleware.GetSession(r))
	if err != nil {
		h.ServerError(w, r, err)
		return
	}

	h.Redirect(w, middleware.WithSession(r, sess), loginPath, domain.FlashSuccess, "You are logged out")
}

func (h *UserHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, http.StatusOK, view.UsersRegister, &view.Page{
		Title: "Register",
		Data:  map[string]interface{}{"name": "", "email": ""},
	})
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	form := &domain.RegisterForm{
		Name:      r.PostFormValue("name"),
		Email:     r.PostFormValue("email"),
		Password:  r.PostFormValue("password"),
		Password2: r.PostFormValue("password2"),
	}

	_, err := h.auth.Register(r.Context(), form)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			h.Render(w, r, http.StatusUnprocessableEntity, view.UsersRegister, &view.Page{
				Title:  "Register",
				Errors: verr.Messages(),
				Data:   map[string]interface{}{"name": form.Name, "email": form.Email},
			})
		case errors.Is(err, service.ErrEmailTaken):
			h.Redirect(w, r, registerPath, domain.FlashError, "Email already registered")
		default:
			h.ServerError(w, r, err)
		}
		return
	}

	h.Redirect(w, r, loginPath, domain.FlashSuccess, "You are now registered and can log in")
}
