package handler

import (
	"net/http"

	"forget-me-not/internal/view"
	"forget-me-not/pkg/response"
)

const serviceName = "forget-me-not"

type PageHandler struct {
	*Responder
}

func NewPageHandler(responder *Responder) *PageHandler {
	return &PageHandler{Responder: responder}
}

func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, http.StatusOK, view.Index, &view.Page{Title: "Welcome"})
}

func (h *PageHandler) About(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, http.StatusOK, view.About, &view.Page{Title: "About"})
}

func (h *PageHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.Raw(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": serviceName,
	})
}
