package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/apexmark/campaign-console/internal/errors"
	"github.com/apexmark/campaign-console/internal/model"
	"github.com/apexmark/campaign-console/internal/repository"
)

type TemplateHandler struct {
	Repo repository.TemplateRepositoryInterface
}

func (h *TemplateHandler) CreateEmail(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name      string `json:"name"`
		Subject   string `json:"subject"`
		Content   string `json:"content"`
		CreatedBy string `json:"created_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apperrors.NewValidation("invalid request body: %v", err))
		return
	}
	if payload.Name == "" || payload.Content == "" {
		writeError(w, apperrors.NewValidation("name and content are required"))
		return
	}

	t := &model.EmailTemplate{
		Name:      payload.Name,
		Subject:   payload.Subject,
		Content:   payload.Content,
		CreatedBy: payload.CreatedBy,
	}
	if err := h.Repo.CreateEmail(r.Context(), t); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *TemplateHandler) ListEmail(w http.ResponseWriter, r *http.Request) {
	templates, err := h.Repo.ListEmail(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

func (h *TemplateHandler) GetEmail(w http.ResponseWriter, r *http.Request) {
	t, err := h.Repo.GetEmailByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TemplateHandler) DeleteEmail(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.DeleteEmail(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TemplateHandler) CreateWhatsApp(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name      string `json:"name"`
		Content   string `json:"content"`
		CreatedBy string `json:"created_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apperrors.NewValidation("invalid request body: %v", err))
		return
	}
	if payload.Name == "" || payload.Content == "" {
		writeError(w, apperrors.NewValidation("name and content are required"))
		return
	}

	t := &model.WhatsAppTemplate{
		Name:      payload.Name,
		Content:   payload.Content,
		CreatedBy: payload.CreatedBy,
	}
	if err := h.Repo.CreateWhatsApp(r.Context(), t); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *TemplateHandler) ListWhatsApp(w http.ResponseWriter, r *http.Request) {
	templates, err := h.Repo.ListWhatsApp(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

func (h *TemplateHandler) GetWhatsApp(w http.ResponseWriter, r *http.Request) {
	t, err := h.Repo.GetWhatsAppByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TemplateHandler) DeleteWhatsApp(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.DeleteWhatsApp(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
