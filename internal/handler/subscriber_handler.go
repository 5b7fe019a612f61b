package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/apexmark/campaign-console/internal/errors"
	"github.com/apexmark/campaign-console/internal/model"
	"github.com/apexmark/campaign-console/internal/repository"
)

type SubscriberHandler struct {
	Repo repository.SubscriberRepositoryInterface
}

type subscriberPayload struct {
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Status        string `json:"status"`
	WhatsAppOptIn bool   `json:"whatsapp_opt_in"`
}

func (h *SubscriberHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload subscriberPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apperrors.NewValidation("invalid request body: %v", err))
		return
	}
	if payload.Email == "" {
		writeError(w, apperrors.NewValidation("email is required"))
		return
	}

	status := model.SubscriberActive
	if payload.Status != "" {
		var err error
		status, err = model.ParseSubscriberStatus(payload.Status)
		if err != nil {
			writeError(w, apperrors.NewValidation("invalid status: %v", err))
			return
		}
	}

	sub := &model.Subscriber{
		Email:         payload.Email,
		Phone:         payload.Phone,
		FirstName:     payload.FirstName,
		LastName:      payload.LastName,
		Status:        status,
		WhatsAppOptIn: payload.WhatsAppOptIn,
	}

	if err := h.Repo.Create(r.Context(), sub); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *SubscriberHandler) List(w http.ResponseWriter, r *http.Request) {
	subscribers, err := h.Repo.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subscribers)
}

func (h *SubscriberHandler) Get(w http.ResponseWriter, r *http.Request) {
	sub, err := h.Repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// Update is how unsubscribe and bounce status changes arrive.
func (h *SubscriberHandler) Update(w http.ResponseWriter, r *http.Request) {
	sub, err := h.Repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	payload := subscriberPayload{
		Email:         sub.Email,
		Phone:         sub.Phone,
		FirstName:     sub.FirstName,
		LastName:      sub.LastName,
		Status:        string(sub.Status),
		WhatsAppOptIn: sub.WhatsAppOptIn,
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apperrors.NewValidation("invalid request body: %v", err))
		return
	}

	status, err := model.ParseSubscriberStatus(payload.Status)
	if err != nil {
		writeError(w, apperrors.NewValidation("invalid status: %v", err))
		return
	}

	sub.Email = payload.Email
	sub.Phone = payload.Phone
	sub.FirstName = payload.FirstName
	sub.LastName = payload.LastName
	sub.Status = status
	sub.WhatsAppOptIn = payload.WhatsAppOptIn

	if err := h.Repo.Update(r.Context(), sub); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *SubscriberHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
