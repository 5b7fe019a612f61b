package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/apexmark/campaign-console/internal/errors"
	"github.com/apexmark/campaign-console/internal/model"
	"github.com/apexmark/campaign-console/internal/repository"
)

type GroupHandler struct {
	Groups      repository.GroupRepositoryInterface
	Subscribers repository.SubscriberRepositoryInterface
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		CreatedBy   string `json:"created_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apperrors.NewValidation("invalid request body: %v", err))
		return
	}
	if payload.Name == "" {
		writeError(w, apperrors.NewValidation("name is required"))
		return
	}

	group := &model.Group{
		Name:        payload.Name,
		Description: payload.Description,
		CreatedBy:   payload.CreatedBy,
	}
	if err := h.Groups.Create(r.Context(), group); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Groups.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// Get returns the group plus its current members.
func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	group, err := h.Groups.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	members, err := h.Subscribers.ListByGroup(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"group":       group,
		"subscribers": members,
	})
}

func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Groups.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GroupHandler) AddSubscriber(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")
	subscriberID := chi.URLParam(r, "subscriberID")

	if _, err := h.Groups.GetByID(r.Context(), groupID); err != nil {
		writeError(w, err)
		return
	}
	if _, err := h.Subscribers.GetByID(r.Context(), subscriberID); err != nil {
		writeError(w, err)
		return
	}

	if err := h.Groups.AddSubscriber(r.Context(), groupID, subscriberID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *GroupHandler) RemoveSubscriber(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")
	subscriberID := chi.URLParam(r, "subscriberID")

	if err := h.Groups.RemoveSubscriber(r.Context(), groupID, subscriberID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
