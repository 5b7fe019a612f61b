package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/apexmark/campaign-console/internal/errors"
	"github.com/apexmark/campaign-console/internal/service"
)

type CampaignHandler struct {
	Service *service.CampaignService
}

// Create handles POST /campaigns. Immediate campaigns are dispatched before
// the response, so the returned status is terminal for them.
func (h *CampaignHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateCampaignInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, apperrors.NewValidation("invalid request body: %v", err))
		return
	}

	campaign, err := h.Service.Create(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, campaign)
}

// Send handles POST /campaigns/{id}/send.
func (h *CampaignHandler) Send(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	campaign, err := h.Service.Dispatch(r.Context(), id)
	if err != nil {
		if campaign != nil {
			// Dispatch already recorded the FAILED status; surface the detail.
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error":  err.Error(),
				"status": string(campaign.Status),
			})
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "campaign sent successfully",
		"status":  string(campaign.Status),
	})
}

func (h *CampaignHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	channel := r.URL.Query().Get("channel")
	status := r.URL.Query().Get("status")

	campaigns, pagination, err := h.Service.List(r.Context(), page, pageSize, channel, status)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":       campaigns,
		"pagination": pagination,
	})
}

func (h *CampaignHandler) Get(w http.ResponseWriter, r *http.Request) {
	campaign, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

func (h *CampaignHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
