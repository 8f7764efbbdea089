package handlers

import (
	"net/http"

	"github.com/mclarke-dev/docuchat/internal/models"
	"github.com/mclarke-dev/docuchat/internal/services"
)

// ProfileHandler exposes the profile editor operations.
type ProfileHandler struct {
	profiles *services.ProfileService
}

func NewProfileHandler(profiles *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

type profileResponse struct {
	Profile           models.Profile `json:"profile"`
	CompletionPercent int            `json:"completion_percent"`
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	auth, _, ok := requestContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", false)
		return
	}

	profile, err := h.profiles.Load(r.Context(), auth.AccessToken)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error(), true)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{Profile: profile, CompletionPercent: profile.CompletionPercent()})
}

type profileUpdateRequest struct {
	DisplayName string `json:"display_name"`
	PhoneNumber string `json:"phone_number"`
}

func (h *ProfileHandler) Put(w http.ResponseWriter, r *http.Request) {
	auth, _, ok := requestContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", false)
		return
	}

	var req profileUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body", false)
		return
	}

	profile, err := h.profiles.Save(r.Context(), auth.AccessToken, req.DisplayName, req.PhoneNumber)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error(), false)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{Profile: profile, CompletionPercent: profile.CompletionPercent()})
}
