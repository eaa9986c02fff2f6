package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oshawa-skills/apiserver/internal/services"
	"github.com/oshawa-skills/apiserver/types"
)

// ProfileHandler provides HTTP handlers for the caller's own profile.
type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// ProfileRouter registers profile routes on the given router. All of
// them require a bearer token.
func ProfileRouter(r chi.Router, profileService *services.ProfileService, auth *Authenticator) {
	handler := NewProfileHandler(profileService)

	r.Use(auth.RequireAuth)
	r.Get("/", handler.GetProfile)
	r.Put("/", handler.UpdateProfile)
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	profile, err := h.profileService.GetOrCreate(r.Context(), claims)
	if err != nil {
		writeServiceError(w, err, "failed to fetch profile")
		return
	}
	writeSuccess(w, http.StatusOK, profile)
}

func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var input types.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.profileService.Update(r.Context(), claims.Subject, input)
	if err != nil {
		writeServiceError(w, err, "failed to update profile")
		return
	}
	writeSuccess(w, http.StatusOK, profile)
}
