package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/oshawa-skills/apiserver/internal/services"
	"github.com/oshawa-skills/apiserver/types"
)

// SkillHandler provides HTTP handlers for skill listings.
type SkillHandler struct {
	skillService *services.SkillService
	auth         *Authenticator
}

func NewSkillHandler(skillService *services.SkillService, auth *Authenticator) *SkillHandler {
	return &SkillHandler{skillService: skillService, auth: auth}
}

// SkillRouter registers skill routes on the given router. Reads are
// public; every mutation requires a bearer token.
func SkillRouter(r chi.Router, skillService *services.SkillService, auth *Authenticator) {
	handler := NewSkillHandler(skillService, auth)

	r.Get("/", handler.ListSkills)
	r.Get("/search", handler.SearchSkills)
	r.With(auth.RequireAuth).Post("/", handler.CreateSkill)
	r.Route("/{skillID}", func(r chi.Router) {
		r.Get("/", handler.GetSkill)
		r.With(auth.RequireAuth).Put("/", handler.UpdateSkill)
		r.With(auth.RequireAuth).Delete("/", handler.DeleteSkill)
	})
}

func (h *SkillHandler) ListSkills(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	page, err := h.skillService.List(
		r.Context(),
		r.URL.Query().Get("category"),
		limit,
		r.URL.Query().Get("cursor"),
	)
	if err != nil {
		writeServiceError(w, err, "failed to list skills")
		return
	}
	writeSuccess(w, http.StatusOK, page)
}

func (h *SkillHandler) SearchSkills(w http.ResponseWriter, r *http.Request) {
	filter := types.SkillFilter{
		Query:    r.URL.Query().Get("q"),
		Category: r.URL.Query().Get("category"),
		Location: r.URL.Query().Get("location"),
	}

	skills, err := h.skillService.Search(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err, "failed to search skills")
		return
	}
	if skills == nil {
		skills = []types.Skill{}
	}
	writeSuccess(w, http.StatusOK, types.SkillPage{Skills: skills, Total: len(skills)})
}

func (h *SkillHandler) GetSkill(w http.ResponseWriter, r *http.Request) {
	skill, err := h.skillService.Get(r.Context(), chi.URLParam(r, "skillID"))
	if err != nil {
		writeServiceError(w, err, "failed to fetch skill")
		return
	}
	writeSuccess(w, http.StatusOK, skill)
}

func (h *SkillHandler) CreateSkill(w http.ResponseWriter, r *http.Request) {
	var input services.CreateSkillInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	skill, err := h.skillService.Create(r.Context(), input)
	if err != nil {
		writeServiceError(w, err, "failed to create skill")
		return
	}
	writeSuccess(w, http.StatusCreated, skill)
}

func (h *SkillHandler) UpdateSkill(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var input services.UpdateSkillInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	skill, err := h.skillService.Update(
		r.Context(),
		chi.URLParam(r, "skillID"),
		claims.Email,
		claims.InGroup(h.auth.adminGroup),
		input,
	)
	if err != nil {
		writeServiceError(w, err, "failed to update skill")
		return
	}
	writeSuccess(w, http.StatusOK, skill)
}

func (h *SkillHandler) DeleteSkill(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	err := h.skillService.Delete(
		r.Context(),
		chi.URLParam(r, "skillID"),
		claims.Email,
		claims.InGroup(h.auth.adminGroup),
	)
	if err != nil {
		writeServiceError(w, err, "failed to delete skill")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"message": "skill deleted"})
}
