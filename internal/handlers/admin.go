package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oshawa-skills/apiserver/internal/services"
	"github.com/oshawa-skills/apiserver/types"
)

// AdminHandler provides HTTP handlers for the certification review queue
// and admin-only deletions.
type AdminHandler struct {
	certService  *services.CertificationService
	skillService *services.SkillService
}

func NewAdminHandler(certService *services.CertificationService, skillService *services.SkillService) *AdminHandler {
	return &AdminHandler{certService: certService, skillService: skillService}
}

// AdminRouter registers admin routes on the given router. Group
// membership is checked before any resource lookup, so non-admins get
// 403 even for identifiers that do not exist.
func AdminRouter(r chi.Router, certService *services.CertificationService, skillService *services.SkillService, auth *Authenticator) {
	handler := NewAdminHandler(certService, skillService)

	r.Use(auth.RequireAuth)
	r.Use(auth.RequireAdmin)

	r.Route("/certifications", func(r chi.Router) {
		r.Get("/", handler.ListPending)
		r.Get("/approved", handler.ListApproved)
		r.Route("/{certificationID}", func(r chi.Router) {
			r.Post("/approve", handler.Approve)
			r.Post("/reject", handler.Reject)
			r.Delete("/", handler.DeleteCertification)
		})
	})
	r.Delete("/skills/{skillID}", handler.DeleteSkill)
}

func (h *AdminHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	h.listByStatus(w, r, types.StatusPending)
}

func (h *AdminHandler) ListApproved(w http.ResponseWriter, r *http.Request) {
	h.listByStatus(w, r, types.StatusApproved)
}

func (h *AdminHandler) listByStatus(w http.ResponseWriter, r *http.Request, status types.CertificationStatus) {
	certs, err := h.certService.ListByStatus(r.Context(), status)
	if err != nil {
		writeServiceError(w, err, "failed to list certifications")
		return
	}
	if certs == nil {
		certs = []types.Certification{}
	}
	writeSuccess(w, http.StatusOK, certs)
}

func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	cert, err := h.certService.Approve(r.Context(), chi.URLParam(r, "certificationID"), claims.Email)
	if err != nil {
		writeServiceError(w, err, "failed to approve certification")
		return
	}
	writeSuccess(w, http.StatusOK, cert)
}

type rejectRequest struct {
	RejectionReason string `json:"rejectionReason"`
}

func (h *AdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.certService.Reject(r.Context(), chi.URLParam(r, "certificationID"), req.RejectionReason)
	if err != nil {
		writeServiceError(w, err, "failed to reject certification")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"message": "certification rejected"})
}

func (h *AdminHandler) DeleteCertification(w http.ResponseWriter, r *http.Request) {
	err := h.certService.AdminDelete(r.Context(), chi.URLParam(r, "certificationID"))
	if err != nil {
		writeServiceError(w, err, "failed to delete certification")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"message": "certification deleted"})
}

func (h *AdminHandler) DeleteSkill(w http.ResponseWriter, r *http.Request) {
	skill, err := h.skillService.AdminDelete(r.Context(), chi.URLParam(r, "skillID"))
	if err != nil {
		writeServiceError(w, err, "failed to delete skill")
		return
	}
	writeSuccess(w, http.StatusOK, skill)
}
