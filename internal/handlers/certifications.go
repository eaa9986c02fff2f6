package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oshawa-skills/apiserver/internal/services"
	"github.com/oshawa-skills/apiserver/types"
)

// CertificationHandler provides HTTP handlers for the caller's own
// certifications: requesting uploads, listing and withdrawing.
type CertificationHandler struct {
	certService *services.CertificationService
}

func NewCertificationHandler(certService *services.CertificationService) *CertificationHandler {
	return &CertificationHandler{certService: certService}
}

// CertificationRouter registers certification routes on the given
// router. All of them require a bearer token.
func CertificationRouter(r chi.Router, certService *services.CertificationService, auth *Authenticator) {
	handler := NewCertificationHandler(certService)

	r.Use(auth.RequireAuth)
	r.Get("/", handler.ListOwn)
	r.Post("/", handler.Upload)
	r.Delete("/{certificationID}", handler.DeleteOwn)
}

func (h *CertificationHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	certs, err := h.certService.ListOwn(r.Context(), claims.Subject)
	if err != nil {
		writeServiceError(w, err, "failed to list certifications")
		return
	}
	if certs == nil {
		certs = []types.Certification{}
	}
	writeSuccess(w, http.StatusOK, certs)
}

func (h *CertificationHandler) Upload(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var input services.UploadCertificationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.certService.Upload(r.Context(), claims, input)
	if err != nil {
		writeServiceError(w, err, "failed to create certification")
		return
	}
	writeSuccess(w, http.StatusCreated, result)
}

func (h *CertificationHandler) DeleteOwn(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	err := h.certService.DeleteOwn(r.Context(), claims.Subject, chi.URLParam(r, "certificationID"))
	if err != nil {
		writeServiceError(w, err, "failed to delete certification")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"message": "certification deleted"})
}
