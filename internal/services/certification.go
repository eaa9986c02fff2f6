package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/oshawa-skills/apiserver/internal/notify"
	"github.com/oshawa-skills/apiserver/internal/store"
	"github.com/oshawa-skills/apiserver/types"
	"go.uber.org/zap"
)

// maxCertificateBytes caps uploaded documents at 5 MiB.
const maxCertificateBytes = 5 * 1024 * 1024

// CertificationRepository defines persistence operations for
// certifications and their review-state transitions.
type CertificationRepository interface {
	Create(ctx context.Context, cert types.Certification) (types.Certification, error)
	Get(ctx context.Context, id string) (types.Certification, error)
	ListByUser(ctx context.Context, userID string) ([]types.Certification, error)
	ListByStatus(ctx context.Context, status types.CertificationStatus) ([]types.Certification, error)
	Approve(ctx context.Context, id, reviewerEmail string) (types.Certification, error)
	DeletePending(ctx context.Context, id string) error
	DeleteAndRecompute(ctx context.Context, id, userID string) error
}

// ObjectStore is the slice of object storage the certification workflow
// needs: presigned transfer URLs and deletion.
type ObjectStore interface {
	PresignUpload(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)
	PresignDownload(ctx context.Context, key string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// UploadCertificationInput is the payload for requesting a certificate
// upload. The document itself never transits this server; the response
// carries a presigned URL the client PUTs the PDF to.
type UploadCertificationInput struct {
	SkillCategory       string `json:"skillCategory" validate:"required"`
	CertificateType     string `json:"certificateType" validate:"required"`
	CertificateTitle    string `json:"certificateTitle" validate:"required"`
	IssuingOrganization string `json:"issuingOrganization" validate:"required"`
	IssueDate           string `json:"issueDate" validate:"required"`
	FileName            string `json:"fileName" validate:"required"`
	FileSize            int64  `json:"fileSize"`
}

// UploadResult pairs the created record with the presigned upload URL.
type UploadResult struct {
	Certification types.Certification `json:"certification"`
	UploadURL     string              `json:"uploadUrl"`
}

// CertificationService implements the certificate upload and review
// workflow. Review-outcome emails are best effort: a failed send is
// logged and the decision still stands.
type CertificationService struct {
	repo      CertificationRepository
	objects   ObjectStore
	notifier  notify.Notifier
	logger    *zap.Logger
	urlExpiry time.Duration
	validate  *validator.Validate
}

func NewCertificationService(
	repo CertificationRepository,
	objects ObjectStore,
	notifier notify.Notifier,
	logger *zap.Logger,
	urlExpiry time.Duration,
) *CertificationService {
	return &CertificationService{
		repo:      repo,
		objects:   objects,
		notifier:  notifier,
		logger:    logger,
		urlExpiry: urlExpiry,
		validate:  validator.New(),
	}
}

// Upload validates the metadata, reserves an object key and returns a
// pending record together with a presigned PUT URL.
func (s *CertificationService) Upload(ctx context.Context, claims types.Claims, input UploadCertificationInput) (UploadResult, error) {
	if err := s.validate.Struct(input); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) && len(fields) > 0 {
			return UploadResult{}, validationErrorf("missing required field: " + lowerFirst(fields[0].Field()))
		}
		return UploadResult{}, validationErrorf("invalid request")
	}
	if !types.ValidCertificateType(types.CertificateType(input.CertificateType)) {
		return UploadResult{}, validationErrorf("certificateType must be one of degree, training, professional")
	}
	if !strings.HasSuffix(strings.ToLower(input.FileName), ".pdf") {
		return UploadResult{}, validationErrorf("only PDF files are accepted")
	}
	if input.FileSize <= 0 || input.FileSize > maxCertificateBytes {
		return UploadResult{}, validationErrorf("file size must be between 1 byte and 5 MB")
	}
	if !dateRe.MatchString(input.IssueDate) {
		return UploadResult{}, validationErrorf("issueDate must be in YYYY-MM-DD format")
	}

	key := fmt.Sprintf("certs/%s/%d-%s.pdf", claims.Subject, time.Now().UnixMilli(), uuid.NewString())

	uploadURL, err := s.objects.PresignUpload(ctx, key, "application/pdf", s.urlExpiry)
	if err != nil {
		return UploadResult{}, err
	}

	cert, err := s.repo.Create(ctx, types.Certification{
		ID:                  uuid.NewString(),
		UserID:              claims.Subject,
		UserEmail:           claims.Email,
		UserName:            claims.Name,
		SkillCategory:       strings.TrimSpace(input.SkillCategory),
		CertificateType:     types.CertificateType(input.CertificateType),
		CertificateTitle:    strings.TrimSpace(input.CertificateTitle),
		IssuingOrganization: strings.TrimSpace(input.IssuingOrganization),
		IssueDate:           input.IssueDate,
		DocumentKey:         key,
		FileSize:            input.FileSize,
		Status:              types.StatusPending,
	})
	if err != nil {
		return UploadResult{}, err
	}

	return UploadResult{Certification: cert, UploadURL: uploadURL}, nil
}

// ListOwn returns the caller's certifications, newest first, each with a
// freshly presigned download URL.
func (s *CertificationService) ListOwn(ctx context.Context, userID string) ([]types.Certification, error) {
	certs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.attachDownloadURLs(ctx, certs); err != nil {
		return nil, err
	}
	return certs, nil
}

// ListByStatus returns every certification in the given review state
// with fresh download URLs. Admin only; the handler enforces that.
func (s *CertificationService) ListByStatus(ctx context.Context, status types.CertificationStatus) ([]types.Certification, error) {
	certs, err := s.repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	if err := s.attachDownloadURLs(ctx, certs); err != nil {
		return nil, err
	}
	return certs, nil
}

func (s *CertificationService) attachDownloadURLs(ctx context.Context, certs []types.Certification) error {
	for i := range certs {
		if certs[i].DocumentKey == "" {
			continue
		}
		url, err := s.objects.PresignDownload(ctx, certs[i].DocumentKey, s.urlExpiry)
		if err != nil {
			return err
		}
		certs[i].DocumentURL = url
	}
	return nil
}

// Approve transitions a pending certification to approved, marks the
// owner certified for the covered category and emails them the outcome.
func (s *CertificationService) Approve(ctx context.Context, id, reviewerEmail string) (types.Certification, error) {
	cert, err := s.repo.Approve(ctx, id, reviewerEmail)
	if err != nil {
		return types.Certification{}, err
	}

	if err := s.notifier.SendApproval(ctx, cert.UserEmail, cert.UserName, cert.CertificateTitle, cert.IssuingOrganization); err != nil {
		s.logger.Error("approval email failed",
			zap.String("certificationId", cert.ID),
			zap.Error(err))
	}
	return cert, nil
}

// Reject emails the uploader the reason, removes the stored document and
// deletes the record. The email goes out first so a rejected user still
// learns why even if the cleanup below fails.
func (s *CertificationService) Reject(ctx context.Context, id, reason string) error {
	reason = strings.TrimSpace(reason)
	if len(reason) < 10 {
		return validationErrorf("rejection reason must be at least 10 characters long")
	}

	cert, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if cert.Status != types.StatusPending {
		return store.ErrNotPending
	}

	if err := s.notifier.SendRejection(ctx, cert.UserEmail, cert.UserName, cert.CertificateTitle, reason); err != nil {
		s.logger.Error("rejection email failed",
			zap.String("certificationId", cert.ID),
			zap.Error(err))
	}

	// The status read above is not held under a lock: an approval racing
	// this call can keep the record while its document is already gone.
	// Only the final DeletePending is guarded.
	if cert.DocumentKey != "" {
		if err := s.objects.Delete(ctx, cert.DocumentKey); err != nil {
			return err
		}
	}

	return s.repo.DeletePending(ctx, id)
}

// DeleteOwn lets the uploader withdraw a certification that has not been
// decided yet. Approved records can only be removed by an admin.
func (s *CertificationService) DeleteOwn(ctx context.Context, userID, id string) error {
	cert, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if cert.UserID != userID {
		return ErrNotOwner
	}
	if cert.Status != types.StatusPending {
		return store.ErrNotPending
	}

	if cert.DocumentKey != "" {
		if err := s.objects.Delete(ctx, cert.DocumentKey); err != nil {
			return err
		}
	}

	return s.repo.DeletePending(ctx, id)
}

// AdminDelete removes any certification regardless of status and
// recomputes the owner's certified-skill set from the approvals that
// remain.
func (s *CertificationService) AdminDelete(ctx context.Context, id string) error {
	cert, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if cert.DocumentKey != "" {
		if err := s.objects.Delete(ctx, cert.DocumentKey); err != nil {
			return err
		}
	}

	return s.repo.DeleteAndRecompute(ctx, id, cert.UserID)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
