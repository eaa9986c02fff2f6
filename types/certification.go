package types

import "time"

// CertificationStatus is the review state of an uploaded certificate.
type CertificationStatus string

// Supported certification statuses.
//
// StatusRejected exists for wire compatibility: a rejection deletes the
// record, so the value is only ever observable in transit.
const (
	StatusPending  CertificationStatus = "pending"
	StatusApproved CertificationStatus = "approved"
	StatusRejected CertificationStatus = "rejected"
)

// CertificateType classifies the uploaded document.
type CertificateType string

// Supported certificate types.
const (
	CertificateDegree       CertificateType = "degree"
	CertificateTraining     CertificateType = "training"
	CertificateProfessional CertificateType = "professional"
)

// ValidCertificateType reports whether t is one of the supported types.
func ValidCertificateType(t CertificateType) bool {
	switch t {
	case CertificateDegree, CertificateTraining, CertificateProfessional:
		return true
	}
	return false
}

// Certification represents one uploaded certificate document and its
// review state.
type Certification struct {
	// ID is the unique identifier of the certification record.
	ID string `json:"certificationId" db:"id"`

	// UserID is the identity-provider subject of the uploader.
	UserID string `json:"userId" db:"user_id"`

	// UserEmail is the uploader's email from token claims.
	UserEmail string `json:"userEmail" db:"user_email"`

	// UserName is the uploader's display name from token claims.
	UserName string `json:"userName" db:"user_name"`

	// SkillCategory is the marketplace category the certificate covers.
	// On approval it is added to the owner's certified-skill set.
	SkillCategory string `json:"skillCategory" db:"skill_category"`

	// CertificateType is one of degree, training or professional.
	CertificateType CertificateType `json:"certificateType" db:"certificate_type"`

	// CertificateTitle names the credential, e.g. "Red Seal Electrician".
	CertificateTitle string `json:"certificateTitle" db:"certificate_title"`

	// IssuingOrganization names the body that issued the credential.
	IssuingOrganization string `json:"issuingOrganization" db:"issuing_organization"`

	// IssueDate is the issue date in YYYY-MM-DD form.
	IssueDate string `json:"issueDate" db:"issue_date"`

	// DocumentKey is the object-store key of the uploaded PDF, of the
	// form certs/{userId}/{millis}-{uuid}.pdf.
	DocumentKey string `json:"documentKey" db:"document_key"`

	// DocumentURL is a freshly presigned download URL for DocumentKey.
	// Computed at read time with a bounded expiry, never persisted.
	DocumentURL string `json:"documentUrl,omitempty" db:"-"`

	// FileSize is the declared size of the document in bytes.
	FileSize int64 `json:"fileSize" db:"file_size"`

	// Status is the review state. Starts at pending; approved is
	// terminal, rejection deletes the record.
	Status CertificationStatus `json:"status" db:"status"`

	// ReviewedBy is the email of the admin who decided the review.
	ReviewedBy string `json:"reviewedBy,omitempty" db:"reviewed_by"`

	// ReviewedAt is the timestamp of the review decision.
	ReviewedAt *time.Time `json:"reviewedAt,omitempty" db:"reviewed_at"`

	// RejectionReason is present only while a rejection is in flight.
	RejectionReason string `json:"rejectionReason,omitempty" db:"rejection_reason"`

	// UploadedAt is the timestamp when the upload was requested.
	UploadedAt time.Time `json:"uploadedAt" db:"uploaded_at"`

	// CreatedAt is the timestamp when the record was created.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
