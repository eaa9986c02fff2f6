package notify

import "context"

// Kind identifies the outcome a notification reports.
type Kind string

const (
	KindApproval  Kind = "approval"
	KindRejection Kind = "rejection"
)

// Job carries everything needed to render and send one review-outcome
// email. It is the payload published to the notification queue and the
// input to the SMTP mailer.
type Job struct {
	Kind             Kind   `json:"kind"`
	ToEmail          string `json:"toEmail"`
	UserName         string `json:"userName"`
	CertificateTitle string `json:"certificateTitle"`
	Organization     string `json:"organization,omitempty"`
	RejectionReason  string `json:"rejectionReason,omitempty"`
}

// Notifier sends review-outcome notifications. Callers treat every send
// as best effort: failures are logged and never surfaced to the end user.
type Notifier interface {
	SendApproval(ctx context.Context, toEmail, userName, certificateTitle, organization string) error
	SendRejection(ctx context.Context, toEmail, userName, certificateTitle, reason string) error
}
