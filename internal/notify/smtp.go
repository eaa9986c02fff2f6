package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"github.com/oshawa-skills/apiserver/config"
)

// SMTPMailer delivers review-outcome emails over authenticated SMTP.
type SMTPMailer struct {
	host      string
	port      int
	username  string
	password  string
	fromEmail string
}

// NewSMTPMailer constructs a mailer from config.
func NewSMTPMailer(cfg config.NotifyConfig) (*SMTPMailer, error) {
	if strings.TrimSpace(cfg.SMTP.Host) == "" {
		return nil, errors.New("smtp host is required")
	}
	if strings.TrimSpace(cfg.FromEmail) == "" {
		return nil, errors.New("notify from email is required")
	}

	return &SMTPMailer{
		host:      cfg.SMTP.Host,
		port:      cfg.SMTP.Port,
		username:  cfg.SMTP.Username,
		password:  cfg.SMTP.Password,
		fromEmail: cfg.FromEmail,
	}, nil
}

const approvalSubject = "Certificate Approved - Oshawa Skills Exchange"
const rejectionSubject = "Certificate Review - Oshawa Skills Exchange"

var approvalTemplate = template.Must(template.New("approval").Parse(`<html>
  <body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
      <h2 style="color: #2563eb;">Certificate Approved!</h2>
      <p>Hi {{.UserName}},</p>
      <p>Great news! Your certificate has been approved:</p>
      <div style="background-color: #f3f4f6; padding: 15px; border-left: 4px solid #2563eb; margin: 20px 0;">
        <strong>{{.CertificateTitle}}</strong><br/>
        <em>{{.Organization}}</em>
      </div>
      <p>You are now a <strong>certified provider</strong> on Oshawa Skills Exchange. Your profile will display a verified badge.</p>
      <p>Thank you for being part of our community!</p>
      <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;"/>
      <p style="color: #6b7280; font-size: 14px;">
        Oshawa Skills Exchange<br/>
        Building trust through verification
      </p>
    </div>
  </body>
</html>`))

var rejectionTemplate = template.Must(template.New("rejection").Parse(`<html>
  <body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
      <h2 style="color: #dc2626;">Certificate Not Approved</h2>
      <p>Hi {{.UserName}},</p>
      <p>Unfortunately, we were unable to approve your certificate submission:</p>
      <div style="background-color: #f3f4f6; padding: 15px; border-left: 4px solid #dc2626; margin: 20px 0;">
        <strong>{{.CertificateTitle}}</strong>
      </div>
      <p><strong>Reason:</strong></p>
      <div style="background-color: #fef2f2; padding: 15px; border-radius: 5px; margin: 15px 0;">
        {{.RejectionReason}}
      </div>
      <p>Please review the feedback above and feel free to upload a new certificate or contact us if you have questions.</p>
      <p>We appreciate your understanding and look forward to verifying your credentials.</p>
      <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;"/>
      <p style="color: #6b7280; font-size: 14px;">
        Oshawa Skills Exchange<br/>
        Building trust through verification
      </p>
    </div>
  </body>
</html>`))

// SendApproval emails the owner that their certificate was approved.
func (s *SMTPMailer) SendApproval(ctx context.Context, toEmail, userName, certificateTitle, organization string) error {
	return s.Send(ctx, Job{
		Kind:             KindApproval,
		ToEmail:          toEmail,
		UserName:         userName,
		CertificateTitle: certificateTitle,
		Organization:     organization,
	})
}

// SendRejection emails the owner that their certificate was rejected,
// including the reviewer's reason.
func (s *SMTPMailer) SendRejection(ctx context.Context, toEmail, userName, certificateTitle, reason string) error {
	return s.Send(ctx, Job{
		Kind:             KindRejection,
		ToEmail:          toEmail,
		UserName:         userName,
		CertificateTitle: certificateTitle,
		RejectionReason:  reason,
	})
}

// Send renders and delivers a single job. Used directly by the worker
// command when draining the notification queue.
func (s *SMTPMailer) Send(_ context.Context, job Job) error {
	if strings.TrimSpace(job.ToEmail) == "" {
		return errors.New("notification recipient is required")
	}

	var subject string
	var tmpl *template.Template
	switch job.Kind {
	case KindApproval:
		subject = approvalSubject
		tmpl = approvalTemplate
	case KindRejection:
		subject = rejectionSubject
		tmpl = rejectionTemplate
	default:
		return fmt.Errorf("unknown notification kind %q", job.Kind)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, job); err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		s.fromEmail,
		job.ToEmail,
		subject,
		body.String(),
	))

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}
	if err := smtp.SendMail(addr, auth, s.fromEmail, []string{job.ToEmail}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
