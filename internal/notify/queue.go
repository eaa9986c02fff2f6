package notify

import (
	"context"
	"encoding/json"

	"github.com/oshawa-skills/apiserver/internal/mq"
)

// QueueNotifier hands jobs to a message broker instead of sending them
// inline. A separate worker process drains the channel and delivers the
// emails, so a slow or unavailable SMTP relay never blocks request
// handling.
type QueueNotifier struct {
	mq      *mq.MQ
	channel string
}

// NewQueueNotifier constructs a notifier that publishes to the named
// channel on the given broker.
func NewQueueNotifier(broker *mq.MQ, channel string) *QueueNotifier {
	return &QueueNotifier{mq: broker, channel: channel}
}

// SendApproval enqueues an approval notification.
func (q *QueueNotifier) SendApproval(ctx context.Context, toEmail, userName, certificateTitle, organization string) error {
	return q.publish(ctx, Job{
		Kind:             KindApproval,
		ToEmail:          toEmail,
		UserName:         userName,
		CertificateTitle: certificateTitle,
		Organization:     organization,
	})
}

// SendRejection enqueues a rejection notification.
func (q *QueueNotifier) SendRejection(ctx context.Context, toEmail, userName, certificateTitle, reason string) error {
	return q.publish(ctx, Job{
		Kind:             KindRejection,
		ToEmail:          toEmail,
		UserName:         userName,
		CertificateTitle: certificateTitle,
		RejectionReason:  reason,
	})
}

func (q *QueueNotifier) publish(ctx context.Context, job Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	_, err = q.mq.Publish(ctx, q.channel, data, map[string]string{"kind": string(job.Kind)})
	return err
}
