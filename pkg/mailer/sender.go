package mailer

import (
	"context"
	"time"
)

// Publisher is the queue side of email delivery; satisfied by
// helpers.RabbitPublisher.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueSender enqueues verification emails for the email worker instead of
// calling the delivery provider inline. The raw address travels only in
// the transient job payload.
type QueueSender struct {
	pub       Publisher
	verifyURL string
	tokenTTL  time.Duration
}

func NewQueueSender(pub Publisher, verifyURL string, tokenTTL time.Duration) *QueueSender {
	return &QueueSender{pub: pub, verifyURL: verifyURL, tokenTTL: tokenTTL}
}

// SendVerificationEmail publishes a verify_email job. A publish failure is
// the command's failure: the caller reports it rather than pretending the
// mail went out.
func (s *QueueSender) SendVerificationEmail(ctx context.Context, toAddress, token, displayContext string) error {
	job := EmailJob{
		To:       toAddress,
		Template: "verify_email",
		Data: map[string]any{
			"Link":           s.verifyURL + "?token=" + token,
			"ExpiresInHours": int(s.tokenTTL.Hours()),
			"Context":        displayContext,
		},
	}
	return s.pub.PublishJSON(ctx, job)
}
