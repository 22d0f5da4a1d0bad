package port

import "context"

// EmailSender abstracts outbound notification email delivery.
type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
