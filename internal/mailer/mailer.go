// Package mailer delivers transactional email through SparkPost or AWS SES.
package mailer

import "context"

// Mailer sends a single email to a single recipient. Implementations are
// network clients; callers must treat Send as a best-effort external call
// and never invoke it while holding a database transaction open.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}
