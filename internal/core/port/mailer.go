package port

import "context"

// Mail is a single outbound message. HTML is preferred when present; Text is
// the plaintext fallback.
type Mail struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers transactional mail. Implementations must not retry; callers
// decide whether a delivery failure is fatal for the surrounding request.
type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}
