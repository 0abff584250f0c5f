package email

import (
	"context"
)

// Service sends transactional mail. Delivery failures are surfaced to
// the caller; nothing here retries.
type Service interface {
	SendVerification(ctx context.Context, to string, token string) error
	SendWelcome(ctx context.Context, to string, name string) error
}
