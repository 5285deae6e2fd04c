package port

import (
	"context"

	"github.com/rl1809/inventory-tracker/internal/core/domain"
)

// Authenticator checks credentials and opens a session. Implementations
// return domain.ErrInvalidCredentials on mismatch.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (domain.Session, error)
}

// Notifier is the toast surface. Notify must not block.
type Notifier interface {
	Notify(n domain.Notification)
}
