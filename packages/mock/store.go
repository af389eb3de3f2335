package mock

import (
	"context"
	"errors"
	"strings"

	"github.com/abdul-hamid-achik/contractcheck/packages/fixtures"
	"github.com/google/uuid"
)

// ErrEmailTaken is returned by Create when another user has the email.
var ErrEmailTaken = errors.New("email already in use")

// Usuario is a stored user.
type Usuario struct {
	fixtures.User
	ID string `json:"_id"`
}

// Store persists users for the mock server. Implementations must be safe
// for concurrent use.
type Store interface {
	Create(ctx context.Context, u fixtures.User) (Usuario, error)
	Get(ctx context.Context, id string) (Usuario, bool, error)
	List(ctx context.Context) ([]Usuario, error)
	Delete(ctx context.Context, id string) (bool, error)
	Close() error
}

// newID returns a 16 character alphanumeric id.
func newID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
}
