package store

import (
	"context"
)

// TokenRepository persists the session token pair under the keys "access"
// and "refresh". The two keys are always written and removed together.
type TokenRepository interface {
	// Load returns the stored pair or ErrTokenPairNotFound.
	Load(ctx context.Context) (access, refresh string, err error)
	// Save replaces both keys in one transaction.
	Save(ctx context.Context, access, refresh string) error
	// Delete removes both keys. Deleting an absent pair is not an error.
	Delete(ctx context.Context) error
}
