package userrepo

import (
	"context"

	"github.com/campus-carpool/rides-api/internal/domain"
)

// Repository is the read-only view of user profiles this service consumes.
// Profile lifecycle belongs to the accounts system.
type Repository interface {
	GetByID(ctx context.Context, id domain.UserID) (domain.User, error)

	// GetByToken resolves an opaque session token to the user it belongs
	// to. Token issuance and revocation are out of scope here.
	GetByToken(ctx context.Context, token string) (domain.User, error)
}
