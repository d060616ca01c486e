package httpapi

import (
	"context"

	"github.com/campus-carpool/rides-api/internal/domain"
)

type userKey struct{}

func WithUserID(ctx context.Context, id domain.UserID) context.Context {
	return context.WithValue(ctx, userKey{}, id)
}

func UserIDFromContext(ctx context.Context) (domain.UserID, bool) {
	v, ok := ctx.Value(userKey{}).(domain.UserID)
	return v, ok && v != ""
}
