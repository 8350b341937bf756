package http

import (
	"context"
	"fmt"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/domain"
)

type userIDKey struct{}

func withUserID(ctx context.Context, userID int32) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the user authenticated by AuthMiddleware.
func UserIDFromContext(ctx context.Context) (int32, error) {
	userID, ok := ctx.Value(userIDKey{}).(int32)
	if !ok || userID <= 0 {
		return 0, fmt.Errorf("%w: user id is not provided", domain.ErrUnauthorized)
	}
	return userID, nil
}
