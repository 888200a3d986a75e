package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const sessionContextKey contextKey = "session"

// Имена JWT claims
const (
	jwtClaimUserID      = "user_id"
	jwtClaimUsername    = "username"
	jwtClaimIsSuperuser = "is_superuser"
)

var ErrNoSession = errors.New("session not found in context")

// Session - данные аутентифицированного пользователя, доступные обработчикам.
type Session struct {
	UserID      int
	Username    string
	IsSuperuser bool
}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

func SessionFromContext(ctx context.Context) (Session, error) {
	s, ok := ctx.Value(sessionContextKey).(Session)
	if !ok {
		return Session{}, ErrNoSession
	}
	return s, nil
}

func sessionFromClaims(claims jwt.MapClaims) (Session, error) {
	userIDClaim, ok := claims[jwtClaimUserID]
	if !ok {
		return Session{}, fmt.Errorf("missing '%s' claim in token", jwtClaimUserID)
	}

	var userID int
	switch v := userIDClaim.(type) {
	case float64:
		if v != float64(int(v)) {
			return Session{}, fmt.Errorf("'%s' claim is not an integer: %f", jwtClaimUserID, v)
		}
		userID = int(v)
	case string:
		id, err := strconv.Atoi(v)
		if err != nil {
			return Session{}, fmt.Errorf("invalid '%s' claim: %q", jwtClaimUserID, v)
		}
		userID = id
	default:
		return Session{}, fmt.Errorf("invalid type for '%s' claim: expected float64 or string, got %T", jwtClaimUserID, userIDClaim)
	}
	if userID <= 0 {
		return Session{}, fmt.Errorf("invalid user ID value in '%s' claim: %d", jwtClaimUserID, userID)
	}

	username, _ := claims[jwtClaimUsername].(string)
	isSuperuser, _ := claims[jwtClaimIsSuperuser].(bool)

	return Session{UserID: userID, Username: username, IsSuperuser: isSuperuser}, nil
}
