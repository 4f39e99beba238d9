package utils

import (
	"context"

	"github.com/hilthontt/chatroom/internal/domain"
)

type sessionKey struct{}

type sessionState struct {
	user *domain.User
	err  error
}

// WithSession records the outcome of resolving the request's session. err is
// set when the session could not be checked at all.
func WithSession(ctx context.Context, user *domain.User, err error) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionState{user: user, err: err})
}

// CurrentUser returns the signed in user, or nil.
func CurrentUser(ctx context.Context) *domain.User {
	state, _ := ctx.Value(sessionKey{}).(sessionState)
	return state.user
}

func SessionError(ctx context.Context) error {
	state, _ := ctx.Value(sessionKey{}).(sessionState)
	return state.err
}
