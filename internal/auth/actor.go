// Package auth переносит действующего пользователя через context и
// описывает bearer-токены портала.
package auth

import (
	"context"
	"errors"

	"github.com/Freeeeeet/consult_portal/internal/model"
)

var ErrNoActor = errors.New("no authenticated actor")

// Actor пользователь, от имени которого выполняется операция
type Actor struct {
	UserID int64
	Role   model.Role
}

type actorKey struct{}

// WithActor кладёт пользователя в контекст
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom достаёт пользователя из контекста
func ActorFrom(ctx context.Context) (Actor, error) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	if !ok || actor.UserID == 0 {
		return Actor{}, ErrNoActor
	}
	return actor, nil
}
