package apiclient

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/consult_portal/internal/auth"
)

// Session bearer-токен, выданный сервером при входе.
// Роль и срок действия читаются из токена без проверки подписи: её проверяет сервер.
type Session struct {
	Token string
	actor auth.Actor
	exp   time.Time
}

func NewSession(token string) (*Session, error) {
	claims, err := auth.Inspect(token)
	if err != nil {
		return nil, err
	}

	actor, err := claims.Actor()
	if err != nil {
		return nil, fmt.Errorf("session token: %w", err)
	}

	s := &Session{Token: token, actor: actor}
	if claims.ExpiresAt != nil {
		s.exp = claims.ExpiresAt.Time
	}
	return s, nil
}

func (s *Session) Actor() auth.Actor {
	return s.actor
}

// Expired true если у токена есть срок и он прошёл
func (s *Session) Expired(now time.Time) bool {
	return !s.exp.IsZero() && now.After(s.exp)
}
