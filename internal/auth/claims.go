package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims содержимое bearer-токена портала
type Claims struct {
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

// Actor пользователь из токена
func (c *Claims) Actor() (Actor, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return Actor{}, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, c.Subject)
	}
	if !c.Role.Valid() {
		return Actor{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, c.Role)
	}
	return Actor{UserID: id, Role: c.Role}, nil
}

// Sign выпускает HS256 токен. Используется тестами и локальной разработкой.
func Sign(secret []byte, actor Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role: actor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(actor.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify проверяет подпись и срок действия
func Verify(secret []byte, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Inspect читает claims без проверки подписи. Клиент не знает секрет сервера
// и использует это только чтобы узнать роль и срок действия своей сессии.
func Inspect(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}
