package jwt

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Payload — данные, которые переносит токен.
//
// Для magic-link заполняются все поля (PasswordHash — bcrypt-хеш, не сам пароль),
// для access и refresh достаточно Email.
type Payload struct {
	Name         string `json:"name,omitempty"`
	Email        string `json:"email"`
	PasswordHash string `json:"pwh,omitempty"`
}

// CustomClaims — payload вместе со стандартными claims JWT.
type CustomClaims struct {
	Kind Kind `json:"knd"`
	Payload
	jwt.RegisteredClaims
}

// Issue создает токен вида kind с заданным payload.
//
// Каждый токен получает уникальный jti, поэтому два входа одного пользователя
// в одну и ту же секунду дают разные refresh-токены.
func (j *MakerImpl) Issue(kind Kind, payload Payload) (string, error) {
	const op = "jwt.Issue"
	key, ok := j.keys[kind]
	if !ok {
		return "", fmt.Errorf("%s: %w: %s", op, ErrUnknownKind, kind)
	}

	now := j.clock.Now()
	claims := CustomClaims{
		Kind:    kind,
		Payload: payload,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   payload.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(key.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(key.Secret))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// Verify разбирает токен вида kind, проверяет подпись, exp и nbf относительно часов MakerImpl
// и возвращает payload.
func (j *MakerImpl) Verify(kind Kind, tokenStr string) (*Payload, error) {
	const op = "jwt.Verify"
	key, ok := j.keys[kind]
	if !ok {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrUnknownKind, kind)
	}

	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(key.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, classify(err))
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid || claims.Kind != kind {
		return nil, fmt.Errorf("%s: %w", op, ErrTokenInvalid)
	}
	payload := claims.Payload
	return &payload, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrTokenNotYetValid
	default:
		return ErrTokenInvalid
	}
}
