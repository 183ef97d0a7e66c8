// Package jwt реализует выпуск и проверку подписанных токенов трех видов:
// magic-link для подтверждения регистрации, access и refresh для сессий.
//
// Каждый вид подписывается собственным секретом и имеет собственное время жизни.
// Ошибки проверки разделены на ErrTokenExpired, ErrTokenInvalid и ErrTokenNotYetValid,
// чтобы вызывающий код мог по-разному на них реагировать.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/physoxy/internal/lib/clock"
)

// Kind определяет вид токена.
type Kind string

const (
	// KindMagic — токен из письма с magic-link, несет регистрационные данные.
	KindMagic Kind = "magic"
	// KindAccess — короткоживущий токен для защищенных запросов.
	KindAccess Kind = "access"
	// KindRefresh — долгоживущий токен для выпуска новых access-токенов.
	KindRefresh Kind = "refresh"
)

// Время жизни токенов по умолчанию.
const (
	DefaultMagicTTL   = 15 * time.Minute
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 15 * 24 * time.Hour
)

var (
	// ErrTokenExpired — срок действия токена истек.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid — подпись или формат токена неверны.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenNotYetValid — токен еще не вступил в силу (nbf).
	ErrTokenNotYetValid = errors.New("token not yet valid")
	// ErrUnknownKind — для вида токена не настроен ключ.
	ErrUnknownKind = errors.New("unknown token kind")
)

// Maker описывает выпуск и проверку токенов.
type Maker interface {
	// Issue подписывает payload секретом и сроком жизни, настроенными для kind.
	Issue(kind Kind, payload Payload) (string, error)
	// Verify проверяет токен вида kind и возвращает его payload.
	Verify(kind Kind, token string) (*Payload, error)
}

// KeyConfig — секрет и время жизни для одного вида токена.
type KeyConfig struct {
	Secret string
	TTL    time.Duration
}

// MakerImpl реализует Maker поверх HS256.
type MakerImpl struct {
	keys  map[Kind]KeyConfig
	clock clock.Clock
}

// NewJWTMaker создает MakerImpl. Если clk равен nil, используются системные часы.
func NewJWTMaker(keys map[Kind]KeyConfig, clk clock.Clock) (*MakerImpl, error) {
	const op = "jwt.NewJWTMaker"
	for _, kind := range []Kind{KindMagic, KindAccess, KindRefresh} {
		key, ok := keys[kind]
		if !ok || key.Secret == "" {
			return nil, fmt.Errorf("%s: secret for %q is not set", op, kind)
		}
		if key.TTL <= 0 {
			return nil, fmt.Errorf("%s: ttl for %q must be positive", op, kind)
		}
	}
	if clk == nil {
		clk = clock.Real{}
	}
	return &MakerImpl{
		keys:  keys,
		clock: clk,
	}, nil
}

// TTL возвращает время жизни токена заданного вида.
func (j *MakerImpl) TTL(kind Kind) time.Duration {
	return j.keys[kind].TTL
}
