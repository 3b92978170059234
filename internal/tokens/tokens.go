package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers bad signature, malformed and expired tokens alike.
var ErrInvalidToken = errors.New("invalid token")

// UserClaims is the identity projection embedded in both cookies, never
// the full user record.
type UserClaims struct {
	UserID uint   `json:"userID"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

type Claims struct {
	User UserClaims `json:"userObj"`

	// RefreshToken carries the opaque session value, set only on the
	// refresh cookie's payload.
	RefreshToken string `json:"refreshToken,omitempty"`

	jwt.RegisteredClaims
}

// Codec signs and verifies the signed cookie payloads with a single
// server-wide HS256 secret.
type Codec struct {
	secret []byte
}

func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret}
}

// Sign produces a signed token. A zero ttl omits the expiry claim, the
// cookie lifetime bounds the session instead.
func (c *Codec) Sign(user UserClaims, refreshToken string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		User:         user,
		RefreshToken: refreshToken,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

func (c *Codec) Parse(raw string) (*Claims, error) {
	var claims Claims
	t, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	})
	if err != nil || !t.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
