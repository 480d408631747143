// Package auth verifies client API keys and admin bearer tokens.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	gojwt "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidKey is returned when an API key matches no configured entry.
var ErrInvalidKey = errors.New("auth: invalid api key")

// KeyVerifier checks presented API keys against the configured set.
// Entries starting with "$2" are treated as bcrypt hashes; anything else
// is compared as a plain key in constant time.
type KeyVerifier struct {
	plain  [][]byte
	hashed [][]byte
}

// NewKeyVerifier builds a verifier from the configured key list.
func NewKeyVerifier(keys []string) *KeyVerifier {
	v := &KeyVerifier{}
	for _, k := range keys {
		if strings.HasPrefix(k, "$2") {
			v.hashed = append(v.hashed, []byte(k))
		} else {
			v.plain = append(v.plain, []byte(k))
		}
	}
	return v
}

// Verify returns nil when the presented key matches a configured entry.
func (v *KeyVerifier) Verify(key string) error {
	presented := []byte(key)
	for _, p := range v.plain {
		if subtle.ConstantTimeCompare(presented, p) == 1 {
			return nil
		}
	}
	for _, h := range v.hashed {
		if bcrypt.CompareHashAndPassword(h, presented) == nil {
			return nil
		}
	}
	return ErrInvalidKey
}

// AdminClaims carries the role claim checked on admin endpoints.
type AdminClaims struct {
	gojwt.RegisteredClaims
	Role string `json:"role"`
}

// AdminVerifier validates HS256 bearer tokens for the admin surface.
type AdminVerifier struct {
	secret []byte
}

// NewAdminVerifier creates a verifier for the given shared secret.
// An empty secret disables admin access entirely.
func NewAdminVerifier(secret string) *AdminVerifier {
	return &AdminVerifier{secret: []byte(secret)}
}

// Verify parses and validates the token and checks the admin role.
func (v *AdminVerifier) Verify(tokenString string) (*AdminClaims, error) {
	if len(v.secret) == 0 {
		return nil, errors.New("auth: admin access not configured")
	}

	claims := &AdminClaims{}
	token, err := gojwt.ParseWithClaims(tokenString, claims, func(t *gojwt.Token) (interface{}, error) {
		if t.Method.Alg() != gojwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("auth: unexpected signing method: %s", t.Method.Alg())
		}
		return v.secret, nil
	}, gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("auth: parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("auth: invalid token")
	}
	if claims.Role != "admin" {
		return nil, errors.New("auth: missing admin role")
	}
	return claims, nil
}
