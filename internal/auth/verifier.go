// Package auth verifies already-issued identity tokens. Token issuance and
// login live in the external auth service; this side only checks signatures
// and claims, and fails closed.
package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Veronika2030/supperspot/internal/domain"
)

// Identity is the verified caller: subject plus the role resolved once at
// authentication.
type Identity struct {
	SubjectID string
	Role      domain.Role
}

type Verifier struct {
	issuer   string
	audience string
	secret   []byte
	now      func() time.Time
}

func NewVerifier(issuer, audience string, secret []byte) *Verifier {
	return &Verifier{
		issuer:   issuer,
		audience: audience,
		secret:   secret,
		now:      time.Now,
	}
}

type identityClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Verify validates the bearer token and yields the caller's identity. Every
// failure mode collapses into ErrUnauthenticated.
func (v *Verifier) Verify(token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" || len(v.secret) == 0 {
		return Identity{}, domain.ErrUnauthenticated
	}

	var claims identityClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return Identity{}, domain.ErrUnauthenticated
	}

	role := domain.Role(claims.Role)
	if claims.Subject == "" || !role.Valid() {
		return Identity{}, domain.ErrUnauthenticated
	}

	return Identity{SubjectID: claims.Subject, Role: role}, nil
}
