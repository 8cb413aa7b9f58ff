// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lfalegacy/pitchrank/internal/domain/model"
)

// actorClaims are the token claims the platform issues: the registered
// set plus the principal's role list.
type actorClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Authenticator resolves the acting principal from a request. With a
// signing secret configured it accepts platform bearer tokens; without
// one it trusts identity headers, which is only suitable for local
// development.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator creates an authenticator. An empty secret enables
// the header fallback.
func NewAuthenticator(secret string) *Authenticator {
	a := &Authenticator{}
	if secret != "" {
		a.secret = []byte(secret)
	}
	return a
}

// Authenticate extracts the actor from the request, or reports
// ErrUnauthorized.
func (a *Authenticator) Authenticate(r *http.Request) (model.Actor, error) {
	if a.secret == nil {
		return a.fromHeaders(r)
	}
	return a.fromToken(r)
}

// AuthenticateOptional resolves the actor like Authenticate, except a
// request carrying no credentials at all becomes the anonymous actor.
// Presented-but-invalid credentials still fail.
func (a *Authenticator) AuthenticateOptional(r *http.Request) (model.Actor, error) {
	if a.secret == nil {
		if strings.TrimSpace(r.Header.Get("X-User-ID")) == "" {
			return model.Actor{}, nil
		}
		return a.fromHeaders(r)
	}
	if r.Header.Get("Authorization") == "" {
		return model.Actor{}, nil
	}
	return a.fromToken(r)
}

func (a *Authenticator) fromToken(r *http.Request) (model.Actor, error) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return model.Actor{}, fmt.Errorf("%w: missing bearer token", ErrUnauthorized)
	}

	claims := &actorClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, hmac := t.Method.(*jwt.SigningMethodHMAC); !hmac {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !parsed.Valid {
		return model.Actor{}, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}
	if claims.Subject == "" {
		return model.Actor{}, fmt.Errorf("%w: token carries no subject", ErrUnauthorized)
	}
	return model.Actor{UserID: claims.Subject, Roles: defaultRoles(claims.Roles)}, nil
}

func (a *Authenticator) fromHeaders(r *http.Request) (model.Actor, error) {
	userID := strings.TrimSpace(r.Header.Get("X-User-ID"))
	if userID == "" {
		return model.Actor{}, fmt.Errorf("%w: missing X-User-ID header", ErrUnauthorized)
	}
	var roles []string
	for _, role := range strings.Split(r.Header.Get("X-User-Roles"), ",") {
		if role = strings.TrimSpace(role); role != "" {
			roles = append(roles, role)
		}
	}
	return model.Actor{UserID: userID, Roles: defaultRoles(roles)}, nil
}

// defaultRoles fills in the player role for principals whose token or
// headers carry none.
func defaultRoles(roles []string) []string {
	if len(roles) == 0 {
		return []string{model.RolePlayer}
	}
	return roles
}

// IssueToken signs a bearer token for the given principal. Used by the
// seeding tool and tests; production tokens come from the platform's
// identity service.
func IssueToken(secret, userID string, roles []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := actorClaims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
