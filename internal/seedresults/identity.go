package seedresults

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/lfalegacy/pitchrank/internal/adapters/http/api"
)

// identity carries the credentials one request is made with.
type identity struct {
	userID string
	roles  []string
	token  string
}

// newIdentity mints a bearer token when a secret is configured and falls
// back to development identity headers otherwise.
func newIdentity(secret, userID string, roles []string) (identity, error) {
	id := identity{userID: userID, roles: roles}
	if secret == "" {
		return id, nil
	}

	token, err := api.IssueToken(secret, userID, roles, TokenTTL)
	if err != nil {
		return identity{}, fmt.Errorf("failed to mint token for %s: %w", userID, err)
	}
	id.token = token
	return id, nil
}

// apply attaches the credentials to an outgoing request. A zero identity
// leaves the request anonymous.
func (id identity) apply(req *http.Request) {
	if id.token != "" {
		req.Header.Set("Authorization", "Bearer "+id.token)
		return
	}
	if id.userID == "" {
		return
	}
	req.Header.Set("X-User-ID", id.userID)
	if len(id.roles) > 0 {
		req.Header.Set("X-User-Roles", strings.Join(id.roles, ","))
	}
}
