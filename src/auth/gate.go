// Package auth implements the access gate for consumer-facing endpoints: a
// fixed token allow-list resolved once at process start, checked against a
// bearer header or a query-parameter fallback.
package auth

import (
	"errors"
	"net/http"
	"strings"
)

var (
	// ErrMissingToken: no credential was presented at all.
	ErrMissingToken = errors.New("missing or invalid token")
	// ErrUnknownToken: a credential was presented but is not allow-listed.
	ErrUnknownToken = errors.New("unauthorized")
)

// Gate is a pure membership predicate over the configured token set. It does
// no per-call I/O and is safe for concurrent use.
type Gate struct {
	tokens map[string]bool
}

// NewGate builds a gate from a comma-separated token list. Tokens are
// trimmed; empty entries are dropped.
func NewGate(tokenList string) *Gate {
	tokens := make(map[string]bool)
	for _, t := range strings.Split(tokenList, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tokens[t] = true
		}
	}
	return &Gate{tokens: tokens}
}

// Authorize distinguishes an absent credential (ErrMissingToken) from an
// unknown one (ErrUnknownToken); callers map these to 401 vs 403.
func (g *Gate) Authorize(token string) error {
	if token == "" {
		return ErrMissingToken
	}
	if !g.tokens[token] {
		return ErrUnknownToken
	}
	return nil
}

// TokenFromRequest extracts the credential: "Authorization: Bearer <token>"
// first, then the ?token= query parameter as a fallback for clients that
// cannot set headers.
func TokenFromRequest(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(authz, "Bearer ") {
		if tok := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer ")); tok != "" {
			return tok
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}
