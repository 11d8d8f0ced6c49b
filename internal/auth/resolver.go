// Package auth resolves opaque bearer tokens to provisioned users. Tokens
// are pre-provisioned credentials; credential issuance is out of scope.
package auth

import (
	"errors"

	"github.com/pairline/pairline-server/internal/core"
)

var (
	// ErrMissingCredential is returned for an empty token, before any
	// connection resources are allocated.
	ErrMissingCredential = errors.New("missing credential")
	// ErrInvalidCredential is returned for a token that maps to no user.
	ErrInvalidCredential = errors.New("invalid credential")
)

// Resolver is a pure lookup from token to user. The underlying table is
// built once at construction and never mutated, so Resolve is safe for
// concurrent use without locking.
type Resolver struct {
	byToken map[string]*core.User
}

// NewResolver builds a resolver over the provisioned user list.
func NewResolver(users []*core.User) *Resolver {
	byToken := make(map[string]*core.User, len(users))
	for _, u := range users {
		byToken[u.Token] = u
	}
	return &Resolver{byToken: byToken}
}

// Resolve maps a token to its user. No side effects.
func (r *Resolver) Resolve(token string) (*core.User, error) {
	if token == "" {
		return nil, ErrMissingCredential
	}
	u, ok := r.byToken[token]
	if !ok {
		return nil, ErrInvalidCredential
	}
	return u, nil
}
