// Package auth checks recovered signer identities against expected ones.
//
// Identities are never looked up from a registry; callers recover them from
// the request signature and hand them to a Validator.
package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
	"sync"
)

var ErrUnauthorized = errors.New("auth: unauthorized")

// Validator validates a recovered signer identity.
type Validator interface {
	Validate(identity string) error
}

// StaticIdentity accepts exactly one identity.
type StaticIdentity struct {
	ID string
}

func (s StaticIdentity) Validate(identity string) error {
	want := strings.ToLower(strings.TrimSpace(s.ID))
	if want == "" {
		return ErrUnauthorized
	}
	got := strings.ToLower(strings.TrimSpace(identity))
	if subtle.ConstantTimeCompare([]byte(want), []byte(got)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// IdentitySet accepts any identity added to it.
type IdentitySet struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

func NewIdentitySet(ids ...string) *IdentitySet {
	s := &IdentitySet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s *IdentitySet) Add(id string) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return
	}
	s.mu.Lock()
	s.ids[id] = struct{}{}
	s.mu.Unlock()
}

func (s *IdentitySet) Remove(id string) {
	s.mu.Lock()
	delete(s.ids, strings.ToLower(strings.TrimSpace(id)))
	s.mu.Unlock()
}

func (s *IdentitySet) Validate(identity string) error {
	s.mu.RLock()
	_, ok := s.ids[strings.ToLower(strings.TrimSpace(identity))]
	s.mu.RUnlock()
	if !ok {
		return ErrUnauthorized
	}
	return nil
}

// AnyOf accepts an identity if any validator does.
type AnyOf []Validator

func (a AnyOf) Validate(identity string) error {
	for _, v := range a {
		if v != nil && v.Validate(identity) == nil {
			return nil
		}
	}
	return ErrUnauthorized
}

// FuncValidator adapts a function into a Validator.
type FuncValidator func(identity string) error

func (f FuncValidator) Validate(identity string) error {
	return f(identity)
}
