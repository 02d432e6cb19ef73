package session

import (
	"encoding/base64"
	"encoding/json"
	"sync"

	"instagraph/pkg/errors"
)

const (
	// CSRFTokenKey is the anti-forgery cookie name
	CSRFTokenKey = "csrftoken"

	// SessionIDKey is the session identifier cookie name
	SessionIDKey = "sessionid"
)

// Store holds the cookie parameters that make up an authenticated session.
//
// The validated mapping is only ever replaced as a whole. Handshake cookies
// are the anonymous cookies the site hands out before login; they are sent
// with requests but never exported.
type Store struct {
	mu        sync.RWMutex
	cookie    map[string]string
	handshake map[string]string
}

// NewStore creates an empty session store
func NewStore() *Store {
	return &Store{
		cookie:    make(map[string]string),
		handshake: make(map[string]string),
	}
}

// IsValidCookie checks that a cookie mapping carries both required parameters
func IsValidCookie(cookie map[string]string) error {
	if _, ok := cookie[CSRFTokenKey]; !ok {
		return errors.Auth("invalid cookie provided: %s not set", CSRFTokenKey)
	}
	if _, ok := cookie[SessionIDKey]; !ok {
		return errors.Auth("invalid cookie provided: %s not set", SessionIDKey)
	}
	return nil
}

// Set replaces the session with a copy of cookie.
// The prior session is left untouched if cookie is invalid.
func (s *Store) Set(cookie map[string]string) error {
	if err := IsValidCookie(cookie); err != nil {
		return err
	}

	next := copyMap(cookie)

	s.mu.Lock()
	s.cookie = next
	s.handshake = make(map[string]string)
	s.mu.Unlock()

	return nil
}

// Stage replaces the handshake cookies with a copy of cookie
func (s *Store) Stage(cookie map[string]string) {
	next := copyMap(cookie)

	s.mu.Lock()
	s.handshake = next
	s.mu.Unlock()
}

// Param returns the value of a cookie parameter
func (s *Store) Param(name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.cookie[name]; ok {
		return v, nil
	}
	if v, ok := s.handshake[name]; ok {
		return v, nil
	}
	return "", errors.New(errors.ErrorTypeMissingParam, "parameter %s not set in cookie", name)
}

// Cookie returns a copy of the validated session mapping
func (s *Store) Cookie() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return copyMap(s.cookie)
}

// RequestCookies returns every cookie that should accompany a request:
// handshake cookies overlaid by the validated session.
func (s *Store) RequestCookies() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := copyMap(s.handshake)
	for k, v := range s.cookie {
		out[k] = v
	}
	return out
}

// Valid reports whether the store holds a complete session
func (s *Store) Valid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return IsValidCookie(s.cookie) == nil
}

// Export encodes the session as a portable string
func (s *Store) Export() (string, error) {
	s.mu.RLock()
	data, err := json.Marshal(s.cookie)
	s.mu.RUnlock()
	if err != nil {
		return "", errors.Wrap(errors.ErrorTypeAuth, err, "failed to encode session")
	}

	return base64.StdEncoding.EncodeToString(data), nil
}

// Import decodes a string produced by Export and sets it as the session
func (s *Store) Import(encoded string) error {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return errors.Wrap(errors.ErrorTypeAuth, err, "invalid session string")
	}

	var cookie map[string]string
	if err := json.Unmarshal(data, &cookie); err != nil {
		return errors.Wrap(errors.ErrorTypeAuth, err, "invalid session string")
	}

	return s.Set(cookie)
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
