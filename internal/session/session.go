// Package session models time-boxed play windows. A session authorizes the
// gated game operations until its expiry; an expired session is treated as
// absent everywhere.
package session

import (
	"errors"
	"time"
)

var (
	// ErrInvalidTTL rejects non-positive or excessive session lifetimes.
	ErrInvalidTTL = errors.New("session ttl must be positive")
	// ErrAlreadyActive rejects starting a session while one is active.
	ErrAlreadyActive = errors.New("session already active")
	// ErrExpired rejects gated operations after the session expiry.
	ErrExpired = errors.New("session expired")
)

// Session is one play window. OperationsCount counts every successful gated
// operation for audit purposes and is never decremented.
type Session struct {
	ID              string    `json:"session_id"`
	CreatedAt       time.Time `json:"created_at"`
	ExpiresAt       time.Time `json:"expires_at"`
	OperationsCount uint64    `json:"operations_count"`
}

// New opens a session lasting ttl from now.
func New(id string, now time.Time, ttl time.Duration) (*Session, error) {
	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}
	return &Session{
		ID:        id,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

// Expired reports whether the session is no longer valid at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Touch records one successful gated operation.
func (s *Session) Touch() {
	s.OperationsCount++
}

// Clone returns an independent copy of the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}
