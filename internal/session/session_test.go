package session

import (
	"errors"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	s, err := New("sess-1", now, time.Hour)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if s.ID != "sess-1" {
		t.Errorf("expected ID 'sess-1', got %q", s.ID)
	}
	if !s.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("expected expiry %v, got %v", now.Add(time.Hour), s.ExpiresAt)
	}
	if s.OperationsCount != 0 {
		t.Errorf("fresh session should have 0 operations, got %d", s.OperationsCount)
	}
}

func TestNewInvalidTTL(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	if _, err := New("s", now, 0); !errors.Is(err, ErrInvalidTTL) {
		t.Errorf("expected ErrInvalidTTL for zero ttl, got %v", err)
	}
	if _, err := New("s", now, -time.Minute); !errors.Is(err, ErrInvalidTTL) {
		t.Errorf("expected ErrInvalidTTL for negative ttl, got %v", err)
	}
}

func TestExpired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s, _ := New("s", now, time.Hour)

	if s.Expired(now) {
		t.Error("session should be valid at creation")
	}
	if s.Expired(now.Add(time.Hour - time.Second)) {
		t.Error("session should be valid just before expiry")
	}
	if !s.Expired(now.Add(time.Hour)) {
		t.Error("session must be expired exactly at expiry time")
	}
	if !s.Expired(now.Add(2 * time.Hour)) {
		t.Error("session must be expired after expiry time")
	}
}

func TestTouch(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s, _ := New("s", now, time.Hour)

	for i := 0; i < 5; i++ {
		s.Touch()
	}
	if s.OperationsCount != 5 {
		t.Errorf("expected 5 operations, got %d", s.OperationsCount)
	}
}

func TestClone(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s, _ := New("s", now, time.Hour)
	s.Touch()

	cp := s.Clone()
	cp.Touch()

	if s.OperationsCount != 1 || cp.OperationsCount != 2 {
		t.Error("clone must be independent of the original")
	}

	var nilSession *Session
	if nilSession.Clone() != nil {
		t.Error("cloning a nil session should return nil")
	}
}
