// Package memstore is the reference OTP record store: a single guarded map
// inside one process. It gives no cross-instance consistency; multi-instance
// deployments must use the DynamoDB-backed store instead.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/noor-otp-service/internal/domain"
)

// Store keeps at most one pending OTP record per email address.
// A single mutex guards the whole map, making each individual operation
// atomic with respect to every other. Multi-step mutations go through the
// conditional operations (RecordFailure, CompareAndDelete), which do their
// whole compare-and-mutate under one hold of the mutex so a concurrent Put
// or Delete for the same key is never overwritten with stale state.
type Store struct {
	mu      sync.Mutex
	records map[string]domain.OTPRecord
}

func New() *Store {
	return &Store{records: make(map[string]domain.OTPRecord)}
}

// Put unconditionally replaces any existing record for the record's email.
func (s *Store) Put(_ context.Context, rec *domain.OTPRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Email] = *rec
	return nil
}

// Get returns the pending record for email. Expired records are treated as
// absent and removed on the spot, so a stale code is never handed to a
// caller even before the reaper has run.
func (s *Store) Get(_ context.Context, email string) (*domain.OTPRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[email]
	if !ok {
		return nil, fmt.Errorf("no pending OTP for %s: %w", email, domain.ErrNotFound)
	}
	if rec.IsExpired() {
		delete(s.records, email)
		return nil, fmt.Errorf("OTP for %s expired: %w", email, domain.ErrNotFound)
	}
	out := rec
	return &out, nil
}

// RecordFailure counts one failed verification against the record for
// email, provided its stored code is still code. When the record is absent,
// expired, or was re-issued with a different code since the caller read it,
// nothing is written and the returned error wraps domain.ErrNotFound.
// Returns the attempts remaining before the ceiling.
func (s *Store) RecordFailure(_ context.Context, email, code string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[email]
	if !ok {
		return 0, fmt.Errorf("no pending OTP for %s: %w", email, domain.ErrNotFound)
	}
	if rec.IsExpired() {
		delete(s.records, email)
		return 0, fmt.Errorf("OTP for %s expired: %w", email, domain.ErrNotFound)
	}
	if rec.Code != code {
		return 0, fmt.Errorf("OTP for %s superseded: %w", email, domain.ErrNotFound)
	}
	rec.Attempts++
	s.records[email] = rec
	return domain.MaxAttempts - rec.Attempts, nil
}

// CompareAndDelete removes the record for email only while its stored code
// is still code, reporting whether anything was deleted.
func (s *Store) CompareAndDelete(_ context.Context, email, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[email]
	if !ok || rec.Code != code {
		return false, nil
	}
	delete(s.records, email)
	return true, nil
}

// Delete removes any record for email; no-op if absent.
func (s *Store) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, email)
	return nil
}

// Sweep removes every expired record and reports how many were dropped.
// It holds the lock for a single pass over the map.
func (s *Store) Sweep(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for email, rec := range s.records {
		if rec.IsExpired() {
			delete(s.records, email)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of records currently held, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
