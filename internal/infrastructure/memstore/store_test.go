package memstore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/noor-otp-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(email, code string, ttl time.Duration) *domain.OTPRecord {
	return &domain.OTPRecord{
		Email:     email,
		Code:      code,
		Purpose:   domain.PurposeEmailVerification,
		ExpiresAt: time.Now().Add(ttl).Unix(),
	}
}

func TestPutGetDelete(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, rec("a@x.com", "123456", time.Minute)))

	got, err := s.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "123456", got.Code)
	assert.Equal(t, 0, got.Attempts)

	require.NoError(t, s.Delete(ctx, "a@x.com"))
	_, err = s.Get(ctx, "a@x.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Deleting an absent record is a no-op.
	require.NoError(t, s.Delete(ctx, "a@x.com"))
}

func TestPut_OverwritesPending(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, rec("a@x.com", "111111", time.Minute)))
	require.NoError(t, s.Put(ctx, rec("a@x.com", "222222", time.Minute)))

	got, err := s.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "222222", got.Code)
	assert.Equal(t, 1, s.Len())
}

func TestGet_LazyExpiry(t *testing.T) {
	s := New()
	ctx := context.Background()

	// Already past its expiry instant; must be treated as absent even though
	// no sweep has run.
	require.NoError(t, s.Put(ctx, rec("a@x.com", "123456", -time.Second)))

	_, err := s.Get(ctx, "a@x.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, s.Len(), "expired record should be physically removed on read")
}

func TestGet_ReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, rec("a@x.com", "123456", time.Minute)))
	got, err := s.Get(ctx, "a@x.com")
	require.NoError(t, err)
	got.Attempts = 99

	again, err := s.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, 0, again.Attempts, "mutating a returned record must not touch the store")
}

func TestRecordFailure_IncrementsWhileCodeMatches(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, rec("a@x.com", "123456", time.Minute)))

	left, err := s.RecordFailure(ctx, "a@x.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, domain.MaxAttempts-1, left)

	left, err = s.RecordFailure(ctx, "a@x.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, domain.MaxAttempts-2, left)

	got, err := s.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Attempts)
}

func TestRecordFailure_SupersededCode_WritesNothing(t *testing.T) {
	s := New()
	ctx := context.Background()

	// The record was re-issued after the caller read code 111111.
	require.NoError(t, s.Put(ctx, rec("a@x.com", "222222", time.Minute)))

	_, err := s.RecordFailure(ctx, "a@x.com", "111111")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := s.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "222222", got.Code)
	assert.Equal(t, 0, got.Attempts, "a stale failure must not touch the fresh record")
}

func TestRecordFailure_AbsentOrExpired(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.RecordFailure(ctx, "ghost@x.com", "123456")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.Put(ctx, rec("a@x.com", "123456", -time.Second)))
	_, err = s.RecordFailure(ctx, "a@x.com", "123456")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, s.Len(), "expired record should be physically removed")
}

func TestCompareAndDelete(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, rec("a@x.com", "123456", time.Minute)))

	// Wrong code: nothing deleted.
	deleted, err := s.CompareAndDelete(ctx, "a@x.com", "999999")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, 1, s.Len())

	deleted, err = s.CompareAndDelete(ctx, "a@x.com", "123456")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, 0, s.Len())

	// Absent record: reported, not an error.
	deleted, err = s.CompareAndDelete(ctx, "a@x.com", "123456")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestSweep_RemovesOnlyExpired(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, rec("old1@x.com", "111111", -time.Minute)))
	require.NoError(t, s.Put(ctx, rec("old2@x.com", "222222", -time.Second)))
	require.NoError(t, s.Put(ctx, rec("fresh@x.com", "333333", time.Hour)))

	removed, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	got, err := s.Get(ctx, "fresh@x.com")
	require.NoError(t, err)
	assert.Equal(t, "333333", got.Code)
	assert.Equal(t, 1, s.Len())
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			email := fmt.Sprintf("user%d@x.com", n%4)
			for j := 0; j < 200; j++ {
				_ = s.Put(ctx, rec(email, "123456", time.Minute))
				_, _ = s.RecordFailure(ctx, email, "123456")
				_, _ = s.Get(ctx, email)
				_, _ = s.CompareAndDelete(ctx, email, "123456")
				_, _ = s.Sweep(ctx)
				_ = s.Delete(ctx, email)
			}
		}(i)
	}
	wg.Wait()
}
