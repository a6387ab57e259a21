// Package otp holds the issuance flow and the verification engine. The
// store guarantees per-key atomicity; everything here is safe to call
// concurrently.
package otp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/noor-otp-service/internal/domain"
	"github.com/noor-otp-service/internal/infrastructure/smtp"
	"github.com/noor-otp-service/internal/pkg/otpgen"
)

// Store is the minimal keyed-record interface the OTP flows require.
// Get treats expired records as absent (lazy expiry). The conditional
// operations take the code the caller read, so a mutation never lands on a
// record that a concurrent re-issuance or consumption replaced after that
// read; each must be atomic with respect to every other operation for the
// same key.
type Store interface {
	Put(ctx context.Context, rec *domain.OTPRecord) error
	Get(ctx context.Context, email string) (*domain.OTPRecord, error)
	// RecordFailure increments the attempt counter for email while the
	// stored code is still code, returning the attempts remaining. When the
	// record is absent, expired, or carries a different code, nothing is
	// written and the error wraps domain.ErrNotFound.
	RecordFailure(ctx context.Context, email, code string) (int, error)
	// CompareAndDelete removes the record for email only while its stored
	// code is still code, reporting whether anything was deleted.
	CompareAndDelete(ctx context.Context, email, code string) (bool, error)
	Sweep(ctx context.Context) (int, error)
}

type IssueRequest struct {
	Email   string
	Name    string
	Purpose domain.Purpose
}

type VerifyRequest struct {
	Email   string
	Code    string
	Purpose domain.Purpose
}

// VerifyResult carries the identity proven by a successful verification.
type VerifyResult struct {
	Email       string
	DisplayName string
}

type Service interface {
	Issue(ctx context.Context, req IssueRequest) error
	Verify(ctx context.Context, req VerifyRequest) (*VerifyResult, error)
}

// ServiceDeps wires the service's collaborators.
type ServiceDeps struct {
	Store       Store
	Mailer      smtp.Mailer
	TTL         time.Duration // validity window for issued codes
	SendTimeout time.Duration // bound on one delivery attempt
}

type service struct {
	store       Store
	mailer      smtp.Mailer
	ttl         time.Duration
	sendTimeout time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		store:       deps.Store,
		mailer:      deps.Mailer,
		ttl:         deps.TTL,
		sendTimeout: deps.SendTimeout,
	}
}

// Issue generates a fresh code for req.Email and hands it to the delivery
// gateway. The write happens before the send and is not retracted on a
// delivery failure: a timed-out send may still have gone through, and an
// undelivered code simply ages out. Any previously pending code for the
// email is superseded unconditionally.
func (s *service) Issue(ctx context.Context, req IssueRequest) error {
	if req.Email == "" {
		return fmt.Errorf("email required: %w", domain.ErrBadRequest)
	}
	if req.Purpose == "" {
		return fmt.Errorf("purpose required: %w", domain.ErrBadRequest)
	}

	rec := &domain.OTPRecord{
		Email:       req.Email,
		Code:        otpgen.Generate(),
		Purpose:     req.Purpose,
		DisplayName: req.Name,
		Attempts:    0,
		ExpiresAt:   time.Now().Add(s.ttl).Unix(),
	}
	if err := s.store.Put(ctx, rec); err != nil {
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()
	if err := s.mailer.SendOTP(sendCtx, req.Email, req.Name, rec.Code, req.Purpose); err != nil {
		return fmt.Errorf("send OTP to %s: %w: %w", req.Email, domain.ErrDelivery, err)
	}

	slog.Info("OTP issued", "email", req.Email, "purpose", string(req.Purpose))
	return nil
}

// Verify checks a presented code, in strict order: presence (expiry-aware),
// purpose, attempt ceiling, then the code itself. Side effects per branch:
// a match or a breached ceiling deletes the record, a mismatch increments
// its attempt count, a purpose mismatch leaves it untouched. Every mutation
// is conditioned on the code read at the top, so a re-issuance that lands
// mid-check is never clobbered: the stale mutation is dropped and the fresh
// code stays pending.
func (s *service) Verify(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	if req.Email == "" || req.Code == "" {
		return nil, fmt.Errorf("email and code required: %w", domain.ErrBadRequest)
	}
	if req.Purpose == "" {
		return nil, fmt.Errorf("purpose required: %w", domain.ErrBadRequest)
	}

	rec, err := s.store.Get(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load OTP record: %w", err)
	}

	if rec.Purpose != req.Purpose {
		return nil, fmt.Errorf("OTP for %s issued for %q: %w", req.Email, rec.Purpose, domain.ErrWrongPurpose)
	}

	if rec.Attempts >= domain.MaxAttempts {
		if _, err := s.store.CompareAndDelete(ctx, req.Email, rec.Code); err != nil {
			slog.Warn("failed to delete exhausted OTP record", "email", req.Email, "err", err)
		}
		return nil, fmt.Errorf("OTP for %s locked out: %w", req.Email, domain.ErrTooManyAttempts)
	}

	if rec.Code != req.Code {
		left, err := s.store.RecordFailure(ctx, req.Email, rec.Code)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// The record was superseded or consumed after the read;
				// report the failure against the snapshot that was compared
				// and leave the new record alone.
				return nil, &domain.InvalidCodeError{AttemptsLeft: domain.MaxAttempts - rec.Attempts - 1}
			}
			return nil, fmt.Errorf("record failed attempt: %w", err)
		}
		return nil, &domain.InvalidCodeError{AttemptsLeft: left}
	}

	deleted, err := s.store.CompareAndDelete(ctx, req.Email, rec.Code)
	if err != nil {
		return nil, fmt.Errorf("consume OTP record: %w", err)
	}
	if !deleted {
		// A concurrent verification consumed the code, or a re-issuance
		// superseded it; either way this code is no longer the pending one.
		return nil, fmt.Errorf("OTP for %s already consumed or superseded: %w", req.Email, domain.ErrNotFound)
	}
	slog.Info("OTP verified", "email", req.Email, "purpose", string(req.Purpose))
	return &VerifyResult{Email: rec.Email, DisplayName: rec.DisplayName}, nil
}
