package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without
// leaking infrastructure details. ErrNotFound deliberately covers both
// "never issued" and "expired" so responses don't reveal which emails have
// pending codes.
var (
	ErrNotFound        = errors.New("OTP not found or expired")
	ErrWrongPurpose    = errors.New("invalid OTP type")
	ErrTooManyAttempts = errors.New("too many failed attempts")
	ErrBadRequest      = errors.New("bad request")
	ErrDelivery        = errors.New("delivery failed")
)

// InvalidCodeError is returned when a presented code does not match the
// stored one. AttemptsLeft tells the client how many retries remain before
// the record is discarded.
type InvalidCodeError struct {
	AttemptsLeft int
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("invalid OTP (%d attempts left)", e.AttemptsLeft)
}
