package domain

import "time"

// Purpose tags what an issued code may be used for. A code issued for one
// purpose is never accepted by the other flow's verification path.
type Purpose string

const (
	PurposeEmailVerification Purpose = "email_verification"
	PurposePasswordReset     Purpose = "password_reset"
)

// MaxAttempts is the failed-verification ceiling. A record that has already
// accumulated MaxAttempts failures is deleted on the next attempt, matching
// or not.
const MaxAttempts = 3

// CodeLength is the number of decimal digits in a generated code.
const CodeLength = 6

// OTPRecord is the single pending code for an email address.
// PK: email. At most one record exists per email; a new issuance overwrites
// any prior record. ExpiresAt is a Unix timestamp used as DynamoDB TTL when
// the store is backed by a table.
type OTPRecord struct {
	Email       string  `json:"email" dynamodbav:"email"`
	Code        string  `json:"-" dynamodbav:"code"`
	Purpose     Purpose `json:"purpose" dynamodbav:"purpose"`
	DisplayName string  `json:"display_name,omitempty" dynamodbav:"display_name"`
	Attempts    int     `json:"attempts" dynamodbav:"attempts"`
	ExpiresAt   int64   `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}

// IsExpired reports whether the record is past its expiry instant.
func (r *OTPRecord) IsExpired() bool {
	return time.Now().Unix() > r.ExpiresAt
}
