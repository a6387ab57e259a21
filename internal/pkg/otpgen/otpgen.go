// Package otpgen produces the numeric one-time passcodes sent to users.
package otpgen

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

// span covers [100000, 999999]: every code is exactly six digits with no
// leading zero, so zero-padding can never reveal a shorter value.
const (
	codeMin  = 100000
	codeSpan = 900000
)

// Generate returns a uniformly distributed 6-digit decimal code.
// It draws from crypto/rand; if the entropy source is unavailable it panics
// rather than silently degrading to a predictable generator.
func Generate() string {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		panic("otpgen: entropy source unavailable: " + err.Error())
	}
	return strconv.FormatInt(codeMin+n.Int64(), 10)
}
