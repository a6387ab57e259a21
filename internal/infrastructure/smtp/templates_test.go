package smtp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderVerificationEmail(t *testing.T) {
	body, err := renderVerificationEmail("Alice", "123456", 10)
	require.NoError(t, err)
	assert.Contains(t, body, "123456")
	assert.Contains(t, body, "Alice")
	assert.Contains(t, body, "10 minutes")
}

func TestRenderPasswordResetEmail_NoName(t *testing.T) {
	body, err := renderPasswordResetEmail("", "654321", 10)
	require.NoError(t, err)
	assert.Contains(t, body, "654321")
	assert.Contains(t, body, "reset your password")
	assert.NotContains(t, body, "Assalamu Alaikum, ")
}
