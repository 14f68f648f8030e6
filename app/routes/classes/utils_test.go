package classes

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	hexToken := regexp.MustCompile(`^[0-9a-f]{32}$`)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token, err := GenerateToken()
		require.NoError(t, err)
		assert.Regexp(t, hexToken, token)
		assert.False(t, seen[token], "tokens must not repeat")
		seen[token] = true
	}
}

func TestCheckinURL(t *testing.T) {
	t.Setenv("BASE_URL", "https://asistenciaqr.onrender.com")

	url := CheckinURL(7, "abc123")
	assert.Equal(t, "https://asistenciaqr.onrender.com/?clase_id=7&token=abc123", url)
}
