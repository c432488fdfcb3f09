package searxup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewSecret(t *testing.T) {
	first, err := NewSecret()
	require.NoError(t, err)
	assert.True(t, ValidSecret(first))

	second, err := NewSecret()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func Test_ValidSecret(t *testing.T) {
	assert.True(t, ValidSecret(strings.Repeat("ab", 32)))
	assert.False(t, ValidSecret(""))
	assert.False(t, ValidSecret("hunter2"))
	assert.False(t, ValidSecret(strings.Repeat("AB", 32)))
	assert.False(t, ValidSecret(strings.Repeat("ab", 33)))
	assert.False(t, ValidSecret(strings.Repeat("zz", 32)))
}
