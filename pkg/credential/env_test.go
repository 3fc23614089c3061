package credential

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvCredential_Invalidate(t *testing.T) {
	c := NewEnvCredential(" together-key ")
	assert.True(t, c.HasKey())

	require.NoError(t, c.Invalidate(context.Background(), "Invalid API key provided"))
	assert.False(t, c.HasKey())
	assert.Equal(t, "Invalid API key provided", c.Rejection())
}

func TestEnvCredential_EmptyKey(t *testing.T) {
	assert.False(t, NewEnvCredential("  ").HasKey())
}

func TestKeyless_AlwaysPresent(t *testing.T) {
	c := Keyless()
	assert.True(t, c.HasKey())
	require.NoError(t, c.Invalidate(context.Background(), "rejected"))
	assert.True(t, c.HasKey())
	assert.Empty(t, c.Rejection())
}
