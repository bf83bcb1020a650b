package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	ok, err := CheckPasswordHash("s3cret", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPasswordHash("guess", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = CheckPasswordHash("s3cret", "not-a-bcrypt-hash")
	assert.Error(t, err)

	_, err = HashPassword("")
	assert.Error(t, err)
}
