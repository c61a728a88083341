package passhash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash_SaltedButBothVerify(t *testing.T) {
	first, err := Hash("s3cret")
	require.NoError(t, err)

	second, err := Hash("s3cret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, Verify("s3cret", first))
	assert.True(t, Verify("s3cret", second))
}

func TestVerify_WrongPassword(t *testing.T) {
	digest, err := Hash("s3cret")
	require.NoError(t, err)

	assert.False(t, Verify("wrong", digest))
}

func TestVerify_MalformedDigest(t *testing.T) {
	assert.False(t, Verify("s3cret", "not-a-bcrypt-digest"))
	assert.False(t, Verify("s3cret", ""))
}
