package crypto

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestSealOpen(t *testing.T) {
	key := testKey(t)
	aad := []byte("a@x.com")

	sealed, err := Seal([]byte("access-token"), key, aad)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "access-token")

	plaintext, err := Open(sealed, key, aad)
	require.NoError(t, err)
	assert.Equal(t, "access-token", string(plaintext))
}

func TestSeal_RandomNonce(t *testing.T) {
	key := testKey(t)

	first, err := Seal([]byte("same"), key, nil)
	require.NoError(t, err)
	second, err := Seal([]byte("same"), key, nil)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestSeal_Errors(t *testing.T) {
	_, err := Seal(nil, testKey(t), nil)
	assert.Error(t, err)

	_, err = Seal([]byte("data"), []byte("short"), nil)
	assert.Error(t, err)
}

func TestOpen_Tampering(t *testing.T) {
	key := testKey(t)
	aad := []byte("a@x.com")

	sealed, err := Seal([]byte("refresh-token"), key, aad)
	require.NoError(t, err)

	t.Run("wrong key", func(t *testing.T) {
		_, err := Open(sealed, testKey(t), aad)
		assert.ErrorIs(t, err, ErrDecrypt)
	})

	t.Run("wrong aad", func(t *testing.T) {
		_, err := Open(sealed, key, []byte("b@x.com"))
		assert.ErrorIs(t, err, ErrDecrypt)
	})

	t.Run("flipped byte", func(t *testing.T) {
		corrupted := append([]byte(nil), sealed...)
		corrupted[len(corrupted)-1] ^= 0xff
		_, err := Open(corrupted, key, aad)
		assert.ErrorIs(t, err, ErrDecrypt)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := Open(sealed[:10], key, aad)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "too short")
	})
}

func TestSealStringOpenString(t *testing.T) {
	key := testKey(t)

	encoded, err := SealString("token", key, nil)
	require.NoError(t, err)

	plaintext, err := OpenString(encoded, key, nil)
	require.NoError(t, err)
	assert.Equal(t, "token", plaintext)

	_, err = OpenString("not base64!", key, nil)
	assert.Error(t, err)
}
