package cryptoutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestAESGCMEncryptor_EncryptDecrypt(t *testing.T) {
	enc, err := NewAESGCMEncryptor(testKey())
	require.NoError(t, err)

	plaintext := []byte("base64-acs-access-key==")
	ciphertext, err := enc.Encrypt(plaintext)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ciphertext, "v1:"))
	assert.True(t, IsEncrypted(ciphertext))

	decrypted, err := enc.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)

	again, err := enc.Encrypt(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, ciphertext, again, "nonce must differ per call")
}

func TestAESGCMEncryptor_InvalidKey(t *testing.T) {
	_, err := NewAESGCMEncryptor([]byte("short"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be 32 bytes")

	_, err = NewAESGCMEncryptor(make([]byte, 64))
	require.Error(t, err)
}

func TestAESGCMEncryptor_DecryptErrors(t *testing.T) {
	enc, err := NewAESGCMEncryptor(testKey())
	require.NoError(t, err)

	_, err = enc.Decrypt("plain-value")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown ciphertext version")

	_, err = enc.Decrypt("v1:!!!")
	require.Error(t, err)

	_, err = enc.Decrypt("v1:AAAA")
	require.Error(t, err)

	other, err := NewAESGCMEncryptor(make([]byte, 32))
	require.NoError(t, err)
	ct, err := other.Encrypt([]byte("x"))
	require.NoError(t, err)
	_, err = enc.Decrypt(ct)
	require.Error(t, err, "wrong key must fail authentication")
}

func TestDeriveKey(t *testing.T) {
	hexKey := strings.Repeat("ab", 32)
	key, err := DeriveKey(hexKey)
	require.NoError(t, err)
	assert.Len(t, key, 32)
	assert.Equal(t, byte(0xab), key[0])

	key, err = DeriveKey("a passphrase")
	require.NoError(t, err)
	assert.Len(t, key, 32)

	again, err := DeriveKey(" a passphrase ")
	require.NoError(t, err)
	assert.Equal(t, key, again)

	_, err = DeriveKey("  ")
	require.Error(t, err)
}
