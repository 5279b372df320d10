package mavensettings

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	for _, plain := range []string{"", "a", "exactly16bytes!!", "a much longer password with spaces and ünïcödé"} {
		encrypted, err := Encrypt(plain, "passphrase")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(encrypted, "{") && strings.HasSuffix(encrypted, "}"))

		decrypted, err := Decrypt(encrypted, "passphrase")
		require.NoError(t, err)
		assert.Equal(t, plain, decrypted)
	}
}

func TestEncrypt_PayloadLayout(t *testing.T) {
	encrypted, err := Encrypt("secret", "passphrase")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(strings.Trim(encrypted, "{}"))
	require.NoError(t, err)

	// salt, pad length byte, one cipher block, random trailer
	padLen := int(raw[saltSize])
	assert.Equal(t, saltSize+1+blockSize+padLen, len(raw))
	assert.Equal(t, 0, len(raw)%blockSize)
}

func TestEncrypt_RandomSalt(t *testing.T) {
	a, err := Encrypt("same", "key")
	require.NoError(t, err)
	b, err := Encrypt("same", "key")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecrypt_SurroundingText(t *testing.T) {
	encrypted, err := Encrypt("pw", "key")
	require.NoError(t, err)

	decrypted, err := Decrypt("Oleg reset this password on 2009-03-11 "+encrypted, "key")
	require.NoError(t, err)
	assert.Equal(t, "pw", decrypted)
}

func TestDecrypt_Errors(t *testing.T) {
	_, err := Decrypt("plain", "key")
	assert.ErrorIs(t, err, ErrNotEncrypted)

	_, err = Decrypt("{!!!}", "key")
	assert.ErrorIs(t, err, ErrBadPayload)

	_, err = Decrypt("{"+base64.StdEncoding.EncodeToString([]byte("short"))+"}", "key")
	assert.ErrorIs(t, err, ErrBadPayload)
}

func TestIsEncrypted(t *testing.T) {
	assert.True(t, IsEncrypted("{abc}"))
	assert.True(t, IsEncrypted("prefix {abc} suffix"))
	assert.False(t, IsEncrypted("plain"))
	assert.False(t, IsEncrypted(`\{escaped\}`))
	assert.False(t, IsEncrypted("{unterminated"))
}

func TestPayload_EscapedClosingBrace(t *testing.T) {
	p, ok := payload(`{ab\}cd}`)
	require.True(t, ok)
	assert.Equal(t, `ab\}cd`, p)
}
