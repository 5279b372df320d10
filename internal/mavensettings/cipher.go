package mavensettings

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// MasterPasswordKey is the fixed passphrase protecting the master password in settings-security.xml
const MasterPasswordKey = "settings.security"

const (
	saltSize  = 8
	keySize   = 16
	blockSize = aes.BlockSize
)

var (
	// ErrNotEncrypted is returned when a value carries no {...} payload
	ErrNotEncrypted = errors.New("value is not encrypted")

	// ErrBadPayload is returned when an encrypted payload cannot be decoded
	ErrBadPayload = errors.New("malformed encrypted payload")
)

// IsEncrypted reports whether s holds an unescaped {...} payload
func IsEncrypted(s string) bool {
	_, ok := payload(s)
	return ok
}

// Decrypt decrypts a {...} value using the plexus cipher scheme with the given passphrase
func Decrypt(s, passphrase string) (string, error) {
	p, ok := payload(s)
	if !ok {
		return "", ErrNotEncrypted
	}

	all, err := base64.StdEncoding.DecodeString(p)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if len(all) < saltSize+1+blockSize {
		return "", fmt.Errorf("%w: %d bytes", ErrBadPayload, len(all))
	}

	salt := all[:saltSize]
	padLen := int(all[saltSize])
	end := len(all) - padLen
	if end <= saltSize+1 || (end-saltSize-1)%blockSize != 0 {
		return "", fmt.Errorf("%w: invalid padding length %d", ErrBadPayload, padLen)
	}
	encrypted := all[saltSize+1 : end]

	key, iv := deriveKey(passphrase, salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	plain := make([]byte, len(encrypted))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, encrypted)

	plain, err = unpad(plain)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// Encrypt produces a {...} value that Decrypt accepts with the same passphrase
func Encrypt(plain, passphrase string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key, iv := deriveKey(passphrase, salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	data := pad([]byte(plain))
	encrypted := make([]byte, len(data))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(encrypted, data)

	padLen := blockSize - (saltSize+len(encrypted)+1)%blockSize
	trailer := make([]byte, padLen)
	if _, err := rand.Read(trailer); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	buf.Write(salt)
	buf.WriteByte(byte(padLen))
	buf.Write(encrypted)
	buf.Write(trailer)

	return "{" + base64.StdEncoding.EncodeToString(buf.Bytes()) + "}", nil
}

// deriveKey returns the AES key and IV: the two halves of SHA-256(passphrase || salt)
func deriveKey(passphrase string, salt []byte) (key, iv []byte) {
	h := sha256.New()
	h.Write([]byte(passphrase))
	h.Write(salt)
	sum := h.Sum(nil)
	return sum[:keySize], sum[keySize : keySize+blockSize]
}

func pad(b []byte) []byte {
	n := blockSize - len(b)%blockSize
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte) ([]byte, error) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, fmt.Errorf("%w: invalid block length", ErrBadPayload)
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize || n > len(b) {
		return nil, fmt.Errorf("%w: wrong passphrase or corrupt data", ErrBadPayload)
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, fmt.Errorf("%w: wrong passphrase or corrupt data", ErrBadPayload)
		}
	}
	return b[:len(b)-n], nil
}

// payload extracts the text between the first unescaped '{' and the following
// unescaped '}'. Text outside the braces is allowed.
func payload(s string) (string, bool) {
	start := -1
	for i := 0; i < len(s); i++ {
		if s[i] == '{' && (i == 0 || s[i-1] != '\\') {
			start = i
			break
		}
	}
	if start < 0 {
		return "", false
	}
	end := strings.IndexByte(s[start+1:], '}')
	for end >= 0 && s[start+end] == '\\' {
		next := strings.IndexByte(s[start+end+2:], '}')
		if next < 0 {
			return "", false
		}
		end += next + 1
	}
	if end < 0 {
		return "", false
	}
	return s[start+1 : start+1+end], true
}
