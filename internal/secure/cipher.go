package secure

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"quiz-engine/internal/domain"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// Ciphertext is an AES-256-CBC encryption result, both fields hex encoded.
type Ciphertext struct {
	Data string `json:"encryptedData"`
	IV   string `json:"iv"`
}

// Encrypt encrypts text under key with a fresh random IV.
func Encrypt(plaintext string, key []byte) (Ciphertext, error) {
	block, err := newBlock(key)
	if err != nil {
		return Ciphertext{}, err
	}
	iv, err := GenerateSecret(aes.BlockSize)
	if err != nil {
		return Ciphertext{}, err
	}
	padded := pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	return Ciphertext{
		Data: hex.EncodeToString(out),
		IV:   hex.EncodeToString(iv),
	}, nil
}

// Decrypt reverses Encrypt.
func Decrypt(data string, key []byte, iv string) (string, error) {
	block, err := newBlock(key)
	if err != nil {
		return "", err
	}
	raw, err := hex.DecodeString(data)
	if err != nil {
		return "", fmt.Errorf("%w: decode ciphertext: %v", domain.ErrInvalidArgument, err)
	}
	ivRaw, err := hex.DecodeString(iv)
	if err != nil || len(ivRaw) != aes.BlockSize {
		return "", fmt.Errorf("%w: iv must be %d hex-encoded bytes", domain.ErrInvalidArgument, aes.BlockSize)
	}
	if len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: ciphertext is not a whole number of blocks", domain.ErrInvalidArgument)
	}
	out := make([]byte, len(raw))
	cipher.NewCBCDecrypter(block, ivRaw).CryptBlocks(out, raw)
	plain, err := unpad(out, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// Sign returns the hex HMAC-SHA256 of data under key.
func Sign(data, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a hex signature produced by Sign in constant time.
func Verify(data, key []byte, signature string) bool {
	want, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return hmac.Equal(mac.Sum(nil), want)
}

// Equal compares two strings without leaking the position of the first difference.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func newBlock(key []byte) (cipher.Block, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d", domain.ErrInvalidArgument, KeySize, len(key))
	}
	return aes.NewCipher(key)
}

func pad(b []byte, size int) []byte {
	n := size - len(b)%size
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte, size int) ([]byte, error) {
	n := int(b[len(b)-1])
	if n == 0 || n > size || n > len(b) {
		return nil, fmt.Errorf("%w: bad padding", domain.ErrInvalidArgument)
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, fmt.Errorf("%w: bad padding", domain.ErrInvalidArgument)
		}
	}
	return b[:len(b)-n], nil
}
