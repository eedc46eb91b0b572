package secure

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"

	"quiz-engine/internal/domain"
)

const (
	// DefaultKeyLength is the length of generated quiz keys.
	DefaultKeyLength = 16
	MinKeyLength     = 8
	MaxKeyLength     = 128

	keyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// GenerateQuizKey returns n characters drawn from the 64-char URL-safe alphabet.
// A non-positive n falls back to DefaultKeyLength.
func GenerateQuizKey(n int) (string, error) {
	if n <= 0 {
		n = DefaultKeyLength
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	// 256 is a multiple of 64, so the reduction is unbiased.
	for i, b := range buf {
		buf[i] = keyAlphabet[int(b)%len(keyAlphabet)]
	}
	return string(buf), nil
}

// ValidateQuizKey reports whether key has an acceptable length and alphabet.
func ValidateQuizKey(key string) bool {
	if len(key) < MinKeyLength || len(key) > MaxKeyLength {
		return false
	}
	return keyPattern.MatchString(key)
}

// HashQuizKey returns the hex SHA-256 digest of a well-formed key.
func HashQuizKey(key string) (string, error) {
	if !ValidateQuizKey(key) {
		return "", fmt.Errorf("%w: malformed quiz key", domain.ErrInvalidArgument)
	}
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:]), nil
}

// GenerateSecret returns n bytes from the secure random source.
func GenerateSecret(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("read random: %w", err)
	}
	return buf, nil
}
