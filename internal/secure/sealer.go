package secure

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"quiz-engine/internal/domain"
)

// Sealer encrypts then MACs payloads with keys derived from a single secret.
type Sealer struct {
	encKey []byte
	macKey []byte
}

// Envelope is the stored form of a sealed payload.
type Envelope struct {
	Ciphertext
	MAC string `json:"mac"`
}

// NewSealer derives independent encryption and MAC keys from secret via HKDF-SHA256.
func NewSealer(secret []byte) (*Sealer, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: empty sealing secret", domain.ErrInvalidArgument)
	}
	encKey, err := deriveKey(secret, "quiz-engine/enc")
	if err != nil {
		return nil, err
	}
	macKey, err := deriveKey(secret, "quiz-engine/mac")
	if err != nil {
		return nil, err
	}
	return &Sealer{encKey: encKey, macKey: macKey}, nil
}

func deriveKey(secret []byte, info string) ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}

// Seal encrypts plaintext and returns the JSON envelope.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	ct, err := Encrypt(string(plaintext), s.encKey)
	if err != nil {
		return nil, err
	}
	env := Envelope{Ciphertext: ct, MAC: Sign([]byte(ct.IV+ct.Data), s.macKey)}
	return json.Marshal(env)
}

// Open verifies and decrypts an envelope produced by Seal.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	var env Envelope
	if err := json.Unmarshal(sealed, &env); err != nil {
		return nil, fmt.Errorf("%w: decode envelope: %v", domain.ErrInvalidArgument, err)
	}
	if !Verify([]byte(env.IV+env.Data), s.macKey, env.MAC) {
		return nil, fmt.Errorf("%w: envelope authentication failed", domain.ErrInvalidArgument)
	}
	plain, err := Decrypt(env.Data, s.encKey, env.IV)
	if err != nil {
		return nil, err
	}
	return []byte(plain), nil
}
