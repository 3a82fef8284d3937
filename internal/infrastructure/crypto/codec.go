// Package crypto provides the symmetric codec used to keep message bodies
// encrypted at rest. Plaintext only exists in transit to and from the
// realtime delivery boundary.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const keySize = 32 // AES-256

// ErrMissingSecret signals a fatal configuration problem: the process must
// not start without a message secret.
var ErrMissingSecret = errors.New("crypto: MESSAGE_SECRET_KEY environment variable is not set")

// ErrDecrypt is returned for ciphertext that is malformed or was produced
// under a different key. Callers at the delivery boundary should treat it
// as a recoverable per-message failure, never as corrupted plaintext.
var ErrDecrypt = errors.New("crypto: cannot decrypt ciphertext")

// Codec encrypts and decrypts message content with AES-GCM. Every call to
// Encrypt draws a fresh nonce, so identical plaintexts do not produce
// identical ciphertexts.
type Codec struct {
	gcm cipher.AEAD
}

// NewCodec derives an AES-256 key from secret via HKDF-SHA256 and builds
// the AEAD. The secret may be any non-empty passphrase; derivation keeps
// weakly sized env values usable without weakening the cipher setup.
func NewCodec(secret string) (*Codec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSecret
	}

	key := make([]byte, keySize)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("parley message content v1"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("crypto: derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypto: new gcm: %w", err)
	}
	return &Codec{gcm: gcm}, nil
}

// NewCodecFromEnv builds a Codec from the MESSAGE_SECRET_KEY environment
// variable. Missing secret is a startup error, not a runtime fault.
func NewCodecFromEnv() (*Codec, error) {
	return NewCodec(os.Getenv("MESSAGE_SECRET_KEY"))
}

// Encrypt seals plaintext and returns base64(nonce || ciphertext).
func (c *Codec) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("crypto: generate nonce: %w", err)
	}
	sealed := c.gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt inverts Encrypt. Any tampering, truncation or key mismatch
// surfaces as ErrDecrypt.
func (c *Codec) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	nonceSize := c.gcm.NonceSize()
	if len(raw) < nonceSize {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecrypt)
	}
	nonce, payload := raw[:nonceSize], raw[nonceSize:]
	plain, err := c.gcm.Open(nil, nonce, payload, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return string(plain), nil
}
