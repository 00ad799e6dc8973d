// Package crypto implements the per-document envelope encryption pipeline:
// a fresh random data key (DEK) encrypts the file content with AES-256-GCM,
// and the DEK itself is wrapped under a fixed process-wide master key (KEK).
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"docvault/internal/common"
	"docvault/internal/server/models"
)

const (
	// KeySize is the required master key and data key length (AES-256).
	KeySize = 32

	nonceSize = 12 // 96 bits, standard GCM nonce
	tagSize   = 16 // 128-bit authentication tag
)

// Engine performs envelope encryption and decryption. The master key is
// injected at construction, validated once, and never re-read, logged or
// returned by any operation.
type Engine struct {
	kek cipher.Block
}

// NewEngine validates the master key and builds the engine. A missing or
// wrong-length key is a fatal startup condition, not a per-call error.
func NewEngine(masterKey []byte) (*Engine, error) {
	if len(masterKey) != KeySize {
		return nil, fmt.Errorf("%w: need %d bytes, got %d", common.ErrorCryptoConfig, KeySize, len(masterKey))
	}
	block, err := aes.NewCipher(masterKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorCryptoConfig, err)
	}
	return &Engine{kek: block}, nil
}

// Encrypt seals plaintext under a fresh DEK and nonce and returns the
// ciphertext together with the envelope (nonce, tag, wrapped DEK). The
// caller must persist the four values as one atomic unit. No partial
// envelope is ever returned: any failure aborts the whole operation.
func (e *Engine) Encrypt(plaintext []byte) ([]byte, models.Envelope, error) {
	dek := make([]byte, KeySize)
	if _, err := rand.Read(dek); err != nil {
		return nil, models.Envelope{}, fmt.Errorf("failed to generate data key: %w", err)
	}
	defer zeroBytes(dek)

	iv := make([]byte, nonceSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, models.Envelope{}, fmt.Errorf("failed to generate nonce: %w", err)
	}

	aead, err := newAEAD(dek)
	if err != nil {
		return nil, models.Envelope{}, err
	}

	// Seal appends the tag to the ciphertext; split it out so the tag is
	// persisted as its own envelope field.
	sealed := aead.Seal(nil, iv, plaintext, nil)
	ciphertext := sealed[:len(sealed)-tagSize]
	authTag := sealed[len(sealed)-tagSize:]

	wrapped, err := e.wrapKey(dek)
	if err != nil {
		return nil, models.Envelope{}, err
	}

	env := models.Envelope{
		IV:         iv,
		AuthTag:    authTag,
		WrappedKey: wrapped,
	}
	return ciphertext, env, nil
}

// Decrypt unwraps the DEK and runs authenticated decryption. It returns
// plaintext only on full tag verification; any mismatch in ciphertext,
// IV, tag or wrapped key yields ErrorIntegrity. The result
// is deterministic, so callers must not retry the same inputs.
func (e *Engine) Decrypt(ciphertext []byte, env models.Envelope) ([]byte, error) {
	dek, err := e.unwrapKey(env.WrappedKey)
	if err != nil {
		return nil, err
	}
	defer zeroBytes(dek)

	if len(env.IV) != nonceSize || len(env.AuthTag) != tagSize {
		return nil, common.ErrorIntegrity
	}

	aead, err := newAEAD(dek)
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(ciphertext)+tagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, env.AuthTag...)

	plaintext, err := aead.Open(nil, env.IV, sealed, nil)
	if err != nil {
		return nil, common.ErrorIntegrity
	}
	return plaintext, nil
}

// wrapKey encrypts the DEK under the KEK block by block (deterministic,
// ECB-style). The DEK is uniformly random and exactly two AES blocks, so
// there is no repeating plaintext structure for the mode to leak.
func (e *Engine) wrapKey(dek []byte) ([]byte, error) {
	if len(dek)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("data key is not block-aligned: %d bytes", len(dek))
	}
	wrapped := make([]byte, len(dek))
	for i := 0; i < len(dek); i += aes.BlockSize {
		e.kek.Encrypt(wrapped[i:i+aes.BlockSize], dek[i:i+aes.BlockSize])
	}
	return wrapped, nil
}

// unwrapKey recovers the DEK. A wrapped key of the wrong length cannot
// decrypt anything and is reported as an integrity failure.
func (e *Engine) unwrapKey(wrapped []byte) ([]byte, error) {
	if len(wrapped) != KeySize {
		return nil, common.ErrorIntegrity
	}
	dek := make([]byte, len(wrapped))
	for i := 0; i < len(wrapped); i += aes.BlockSize {
		e.kek.Decrypt(dek[i:i+aes.BlockSize], wrapped[i:i+aes.BlockSize])
	}
	return dek, nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// zeroBytes wipes key material once it leaves scope.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
