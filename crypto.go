// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// crypto.go — passphrase-based AES-256-GCM encryption of save payloads and
// metadata. Keys are derived with PBKDF2-SHA256 over a fixed application
// salt; every call uses a fresh nonce that is prepended to the ciphertext.

package savestate

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// Key derivation parameters. Fixed so that any store holding the same
// passphrase can decrypt any payload.
const (
	KeyIterations = 10_000
	KeyLength     = 32
)

// KeySalt is the application-wide PBKDF2 salt.
var KeySalt = []byte("savestate:pbkdf2:v1")

// Encryptor encrypts and decrypts raw payload bytes.
type Encryptor interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

// AES256GCM implements AES-256-GCM authenticated encryption.
type AES256GCM struct {
	aead cipher.AEAD
}

// NewAES256GCM creates an AES-256-GCM encryptor from a 32-byte key.
func NewAES256GCM(key []byte) (*AES256GCM, error) {
	if len(key) != KeyLength {
		return nil, fmt.Errorf("savestate: encryption key must be exactly %d bytes (got %d)", KeyLength, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &AES256GCM{aead: aead}, nil
}

// Encrypt encrypts plaintext with a random nonce.
// Output: nonce (12 bytes) || ciphertext.
func (e *AES256GCM) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return e.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt decrypts ciphertext produced by Encrypt.
func (e *AES256GCM) Decrypt(ciphertext []byte) ([]byte, error) {
	nsize := e.aead.NonceSize()
	if len(ciphertext) < nsize {
		return nil, fmt.Errorf("ciphertext too short")
	}
	return e.aead.Open(nil, ciphertext[:nsize], ciphertext[nsize:], nil)
}

// DeriveKey stretches passphrase into a KeyLength-byte AES key.
func DeriveKey(passphrase string) []byte {
	return pbkdf2.Key([]byte(passphrase), KeySalt, KeyIterations, KeyLength, sha256.New)
}

// PassphraseCipher encrypts strings under one passphrase. The key is derived
// once at construction.
type PassphraseCipher struct {
	enc Encryptor
}

// NewPassphraseCipher derives the key for passphrase.
func NewPassphraseCipher(passphrase string) (*PassphraseCipher, error) {
	if passphrase == "" {
		return nil, ErrNoEncryptionKey
	}
	enc, err := NewAES256GCM(DeriveKey(passphrase))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryptFailed, err)
	}
	return &PassphraseCipher{enc: enc}, nil
}

// EncryptString returns base64(nonce || ciphertext).
func (c *PassphraseCipher) EncryptString(plaintext string) (string, error) {
	out, err := c.enc.Encrypt([]byte(plaintext))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncryptFailed, err)
	}
	return base64.StdEncoding.EncodeToString(out), nil
}

// DecryptString reverses EncryptString. A wrong passphrase or a tampered
// payload is an error; the input is never passed through.
func (c *PassphraseCipher) DecryptString(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptFailed, err)
	}
	out, err := c.enc.Decrypt(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptFailed, err)
	}
	return string(out), nil
}

// Encrypt encrypts plaintext under passphrase.
func Encrypt(plaintext, passphrase string) (string, error) {
	c, err := NewPassphraseCipher(passphrase)
	if err != nil {
		return "", err
	}
	return c.EncryptString(plaintext)
}

// Decrypt decrypts ciphertext produced by Encrypt under passphrase.
func Decrypt(ciphertext, passphrase string) (string, error) {
	c, err := NewPassphraseCipher(passphrase)
	if err != nil {
		return "", err
	}
	return c.DecryptString(ciphertext)
}
