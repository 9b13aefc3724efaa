package savestate_test

import (
	"encoding/base64"
	"testing"

	"github.com/AndrewDonelson/savestate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAES256GCM_RoundTrip(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	enc, err := savestate.NewAES256GCM(key)
	require.NoError(t, err)

	plain := []byte("Hello, savestate!")
	cipher, err := enc.Encrypt(plain)
	require.NoError(t, err)
	assert.NotEqual(t, plain, cipher)

	decrypted, err := enc.Decrypt(cipher)
	require.NoError(t, err)
	assert.Equal(t, plain, decrypted)
}

func TestAES256GCM_InvalidKeyLength(t *testing.T) {
	_, err := savestate.NewAES256GCM([]byte("short"))
	assert.Error(t, err)
}

func TestAES256GCM_TamperDetection(t *testing.T) {
	enc, err := savestate.NewAES256GCM(make([]byte, 32))
	require.NoError(t, err)
	cipher, err := enc.Encrypt([]byte("secret"))
	require.NoError(t, err)
	cipher[len(cipher)-1] ^= 0xFF
	_, err = enc.Decrypt(cipher)
	assert.Error(t, err)
}

func TestAES256GCM_ShortCiphertext(t *testing.T) {
	enc, err := savestate.NewAES256GCM(make([]byte, 32))
	require.NoError(t, err)
	_, err = enc.Decrypt([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestEncryptDecrypt_Passphrase(t *testing.T) {
	ct, err := savestate.Encrypt(`{"gold":10}`, "pw")
	require.NoError(t, err)
	assert.NotContains(t, ct, "gold")

	pt, err := savestate.Decrypt(ct, "pw")
	require.NoError(t, err)
	assert.Equal(t, `{"gold":10}`, pt)
}

func TestEncrypt_FreshNonceEachCall(t *testing.T) {
	a, err := savestate.Encrypt("same", "pw")
	require.NoError(t, err)
	b, err := savestate.Encrypt("same", "pw")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	raw, err := base64.StdEncoding.DecodeString(a)
	require.NoError(t, err)
	assert.Greater(t, len(raw), 12, "nonce must be prepended")
}

func TestDecrypt_WrongPassphrase(t *testing.T) {
	ct, err := savestate.Encrypt("secret", "right")
	require.NoError(t, err)
	out, err := savestate.Decrypt(ct, "wrong")
	assert.ErrorIs(t, err, savestate.ErrDecryptFailed)
	assert.Empty(t, out, "input must never be passed through")
}

func TestDecrypt_NotBase64(t *testing.T) {
	_, err := savestate.Decrypt("{plain json}", "pw")
	assert.ErrorIs(t, err, savestate.ErrDecryptFailed)
}

func TestEncrypt_EmptyPassphrase(t *testing.T) {
	_, err := savestate.Encrypt("x", "")
	assert.ErrorIs(t, err, savestate.ErrNoEncryptionKey)
	_, err = savestate.Decrypt("x", "")
	assert.ErrorIs(t, err, savestate.ErrNoEncryptionKey)
}

func TestDeriveKey_Deterministic(t *testing.T) {
	assert.Equal(t, savestate.DeriveKey("pw"), savestate.DeriveKey("pw"))
	assert.NotEqual(t, savestate.DeriveKey("pw"), savestate.DeriveKey("pw2"))
	assert.Len(t, savestate.DeriveKey("pw"), savestate.KeyLength)
}
