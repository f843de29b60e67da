package cookie

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"
)

// keys holds independent subkeys so a signature can never be replayed as ciphertext.
type keys struct {
	sign []byte
	aead cipher.AEAD
}

func deriveKeys(secret []byte) *keys {
	block, err := aes.NewCipher(subkey(secret, "encrypt"))
	if err != nil {
		// AES-256 with a 32-byte key cannot fail.
		panic(err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		panic(err)
	}
	return &keys{sign: subkey(secret, "sign"), aead: aead}
}

func subkey(secret []byte, purpose string) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte("cookie/" + purpose))
	return mac.Sum(nil)
}

// mac binds the signature to the cookie name to stop value swapping between cookies.
func (k *keys) mac(name string, value []byte) []byte {
	h := hmac.New(sha256.New, k.sign)
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write(value)
	return h.Sum(nil)
}

func (k *keys) seal(name string, plaintext []byte) ([]byte, error) {
	nonce := make([]byte, k.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return k.aead.Seal(nonce, nonce, plaintext, []byte(name)), nil
}

func (k *keys) open(name string, data []byte) ([]byte, error) {
	n := k.aead.NonceSize()
	if len(data) < n {
		return nil, errors.New("ciphertext too short")
	}
	return k.aead.Open(nil, data[:n], data[n:], []byte(name))
}
