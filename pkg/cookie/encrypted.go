package cookie

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// GetEncrypted returns the plaintext of an AES-GCM encrypted cookie.
func (m *Manager) GetEncrypted(r *http.Request, name string) (string, error) {
	if m.keys == nil {
		return "", m.keyErr
	}

	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}

	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return "", ErrDecrypt
	}
	plaintext, err := m.keys.open(name, data)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plaintext), nil
}

// SetEncrypted sets a cookie whose value is hidden from the client.
func (m *Manager) SetEncrypted(w http.ResponseWriter, name, value string, maxAge int) error {
	if m.keys == nil {
		return m.keyErr
	}

	ciphertext, err := m.keys.seal(name, []byte(value))
	if err != nil {
		return err
	}

	http.SetCookie(w, m.cookie(name, base64.RawURLEncoding.EncodeToString(ciphertext), maxAge))
	return nil
}

const flashPrefix = "flash_"

// Flash decodes a flash message into dest and expires it.
// Returns ErrNotFound when no message is pending.
func (m *Manager) Flash(w http.ResponseWriter, r *http.Request, key string, dest any) error {
	raw, err := m.GetEncrypted(r, flashPrefix+key)
	if err != nil {
		return err
	}
	m.Delete(w, flashPrefix+key)
	return json.Unmarshal([]byte(raw), dest)
}

// SetFlash stores a one-shot message for the next request.
func (m *Manager) SetFlash(w http.ResponseWriter, key string, value any) error {
	if m.keys == nil {
		return m.keyErr
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return m.SetEncrypted(w, flashPrefix+key, string(data), 0)
}
