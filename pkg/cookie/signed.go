package cookie

import (
	"crypto/hmac"
	"encoding/base64"
	"net/http"
	"strings"
)

// GetSigned returns the value of a signed cookie.
// Returns ErrBadSig when the cookie was tampered with or signed for another name.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	if m.keys == nil {
		return "", m.keyErr
	}

	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}

	// Format: base64(value).base64(signature)
	encValue, encSig, ok := strings.Cut(raw, ".")
	if !ok {
		return "", ErrBadSig
	}
	value, err := base64.RawURLEncoding.DecodeString(encValue)
	if err != nil {
		return "", ErrBadSig
	}
	sig, err := base64.RawURLEncoding.DecodeString(encSig)
	if err != nil {
		return "", ErrBadSig
	}
	if !hmac.Equal(sig, m.keys.mac(name, value)) {
		return "", ErrBadSig
	}

	return string(value), nil
}

// SetSigned sets a cookie whose value is readable but tamper-evident.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, maxAge int) error {
	if m.keys == nil {
		return m.keyErr
	}

	encoded := base64.RawURLEncoding.EncodeToString([]byte(value)) +
		"." + base64.RawURLEncoding.EncodeToString(m.keys.mac(name, []byte(value)))

	http.SetCookie(w, m.cookie(name, encoded, maxAge))
	return nil
}
