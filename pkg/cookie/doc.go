// Package cookie manages plain, signed and encrypted cookies plus flash messages.
//
// A [Manager] carries the shared attributes (path, domain, Secure, HttpOnly,
// SameSite) and an optional secret:
//
//	m := cookie.New(
//		cookie.WithSecret(os.Getenv("THEME_COOKIE_SECRET")),
//		cookie.WithDomain("upresume.io"),
//		cookie.WithSecure(true),
//	)
//	if err := m.Err(); err != nil {
//		// secret missing or shorter than 32 bytes
//	}
//
// Signed cookies keep the value readable and detect tampering with
// HMAC-SHA256. Encrypted cookies use AES-256-GCM. Signing and encryption use
// separate subkeys derived from the secret, and both bind the value to the
// cookie name, so a value issued for one cookie is rejected under another.
//
// Flash messages are encrypted JSON values deleted on first read.
package cookie
