package auth

import (
	"fmt"

	"github.com/alexedwards/argon2id"
)

// Password length bounds, in bytes.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

// passwordParams follow the OWASP minimum for argon2id.
var passwordParams = &argon2id.Params{
	Memory:      47 * 1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

func hashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return "", ErrWeakPassword
	}
	return argon2id.CreateHash(password, passwordParams)
}

// verifyPassword never panics, even on a malformed stored hash.
func verifyPassword(password, hash string) (match bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			match, err = false, fmt.Errorf("auth: malformed password hash: %v", r)
		}
	}()
	return argon2id.ComparePasswordAndHash(password, hash)
}
