// Package id generates identifiers: sortable ULIDs for rows, short IDs for
// object keys, UUIDs for verification records and opaque random tokens for
// sessions.
package id

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Crockford's Base32 alphabet (excludes I, L, O, U).
const crockfordBase32 = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// ULIDLength is the length of a ULID string.
const ULIDLength = 26

// ErrInvalidULID is returned by ULIDTime for malformed input.
var ErrInvalidULID = errors.New("id: invalid ulid")

// NewULID returns a 26-character ULID: 48 bits of millisecond time followed
// by 80 random bits. ULIDs sort lexicographically by creation time.
func NewULID() string {
	return ulidAt(time.Now())
}

func ulidAt(t time.Time) string {
	var raw [16]byte
	ms := uint64(t.UnixMilli())
	for i := range 6 {
		raw[i] = byte(ms >> (40 - 8*i))
	}
	if _, err := rand.Read(raw[6:]); err != nil {
		panic(fmt.Sprintf("id: read random bytes: %v", err))
	}

	// 128 bits encode into 26 symbols; the first symbol carries the top 3 bits.
	var out [ULIDLength]byte
	bit := 128 - 5*ULIDLength // -2: the leading symbol is padded with two zero bits
	for i := range ULIDLength {
		var v byte
		for j := range 5 {
			pos := bit + j
			if pos < 0 {
				continue
			}
			if raw[pos/8]&(0x80>>(pos%8)) != 0 {
				v |= 1 << (4 - j)
			}
		}
		out[i] = crockfordBase32[v]
		bit += 5
	}
	return string(out[:])
}

// ULIDTime extracts the creation time encoded in a ULID.
func ULIDTime(s string) (time.Time, error) {
	if len(s) != ULIDLength {
		return time.Time{}, ErrInvalidULID
	}
	var ms uint64
	for _, c := range strings.ToUpper(s[:10]) {
		idx := strings.IndexRune(crockfordBase32, c)
		if idx < 0 {
			return time.Time{}, ErrInvalidULID
		}
		ms = ms<<5 | uint64(idx)
	}
	return time.UnixMilli(int64(ms)), nil
}

// NewUUID returns a random (v4) UUID string.
func NewUUID() string {
	return uuid.NewString()
}

// NewToken returns n random bytes encoded as unpadded URL-safe base64.
func NewToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("id: read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
