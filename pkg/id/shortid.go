package id

import (
	"crypto/rand"
	"time"
)

// ShortIDLength is the length of a short ID string.
const ShortIDLength = 16

// NewShortID returns a 16-character, URL-safe ID: 30 bits of millisecond
// time followed by 50 random bits, in Crockford base32. It sorts by creation
// time within a ~12 day window, which is enough for object keys under a
// per-user prefix. Use NewULID for primary keys.
func NewShortID() string {
	return shortIDAt(time.Now())
}

func shortIDAt(t time.Time) string {
	var entropy [8]byte
	_, _ = rand.Read(entropy[:])

	var rnd uint64
	for _, b := range entropy[:7] {
		rnd = rnd<<8 | uint64(b)
	}
	rnd &= 1<<50 - 1

	v := uint64(t.UnixMilli())&(1<<30-1)<<50 | rnd

	var out [ShortIDLength]byte
	for i := ShortIDLength - 1; i >= 0; i-- {
		out[i] = crockfordBase32[v&0x1F]
		v >>= 5
	}
	return string(out[:])
}
