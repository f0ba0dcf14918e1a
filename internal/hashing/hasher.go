// Package hashing implements the demo-grade password transform.
//
// DEMO-GRADE, NOT FOR PRODUCTION. This is a deterministic 32-bit rolling
// hash with no salt, no work factor, and trivially findable collisions. It
// exists only so stored tokens remain equivalence-checkable across runs and
// across old snapshots; the stored values are part of the observable
// contract, so the transform must never be silently upgraded to a real KDF.
package hashing

import (
	"strconv"
	"unicode/utf16"
)

const tokenPrefix = "demo_hash_"

// HashPassword derives the stored token for a password. Same input always
// yields the same token.
//
// The rolling hash runs over UTF-16 code units with wrapping 32-bit
// arithmetic (h = h*31 + unit), and the token carries the absolute value of
// the signed result. Both details are load-bearing: old snapshots hold
// tokens produced exactly this way.
func HashPassword(password string) string {
	var h int32
	for _, unit := range utf16.Encode([]rune(password)) {
		h = (h << 5) - h + int32(unit)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return tokenPrefix + strconv.FormatInt(v, 10)
}

// VerifyPassword re-derives the token and compares. No constant-time
// comparison: there is no secret worth protecting in this scheme.
func VerifyPassword(password, storedToken string) bool {
	return HashPassword(password) == storedToken
}
