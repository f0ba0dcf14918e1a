package hashing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Tokens here were produced by the legacy implementation. They live in old
// snapshots, so the transform must keep reproducing them.
func TestHashPassword_KnownTokens(t *testing.T) {
	cases := map[string]string{
		"Admin":     "demo_hash_63116079",
		"User":      "demo_hash_2645995",
		"Gold":      "demo_hash_2225280",
		"Silver":    "demo_hash_1818443987",
		"Platinum":  "demo_hash_1939416652",
		"Diamond":   "demo_hash_975259340",
		"secret123": "demo_hash_739593854",
		// non-ASCII passwords hash over UTF-16 code units
		"pässword": "demo_hash_1515850974",
	}
	for password, want := range cases {
		assert.Equal(t, want, HashPassword(password), "password %q", password)
	}
}

func TestHashPassword_Deterministic(t *testing.T) {
	for _, p := range []string{"", "a", "correct horse battery staple"} {
		assert.Equal(t, HashPassword(p), HashPassword(p))
	}
}

func TestHashPassword_Empty(t *testing.T) {
	assert.Equal(t, "demo_hash_0", HashPassword(""))
}

func TestVerifyPassword(t *testing.T) {
	token := HashPassword("secret123")

	assert.True(t, VerifyPassword("secret123", token))
	assert.False(t, VerifyPassword("secret124", token))
	assert.False(t, VerifyPassword("secret123", "demo_hash_0"))
	assert.False(t, VerifyPassword("secret123", ""))
}
