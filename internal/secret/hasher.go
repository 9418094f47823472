// Package secret wraps the one-way hashing primitive used for everything
// sensitive the system stores: identity passwords, uploaded account secret
// pairs, and the moderator master password. The hash is bcrypt; comparison
// is bcrypt's own constant-time check.
package secret

import "golang.org/x/crypto/bcrypt"

// Hasher hashes and verifies sensitive strings.
type Hasher struct {
	cost int
}

func NewHasher() *Hasher {
	return &Hasher{cost: bcrypt.DefaultCost}
}

// NewHasherWithCost exists for tests, where MinCost keeps hashing fast.
func NewHasherWithCost(cost int) *Hasher {
	return &Hasher{cost: cost}
}

// Hash returns a one-way hash of plain. The result embeds its own salt.
func (h *Hasher) Hash(plain string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plain), h.cost)
}

// Verify reports whether plain matches the stored hash.
func (h *Hasher) Verify(plain string, hash []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(plain)) == nil
}
