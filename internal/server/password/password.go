// Package password wraps bcrypt hashing and verification of user secrets.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used in production (2^10 rounds).
const DefaultCost = bcrypt.DefaultCost

// Hasher produces and verifies salted bcrypt digests.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher with the given bcrypt cost. Costs below the
// bcrypt minimum are raised to DefaultCost so a zero-value config can never
// weaken hashing.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the bcrypt digest of secret. Each call salts independently, so
// equal inputs produce different digests.
func (h *Hasher) Hash(secret string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("error hashing secret: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether secret matches the stored digest. bcrypt's own
// comparison is constant-time with respect to the secret.
func (h *Hasher) Verify(secret string, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}
