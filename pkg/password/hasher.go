package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxLength is the bcrypt input limit. Longer inputs are rejected rather than truncated.
const MaxLength = 72

// Hasher hashes passwords with a fixed bcrypt cost.
type Hasher struct {
	cost int
}

// Option configures a Hasher.
type Option func(*Hasher)

// WithCost sets the bcrypt cost. Values outside bcrypt's accepted range are ignored.
func WithCost(cost int) Option {
	return func(h *Hasher) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			h.cost = cost
		}
	}
}

// New returns a Hasher using bcrypt.DefaultCost unless overridden.
func New(opts ...Option) *Hasher {
	h := &Hasher{cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Hash returns the bcrypt hash of plaintext.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	if len(plaintext) > MaxLength {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("password: hash: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches hash.
// The comparison is constant-time; any malformed hash yields false.
func (h *Hasher) Verify(plaintext, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// Cost returns the cost factor embedded in hash.
func (h *Hasher) Cost(hash string) (int, error) {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return 0, ErrMalformedHash
	}
	return cost, nil
}

// NeedsRehash reports whether hash was produced with a cost other than the configured one.
func (h *Hasher) NeedsRehash(hash string) bool {
	cost, err := h.Cost(hash)
	if err != nil {
		return false
	}
	return cost != h.cost
}
