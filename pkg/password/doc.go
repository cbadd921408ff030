// Package password hashes and verifies user passwords with bcrypt.
//
// The cost factor is fixed per deployment through WithCost. Hash output embeds
// a random salt, so hashing the same password twice yields different strings
// that both verify.
//
//	h := password.New(password.WithCost(12))
//	hash, err := h.Hash("correct horse battery staple")
//	ok := h.Verify("correct horse battery staple", hash) // true
//
// Verify never returns an error: a malformed or empty hash simply does not match.
package password
