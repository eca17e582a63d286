// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

// CodeHasher defines the interface for hashing and verifying one-time codes.
// This abstracts the underlying hashing algorithm (e.g., bcrypt), keeping the domain pure.
type CodeHasher interface {
	// Hash generates a salted hash from a plaintext code.
	Hash(code string) (string, error)

	// Check compares a plaintext code with a hash to see if they match.
	Check(code, hash string) bool
}
