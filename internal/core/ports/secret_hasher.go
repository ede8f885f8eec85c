package ports

// SecretHasher is the one-way credential hashing primitive. The plaintext
// never persists; the digest is the only stored representation.
type SecretHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}
