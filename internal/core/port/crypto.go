package port

// PasswordHasher hashes and verifies secrets using the configured
// algorithm. Verify must not fail on empty plaintext or digest; it
// returns false.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) bool
}
