// Package passhash wraps bcrypt for credential hashing.
package passhash

import "golang.org/x/crypto/bcrypt"

// Hash returns a salted bcrypt digest of the plaintext. Hashing the same
// plaintext twice yields different digests.
func Hash(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(h), nil
}

// Verify reports whether plain matches the digest. A malformed digest is
// treated as a mismatch, never an error.
func Verify(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
