package auth

import "golang.org/x/crypto/bcrypt"

// PasswordVerifier checks a login attempt against the stored hash. The
// registry hashes on create; this is the read-side counterpart used by
// the login handler.
type PasswordVerifier interface {
	// Compare returns nil when the plaintext matches the hash, and a
	// non-nil error on mismatch or a malformed hash.
	Compare(hashedPassword, password string) error
}

// BcryptVerifier is the production PasswordVerifier. Student registrations
// are hashed with bcrypt, so verification goes through the same package.
type BcryptVerifier struct{}

// NewBcryptVerifier creates a new BcryptVerifier.
func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

// Compare implements PasswordVerifier.
func (v *BcryptVerifier) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
