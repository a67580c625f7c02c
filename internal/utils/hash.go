package utils

import "golang.org/x/crypto/bcrypt"

// Passwords exist only for the admin panel. Storefront customers never set
// one, they authenticate with a phone verification code instead.

// HashAdminPassword returns a bcrypt hash of the provided password.
func HashAdminPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// AdminPasswordMatches reports whether the plaintext password matches the
// stored bcrypt hash.
func AdminPasswordMatches(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
