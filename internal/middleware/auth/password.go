package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the account does not exist, so unknown
// emails take as long as wrong passwords.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOHi6VbU5h6K9v8u5rO0m3j0h6dX5r8e"

// HashPassword creates a bcrypt hash from the given plaintext password.
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// VerifyPassword checks if the provided plaintext password matches the stored bcrypt hash.
func VerifyPassword(hashedPassword, providedPassword string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(providedPassword))
}

// BurnPasswordCheck spends one bcrypt comparison without a real hash.
func BurnPasswordCheck(providedPassword string) {
	_ = VerifyPassword(dummyHash, providedPassword)
}
