package utils

import "golang.org/x/crypto/bcrypt"

// HashAccessCode hashes a match's scorer access code for storage.
func HashAccessCode(code string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckAccessCode reports whether code matches the stored hash.
func CheckAccessCode(hash, code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
