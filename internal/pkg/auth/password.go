package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the default hashing cost
const BcryptCost = 12

// PasswordHasher hashes and checks passwords with bcrypt
type PasswordHasher struct {
	Cost int
}

// NewPasswordHasher creates a hasher; cost 0 means BcryptCost
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost == 0 {
		cost = BcryptCost
	}
	return &PasswordHasher{Cost: cost}
}

// Hash hashes a password
func (h *PasswordHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Check compares a password with its hash
func (h *PasswordHasher) Check(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
