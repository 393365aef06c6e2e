package password

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost trades login latency for brute-force resistance;
	// 12 keeps a hash around 250ms on commodity hardware
	BcryptCost = 12

	// MinLength is the minimum accepted password length
	MinLength = 8
)

// Hash derives a bcrypt hash for storage
func Hash(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify reports whether plain matches the stored bcrypt hash
func Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// HashToken hashes a refresh token with SHA-256 so the session table never
// holds the raw token
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ValidatePassword reports whether a password meets the account policy
func ValidatePassword(plain string) bool {
	return len(plain) >= MinLength
}
