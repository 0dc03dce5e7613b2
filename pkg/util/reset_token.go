package util

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// ResetTokenLength is the number of random bytes in a reset token.
const ResetTokenLength = 32

// GenerateResetToken returns hex(32 random bytes) followed by the user id.
// The id suffix is not secret; all entropy comes from the random prefix.
func GenerateResetToken(userID uint) (string, error) {
	bytes := make([]byte, ResetTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes) + strconv.FormatUint(uint64(userID), 10), nil
}

// HashResetToken returns the hex SHA-256 digest that is persisted in place of the token.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
