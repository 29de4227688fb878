package utils

import (
	"crypto/sha1"
	"encoding/hex"
)

// HashPassword returns the lowercase hex SHA1 digest of the password.
// Stored hashes are compared by equality, so the function must stay
// deterministic.
func HashPassword(password string) string {
	sum := sha1.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}
