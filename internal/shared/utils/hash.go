package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the hex SHA-256 of data
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ShortHash returns the first 16 hex characters of Hash
func ShortHash(data []byte) string {
	return Hash(data)[:16]
}

// ETag returns a strong entity tag for a response body
func ETag(body []byte) string {
	return `"` + ShortHash(body) + `"`
}
