package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashKey returns the hex SHA-256 of key.
func HashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Key joins a namespace and its parts into a cache key, e.g.
// Key("carbonkit", "flight", "48.8566", "2.3522").
func Key(namespace string, parts ...string) string {
	return namespace + ":" + strings.Join(parts, "|")
}
