package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey returns prefix + ":" + the SHA-256 of the JSON encoding of parts.
// Parts must be JSON-encodable; struct field order keeps the encoding stable.
func hashKey(prefix string, parts ...any) string {
	data, err := json.Marshal(parts)
	if err != nil {
		panic("cache: unencodable key part: " + err.Error())
	}
	return prefix + ":" + Hash(data)
}

// Hash returns the hex SHA-256 of data. Snapshot and dataset hashes use it
// so they line up with cache keys.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
