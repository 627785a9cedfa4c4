package cache

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// KeyPrefix is prepended to every cache key.
const KeyPrefix = "wr_reviews_"

// Key returns the cache key for a source identifier. The digest keeps keys
// fixed-length and free of characters some backends reject.
func Key(sourceID string) string {
	sum := sha3.Sum256([]byte(sourceID))
	return KeyPrefix + hex.EncodeToString(sum[:])
}
