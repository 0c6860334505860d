package payload

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// eventIDPrefixLen is how much of the digest goes into the event identifier
const eventIDPrefixLen = 16

// Hash computes the SHA-256 digest of the payload's canonical serialization.
// encoding/json marshals map keys in sorted order at every nesting level, so
// two payloads with the same keys and values hash identically regardless of
// the key order they arrived with. Sequence order remains significant.
func Hash(payload map[string]any) (string, error) {
	canonical, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to serialize payload: %w", err)
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// EventID derives a human-readable event identifier from the digest prefix
// and the processing timestamp. Re-delivery of an identical payload collides
// on digest before the event ID is ever compared.
func EventID(digest string, now time.Time) string {
	return fmt.Sprintf("%s-%d", digest[:eventIDPrefixLen], now.Unix())
}
