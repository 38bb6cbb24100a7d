// Package store holds the durable tiers of the enrichment cache. Every store
// keeps entries forever and returns sentinel.ErrNotFound on a miss.
package store

import (
	"taxappeal/pkg/domain"
)

// KeyPrefix namespaces enrichment entries in shared key-value stores.
const KeyPrefix = "enrichment:"

// Key returns the key-value store key for pin.
func Key(pin domain.ParcelID) string {
	return KeyPrefix + pin.String()
}
