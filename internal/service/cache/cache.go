package cache

import (
	"strings"
	"time"
)

// Category selects the expiration policy for an entry. TTLs are fixed
// policy, not caller-configurable per call.
type Category string

const (
	CategoryPrice    Category = "price"
	CategoryChart    Category = "chart"
	CategoryLevels   Category = "levels"
	CategoryAnalysis Category = "analysis"
)

// DefaultTTL applies when the category is unknown or unspecified.
const DefaultTTL = time.Minute

// TTLFor returns the fixed time-to-live for a category.
func TTLFor(cat Category) time.Duration {
	switch cat {
	case CategoryPrice:
		return 30 * time.Second
	case CategoryChart:
		return 5 * time.Minute
	case CategoryLevels:
		return 10 * time.Minute
	case CategoryAnalysis:
		return 2 * time.Minute
	default:
		return DefaultTTL
	}
}

// Key derives a deterministic cache key from a category and its parts.
func Key(cat Category, parts ...string) string {
	return string(cat) + ":" + strings.Join(parts, ":")
}

// BytesCache is a minimal cache API storing raw bytes with TTL, used for
// rendered-response caching at the HTTP edge.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}
