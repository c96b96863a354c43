package constants

import (
	"fmt"
	"time"
)

// Cache keys and TTL values.
// Pattern: ticketplan:{module}:{operation}:{identifier}

// ================== CACHE TTL DURATIONS ==================

const (
	TTL_MAP_LIST = 10 * time.Minute // map id list
	TTL_SEAT_MAP = 5 * time.Minute  // seat matrix of one map
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "ticketplan"
)

// ================== MAP LOADER ==================

// Loader response cache, keyed by request signature
const (
	CACHE_KEY_LOADER_PREFIX = CACHE_PREFIX + ":loader:" // + METHOD:url
)

// ================== TICKET API ==================

const (
	CACHE_KEY_TICKET_MAP_LIST = CACHE_PREFIX + ":tickets:maps:list"
	CACHE_KEY_TICKET_SEAT_MAP = CACHE_PREFIX + ":tickets:maps:seats:" // + map-id

	KEY_SEAT_CLAIM = CACHE_PREFIX + ":tickets:claim:" // + map-id:x:y
)

// ================== KEY BUILDERS ==================

// BuildLoaderKey builds the cache key of an outgoing request
func BuildLoaderKey(method, url string) string {
	return fmt.Sprintf("%s%s:%s", CACHE_KEY_LOADER_PREFIX, method, url)
}

// BuildTicketSeatMapKey builds the cache key of a stored seat map
func BuildTicketSeatMapKey(mapID string) string {
	return CACHE_KEY_TICKET_SEAT_MAP + mapID
}

// BuildSeatClaimKey builds the Redis key that guards a single seat purchase
func BuildSeatClaimKey(mapID string, x, y int) string {
	return fmt.Sprintf("%s%s:%d:%d", KEY_SEAT_CLAIM, mapID, x, y)
}
