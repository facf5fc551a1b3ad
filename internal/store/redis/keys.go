package redis

const (
	// KeyPrefixCache is the prefix for cached sidebar resolutions
	KeyPrefixCache = "navkit:cache:"
	// KeySnapshot holds the last successfully built site source
	KeySnapshot = "navkit:snapshot"
	// KeyUsage is the hash of sidebar prefix -> resolution count
	KeyUsage = "navkit:usage"
)

// noPrefix is the usage field for paths that matched no sidebar rule.
const noPrefix = "-"

// CacheKey returns the Redis key for the expansion of a sidebar prefix under
// the model identified by checksum. A new checksum never reads stale entries.
func CacheKey(checksum, prefix string) string {
	return KeyPrefixCache + checksum + ":" + prefix
}

// CachePattern matches every cached resolution, or only those of one model
// when checksum is set.
func CachePattern(checksum string) string {
	if checksum == "" {
		return KeyPrefixCache + "*"
	}
	return KeyPrefixCache + checksum + ":*"
}

// usageField maps a prefix to its hash field
func usageField(prefix string) string {
	if prefix == "" {
		return noPrefix
	}
	return prefix
}
