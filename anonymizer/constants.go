package anonymizer

// Storage types
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// DefaultKeyPrefix namespaces the redis keys of a mapping.
const DefaultKeyPrefix = "iidm:anonymizer"

// Separator splits the original string from its code in a mapping file.
const Separator = ';'
