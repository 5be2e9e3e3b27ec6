package redis

// KeyPrefixMapping namespaces shared-cache records so the router can
// coexist with other users of the same Redis database.
const KeyPrefixMapping = "edgegate:mapping:"

// MappingKey returns the shared-cache key for a hostname. Callers must
// pass an already normalized (lowercase) host.
func MappingKey(host string) string {
	return KeyPrefixMapping + host
}
