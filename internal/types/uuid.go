package types

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex doc_0ujsswThIGTUYm2K8FjOOfXtY1K
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

const (
	// Prefixes for all domains and entities

	UUID_PREFIX_DOCUMENT  = "doc"
	UUID_PREFIX_SUPPLIER  = "sup"
	UUID_PREFIX_CATEGORY  = "cat"
	UUID_PREFIX_SETTINGS  = "set"
	UUID_PREFIX_AUDIT_LOG = "audit"
	UUID_PREFIX_JOB       = "job"
	UUID_PREFIX_EXPORT    = "exp"
)
