package auditlog

import (
	"time"

	"github.com/segal-ziv/smartbill/internal/types"
)

// AuditLog records a mutation to a user-owned entity for operational
// inspection. Entries are append-only.
type AuditLog struct {
	ID         string                 `json:"id"`
	EntityType string                 `json:"entity_type"`
	EntityID   string                 `json:"entity_id"`
	Action     types.AuditAction      `json:"action"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	OwnerID    string                 `json:"owner_id"`
	CreatedAt  time.Time              `json:"created_at"`
}

// New creates an audit entry for the given entity and action.
func New(ownerID, entityType, entityID string, action types.AuditAction, metadata map[string]interface{}) *AuditLog {
	return &AuditLog{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_AUDIT_LOG),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Metadata:   metadata,
		OwnerID:    ownerID,
		CreatedAt:  time.Now().UTC(),
	}
}
