package auditlog

import "context"

// Repository defines the interface for audit log operations
type Repository interface {
	Create(ctx context.Context, entry *AuditLog) error
	ListByEntity(ctx context.Context, entityType, entityID string) ([]*AuditLog, error)
}
