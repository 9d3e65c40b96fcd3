package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/segal-ziv/smartbill/internal/domain/auditlog"
)

type auditLogStore struct {
	mu      sync.RWMutex
	entries []*auditlog.AuditLog
}

func NewAuditLogRepository() auditlog.Repository {
	return &auditLogStore{}
}

func (s *auditLogStore) Create(ctx context.Context, entry *auditlog.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *entry
	s.entries = append(s.entries, &copied)
	return nil
}

func (s *auditLogStore) ListByEntity(ctx context.Context, entityType, entityID string) ([]*auditlog.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*auditlog.AuditLog
	for _, entry := range s.entries {
		if !visibleTo(ctx, entry.OwnerID) {
			continue
		}
		if entry.EntityType != entityType || entry.EntityID != entityID {
			continue
		}
		copied := *entry
		matched = append(matched, &copied)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched, nil
}
