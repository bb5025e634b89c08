package core

import (
	"context"
	"time"

	"go.uber.org/zap"

	"forms-backend-go/internal/db"
	"forms-backend-go/internal/models"
)

// auditWriteTimeout bounds the detached audit write so a slow store cannot
// pile up goroutines indefinitely.
const auditWriteTimeout = 10 * time.Second

// auditService implements AuditService with fire-and-forget semantics: the
// write runs in its own goroutine with a detached context, so neither a slow
// store nor a cancelled request affects the caller, and failures are logged
// and swallowed.
type auditService struct {
	auditRepo db.AuditRepository
	logger    *zap.Logger
}

// NewAuditService creates a new AuditService instance.
func NewAuditService(auditRepo db.AuditRepository, logger *zap.Logger) AuditService {
	return &auditService{auditRepo: auditRepo, logger: logger}
}

func (s *auditService) Record(entry models.AuditLog) {
	if s.auditRepo == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
		defer cancel()
		if err := s.auditRepo.Create(ctx, entry); err != nil {
			s.logger.Warn("audit write failed; entry dropped",
				zap.String("action", entry.Action),
				zap.String("resourceType", entry.ResourceType),
				zap.String("resourceId", entry.ResourceID),
				zap.Error(err),
			)
		}
	}()
}

// auditEntry assembles a log entry from the request facts. Timestamp is left
// to the store's server timestamp.
func auditEntry(p models.Principal, ri RequestInfo, action, resourceType, resourceID string, metadata map[string]interface{}) models.AuditLog {
	return models.AuditLog{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Actor:        models.ActorFor(p),
		Method:       ri.Method,
		Path:         ri.Path,
		IP:           ri.IP,
		Metadata:     metadata,
	}
}
