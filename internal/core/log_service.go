package core

import (
	"context"
	"fmt"

	"forms-backend-go/internal/db"
	"forms-backend-go/internal/models"
	"forms-backend-go/internal/paging"
)

const (
	defaultLogLimit = 100
	maxLogLimit     = 500
)

// mutatingMethods restricts the log view to entries of mutating calls.
var mutatingMethods = map[string]struct{}{"POST": {}, "PUT": {}, "DELETE": {}}

// logService implements LogService. The audit trail is read raw because
// historical entries carry timestamps in several encodings; normalization
// happens here, for display only, and is never written back.
type logService struct {
	auditRepo db.AuditRepository
}

// NewLogService creates a new LogService instance.
func NewLogService(auditRepo db.AuditRepository) LogService {
	return &logService{auditRepo: auditRepo}
}

// List returns the latest audit entries visible to the principal: all of
// them for Admin, entries of same-org actors for Manager. Only mutating
// calls (POST/PUT/DELETE) are shown.
func (s *logService) List(ctx context.Context, p models.Principal, limit int) ([]map[string]interface{}, error) {
	if p.Role != models.RoleAdmin && p.Role != models.RoleManager {
		return nil, ErrForbidden
	}
	if limit <= 0 {
		limit = defaultLogLimit
	}
	if limit > maxLogLimit {
		limit = maxLogLimit
	}

	entries, err := s.auditRepo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}

	out := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		method, _ := entry.Data["method"].(string)
		if _, ok := mutatingMethods[method]; !ok {
			continue
		}
		if p.Role == models.RoleManager && !models.Intersects(p.Orgs, actorOrgs(entry.Data)) {
			continue
		}
		view := make(map[string]interface{}, len(entry.Data)+1)
		for k, v := range entry.Data {
			view[k] = v
		}
		view["id"] = entry.ID
		view["timestamp"] = paging.DisplayTimestamp(entry.Data["timestamp"])
		out = append(out, view)
	}
	return out, nil
}

func actorOrgs(data map[string]interface{}) models.OrgSet {
	actor, ok := data["actor"].(map[string]interface{})
	if !ok {
		return nil
	}
	return models.NormalizeOrgSet(actor["org"])
}
