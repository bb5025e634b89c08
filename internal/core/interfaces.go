package core

import (
	"context"

	"forms-backend-go/internal/models"
	"forms-backend-go/internal/paging"
)

// RequestInfo carries the HTTP request facts recorded in audit entries.
type RequestInfo struct {
	Method string
	Path   string
	IP     string
}

// AuditService records audit entries as a best-effort side channel. A write
// failure is logged and swallowed; it never gates the primary response.
type AuditService interface {
	Record(entry models.AuditLog)
}

// FormService implements the business operations on form definitions.
// Authorization has already happened at the route layer; list operations
// still apply the role-dependent org filter because they span documents.
type FormService interface {
	Create(ctx context.Context, p models.Principal, req models.CreateFormRequest, ri RequestInfo) (string, error)
	List(ctx context.Context, p models.Principal, ri RequestInfo) ([]*models.Form, error)
	ListPage(ctx context.Context, p models.Principal, page int, ri RequestInfo) (paging.Page[*models.Form], error)
	Get(ctx context.Context, p models.Principal, id string, ri RequestInfo) (*models.Form, error)
	Update(ctx context.Context, p models.Principal, id string, fields map[string]interface{}, ri RequestInfo) error
	Delete(ctx context.Context, p models.Principal, id string, ri RequestInfo) error
}

// SubformService implements the business operations on subform definitions.
type SubformService interface {
	Create(ctx context.Context, p models.Principal, req models.CreateSubformRequest, ri RequestInfo) (string, error)
	List(ctx context.Context, p models.Principal, ri RequestInfo) ([]*models.Subform, error)
	ListPage(ctx context.Context, p models.Principal, page int, ri RequestInfo) (paging.Page[*models.Subform], error)
	Get(ctx context.Context, p models.Principal, id string, ri RequestInfo) (*models.Subform, error)
	Update(ctx context.Context, p models.Principal, id string, fields map[string]interface{}, ri RequestInfo) error
	Delete(ctx context.Context, p models.Principal, id string, ri RequestInfo) error
}

// RecordService implements the business operations on records.
type RecordService interface {
	Create(ctx context.Context, p models.Principal, req models.CreateRecordRequest, ri RequestInfo) (string, error)
	List(ctx context.Context, p models.Principal, ri RequestInfo) ([]*models.Record, error)
	ListPage(ctx context.Context, p models.Principal, page int, ri RequestInfo) (paging.Page[*models.Record], error)
	Get(ctx context.Context, p models.Principal, id string, ri RequestInfo) (*models.Record, error)
	Update(ctx context.Context, p models.Principal, id string, fields map[string]interface{}, ri RequestInfo) error
	Delete(ctx context.Context, p models.Principal, id string, ri RequestInfo) error
}

// SubrecordService implements the business operations on subrecords,
// including the parent record's rollup counter maintenance.
type SubrecordService interface {
	Create(ctx context.Context, p models.Principal, req models.CreateSubrecordRequest, ri RequestInfo) (string, error)
	List(ctx context.Context, p models.Principal, ri RequestInfo) ([]*models.Subrecord, error)
	ListPage(ctx context.Context, p models.Principal, page int, ri RequestInfo) (paging.Page[*models.Subrecord], error)
	Get(ctx context.Context, p models.Principal, id string, ri RequestInfo) (*models.Subrecord, error)
	Update(ctx context.Context, p models.Principal, id string, fields map[string]interface{}, ri RequestInfo) error
	Delete(ctx context.Context, p models.Principal, id string, ri RequestInfo) error
}

// UserService provisions and manages users in Firebase Auth, mirroring the
// role and org claims into a profile document.
type UserService interface {
	Register(ctx context.Context, req models.RegisterUserRequest) (string, error)
	ListVisible(ctx context.Context, p models.Principal) ([]models.UserSummary, error)
	Delete(ctx context.Context, p models.Principal, uid string, ri RequestInfo) error
}

// LogService reads the audit trail for the admin log view.
type LogService interface {
	List(ctx context.Context, p models.Principal, limit int) ([]map[string]interface{}, error)
}

