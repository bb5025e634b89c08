package db

import (
	"context"
	"errors"

	"forms-backend-go/internal/models"
)

// ErrNotFound marks a lookup whose target document does not exist.
var ErrNotFound = errors.New("document not found")

// FormRepository defines storage operations for form definitions.
type FormRepository interface {
	Create(ctx context.Context, form *models.Form) (string, error)
	GetByID(ctx context.Context, id string) (*models.Form, error)
	GetOrgs(ctx context.Context, id string) (models.OrgSet, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context, orderByCreatedAt bool) ([]*models.Form, error)
	ListByAnyOrg(ctx context.Context, orgs models.OrgSet) ([]*models.Form, error)
}

// SubformRepository defines storage operations for subform definitions.
type SubformRepository interface {
	Create(ctx context.Context, subform *models.Subform) (string, error)
	GetByID(ctx context.Context, id string) (*models.Subform, error)
	GetOrgs(ctx context.Context, id string) (models.OrgSet, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context, orderByCreatedAt bool) ([]*models.Subform, error)
	ListByAnyOrg(ctx context.Context, orgs models.OrgSet) ([]*models.Subform, error)
}

// RecordRepository defines storage operations for records.
type RecordRepository interface {
	Create(ctx context.Context, record *models.Record) (string, error)
	GetByID(ctx context.Context, id string) (*models.Record, error)
	GetOrgs(ctx context.Context, id string) (models.OrgSet, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context, orderByCreatedAt bool) ([]*models.Record, error)
	ListByAnyOrg(ctx context.Context, orgs models.OrgSet) ([]*models.Record, error)
	// ListByForm tolerates both historical form-reference keys.
	ListByForm(ctx context.Context, formID string) ([]*models.Record, error)
}

// SubrecordRepository defines storage operations for subrecords.
type SubrecordRepository interface {
	Create(ctx context.Context, subrecord *models.Subrecord) (string, error)
	GetByID(ctx context.Context, id string) (*models.Subrecord, error)
	GetOrgs(ctx context.Context, id string) (models.OrgSet, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context, orderByCreatedAt bool) ([]*models.Subrecord, error)
	ListByAnyOrg(ctx context.Context, orgs models.OrgSet) ([]*models.Subrecord, error)
	ListBySubform(ctx context.Context, subformID string) ([]*models.Subrecord, error)
	CountByRecordSubform(ctx context.Context, recordID, subformID string) (int, error)
}

// AuditRepository defines storage operations for the append-only audit log.
type AuditRepository interface {
	Create(ctx context.Context, entry models.AuditLog) error
	// List returns the latest entries as raw documents, newest first. The
	// caller normalizes the heterogeneous timestamp encodings for display.
	List(ctx context.Context, limit int) ([]models.RawAuditEntry, error)
}

// UserProfileRepository defines storage operations for user profile
// documents mirrored from Firebase Auth.
type UserProfileRepository interface {
	Set(ctx context.Context, uid string, profile *models.UserProfile) error
	Delete(ctx context.Context, uid string) error
}

// AuthUser is one Firebase Auth account with its custom claims.
type AuthUser struct {
	UID          string
	Email        string
	DisplayName  string
	Disabled     bool
	CustomClaims map[string]interface{}
}

// AuthAdmin abstracts the Firebase Auth admin operations the user service
// needs, keeping it testable without the SDK.
type AuthAdmin interface {
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	SetCustomClaims(ctx context.Context, uid string, claims map[string]interface{}) error
	ListUsers(ctx context.Context) ([]AuthUser, error)
	DeleteUser(ctx context.Context, uid string) error
}
