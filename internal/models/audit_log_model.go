package models

import "time"

// Audit actions recorded for every authorized call.
const (
	AuditView     = "view"
	AuditViewList = "view_list"
	AuditCreate   = "create"
	AuditEdit     = "edit"
	AuditDelete   = "delete"
)

// AuditActor is the claim snapshot of the principal that performed an
// audited action.
type AuditActor struct {
	UID   string `json:"uid" firestore:"uid"`
	Email string `json:"email" firestore:"email"`
	Role  string `json:"role" firestore:"role"`
	Org   OrgSet `json:"org" firestore:"org"`
}

// AuditLog is one append-only audit trail entry. Entries are never mutated
// or deleted by this backend; they are read only by the admin log view.
type AuditLog struct {
	ID           string                 `json:"id" firestore:"-"`
	Action       string                 `json:"action" firestore:"action"`
	ResourceType string                 `json:"resourceType" firestore:"resourceType"`
	ResourceID   string                 `json:"resourceId,omitempty" firestore:"resourceId,omitempty"`
	Actor        AuditActor             `json:"actor" firestore:"actor"`
	Method       string                 `json:"method" firestore:"method"`
	Path         string                 `json:"path" firestore:"path"`
	IP           string                 `json:"ip,omitempty" firestore:"ip,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty" firestore:"metadata,omitempty"`
	Timestamp    time.Time              `json:"timestamp" firestore:"timestamp,serverTimestamp"`
}

// RawAuditEntry is a stored audit document before display normalization.
// Historical entries carry timestamps in several encodings, so the log view
// works on the raw document rather than a typed struct.
type RawAuditEntry struct {
	ID   string
	Data map[string]interface{}
}

// ActorFor snapshots a principal's claims for an audit entry.
func ActorFor(p Principal) AuditActor {
	return AuditActor{UID: p.ID, Email: p.Email, Role: string(p.Role), Org: p.Orgs}
}
