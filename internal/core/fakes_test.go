package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"forms-backend-go/internal/db"
	"forms-backend-go/internal/models"
)

// recordingAudit captures audit entries synchronously for assertions.
type recordingAudit struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (a *recordingAudit) Record(entry models.AuditLog) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

func (a *recordingAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.entries))
	for i, e := range a.entries {
		out[i] = e.Action
	}
	return out
}

// fakeFormRepo is an in-memory FormRepository.
type fakeFormRepo struct {
	mu      sync.Mutex
	seq     int
	forms   map[string]*models.Form
	updates map[string]map[string]interface{}
	failAll error
}

func newFakeFormRepo() *fakeFormRepo {
	return &fakeFormRepo{
		forms:   make(map[string]*models.Form),
		updates: make(map[string]map[string]interface{}),
	}
}

func (r *fakeFormRepo) Create(ctx context.Context, form *models.Form) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return "", r.failAll
	}
	r.seq++
	id := fmt.Sprintf("form-%d", r.seq)
	stored := *form
	stored.ID = id
	r.forms[id] = &stored
	return id, nil
}

func (r *fakeFormRepo) GetByID(ctx context.Context, id string) (*models.Form, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	form, ok := r.forms[id]
	if !ok {
		return nil, fmt.Errorf("form %s: %w", id, db.ErrNotFound)
	}
	return form, nil
}

func (r *fakeFormRepo) GetOrgs(ctx context.Context, id string) (models.OrgSet, error) {
	form, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return form.Org, nil
}

func (r *fakeFormRepo) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.forms[id]; !ok {
		return fmt.Errorf("form %s: %w", id, db.ErrNotFound)
	}
	r.updates[id] = fields
	return nil
}

func (r *fakeFormRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.forms, id)
	return nil
}

func (r *fakeFormRepo) ListAll(ctx context.Context, orderByCreatedAt bool) ([]*models.Form, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	var out []*models.Form
	for _, form := range r.forms {
		out = append(out, form)
	}
	return out, nil
}

func (r *fakeFormRepo) ListByAnyOrg(ctx context.Context, orgs models.OrgSet) ([]*models.Form, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	var out []*models.Form
	for _, form := range r.forms {
		if models.Intersects(orgs, form.Org) {
			out = append(out, form)
		}
	}
	return out, nil
}

// fakeRecordRepo is an in-memory RecordRepository.
type fakeRecordRepo struct {
	mu      sync.Mutex
	seq     int
	records map[string]*models.Record
	updates map[string]map[string]interface{}
	failGet error
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{
		records: make(map[string]*models.Record),
		updates: make(map[string]map[string]interface{}),
	}
}

func (r *fakeRecordRepo) Create(ctx context.Context, record *models.Record) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	id := fmt.Sprintf("record-%d", r.seq)
	stored := *record
	stored.ID = id
	r.records[id] = &stored
	return id, nil
}

func (r *fakeRecordRepo) GetByID(ctx context.Context, id string) (*models.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failGet != nil {
		return nil, r.failGet
	}
	record, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("record %s: %w", id, db.ErrNotFound)
	}
	return record, nil
}

func (r *fakeRecordRepo) GetOrgs(ctx context.Context, id string) (models.OrgSet, error) {
	record, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return record.Org, nil
}

func (r *fakeRecordRepo) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return fmt.Errorf("record %s: %w", id, db.ErrNotFound)
	}
	r.updates[id] = fields
	return nil
}

func (r *fakeRecordRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, id)
	return nil
}

func (r *fakeRecordRepo) ListAll(ctx context.Context, orderByCreatedAt bool) ([]*models.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Record
	for _, record := range r.records {
		out = append(out, record)
	}
	return out, nil
}

func (r *fakeRecordRepo) ListByAnyOrg(ctx context.Context, orgs models.OrgSet) ([]*models.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Record
	for _, record := range r.records {
		if models.Intersects(orgs, record.Org) {
			out = append(out, record)
		}
	}
	return out, nil
}

func (r *fakeRecordRepo) ListByForm(ctx context.Context, formID string) ([]*models.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Record
	for _, record := range r.records {
		if record.FormID == formID {
			out = append(out, record)
		}
	}
	return out, nil
}

// fakeSubformRepo is an in-memory SubformRepository covering only what the
// subrecord service touches.
type fakeSubformRepo struct {
	mu       sync.Mutex
	subforms map[string]*models.Subform
}

func newFakeSubformRepo() *fakeSubformRepo {
	return &fakeSubformRepo{subforms: make(map[string]*models.Subform)}
}

func (r *fakeSubformRepo) Create(ctx context.Context, subform *models.Subform) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := fmt.Sprintf("subform-%d", len(r.subforms)+1)
	stored := *subform
	stored.ID = id
	r.subforms[id] = &stored
	return id, nil
}

func (r *fakeSubformRepo) GetByID(ctx context.Context, id string) (*models.Subform, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	subform, ok := r.subforms[id]
	if !ok {
		return nil, fmt.Errorf("subform %s: %w", id, db.ErrNotFound)
	}
	return subform, nil
}

func (r *fakeSubformRepo) GetOrgs(ctx context.Context, id string) (models.OrgSet, error) {
	subform, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return subform.Org, nil
}

func (r *fakeSubformRepo) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return nil
}

func (r *fakeSubformRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subforms, id)
	return nil
}

func (r *fakeSubformRepo) ListAll(ctx context.Context, orderByCreatedAt bool) ([]*models.Subform, error) {
	return nil, nil
}

func (r *fakeSubformRepo) ListByAnyOrg(ctx context.Context, orgs models.OrgSet) ([]*models.Subform, error) {
	return nil, nil
}

// fakeSubrecordRepo is an in-memory SubrecordRepository.
type fakeSubrecordRepo struct {
	mu         sync.Mutex
	seq        int
	subrecords map[string]*models.Subrecord
	failCount  error
}

func newFakeSubrecordRepo() *fakeSubrecordRepo {
	return &fakeSubrecordRepo{subrecords: make(map[string]*models.Subrecord)}
}

func (r *fakeSubrecordRepo) Create(ctx context.Context, subrecord *models.Subrecord) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	id := fmt.Sprintf("subrecord-%d", r.seq)
	stored := *subrecord
	stored.ID = id
	r.subrecords[id] = &stored
	return id, nil
}

func (r *fakeSubrecordRepo) GetByID(ctx context.Context, id string) (*models.Subrecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	subrecord, ok := r.subrecords[id]
	if !ok {
		return nil, fmt.Errorf("subrecord %s: %w", id, db.ErrNotFound)
	}
	return subrecord, nil
}

func (r *fakeSubrecordRepo) GetOrgs(ctx context.Context, id string) (models.OrgSet, error) {
	subrecord, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return subrecord.Org, nil
}

func (r *fakeSubrecordRepo) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return nil
}

func (r *fakeSubrecordRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subrecords[id]; !ok {
		return fmt.Errorf("subrecord %s: %w", id, db.ErrNotFound)
	}
	delete(r.subrecords, id)
	return nil
}

func (r *fakeSubrecordRepo) ListAll(ctx context.Context, orderByCreatedAt bool) ([]*models.Subrecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Subrecord
	for _, subrecord := range r.subrecords {
		out = append(out, subrecord)
	}
	return out, nil
}

func (r *fakeSubrecordRepo) ListByAnyOrg(ctx context.Context, orgs models.OrgSet) ([]*models.Subrecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Subrecord
	for _, subrecord := range r.subrecords {
		if models.Intersects(orgs, subrecord.Org) {
			out = append(out, subrecord)
		}
	}
	return out, nil
}

func (r *fakeSubrecordRepo) ListBySubform(ctx context.Context, subformID string) ([]*models.Subrecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Subrecord
	for _, subrecord := range r.subrecords {
		if subrecord.SubformID == subformID {
			out = append(out, subrecord)
		}
	}
	return out, nil
}

func (r *fakeSubrecordRepo) CountByRecordSubform(ctx context.Context, recordID, subformID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCount != nil {
		return 0, r.failCount
	}
	count := 0
	for _, subrecord := range r.subrecords {
		if subrecord.RecordID == recordID && subrecord.SubformID == subformID {
			count++
		}
	}
	return count, nil
}

// fakeAuditRepo is an in-memory AuditRepository with an optional injected
// failure and a channel to observe asynchronous writes.
type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []models.AuditLog
	raw     []models.RawAuditEntry
	failErr error
	written chan struct{}
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{written: make(chan struct{}, 16)}
}

func (r *fakeAuditRepo) Create(ctx context.Context, entry models.AuditLog) error {
	defer func() {
		select {
		case r.written <- struct{}{}:
		default:
		}
	}()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeAuditRepo) List(ctx context.Context, limit int) ([]models.RawAuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit > len(r.raw) {
		limit = len(r.raw)
	}
	return r.raw[:limit], nil
}

// fakeAuthAdmin is an in-memory db.AuthAdmin.
type fakeAuthAdmin struct {
	mu      sync.Mutex
	seq     int
	users   map[string]*db.AuthUser
	deleted []string
}

func newFakeAuthAdmin() *fakeAuthAdmin {
	return &fakeAuthAdmin{users: make(map[string]*db.AuthUser)}
}

func (a *fakeAuthAdmin) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seq++
	uid := fmt.Sprintf("uid-%d", a.seq)
	a.users[uid] = &db.AuthUser{UID: uid, Email: email, DisplayName: displayName}
	return uid, nil
}

func (a *fakeAuthAdmin) SetCustomClaims(ctx context.Context, uid string, claims map[string]interface{}) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	user, ok := a.users[uid]
	if !ok {
		return errors.New("no such user")
	}
	user.CustomClaims = claims
	return nil
}

func (a *fakeAuthAdmin) ListUsers(ctx context.Context) ([]db.AuthUser, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []db.AuthUser
	for _, user := range a.users {
		out = append(out, *user)
	}
	return out, nil
}

func (a *fakeAuthAdmin) DeleteUser(ctx context.Context, uid string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.users[uid]; !ok {
		return errors.New("no such user")
	}
	delete(a.users, uid)
	a.deleted = append(a.deleted, uid)
	return nil
}

// fakeUserProfileRepo is an in-memory UserProfileRepository.
type fakeUserProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*models.UserProfile
	failDel  error
}

func newFakeUserProfileRepo() *fakeUserProfileRepo {
	return &fakeUserProfileRepo{profiles: make(map[string]*models.UserProfile)}
}

func (r *fakeUserProfileRepo) Set(ctx context.Context, uid string, profile *models.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[uid] = profile
	return nil
}

func (r *fakeUserProfileRepo) Delete(ctx context.Context, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failDel != nil {
		return r.failDel
	}
	delete(r.profiles, uid)
	return nil
}
