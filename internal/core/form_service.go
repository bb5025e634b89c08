package core

import (
	"context"
	"fmt"
	"time"

	"forms-backend-go/internal/db"
	"forms-backend-go/internal/models"
	"forms-backend-go/internal/paging"
)

const resourceForms = "forms"

// formService implements FormService.
type formService struct {
	formRepo db.FormRepository
	audit    AuditService
}

// NewFormService creates a new FormService instance.
func NewFormService(formRepo db.FormRepository, audit AuditService) FormService {
	return &formService{formRepo: formRepo, audit: audit}
}

// Create stores a new form owned by the principal's orgs. The editor sends
// fields grouped in rows; the stored form keeps a flat list. createdAt and
// updatedAt are set here, never trusted from the client.
func (s *formService) Create(ctx context.Context, p models.Principal, req models.CreateFormRequest, ri RequestInfo) (string, error) {
	fields := make([]models.FieldDef, 0)
	for _, line := range req.Lines {
		fields = append(fields, line.Fields...)
	}
	now := time.Now().UTC()
	form := &models.Form{
		Name:      req.Name,
		Desc:      req.Desc,
		Fields:    fields,
		Org:       models.NormalizeOrgSet(p.Orgs),
		CreatedBy: p.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := s.formRepo.Create(ctx, form)
	if err != nil {
		return "", fmt.Errorf("failed to create form: %w", err)
	}
	s.audit.Record(auditEntry(p, ri, models.AuditCreate, resourceForms, id, map[string]interface{}{"name": req.Name}))
	return id, nil
}

// List returns every form visible to the principal: the whole collection
// for Admin, the org-intersection subset otherwise. A principal with no org
// claims sees an empty list rather than an error.
func (s *formService) List(ctx context.Context, p models.Principal, ri RequestInfo) ([]*models.Form, error) {
	var (
		forms []*models.Form
		err   error
	)
	if p.Role == models.RoleAdmin {
		forms, err = s.formRepo.ListAll(ctx, false)
	} else {
		forms, err = s.formRepo.ListByAnyOrg(ctx, p.Orgs)
	}
	if err != nil {
		return nil, err
	}
	if forms == nil {
		forms = []*models.Form{}
	}
	s.audit.Record(auditEntry(p, ri, models.AuditViewList, resourceForms, "", map[string]interface{}{"count": len(forms)}))
	return forms, nil
}

// ListPage returns one fixed-size page of the visible forms, newest first.
// Sorting happens in memory so no composite index is needed on top of the
// org predicates.
func (s *formService) ListPage(ctx context.Context, p models.Principal, page int, ri RequestInfo) (paging.Page[*models.Form], error) {
	var (
		forms []*models.Form
		err   error
	)
	if p.Role == models.RoleAdmin {
		forms, err = s.formRepo.ListAll(ctx, true)
	} else {
		forms, err = s.formRepo.ListByAnyOrg(ctx, p.Orgs)
	}
	if err != nil {
		return paging.Page[*models.Form]{}, err
	}
	paging.SortByCreatedAtDesc(forms, func(f *models.Form) interface{} { return f.CreatedAt })
	result := paging.Paginate(forms, page, paging.PageSize)
	s.audit.Record(auditEntry(p, ri, models.AuditViewList, resourceForms, "", map[string]interface{}{"count": result.Total, "page": page}))
	return result, nil
}

func (s *formService) Get(ctx context.Context, p models.Principal, id string, ri RequestInfo) (*models.Form, error) {
	form, err := s.formRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.audit.Record(auditEntry(p, ri, models.AuditView, resourceForms, id, nil))
	return form, nil
}

// Update merges the given fields into the form. Identity and ownership
// fields are stripped from the payload; updatedAt is always refreshed.
func (s *formService) Update(ctx context.Context, p models.Principal, id string, fields map[string]interface{}, ri RequestInfo) error {
	sanitizeUpdate(fields)
	if err := s.formRepo.Update(ctx, id, fields); err != nil {
		return err
	}
	s.audit.Record(auditEntry(p, ri, models.AuditEdit, resourceForms, id, nil))
	return nil
}

// Delete removes the form. Subforms and records referencing it are left in
// place; orphaned children are an accepted state.
func (s *formService) Delete(ctx context.Context, p models.Principal, id string, ri RequestInfo) error {
	if err := s.formRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Record(auditEntry(p, ri, models.AuditDelete, resourceForms, id, nil))
	return nil
}

// sanitizeUpdate strips identity and ownership fields from a partial update
// payload and stamps the refresh time.
func sanitizeUpdate(fields map[string]interface{}) {
	delete(fields, "id")
	delete(fields, "org")
	delete(fields, "createdAt")
	delete(fields, "createdBy")
	fields["updatedAt"] = time.Now().UTC()
}
