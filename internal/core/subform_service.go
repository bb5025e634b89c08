package core

import (
	"context"
	"fmt"
	"time"

	"forms-backend-go/internal/db"
	"forms-backend-go/internal/models"
	"forms-backend-go/internal/paging"
)

const resourceSubforms = "subforms"

// subformService implements SubformService.
type subformService struct {
	subformRepo db.SubformRepository
	audit       AuditService
}

// NewSubformService creates a new SubformService instance.
func NewSubformService(subformRepo db.SubformRepository, audit AuditService) SubformService {
	return &subformService{subformRepo: subformRepo, audit: audit}
}

// Create stores a new subform under a parent form. The parent reference is
// not validated: it is a weak lookup key and the parent may legitimately be
// deleted later.
func (s *subformService) Create(ctx context.Context, p models.Principal, req models.CreateSubformRequest, ri RequestInfo) (string, error) {
	now := time.Now().UTC()
	subform := &models.Subform{
		FormID:    req.FormID,
		Name:      req.Name,
		Desc:      req.Desc,
		Fields:    req.Fields,
		Org:       models.NormalizeOrgSet(p.Orgs),
		CreatedBy: p.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := s.subformRepo.Create(ctx, subform)
	if err != nil {
		return "", fmt.Errorf("failed to create subform: %w", err)
	}
	s.audit.Record(auditEntry(p, ri, models.AuditCreate, resourceSubforms, id, map[string]interface{}{"name": req.Name}))
	return id, nil
}

func (s *subformService) List(ctx context.Context, p models.Principal, ri RequestInfo) ([]*models.Subform, error) {
	var (
		subforms []*models.Subform
		err      error
	)
	if p.Role == models.RoleAdmin {
		subforms, err = s.subformRepo.ListAll(ctx, false)
	} else {
		subforms, err = s.subformRepo.ListByAnyOrg(ctx, p.Orgs)
	}
	if err != nil {
		return nil, err
	}
	if subforms == nil {
		subforms = []*models.Subform{}
	}
	s.audit.Record(auditEntry(p, ri, models.AuditViewList, resourceSubforms, "", map[string]interface{}{"count": len(subforms)}))
	return subforms, nil
}

func (s *subformService) ListPage(ctx context.Context, p models.Principal, page int, ri RequestInfo) (paging.Page[*models.Subform], error) {
	var (
		subforms []*models.Subform
		err      error
	)
	if p.Role == models.RoleAdmin {
		subforms, err = s.subformRepo.ListAll(ctx, true)
	} else {
		subforms, err = s.subformRepo.ListByAnyOrg(ctx, p.Orgs)
	}
	if err != nil {
		return paging.Page[*models.Subform]{}, err
	}
	paging.SortByCreatedAtDesc(subforms, func(sf *models.Subform) interface{} { return sf.CreatedAt })
	result := paging.Paginate(subforms, page, paging.PageSize)
	s.audit.Record(auditEntry(p, ri, models.AuditViewList, resourceSubforms, "", map[string]interface{}{"count": result.Total, "page": page}))
	return result, nil
}

func (s *subformService) Get(ctx context.Context, p models.Principal, id string, ri RequestInfo) (*models.Subform, error) {
	subform, err := s.subformRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.audit.Record(auditEntry(p, ri, models.AuditView, resourceSubforms, id, nil))
	return subform, nil
}

func (s *subformService) Update(ctx context.Context, p models.Principal, id string, fields map[string]interface{}, ri RequestInfo) error {
	sanitizeUpdate(fields)
	if err := s.subformRepo.Update(ctx, id, fields); err != nil {
		return err
	}
	s.audit.Record(auditEntry(p, ri, models.AuditEdit, resourceSubforms, id, nil))
	return nil
}

func (s *subformService) Delete(ctx context.Context, p models.Principal, id string, ri RequestInfo) error {
	if err := s.subformRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Record(auditEntry(p, ri, models.AuditDelete, resourceSubforms, id, nil))
	return nil
}
