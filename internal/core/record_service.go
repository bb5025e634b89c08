package core

import (
	"context"
	"fmt"
	"time"

	"forms-backend-go/internal/db"
	"forms-backend-go/internal/models"
	"forms-backend-go/internal/paging"
)

const resourceRecords = "records"

// recordService implements RecordService.
type recordService struct {
	recordRepo db.RecordRepository
	audit      AuditService
}

// NewRecordService creates a new RecordService instance.
func NewRecordService(recordRepo db.RecordRepository, audit AuditService) RecordService {
	return &recordService{recordRepo: recordRepo, audit: audit}
}

// Create stores a new record. The org is always the principal's normalized
// membership, stored as an array so non-admin list queries can match it.
func (s *recordService) Create(ctx context.Context, p models.Principal, req models.CreateRecordRequest, ri RequestInfo) (string, error) {
	now := time.Now().UTC()
	record := &models.Record{
		FormID:     req.FormID,
		RecordData: req.RecordData,
		Org:        models.NormalizeOrgSet(p.Orgs),
		CreatedBy:  p.Email,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if record.RecordData == nil {
		record.RecordData = map[string]models.FieldValue{}
	}
	id, err := s.recordRepo.Create(ctx, record)
	if err != nil {
		return "", fmt.Errorf("failed to create record: %w", err)
	}
	s.audit.Record(auditEntry(p, ri, models.AuditCreate, resourceRecords, id, nil))
	return id, nil
}

func (s *recordService) List(ctx context.Context, p models.Principal, ri RequestInfo) ([]*models.Record, error) {
	var (
		records []*models.Record
		err     error
	)
	if p.Role == models.RoleAdmin {
		records, err = s.recordRepo.ListAll(ctx, false)
	} else {
		records, err = s.recordRepo.ListByAnyOrg(ctx, p.Orgs)
	}
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []*models.Record{}
	}
	s.audit.Record(auditEntry(p, ri, models.AuditViewList, resourceRecords, "", map[string]interface{}{"count": len(records)}))
	return records, nil
}

func (s *recordService) ListPage(ctx context.Context, p models.Principal, page int, ri RequestInfo) (paging.Page[*models.Record], error) {
	var (
		records []*models.Record
		err     error
	)
	if p.Role == models.RoleAdmin {
		records, err = s.recordRepo.ListAll(ctx, true)
	} else {
		records, err = s.recordRepo.ListByAnyOrg(ctx, p.Orgs)
	}
	if err != nil {
		return paging.Page[*models.Record]{}, err
	}
	paging.SortByCreatedAtDesc(records, func(r *models.Record) interface{} { return r.CreatedAt })
	result := paging.Paginate(records, page, paging.PageSize)
	s.audit.Record(auditEntry(p, ri, models.AuditViewList, resourceRecords, "", map[string]interface{}{"count": result.Total, "page": page}))
	return result, nil
}

func (s *recordService) Get(ctx context.Context, p models.Principal, id string, ri RequestInfo) (*models.Record, error) {
	record, err := s.recordRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.audit.Record(auditEntry(p, ri, models.AuditView, resourceRecords, id, nil))
	return record, nil
}

func (s *recordService) Update(ctx context.Context, p models.Principal, id string, fields map[string]interface{}, ri RequestInfo) error {
	sanitizeUpdate(fields)
	if err := s.recordRepo.Update(ctx, id, fields); err != nil {
		return err
	}
	s.audit.Record(auditEntry(p, ri, models.AuditEdit, resourceRecords, id, nil))
	return nil
}

// Delete removes the record. Subrecords referencing it stay in place.
func (s *recordService) Delete(ctx context.Context, p models.Principal, id string, ri RequestInfo) error {
	if err := s.recordRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Record(auditEntry(p, ri, models.AuditDelete, resourceRecords, id, nil))
	return nil
}
