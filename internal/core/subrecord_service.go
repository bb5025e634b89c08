package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"forms-backend-go/internal/db"
	"forms-backend-go/internal/models"
	"forms-backend-go/internal/paging"
)

const resourceSubrecords = "subrecords"

// subrecordService implements SubrecordService. Besides the CRUD surface it
// maintains the parent record's rollup counter: the number of subrecords per
// (record, subform) pair mirrored into the record's data map under the
// subform's name.
type subrecordService struct {
	subrecordRepo db.SubrecordRepository
	recordRepo    db.RecordRepository
	subformRepo   db.SubformRepository
	audit         AuditService
	logger        *zap.Logger
}

// NewSubrecordService creates a new SubrecordService instance.
func NewSubrecordService(
	subrecordRepo db.SubrecordRepository,
	recordRepo db.RecordRepository,
	subformRepo db.SubformRepository,
	audit AuditService,
	logger *zap.Logger,
) SubrecordService {
	return &subrecordService{
		subrecordRepo: subrecordRepo,
		recordRepo:    recordRepo,
		subformRepo:   subformRepo,
		audit:         audit,
		logger:        logger,
	}
}

func (s *subrecordService) Create(ctx context.Context, p models.Principal, req models.CreateSubrecordRequest, ri RequestInfo) (string, error) {
	now := time.Now().UTC()
	subrecord := &models.Subrecord{
		RecordID:  req.RecordID,
		SubformID: req.SubformID,
		Data:      req.Data,
		Org:       models.NormalizeOrgSet(p.Orgs),
		CreatedBy: p.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if subrecord.Data == nil {
		subrecord.Data = map[string]models.FieldValue{}
	}
	id, err := s.subrecordRepo.Create(ctx, subrecord)
	if err != nil {
		return "", fmt.Errorf("failed to create subrecord: %w", err)
	}
	s.refreshRollup(ctx, req.RecordID, req.SubformID)
	s.audit.Record(auditEntry(p, ri, models.AuditCreate, resourceSubrecords, id, nil))
	return id, nil
}

func (s *subrecordService) List(ctx context.Context, p models.Principal, ri RequestInfo) ([]*models.Subrecord, error) {
	var (
		subrecords []*models.Subrecord
		err        error
	)
	if p.Role == models.RoleAdmin {
		subrecords, err = s.subrecordRepo.ListAll(ctx, false)
	} else {
		subrecords, err = s.subrecordRepo.ListByAnyOrg(ctx, p.Orgs)
	}
	if err != nil {
		return nil, err
	}
	if subrecords == nil {
		subrecords = []*models.Subrecord{}
	}
	s.audit.Record(auditEntry(p, ri, models.AuditViewList, resourceSubrecords, "", map[string]interface{}{"count": len(subrecords)}))
	return subrecords, nil
}

func (s *subrecordService) ListPage(ctx context.Context, p models.Principal, page int, ri RequestInfo) (paging.Page[*models.Subrecord], error) {
	var (
		subrecords []*models.Subrecord
		err        error
	)
	if p.Role == models.RoleAdmin {
		subrecords, err = s.subrecordRepo.ListAll(ctx, true)
	} else {
		subrecords, err = s.subrecordRepo.ListByAnyOrg(ctx, p.Orgs)
	}
	if err != nil {
		return paging.Page[*models.Subrecord]{}, err
	}
	paging.SortByCreatedAtDesc(subrecords, func(sr *models.Subrecord) interface{} { return sr.CreatedAt })
	result := paging.Paginate(subrecords, page, paging.PageSize)
	s.audit.Record(auditEntry(p, ri, models.AuditViewList, resourceSubrecords, "", map[string]interface{}{"count": result.Total, "page": page}))
	return result, nil
}

func (s *subrecordService) Get(ctx context.Context, p models.Principal, id string, ri RequestInfo) (*models.Subrecord, error) {
	subrecord, err := s.subrecordRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.audit.Record(auditEntry(p, ri, models.AuditView, resourceSubrecords, id, nil))
	return subrecord, nil
}

func (s *subrecordService) Update(ctx context.Context, p models.Principal, id string, fields map[string]interface{}, ri RequestInfo) error {
	sanitizeUpdate(fields)
	if err := s.subrecordRepo.Update(ctx, id, fields); err != nil {
		return err
	}
	s.audit.Record(auditEntry(p, ri, models.AuditEdit, resourceSubrecords, id, nil))
	return nil
}

// Delete removes the subrecord and refreshes the parent's rollup counter.
func (s *subrecordService) Delete(ctx context.Context, p models.Principal, id string, ri RequestInfo) error {
	subrecord, err := s.subrecordRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.subrecordRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.refreshRollup(ctx, subrecord.RecordID, subrecord.SubformID)
	s.audit.Record(auditEntry(p, ri, models.AuditDelete, resourceSubrecords, id, nil))
	return nil
}

// refreshRollup recomputes the parent record's count of subrecords for one
// subform and writes it into the record's data map under the subform name.
// This is a read-modify-write with no transactional guarantee: concurrent
// child creations can race and lose an update. The dbtool recalc command is
// the repair path. Failures are logged and swallowed so counter maintenance
// never blocks the primary operation.
func (s *subrecordService) refreshRollup(ctx context.Context, recordID, subformID string) {
	if recordID == "" || subformID == "" {
		return
	}
	count, err := s.subrecordRepo.CountByRecordSubform(ctx, recordID, subformID)
	if err != nil {
		s.logger.Warn("rollup count failed", zap.String("record", recordID), zap.String("subform", subformID), zap.Error(err))
		return
	}

	// Counter key is the subform's display name, falling back to its ID.
	key := subformID
	if subform, err := s.subformRepo.GetByID(ctx, subformID); err == nil && subform.Name != "" {
		key = subform.Name
	}

	record, err := s.recordRepo.GetByID(ctx, recordID)
	if err != nil {
		s.logger.Warn("rollup parent read failed", zap.String("record", recordID), zap.Error(err))
		return
	}
	data := record.RecordData
	if data == nil {
		data = map[string]models.FieldValue{}
	}
	data[key] = models.FieldValue{Value: count, Type: models.FieldNumber}

	err = s.recordRepo.Update(ctx, recordID, map[string]interface{}{
		"recordData": models.FieldValueDocs(data),
		"updatedAt":  time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn("rollup write failed", zap.String("record", recordID), zap.Error(err))
	}
}
