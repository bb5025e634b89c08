package db

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"

	"forms-backend-go/internal/models"
)

const recordsCollection = "records"

// firestoreRecordRepository implements RecordRepository using Firestore.
type firestoreRecordRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreRecordRepository creates a new Firestore-backed RecordRepository.
func NewFirestoreRecordRepository(client *firestore.Client, logger *zap.Logger) RecordRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for RecordRepository.")
	}
	return &firestoreRecordRepository{client: client, logger: logger}
}

func (r *firestoreRecordRepository) coll() *firestore.CollectionRef {
	return r.client.Collection(recordsCollection)
}

func (r *firestoreRecordRepository) Create(ctx context.Context, record *models.Record) (string, error) {
	docRef := r.coll().NewDoc()
	_, err := docRef.Create(ctx, map[string]interface{}{
		"formId":     record.FormID,
		"recordData": models.FieldValueDocs(record.RecordData),
		"org":        record.Org.Strings(),
		"createdBy":  record.CreatedBy,
		"createdAt":  record.CreatedAt,
		"updatedAt":  record.UpdatedAt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create record: %w", err)
	}
	record.ID = docRef.ID
	return docRef.ID, nil
}

func (r *firestoreRecordRepository) GetByID(ctx context.Context, id string) (*models.Record, error) {
	data, err := getDocData(ctx, r.coll(), id)
	if err != nil {
		return nil, err
	}
	return models.RecordFromDoc(id, data), nil
}

func (r *firestoreRecordRepository) GetOrgs(ctx context.Context, id string) (models.OrgSet, error) {
	return getDocOrgs(ctx, r.coll(), id)
}

func (r *firestoreRecordRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return mergeDocFields(ctx, r.coll(), id, fields)
}

func (r *firestoreRecordRepository) Delete(ctx context.Context, id string) error {
	return deleteDoc(ctx, r.coll(), id)
}

func (r *firestoreRecordRepository) ListAll(ctx context.Context, orderByCreatedAt bool) ([]*models.Record, error) {
	docs, err := fetchAll(ctx, r.coll(), orderByCreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return recordsFromDocs(docs), nil
}

func (r *firestoreRecordRepository) ListByAnyOrg(ctx context.Context, orgs models.OrgSet) ([]*models.Record, error) {
	return recordsFromDocs(fetchByAnyOrg(ctx, r.logger, r.coll(), orgs)), nil
}

// ListByForm fetches all records of a form. Older records reference the form
// under "form" rather than "formId", so both predicates run and the results
// merge by document identity.
func (r *firestoreRecordRepository) ListByForm(ctx context.Context, formID string) ([]*models.Record, error) {
	docs := mergePredicates(ctx, r.logger, []predicateQuery{
		func(ctx context.Context) ([]docResult, error) {
			return runQuery(ctx, r.coll().Where("formId", "==", formID))
		},
		func(ctx context.Context) ([]docResult, error) {
			return runQuery(ctx, r.coll().Where("form", "==", formID))
		},
	})
	return recordsFromDocs(docs), nil
}

func recordsFromDocs(docs []docResult) []*models.Record {
	out := make([]*models.Record, 0, len(docs))
	for _, doc := range docs {
		out = append(out, models.RecordFromDoc(doc.ID, doc.Data))
	}
	return out
}
