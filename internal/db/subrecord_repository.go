package db

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"forms-backend-go/internal/models"
)

const subrecordsCollection = "subrecords"

// firestoreSubrecordRepository implements SubrecordRepository using Firestore.
type firestoreSubrecordRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreSubrecordRepository creates a new Firestore-backed SubrecordRepository.
func NewFirestoreSubrecordRepository(client *firestore.Client, logger *zap.Logger) SubrecordRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for SubrecordRepository.")
	}
	return &firestoreSubrecordRepository{client: client, logger: logger}
}

func (r *firestoreSubrecordRepository) coll() *firestore.CollectionRef {
	return r.client.Collection(subrecordsCollection)
}

func (r *firestoreSubrecordRepository) Create(ctx context.Context, subrecord *models.Subrecord) (string, error) {
	docRef := r.coll().NewDoc()
	_, err := docRef.Create(ctx, map[string]interface{}{
		"record":    subrecord.RecordID,
		"subform":   subrecord.SubformID,
		"data":      models.FieldValueDocs(subrecord.Data),
		"org":       subrecord.Org.Strings(),
		"createdBy": subrecord.CreatedBy,
		"createdAt": subrecord.CreatedAt,
		"updatedAt": subrecord.UpdatedAt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create subrecord: %w", err)
	}
	subrecord.ID = docRef.ID
	return docRef.ID, nil
}

func (r *firestoreSubrecordRepository) GetByID(ctx context.Context, id string) (*models.Subrecord, error) {
	data, err := getDocData(ctx, r.coll(), id)
	if err != nil {
		return nil, err
	}
	return models.SubrecordFromDoc(id, data), nil
}

func (r *firestoreSubrecordRepository) GetOrgs(ctx context.Context, id string) (models.OrgSet, error) {
	return getDocOrgs(ctx, r.coll(), id)
}

func (r *firestoreSubrecordRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return mergeDocFields(ctx, r.coll(), id, fields)
}

func (r *firestoreSubrecordRepository) Delete(ctx context.Context, id string) error {
	return deleteDoc(ctx, r.coll(), id)
}

func (r *firestoreSubrecordRepository) ListAll(ctx context.Context, orderByCreatedAt bool) ([]*models.Subrecord, error) {
	docs, err := fetchAll(ctx, r.coll(), orderByCreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to list subrecords: %w", err)
	}
	return subrecordsFromDocs(docs), nil
}

func (r *firestoreSubrecordRepository) ListByAnyOrg(ctx context.Context, orgs models.OrgSet) ([]*models.Subrecord, error) {
	return subrecordsFromDocs(fetchByAnyOrg(ctx, r.logger, r.coll(), orgs)), nil
}

func (r *firestoreSubrecordRepository) ListBySubform(ctx context.Context, subformID string) ([]*models.Subrecord, error) {
	docs, err := runQuery(ctx, r.coll().Where("subform", "==", subformID))
	if err != nil {
		return nil, fmt.Errorf("failed to list subrecords for subform '%s': %w", subformID, err)
	}
	return subrecordsFromDocs(docs), nil
}

// CountByRecordSubform counts the subrecords of one (record, subform) pair,
// feeding the parent record's rollup counter.
func (r *firestoreSubrecordRepository) CountByRecordSubform(ctx context.Context, recordID, subformID string) (int, error) {
	iter := r.coll().
		Where("record", "==", recordID).
		Where("subform", "==", subformID).
		Documents(ctx)
	defer iter.Stop()

	count := 0
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to count subrecords for record '%s', subform '%s': %w", recordID, subformID, err)
		}
		count++
	}
	return count, nil
}

func subrecordsFromDocs(docs []docResult) []*models.Subrecord {
	out := make([]*models.Subrecord, 0, len(docs))
	for _, doc := range docs {
		out = append(out, models.SubrecordFromDoc(doc.ID, doc.Data))
	}
	return out
}
