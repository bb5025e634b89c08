package db

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"

	"forms-backend-go/internal/models"
)

const subformsCollection = "subforms"

// firestoreSubformRepository implements SubformRepository using Firestore.
type firestoreSubformRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreSubformRepository creates a new Firestore-backed SubformRepository.
func NewFirestoreSubformRepository(client *firestore.Client, logger *zap.Logger) SubformRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for SubformRepository.")
	}
	return &firestoreSubformRepository{client: client, logger: logger}
}

func (r *firestoreSubformRepository) coll() *firestore.CollectionRef {
	return r.client.Collection(subformsCollection)
}

func (r *firestoreSubformRepository) Create(ctx context.Context, subform *models.Subform) (string, error) {
	docRef := r.coll().NewDoc()
	_, err := docRef.Create(ctx, map[string]interface{}{
		"formId":    subform.FormID,
		"name":      subform.Name,
		"desc":      subform.Desc,
		"fields":    subform.Fields,
		"org":       subform.Org.Strings(),
		"createdBy": subform.CreatedBy,
		"createdAt": subform.CreatedAt,
		"updatedAt": subform.UpdatedAt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create subform: %w", err)
	}
	subform.ID = docRef.ID
	return docRef.ID, nil
}

func (r *firestoreSubformRepository) GetByID(ctx context.Context, id string) (*models.Subform, error) {
	data, err := getDocData(ctx, r.coll(), id)
	if err != nil {
		return nil, err
	}
	return models.SubformFromDoc(id, data), nil
}

func (r *firestoreSubformRepository) GetOrgs(ctx context.Context, id string) (models.OrgSet, error) {
	return getDocOrgs(ctx, r.coll(), id)
}

func (r *firestoreSubformRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return mergeDocFields(ctx, r.coll(), id, fields)
}

func (r *firestoreSubformRepository) Delete(ctx context.Context, id string) error {
	return deleteDoc(ctx, r.coll(), id)
}

func (r *firestoreSubformRepository) ListAll(ctx context.Context, orderByCreatedAt bool) ([]*models.Subform, error) {
	docs, err := fetchAll(ctx, r.coll(), orderByCreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to list subforms: %w", err)
	}
	return subformsFromDocs(docs), nil
}

func (r *firestoreSubformRepository) ListByAnyOrg(ctx context.Context, orgs models.OrgSet) ([]*models.Subform, error) {
	return subformsFromDocs(fetchByAnyOrg(ctx, r.logger, r.coll(), orgs)), nil
}

func subformsFromDocs(docs []docResult) []*models.Subform {
	out := make([]*models.Subform, 0, len(docs))
	for _, doc := range docs {
		out = append(out, models.SubformFromDoc(doc.ID, doc.Data))
	}
	return out
}
