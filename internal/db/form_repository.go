package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"forms-backend-go/internal/models"
)

const formsCollection = "forms"

// firestoreFormRepository implements FormRepository using Firestore.
type firestoreFormRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreFormRepository creates a new Firestore-backed FormRepository.
func NewFirestoreFormRepository(client *firestore.Client, logger *zap.Logger) FormRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for FormRepository.")
	}
	return &firestoreFormRepository{client: client, logger: logger}
}

func (r *firestoreFormRepository) coll() *firestore.CollectionRef {
	return r.client.Collection(formsCollection)
}

func (r *firestoreFormRepository) Create(ctx context.Context, form *models.Form) (string, error) {
	docRef := r.coll().NewDoc()
	_, err := docRef.Create(ctx, map[string]interface{}{
		"name":      form.Name,
		"desc":      form.Desc,
		"fields":    form.Fields,
		"org":       form.Org.Strings(),
		"createdBy": form.CreatedBy,
		"createdAt": form.CreatedAt,
		"updatedAt": form.UpdatedAt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create form: %w", err)
	}
	form.ID = docRef.ID
	return docRef.ID, nil
}

func (r *firestoreFormRepository) GetByID(ctx context.Context, id string) (*models.Form, error) {
	data, err := getDocData(ctx, r.coll(), id)
	if err != nil {
		return nil, err
	}
	return models.FormFromDoc(id, data), nil
}

func (r *firestoreFormRepository) GetOrgs(ctx context.Context, id string) (models.OrgSet, error) {
	return getDocOrgs(ctx, r.coll(), id)
}

func (r *firestoreFormRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return mergeDocFields(ctx, r.coll(), id, fields)
}

func (r *firestoreFormRepository) Delete(ctx context.Context, id string) error {
	return deleteDoc(ctx, r.coll(), id)
}

func (r *firestoreFormRepository) ListAll(ctx context.Context, orderByCreatedAt bool) ([]*models.Form, error) {
	docs, err := fetchAll(ctx, r.coll(), orderByCreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}
	return formsFromDocs(docs), nil
}

func (r *firestoreFormRepository) ListByAnyOrg(ctx context.Context, orgs models.OrgSet) ([]*models.Form, error) {
	return formsFromDocs(fetchByAnyOrg(ctx, r.logger, r.coll(), orgs)), nil
}

func formsFromDocs(docs []docResult) []*models.Form {
	out := make([]*models.Form, 0, len(docs))
	for _, doc := range docs {
		out = append(out, models.FormFromDoc(doc.ID, doc.Data))
	}
	return out
}

// Shared document helpers used by every resource repository.

func getDocData(ctx context.Context, coll *firestore.CollectionRef, id string) (map[string]interface{}, error) {
	if id == "" {
		return nil, errors.New("document id cannot be empty")
	}
	snap, err := coll.Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%s/%s: %w", coll.ID, id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get %s/%s: %w", coll.ID, id, err)
	}
	return snap.Data(), nil
}

func getDocOrgs(ctx context.Context, coll *firestore.CollectionRef, id string) (models.OrgSet, error) {
	data, err := getDocData(ctx, coll, id)
	if err != nil {
		return nil, err
	}
	return models.NormalizeOrgSet(data["org"]), nil
}

func mergeDocFields(ctx context.Context, coll *firestore.CollectionRef, id string, fields map[string]interface{}) error {
	if id == "" {
		return errors.New("document id cannot be empty")
	}
	_, err := coll.Doc(id).Set(ctx, fields, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", coll.ID, id, err)
	}
	return nil
}

func deleteDoc(ctx context.Context, coll *firestore.CollectionRef, id string) error {
	if id == "" {
		return errors.New("document id cannot be empty")
	}
	if _, err := coll.Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", coll.ID, id, err)
	}
	return nil
}
