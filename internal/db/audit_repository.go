package db

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"forms-backend-go/internal/models"
)

const auditLogsCollection = "auditLogs"

// firestoreAuditRepository implements AuditRepository using Firestore.
// The collection is insert-only: nothing in this backend mutates or deletes
// audit documents.
type firestoreAuditRepository struct {
	client *firestore.Client
}

// NewFirestoreAuditRepository creates a new Firestore-backed AuditRepository.
func NewFirestoreAuditRepository(client *firestore.Client) AuditRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for AuditRepository.")
	}
	return &firestoreAuditRepository{client: client}
}

func (r *firestoreAuditRepository) Create(ctx context.Context, entry models.AuditLog) error {
	_, _, err := r.client.Collection(auditLogsCollection).Add(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

func (r *firestoreAuditRepository) List(ctx context.Context, limit int) ([]models.RawAuditEntry, error) {
	iter := r.client.Collection(auditLogsCollection).
		OrderBy("timestamp", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var out []models.RawAuditEntry
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list audit entries: %w", err)
		}
		out = append(out, models.RawAuditEntry{ID: doc.Ref.ID, Data: doc.Data()})
	}
	return out, nil
}
