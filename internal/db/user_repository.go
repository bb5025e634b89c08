package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"

	"forms-backend-go/internal/models"
)

const usersCollection = "users"

// firestoreUserProfileRepository implements UserProfileRepository using
// Firestore. The document ID is the Firebase Auth UID.
type firestoreUserProfileRepository struct {
	client *firestore.Client
}

// NewFirestoreUserProfileRepository creates a new Firestore-backed
// UserProfileRepository.
func NewFirestoreUserProfileRepository(client *firestore.Client) UserProfileRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for UserProfileRepository.")
	}
	return &firestoreUserProfileRepository{client: client}
}

func (r *firestoreUserProfileRepository) Set(ctx context.Context, uid string, profile *models.UserProfile) error {
	if uid == "" {
		return errors.New("uid cannot be empty")
	}
	_, err := r.client.Collection(usersCollection).Doc(uid).Set(ctx, map[string]interface{}{
		"name":  profile.Name,
		"email": profile.Email,
		"role":  profile.Role,
		"org":   profile.Org.Strings(),
	})
	if err != nil {
		return fmt.Errorf("failed to set user profile '%s': %w", uid, err)
	}
	return nil
}

func (r *firestoreUserProfileRepository) Delete(ctx context.Context, uid string) error {
	if uid == "" {
		return errors.New("uid cannot be empty")
	}
	if _, err := r.client.Collection(usersCollection).Doc(uid).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete user profile '%s': %w", uid, err)
	}
	return nil
}
