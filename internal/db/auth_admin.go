package db

import (
	"context"
	"fmt"
	"log"

	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/iterator"
)

// firebaseAuthAdmin adapts the Firebase Auth admin client to the
// AuthAdmin interface.
type firebaseAuthAdmin struct {
	client *auth.Client
}

// NewFirebaseAuthAdmin creates a AuthAdmin backed by Firebase Auth.
func NewFirebaseAuthAdmin(client *auth.Client) AuthAdmin {
	if client == nil {
		log.Fatal("Firebase Auth client is not initialized for AuthAdmin.")
	}
	return &firebaseAuthAdmin{client: client}
}

func (a *firebaseAuthAdmin) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)
	record, err := a.client.CreateUser(ctx, params)
	if err != nil {
		return "", fmt.Errorf("auth.CreateUser: %w", err)
	}
	return record.UID, nil
}

func (a *firebaseAuthAdmin) SetCustomClaims(ctx context.Context, uid string, claims map[string]interface{}) error {
	if err := a.client.SetCustomUserClaims(ctx, uid, claims); err != nil {
		return fmt.Errorf("auth.SetCustomUserClaims: %w", err)
	}
	return nil
}

func (a *firebaseAuthAdmin) ListUsers(ctx context.Context) ([]AuthUser, error) {
	var out []AuthUser
	iter := a.client.Users(ctx, "")
	for {
		record, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("auth.Users: %w", err)
		}
		out = append(out, AuthUser{
			UID:          record.UID,
			Email:        record.Email,
			DisplayName:  record.DisplayName,
			Disabled:     record.Disabled,
			CustomClaims: record.CustomClaims,
		})
	}
	return out, nil
}

func (a *firebaseAuthAdmin) DeleteUser(ctx context.Context, uid string) error {
	if err := a.client.DeleteUser(ctx, uid); err != nil {
		return fmt.Errorf("auth.DeleteUser: %w", err)
	}
	return nil
}
