package core

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"forms-backend-go/internal/db"
	"forms-backend-go/internal/models"
)

const resourceUsers = "users"

// ErrForbidden marks an operation the principal's role does not permit.
var ErrForbidden = errors.New("forbidden")

// userService implements UserService on top of Firebase Auth. Role and org
// live in the account's custom claims; the Firestore profile doc mirrors
// them for the admin user list.
type userService struct {
	authAdmin db.AuthAdmin
	userRepo  db.UserProfileRepository
	audit     AuditService
	logger    *zap.Logger
}

// NewUserService creates a new UserService instance.
func NewUserService(authAdmin db.AuthAdmin, userRepo db.UserProfileRepository, audit AuditService, logger *zap.Logger) UserService {
	return &userService{authAdmin: authAdmin, userRepo: userRepo, audit: audit, logger: logger}
}

// Register provisions a Firebase Auth account with role/org custom claims
// and mirrors the profile into Firestore. The org claim is stored as minted
// (scalar or array); the profile doc keeps the normalized array.
func (s *userService) Register(ctx context.Context, req models.RegisterUserRequest) (string, error) {
	uid, err := s.authAdmin.CreateUser(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create auth user: %w", err)
	}
	if err := s.authAdmin.SetCustomClaims(ctx, uid, map[string]interface{}{"role": req.Role, "org": req.Org}); err != nil {
		return "", fmt.Errorf("failed to set custom claims for '%s': %w", uid, err)
	}
	profile := &models.UserProfile{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
		Org:   models.NormalizeOrgSet(req.Org),
	}
	if err := s.userRepo.Set(ctx, uid, profile); err != nil {
		return "", fmt.Errorf("failed to store user profile for '%s': %w", uid, err)
	}
	return uid, nil
}

// ListVisible returns the Firebase Auth accounts the principal may see:
// all of them for Admin, the org-intersection subset for Manager.
func (s *userService) ListVisible(ctx context.Context, p models.Principal) ([]models.UserSummary, error) {
	if p.Role != models.RoleAdmin && p.Role != models.RoleManager {
		return nil, ErrForbidden
	}
	users, err := s.authAdmin.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list auth users: %w", err)
	}

	out := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		claims := u.CustomClaims
		if claims == nil {
			claims = map[string]interface{}{}
		}
		if p.Role != models.RoleAdmin {
			targetOrgs := models.NormalizeOrgSet(claims["org"])
			if !models.Intersects(p.Orgs, targetOrgs) {
				continue
			}
		}
		role, _ := claims["role"].(string)
		org := claims["org"]
		if org == nil {
			org = ""
		}
		out = append(out, models.UserSummary{
			ID:       u.UID,
			Name:     u.DisplayName,
			Email:    u.Email,
			Role:     role,
			Org:      org,
			Disabled: u.Disabled,
		})
	}
	return out, nil
}

// Delete removes a Firebase Auth account. The Firestore profile cleanup is
// best-effort and never fails the deletion.
func (s *userService) Delete(ctx context.Context, p models.Principal, uid string, ri RequestInfo) error {
	if p.Role != models.RoleAdmin {
		return ErrForbidden
	}
	if err := s.authAdmin.DeleteUser(ctx, uid); err != nil {
		return fmt.Errorf("failed to delete auth user '%s': %w", uid, err)
	}
	s.audit.Record(auditEntry(p, ri, models.AuditDelete, resourceUsers, uid, map[string]interface{}{"initiator": p.Email}))
	if err := s.userRepo.Delete(ctx, uid); err != nil {
		s.logger.Warn("user profile cleanup failed", zap.String("uid", uid), zap.Error(err))
	}
	return nil
}
