package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"forms-backend-go/internal/models"
)

func TestUserServiceRegister(t *testing.T) {
	auth := newFakeAuthAdmin()
	profiles := newFakeUserProfileRepo()
	svc := NewUserService(auth, profiles, &recordingAudit{}, zap.NewNop())

	uid, err := svc.Register(context.Background(), models.RegisterUserRequest{
		Email:    "op@example.com",
		Password: "secret123",
		Name:     "Op Erator",
		Role:     "Operator",
		Org:      "orgA",
	})
	require.NoError(t, err)
	require.NotEmpty(t, uid)

	user := auth.users[uid]
	require.NotNil(t, user)
	assert.Equal(t, "op@example.com", user.Email)
	// Claims keep the org exactly as minted.
	assert.Equal(t, map[string]interface{}{"role": "Operator", "org": "orgA"}, user.CustomClaims)

	profile := profiles.profiles[uid]
	require.NotNil(t, profile)
	assert.Equal(t, "Operator", profile.Role)
	// The profile mirror normalizes the scalar to an array.
	assert.Equal(t, models.OrgSet{"orgA"}, profile.Org)
}

func TestUserServiceListVisible(t *testing.T) {
	auth := newFakeAuthAdmin()
	svc := NewUserService(auth, newFakeUserProfileRepo(), &recordingAudit{}, zap.NewNop())
	ctx := context.Background()

	register := func(email, role string, org interface{}) {
		uid, err := auth.CreateUser(ctx, email, "pw", email)
		require.NoError(t, err)
		require.NoError(t, auth.SetCustomClaims(ctx, uid, map[string]interface{}{"role": role, "org": org}))
	}
	register("a@example.com", "Operator", "orgA")
	register("b@example.com", "User", []interface{}{"orgB", "orgA"})
	register("c@example.com", "Manager", "orgC")

	t.Run("admin sees everyone", func(t *testing.T) {
		users, err := svc.ListVisible(ctx, admin())
		require.NoError(t, err)
		assert.Len(t, users, 3)
	})

	t.Run("manager sees same-org users only", func(t *testing.T) {
		users, err := svc.ListVisible(ctx, manager("orgA"))
		require.NoError(t, err)
		emails := make([]string, len(users))
		for i, u := range users {
			emails[i] = u.Email
		}
		assert.ElementsMatch(t, []string{"a@example.com", "b@example.com"}, emails)
	})

	t.Run("operator is forbidden", func(t *testing.T) {
		p := models.Principal{ID: "o1", Role: models.RoleOperator, Orgs: models.OrgSet{"orgA"}}
		_, err := svc.ListVisible(ctx, p)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestUserServiceDelete(t *testing.T) {
	auth := newFakeAuthAdmin()
	profiles := newFakeUserProfileRepo()
	audit := &recordingAudit{}
	svc := NewUserService(auth, profiles, audit, zap.NewNop())
	ctx := context.Background()

	uid, err := auth.CreateUser(ctx, "gone@example.com", "pw", "Gone")
	require.NoError(t, err)
	profiles.profiles[uid] = &models.UserProfile{Email: "gone@example.com"}

	t.Run("non-admin is forbidden", func(t *testing.T) {
		err := svc.Delete(ctx, manager("orgA"), uid, testRI)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("admin deletes account and profile", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, admin(), uid, testRI))
		assert.NotContains(t, auth.users, uid)
		assert.NotContains(t, profiles.profiles, uid)
		assert.Equal(t, []string{models.AuditDelete}, audit.actions())
	})
}

func TestUserServiceDeleteProfileCleanupBestEffort(t *testing.T) {
	auth := newFakeAuthAdmin()
	profiles := newFakeUserProfileRepo()
	profiles.failDel = errors.New("profile store down")
	svc := NewUserService(auth, profiles, &recordingAudit{}, zap.NewNop())
	ctx := context.Background()

	uid, err := auth.CreateUser(ctx, "x@example.com", "pw", "X")
	require.NoError(t, err)

	// The auth deletion succeeds; the failed profile cleanup is logged only.
	assert.NoError(t, svc.Delete(ctx, admin(), uid, testRI))
	assert.NotContains(t, auth.users, uid)
}
