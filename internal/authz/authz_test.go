package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forms-backend-go/internal/models"
)

func principal(role models.Role, orgs ...string) models.Principal {
	return models.Principal{ID: "u1", Email: "u1@example.com", Role: role, Orgs: orgs}
}

func staticOrgs(orgs ...string) OrgResolver {
	return OrgResolverFunc(func(ctx context.Context) (models.OrgSet, error) {
		return orgs, nil
	})
}

func TestAuthorizeDecisionMatrix(t *testing.T) {
	tests := []struct {
		name     string
		p        models.Principal
		action   Action
		resolver OrgResolver
		want     Decision
	}{
		{"admin view", principal(models.RoleAdmin), ActionView, staticOrgs("other"), Allow},
		{"admin delete without orgs", principal(models.RoleAdmin), ActionDelete, staticOrgs(), Allow},

		{"manager view match", principal(models.RoleManager, "orgA"), ActionView, staticOrgs("orgA"), Allow},
		{"manager edit match", principal(models.RoleManager, "orgA"), ActionEdit, staticOrgs("orgA", "orgB"), Allow},
		{"manager delete miss", principal(models.RoleManager, "orgA"), ActionDelete, staticOrgs("orgB"), DenyForbidden},
		{"manager view miss hides resource", principal(models.RoleManager, "orgA"), ActionView, staticOrgs("orgB"), DenyNotFound},

		{"operator create own orgs", principal(models.RoleOperator, "orgA"), ActionCreate, staticOrgs("orgA"), Allow},
		{"operator edit miss", principal(models.RoleOperator, "orgA"), ActionEdit, staticOrgs("orgB"), DenyForbidden},

		{"user view match", principal(models.RoleUser, "orgA"), ActionView, staticOrgs("orgA"), Allow},
		{"user view miss hides resource", principal(models.RoleUser, "orgA"), ActionView, staticOrgs("orgB"), DenyNotFound},
		{"user create denied", principal(models.RoleUser, "orgA"), ActionCreate, staticOrgs("orgA"), DenyForbidden},
		{"user edit denied", principal(models.RoleUser, "orgA"), ActionEdit, staticOrgs("orgA"), DenyForbidden},
		{"user delete denied", principal(models.RoleUser, "orgA"), ActionDelete, staticOrgs("orgA"), DenyForbidden},

		{"unknown role denied", principal(models.Role("Supervisor"), "orgA"), ActionView, staticOrgs("orgA"), DenyForbidden},
		{"empty role denied", principal(models.Role(""), "orgA"), ActionView, staticOrgs("orgA"), DenyForbidden},
		{"lowercase admin is unknown", principal(models.Role("admin")), ActionView, staticOrgs("orgA"), DenyForbidden},

		{"empty principal orgs never match", principal(models.RoleManager), ActionEdit, staticOrgs("orgA"), DenyForbidden},
		{"empty resource orgs never match", principal(models.RoleManager, "orgA"), ActionView, staticOrgs(), DenyNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Authorize(context.Background(), tt.p, tt.action, tt.resolver)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthorizeAdminNeverInvokesResolver(t *testing.T) {
	panicking := OrgResolverFunc(func(ctx context.Context) (models.OrgSet, error) {
		panic("resolver must not run for Admin")
	})
	got, err := Authorize(context.Background(), principal(models.RoleAdmin), ActionDelete, panicking)
	require.NoError(t, err)
	assert.Equal(t, Allow, got)
}

func TestAuthorizeResolverError(t *testing.T) {
	resolverErr := errors.New("store unavailable")
	failing := OrgResolverFunc(func(ctx context.Context) (models.OrgSet, error) {
		return nil, resolverErr
	})

	got, err := Authorize(context.Background(), principal(models.RoleManager, "orgA"), ActionView, failing)
	assert.ErrorIs(t, err, resolverErr)
	assert.Equal(t, DenyForbidden, got)
}

func TestPrincipalOrgs(t *testing.T) {
	p := principal(models.RoleOperator, "orgA", "orgB")
	orgs, err := PrincipalOrgs(p).ResolveOrgs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.OrgSet{"orgA", "orgB"}, orgs)
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "forbidden", DenyForbidden.String())
	assert.Equal(t, "not_found", DenyNotFound.String())
}
