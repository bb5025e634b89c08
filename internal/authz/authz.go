// Package authz implements org-intersection access control decisions.
// It is a pure decision layer: it never touches the store directly and has
// no side effects. Resource org lookups are injected as resolvers so the
// same policy serves every resource kind.
package authz

import (
	"context"

	"forms-backend-go/internal/models"
)

// Action is the operation being authorized.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Decision is the outcome of an authorization check. DenyNotFound conceals
// the existence of resources from viewers outside the owning orgs.
type Decision int

const (
	Allow Decision = iota
	DenyForbidden
	DenyNotFound
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyForbidden:
		return "forbidden"
	case DenyNotFound:
		return "not_found"
	}
	return "unknown"
}

// OrgResolver yields the set of organizations owning the targeted resource.
// For create the resource does not exist yet and the resolver returns the
// principal's own orgs.
type OrgResolver interface {
	ResolveOrgs(ctx context.Context) (models.OrgSet, error)
}

// OrgResolverFunc adapts a function to the OrgResolver interface.
type OrgResolverFunc func(ctx context.Context) (models.OrgSet, error)

func (f OrgResolverFunc) ResolveOrgs(ctx context.Context) (models.OrgSet, error) {
	return f(ctx)
}

// PrincipalOrgs returns a resolver yielding the principal's own membership.
// Used for create (a principal may only create on behalf of orgs it belongs
// to) and for list endpoints, where the org filter is applied downstream.
func PrincipalOrgs(p models.Principal) OrgResolver {
	return OrgResolverFunc(func(context.Context) (models.OrgSet, error) {
		return p.Orgs, nil
	})
}

// Authorize decides whether the principal may perform the action. Role
// precedence is fixed:
//
//  1. Admin is always allowed; the resolver is never invoked.
//  2. Manager and Operator get full CRUD on resources whose orgs intersect
//     theirs. On a miss, view yields DenyNotFound to hide existence, any
//     other action yields DenyForbidden.
//  3. User may only view, with the same intersection rule; mutations are
//     DenyForbidden without invoking the resolver.
//  4. Unknown or missing roles are DenyForbidden.
//
// A resolver failure is returned as an error; the caller surfaces it as a
// generic failure, never as a denial.
func Authorize(ctx context.Context, p models.Principal, action Action, resolver OrgResolver) (Decision, error) {
	switch p.Role {
	case models.RoleAdmin:
		return Allow, nil

	case models.RoleManager, models.RoleOperator:
		return decideByIntersection(ctx, p, action, resolver)

	case models.RoleUser:
		if action != ActionView {
			return DenyForbidden, nil
		}
		return decideByIntersection(ctx, p, action, resolver)

	default:
		return DenyForbidden, nil
	}
}

func decideByIntersection(ctx context.Context, p models.Principal, action Action, resolver OrgResolver) (Decision, error) {
	resourceOrgs, err := resolver.ResolveOrgs(ctx)
	if err != nil {
		return DenyForbidden, err
	}
	if models.Intersects(p.Orgs, resourceOrgs) {
		return Allow, nil
	}
	if action == ActionView {
		return DenyNotFound, nil
	}
	return DenyForbidden, nil
}
