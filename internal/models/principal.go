package models

// Role is the access level carried in a verified token's custom claims.
// Roles are minted by the identity service; this backend only interprets them.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleManager  Role = "Manager"
	RoleOperator Role = "Operator"
	RoleUser     Role = "User"
)

// ParseRole maps a raw claim value to a Role. Unknown values pass through
// verbatim so the authorization layer can deny them explicitly; Known
// reports whether a parsed role is recognized.
func ParseRole(raw string) Role {
	return Role(raw)
}

// Known reports whether the role is one of the four recognized levels.
func (r Role) Known() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleOperator, RoleUser:
		return true
	}
	return false
}

// Principal is the verified caller of a request, built from token claims.
// It is never persisted; a fresh Principal is resolved per request.
type Principal struct {
	ID    string `json:"uid"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
	Orgs  OrgSet `json:"org"`
}

// OrgSet is the organization membership attached to a principal or resource.
// Historically the stored value may be a bare scalar string or an array;
// NormalizeOrgSet accepts both and every read path goes through it.
type OrgSet []string

// NormalizeOrgSet converts any legacy encoding of an org membership into an
// OrgSet. A scalar becomes a singleton, nil/absent becomes empty, and blank
// entries are dropped. It never fails.
func NormalizeOrgSet(raw interface{}) OrgSet {
	switch v := raw.(type) {
	case nil:
		return OrgSet{}
	case string:
		if v == "" {
			return OrgSet{}
		}
		return OrgSet{v}
	case OrgSet:
		return filterBlank(v)
	case []string:
		return filterBlank(v)
	case []interface{}:
		out := make(OrgSet, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return OrgSet{}
	}
}

func filterBlank(in []string) OrgSet {
	out := make(OrgSet, 0, len(in))
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Intersects reports whether the two memberships share at least one
// organization. Matching is byte-exact and case-sensitive.
func Intersects(a, b OrgSet) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, org := range a {
		set[org] = struct{}{}
	}
	for _, org := range b {
		if _, ok := set[org]; ok {
			return true
		}
	}
	return false
}

// Strings returns the set as a plain string slice for store predicates.
func (s OrgSet) Strings() []string {
	return []string(s)
}

// Contains reports whether the set holds the given org identifier.
func (s OrgSet) Contains(org string) bool {
	for _, o := range s {
		if o == org {
			return true
		}
	}
	return false
}
