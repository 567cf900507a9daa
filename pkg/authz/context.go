package authz

import (
	"github.com/linkcart/b2b-backend/pkg/enums"
)

// TenantContext is the per-request authorization snapshot resolved from
// the identity metadata store. It travels on the request context and is
// the only input the middleware guards consult.
type TenantContext struct {
	// Email is the stable identifier of the caller, also mirrored into
	// the database session for row-level security.
	Email string

	Role enums.UserRole

	// CompanyID is empty for platform admins and for identities without
	// provisioned metadata.
	CompanyID string

	// StoreIDs lists the stores the identity may act on directly. Only
	// materially used for store admins.
	StoreIDs []string

	// Authenticated reports whether a verified credential produced this
	// context. Guards return 401 rather than 403 when it is false.
	Authenticated bool

	// Provisioned reports whether a metadata record existed. Missing
	// metadata degrades to the lowest tier, never to an error.
	Provisioned bool
}

// Anonymous returns the context used when no credential resolves.
func Anonymous() TenantContext {
	return TenantContext{Role: enums.DefaultUserRole}
}

// Unprovisioned returns the lowest-privilege context for an
// authenticated identity with no metadata record.
func Unprovisioned(email string) TenantContext {
	return TenantContext{
		Email:         email,
		Role:          enums.DefaultUserRole,
		Authenticated: true,
	}
}

// HasStore reports whether the context's direct store set contains id.
func (t TenantContext) HasStore(id string) bool {
	for _, sid := range t.StoreIDs {
		if sid == id {
			return true
		}
	}
	return false
}
