// Package authz holds the pure authorization decisions shared by the
// HTTP middleware guards and the database policy mirror. Both layers
// must reach identical allow/deny outcomes for any input; keeping the
// decisions here, free of I/O, is what makes that testable.
package authz

import (
	"github.com/linkcart/b2b-backend/pkg/enums"
)

// HasPermission reports whether the actual role satisfies the required
// minimum tier. Platform admins satisfy every requirement.
func HasPermission(actual, required enums.UserRole) bool {
	return actual.Rank() >= required.Rank()
}

// CanAccessCompany decides company-scoped access: platform admins pass
// unconditionally, everyone else only reaches their own company.
func CanAccessCompany(role enums.UserRole, userCompanyID, targetCompanyID string) bool {
	if role == enums.UserRolePlatformAdmin {
		return true
	}
	if userCompanyID == "" || targetCompanyID == "" {
		return false
	}
	return userCompanyID == targetCompanyID
}

// CanAccessStore decides store-scoped access. companyLinked carries the
// result of the company/store link existence lookup, the one piece of
// state this decision needs beyond the tenant context. A company admin
// reaches every store linked to their company; a store admin is confined
// to their direct store set. The lowest tier reaches no store, matching
// the store table policies, which grant nothing to company_user.
func CanAccessStore(t TenantContext, targetStoreID string, companyLinked bool) bool {
	if t.Role == enums.UserRolePlatformAdmin {
		return true
	}
	if targetStoreID == "" {
		return false
	}
	if t.Role == enums.UserRoleCompanyAdmin && t.CompanyID != "" {
		return companyLinked
	}
	return t.Role == enums.UserRoleStoreAdmin && t.HasStore(targetStoreID)
}
