package authz

import (
	"github.com/linkcart/b2b-backend/pkg/enums"
)

// PolicyMetadata is the attribute record the database helper functions
// read for the session identity.
type PolicyMetadata struct {
	Role      enums.UserRole
	CompanyID string
	StoreIDs  []string
}

// LinkPair is one row of a many-to-many link table.
type LinkPair struct {
	LeftID  string
	RightID string
}

// EmployeeRow is the slice of the employees table the policies join
// through when resolving the lowest tier.
type EmployeeRow struct {
	ID            string
	CompanyID     string
	CustomerEmail string
}

// PolicyDataset re-derives row visibility the same way the database
// row-level-security policies do: from the session email, the metadata
// table, and the link tables, with nothing taken from the request
// context. The differential tests run identical scenarios through these
// predicates and through the middleware guards and require the outcomes
// to match.
type PolicyDataset struct {
	// Metadata is keyed by identity email.
	Metadata map[string]PolicyMetadata

	// CompanyStores holds (company_id, store_id) pairs.
	CompanyStores []LinkPair

	// ProductStores holds (product_id, store_id) pairs.
	ProductStores []LinkPair

	Employees []EmployeeRow
}

// metadataFor mirrors current_user_metadata(): a missing record yields
// the default lowest tier with no company or store scope.
func (d *PolicyDataset) metadataFor(email string) PolicyMetadata {
	if email == "" {
		return PolicyMetadata{Role: enums.DefaultUserRole}
	}
	if meta, ok := d.Metadata[email]; ok {
		if !meta.Role.IsValid() {
			meta.Role = enums.DefaultUserRole
		}
		return meta
	}
	return PolicyMetadata{Role: enums.DefaultUserRole}
}

func (d *PolicyDataset) companyLinked(companyID, storeID string) bool {
	for _, pair := range d.CompanyStores {
		if pair.LeftID == companyID && pair.RightID == storeID {
			return true
		}
	}
	return false
}

func (d *PolicyDataset) productLinked(productID, storeID string) bool {
	for _, pair := range d.ProductStores {
		if pair.LeftID == productID && pair.RightID == storeID {
			return true
		}
	}
	return false
}

// CompanyRowVisible evaluates the companies table policies.
func (d *PolicyDataset) CompanyRowVisible(email, companyID string) bool {
	meta := d.metadataFor(email)
	if meta.Role == enums.UserRolePlatformAdmin {
		return true
	}
	return meta.CompanyID != "" && meta.CompanyID == companyID
}

// StoreRowVisible evaluates the stores table policies. Only store
// admins have a store-set policy; the lowest tier has no stores policy
// at all, so a company_user never sees a store row even with entries in
// their store set.
func (d *PolicyDataset) StoreRowVisible(email, storeID string) bool {
	meta := d.metadataFor(email)
	switch meta.Role {
	case enums.UserRolePlatformAdmin:
		return true
	case enums.UserRoleCompanyAdmin:
		return meta.CompanyID != "" && d.companyLinked(meta.CompanyID, storeID)
	case enums.UserRoleStoreAdmin:
		for _, sid := range meta.StoreIDs {
			if sid == storeID {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// CompanyStoreLinkWritable evaluates the WITH CHECK side of the
// company_store_links policies: an insert or delete is admitted for
// platform admins on any pair and for company admins on rows belonging
// to their own company.
func (d *PolicyDataset) CompanyStoreLinkWritable(email, companyID string) bool {
	meta := d.metadataFor(email)
	switch meta.Role {
	case enums.UserRolePlatformAdmin:
		return true
	case enums.UserRoleCompanyAdmin:
		return meta.CompanyID != "" && meta.CompanyID == companyID
	default:
		return false
	}
}

// ProductStoreLinkWritable evaluates the WITH CHECK side of the
// product_store_links policies: company admins may only touch pairs
// whose store is linked to their own company.
func (d *PolicyDataset) ProductStoreLinkWritable(email, storeID string) bool {
	meta := d.metadataFor(email)
	switch meta.Role {
	case enums.UserRolePlatformAdmin:
		return true
	case enums.UserRoleCompanyAdmin:
		return meta.CompanyID != "" && d.companyLinked(meta.CompanyID, storeID)
	default:
		return false
	}
}

// ProductRowVisible evaluates the products table policies.
func (d *PolicyDataset) ProductRowVisible(email, productID string) bool {
	meta := d.metadataFor(email)
	switch meta.Role {
	case enums.UserRolePlatformAdmin:
		return true
	case enums.UserRoleCompanyAdmin:
		if meta.CompanyID == "" {
			return false
		}
		for _, pair := range d.ProductStores {
			if pair.LeftID == productID && d.companyLinked(meta.CompanyID, pair.RightID) {
				return true
			}
		}
		return false
	case enums.UserRoleStoreAdmin:
		for _, sid := range meta.StoreIDs {
			if d.productLinked(productID, sid) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// EmployeeRowVisible evaluates the employees table policies. The lowest
// tier only reaches its own row, located through the customer email that
// matches the session setting.
func (d *PolicyDataset) EmployeeRowVisible(email, employeeID string) bool {
	meta := d.metadataFor(email)
	if meta.Role == enums.UserRolePlatformAdmin {
		return true
	}

	var row *EmployeeRow
	for i := range d.Employees {
		if d.Employees[i].ID == employeeID {
			row = &d.Employees[i]
			break
		}
	}
	if row == nil {
		return false
	}

	if meta.CompanyID == "" || row.CompanyID != meta.CompanyID {
		return false
	}
	if meta.Role == enums.UserRoleCompanyAdmin {
		return true
	}
	return row.CustomerEmail == email
}
