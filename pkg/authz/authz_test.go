package authz

import (
	"testing"

	"github.com/linkcart/b2b-backend/pkg/enums"
)

func TestHasPermissionMonotonic(t *testing.T) {
	roles := enums.UserRoles()
	for _, actual := range roles {
		for _, required := range roles {
			want := actual.Rank() >= required.Rank()
			if got := HasPermission(actual, required); got != want {
				t.Errorf("HasPermission(%s, %s): expected %v got %v", actual, required, want, got)
			}
		}
	}
}

func TestHasPermissionPlatformAdminSatisfiesAll(t *testing.T) {
	for _, required := range enums.UserRoles() {
		if !HasPermission(enums.UserRolePlatformAdmin, required) {
			t.Errorf("expected platform_admin to satisfy %s", required)
		}
	}
}

func TestHasPermissionUnknownRoleDenied(t *testing.T) {
	for _, required := range enums.UserRoles() {
		if HasPermission(enums.UserRole("mystery"), required) {
			t.Errorf("expected unknown role to fail %s requirement", required)
		}
	}
}

func TestCanAccessCompany(t *testing.T) {
	cases := []struct {
		name     string
		role     enums.UserRole
		own      string
		target   string
		expected bool
	}{
		{"platform admin any company", enums.UserRolePlatformAdmin, "", "c1", true},
		{"company admin own company", enums.UserRoleCompanyAdmin, "c1", "c1", true},
		{"company admin other company", enums.UserRoleCompanyAdmin, "c1", "c2", false},
		{"store admin own company", enums.UserRoleStoreAdmin, "c1", "c1", true},
		{"company user own company", enums.UserRoleCompanyUser, "c1", "c1", true},
		{"no company id", enums.UserRoleCompanyAdmin, "", "c1", false},
		{"no target", enums.UserRoleCompanyAdmin, "c1", "", false},
	}
	for _, tc := range cases {
		if got := CanAccessCompany(tc.role, tc.own, tc.target); got != tc.expected {
			t.Errorf("%s: expected %v got %v", tc.name, tc.expected, got)
		}
	}
}

func TestCanAccessStore(t *testing.T) {
	cases := []struct {
		name     string
		tenant   TenantContext
		target   string
		linked   bool
		expected bool
	}{
		{
			name:     "platform admin any store",
			tenant:   TenantContext{Role: enums.UserRolePlatformAdmin, Authenticated: true},
			target:   "s1",
			expected: true,
		},
		{
			name:     "company admin linked store",
			tenant:   TenantContext{Role: enums.UserRoleCompanyAdmin, CompanyID: "c1", Authenticated: true},
			target:   "s1",
			linked:   true,
			expected: true,
		},
		{
			name:     "company admin unlinked store",
			tenant:   TenantContext{Role: enums.UserRoleCompanyAdmin, CompanyID: "c1", Authenticated: true},
			target:   "s1",
			expected: false,
		},
		{
			name:     "store admin direct store",
			tenant:   TenantContext{Role: enums.UserRoleStoreAdmin, CompanyID: "c1", StoreIDs: []string{"s1", "s2"}, Authenticated: true},
			target:   "s2",
			expected: true,
		},
		{
			name:     "store admin foreign store even when company linked",
			tenant:   TenantContext{Role: enums.UserRoleStoreAdmin, CompanyID: "c1", StoreIDs: []string{"s1"}, Authenticated: true},
			target:   "s3",
			linked:   true,
			expected: false,
		},
		{
			name:     "company user no store set",
			tenant:   TenantContext{Role: enums.UserRoleCompanyUser, CompanyID: "c1", Authenticated: true},
			target:   "s1",
			linked:   true,
			expected: false,
		},
		{
			name:     "company user denied even with store in set",
			tenant:   TenantContext{Role: enums.UserRoleCompanyUser, CompanyID: "c1", StoreIDs: []string{"s1"}, Authenticated: true},
			target:   "s1",
			expected: false,
		},
		{
			name:     "missing target",
			tenant:   TenantContext{Role: enums.UserRoleStoreAdmin, StoreIDs: []string{"s1"}, Authenticated: true},
			target:   "",
			expected: false,
		},
	}
	for _, tc := range cases {
		if got := CanAccessStore(tc.tenant, tc.target, tc.linked); got != tc.expected {
			t.Errorf("%s: expected %v got %v", tc.name, tc.expected, got)
		}
	}
}

func TestAnonymousDefaultsToLowestTier(t *testing.T) {
	tc := Anonymous()
	if tc.Authenticated {
		t.Fatal("anonymous context must not be authenticated")
	}
	if tc.Role != enums.DefaultUserRole {
		t.Fatalf("expected default role got %s", tc.Role)
	}
}

func TestUnprovisionedKeepsIdentity(t *testing.T) {
	tc := Unprovisioned("new.hire@acme.test")
	if !tc.Authenticated {
		t.Fatal("expected authenticated context")
	}
	if tc.Provisioned {
		t.Fatal("expected unprovisioned context")
	}
	if tc.Role != enums.DefaultUserRole {
		t.Fatalf("expected default role got %s", tc.Role)
	}
	if tc.Email != "new.hire@acme.test" {
		t.Fatalf("unexpected email %q", tc.Email)
	}
	if tc.CompanyID != "" || len(tc.StoreIDs) != 0 {
		t.Fatal("expected empty company and store scope")
	}
}
