package enums

import "testing"

func TestUserRoleRanksDescend(t *testing.T) {
	ordered := UserRoles()
	if len(ordered) != 4 {
		t.Fatalf("expected 4 roles, got %d", len(ordered))
	}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1].Rank() <= ordered[i].Rank() {
			t.Fatalf("expected %s to outrank %s", ordered[i-1], ordered[i])
		}
	}
}

func TestUserRoleRankValues(t *testing.T) {
	cases := map[UserRole]int{
		UserRolePlatformAdmin: 4,
		UserRoleCompanyAdmin:  3,
		UserRoleStoreAdmin:    2,
		UserRoleCompanyUser:   1,
	}
	for role, want := range cases {
		if got := role.Rank(); got != want {
			t.Errorf("rank of %s: expected %d got %d", role, want, got)
		}
	}
}

func TestUnknownRoleRanksBelowEveryTier(t *testing.T) {
	unknown := UserRole("super_admin")
	if unknown.IsValid() {
		t.Fatal("expected unknown role to be invalid")
	}
	for _, role := range UserRoles() {
		if unknown.Rank() >= role.Rank() {
			t.Fatalf("expected unknown role to rank below %s", role)
		}
	}
}

func TestParseUserRole(t *testing.T) {
	role, err := ParseUserRole("store_admin")
	if err != nil {
		t.Fatalf("parse store_admin: %v", err)
	}
	if role != UserRoleStoreAdmin {
		t.Fatalf("expected store_admin got %s", role)
	}

	if _, err := ParseUserRole("STORE_ADMIN"); err == nil {
		t.Fatal("expected error for wrong case")
	}
	if _, err := ParseUserRole(""); err == nil {
		t.Fatal("expected error for empty role")
	}
}

func TestDefaultUserRoleIsLowestTier(t *testing.T) {
	for _, role := range UserRoles() {
		if role != DefaultUserRole && role.Rank() <= DefaultUserRole.Rank() {
			t.Fatalf("expected %s to outrank the default role", role)
		}
	}
}
