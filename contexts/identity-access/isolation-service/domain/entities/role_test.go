package entities

import "testing"

func TestRoleRankOrdering(t *testing.T) {
	ordered := []Role{RoleUser, RoleSalesperson, RoleManager, RoleOrgAdmin, RoleSystemAdmin}
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Rank() <= ordered[i-1].Rank() {
			t.Fatalf("expected %s to outrank %s", ordered[i], ordered[i-1])
		}
	}
}

func TestRoleHasRole(t *testing.T) {
	if !RoleOrgAdmin.HasRole(RoleManager) {
		t.Fatalf("org_admin must satisfy a manager requirement")
	}
	if RoleUser.HasRole(RoleManager) {
		t.Fatalf("user must not satisfy a manager requirement")
	}
	if !RoleManager.HasRole(RoleManager) {
		t.Fatalf("a role must satisfy itself")
	}
}

func TestParseRoleNormalizesInput(t *testing.T) {
	if ParseRole("  Org_Admin ") != RoleOrgAdmin {
		t.Fatalf("expected normalized org_admin role")
	}
	if ParseRole("superuser").Rank() != 0 {
		t.Fatalf("unrecognized roles must keep rank 0")
	}
}

func TestUnknownRoleNeverSatisfiesRequirements(t *testing.T) {
	unknown := Role("superuser")
	if unknown.Rank() != 0 {
		t.Fatalf("unknown roles must rank below every known role, got %d", unknown.Rank())
	}
	if unknown.HasRole(RoleUser) {
		t.Fatalf("unknown role must not satisfy any requirement")
	}
}
