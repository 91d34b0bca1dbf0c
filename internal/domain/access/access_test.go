package access

import "testing"

func TestDefaultMatrix(t *testing.T) {
	m, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	cases := []struct {
		role, adminRole string
		capability      Capability
		want            bool
	}{
		{"admin", "SUPER_ADMIN", CapManageAssignments, true},
		{"admin", "SUPER_ADMIN", CapViewCompliance, true},
		{"admin", "TECHNICIAN", CapManageAssignments, true},
		{"admin", "TECHNICIAN", CapManageVideos, true},
		{"admin", "TECHNICIAN", CapViewCompliance, false},
		{"admin", "USER_MANAGER", CapViewCompliance, true},
		{"admin", "USER_MANAGER", CapManageAssignments, false},
		{"admin", "FINANCE", CapManageAssignments, false},
		{"admin", "", CapManageAssignments, false},
		{"admin", "ROOT", CapManageAssignments, false},
		{"user", "SUPER_ADMIN", CapManageAssignments, false},
	}
	for _, tc := range cases {
		if got := m.Allows(tc.role, tc.adminRole, tc.capability); got != tc.want {
			t.Fatalf("Allows(%s,%s,%s): want=%v got=%v", tc.role, tc.adminRole, tc.capability, tc.want, got)
		}
	}
	if got := m.Capabilities(RoleTechnician); len(got) != 2 {
		t.Fatalf("technician capabilities: got=%v", got)
	}
}

func TestParseMatrixRejectsUnknownEntries(t *testing.T) {
	if _, err := ParseMatrix([]byte("roles:\n  JANITOR: [assignments:manage]\n")); err == nil {
		t.Fatalf("expected unknown role error")
	}
	if _, err := ParseMatrix([]byte("roles:\n  TECHNICIAN: [payouts:approve]\n")); err == nil {
		t.Fatalf("expected unknown capability error")
	}
}
