package rbac

import "testing"

func TestRoleGates(t *testing.T) {
	p := MustNewPolicy()
	cases := []struct {
		roles []string
		perm  Permission
		want  bool
	}{
		{[]string{"analyst"}, PermDashboardView, true},
		{[]string{"analyst"}, PermIncidentsView, true},
		{[]string{"analyst"}, PermIncidentsWrite, true},
		{[]string{"analyst"}, PermIncidentsDel, false},
		{[]string{"analyst"}, PermAccountsManage, false},
		{[]string{"analyst"}, PermImportsRun, false},
		{[]string{"analyst"}, PermSummaryView, false},
		{[]string{"analyst"}, PermAuditView, false},
		{[]string{"admin"}, PermIncidentsDel, true},
		{[]string{"admin"}, PermAuditView, true},
		{[]string{"admin"}, PermAccountsManage, true},
		{[]string{"admin"}, PermImportsRun, true},
		{[]string{"admin"}, PermSummaryView, true},
		{[]string{"admin"}, PermIncidentsView, true},
		{[]string{"viewer"}, PermDashboardView, false},
		{nil, PermDashboardView, false},
	}
	for _, tc := range cases {
		if got := p.Allowed(tc.roles, tc.perm); got != tc.want {
			t.Errorf("Allowed(%v, %s) = %v, want %v", tc.roles, tc.perm, got, tc.want)
		}
	}
}

func TestMultipleRolesUnion(t *testing.T) {
	p := MustNewPolicy()
	roles := []string{"viewer", "admin"}
	if !p.Allowed(roles, PermAccountsManage) {
		t.Fatalf("any granting role should be enough")
	}
}
