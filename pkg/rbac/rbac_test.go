package rbac

import (
	"testing"

	"github.com/fleetworks/vanlist-backend/pkg/enums"
)

func TestPermitsMatrix(t *testing.T) {
	cases := []struct {
		role enums.Role
		op   Operation
		want bool
	}{
		{enums.RoleReadOnly, OpView, true},
		{enums.RoleReadOnly, OpAssignmentWrite, false},
		{enums.RoleReadOnly, OpUpload, false},
		{enums.RoleReadOnly, OpManageUsers, false},
		{enums.RoleReadOnly, OpToggleEntity, false},
		{enums.RoleReadOnly, OpViewAudit, false},

		{enums.RoleOperator, OpView, true},
		{enums.RoleOperator, OpAssignmentWrite, true},
		{enums.RoleOperator, OpUpload, false},
		{enums.RoleOperator, OpManageUsers, false},
		{enums.RoleOperator, OpToggleEntity, false},
		{enums.RoleOperator, OpViewAudit, false},

		{enums.RoleAdmin, OpView, true},
		{enums.RoleAdmin, OpAssignmentWrite, true},
		{enums.RoleAdmin, OpUpload, true},
		{enums.RoleAdmin, OpManageUsers, true},
		{enums.RoleAdmin, OpToggleEntity, true},
		{enums.RoleAdmin, OpViewAudit, true},
	}
	for _, tc := range cases {
		if got := Permits(tc.role, tc.op); got != tc.want {
			t.Fatalf("Permits(%s, %s) = %v, want %v", tc.role, tc.op, got, tc.want)
		}
	}
}

func TestPermitsUnknownInputs(t *testing.T) {
	if Permits(enums.Role("ghost"), OpView) {
		t.Fatal("unknown role must not be granted view")
	}
	if Permits(enums.RoleAdmin, Operation("nope")) {
		t.Fatal("unknown operation must be denied")
	}
}
