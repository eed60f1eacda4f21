// Package rbac maps user roles to the operations they may perform.
package rbac

import "github.com/fleetworks/vanlist-backend/pkg/enums"

// Operation names a guarded capability of the API.
type Operation string

const (
	// OpView covers all read endpoints: assignments, vans, drivers, exports.
	OpView Operation = "view"
	// OpAssignmentWrite covers creating, editing and deleting bookings,
	// preassignments and the van operational-status field.
	OpAssignmentWrite Operation = "assignment:write"
	// OpUpload covers roster and fleet file imports.
	OpUpload Operation = "upload"
	// OpManageUsers covers the user CRUD surface.
	OpManageUsers Operation = "users:manage"
	// OpToggleEntity covers activating and deactivating vans and drivers.
	OpToggleEntity Operation = "entity:toggle"
	// OpViewAudit covers the audit trail listing.
	OpViewAudit Operation = "audit:view"
)

// Permits reports whether the role may perform the operation. Admin is a
// superset of operator, operator a superset of readonly.
func Permits(role enums.Role, op Operation) bool {
	switch op {
	case OpView:
		return role == enums.RoleAdmin || role == enums.RoleOperator || role == enums.RoleReadOnly
	case OpAssignmentWrite:
		return role == enums.RoleAdmin || role == enums.RoleOperator
	case OpUpload, OpManageUsers, OpToggleEntity, OpViewAudit:
		return role == enums.RoleAdmin
	}
	return false
}
