package enums

import "fmt"

// AuditAction is the closed vocabulary of auditable actions.
type AuditAction string

const (
	AuditActionCreate       AuditAction = "create"
	AuditActionUpdate       AuditAction = "update"
	AuditActionDelete       AuditAction = "delete"
	AuditActionLogin        AuditAction = "login"
	AuditActionLoginFailure AuditAction = "login-failure"
	AuditActionUpload       AuditAction = "upload"
	AuditActionExport       AuditAction = "export"
	AuditActionToggle       AuditAction = "toggle"
)

var validAuditActions = []AuditAction{
	AuditActionCreate,
	AuditActionUpdate,
	AuditActionDelete,
	AuditActionLogin,
	AuditActionLoginFailure,
	AuditActionUpload,
	AuditActionExport,
	AuditActionToggle,
}

func (a AuditAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AuditAction.
func (a AuditAction) IsValid() bool {
	for _, candidate := range validAuditActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAuditAction converts raw input into an AuditAction.
func ParseAuditAction(value string) (AuditAction, error) {
	for _, candidate := range validAuditActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit action %q", value)
}
