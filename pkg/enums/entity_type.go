package enums

import "fmt"

// EntityType names the kinds of records the audit log can reference.
type EntityType string

const (
	EntityAssignment    EntityType = "assignment"
	EntityVan           EntityType = "van"
	EntityDriver        EntityType = "driver"
	EntityUser          EntityType = "user"
	EntityPreassignment EntityType = "preassignment"
)

var validEntityTypes = []EntityType{
	EntityAssignment,
	EntityVan,
	EntityDriver,
	EntityUser,
	EntityPreassignment,
}

func (e EntityType) String() string {
	return string(e)
}

// IsValid reports whether the value is a known EntityType.
func (e EntityType) IsValid() bool {
	for _, candidate := range validEntityTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseEntityType converts raw input into an EntityType.
func ParseEntityType(value string) (EntityType, error) {
	for _, candidate := range validEntityTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid entity type %q", value)
}
