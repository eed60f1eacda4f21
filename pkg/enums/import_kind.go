package enums

import "fmt"

// ImportKind identifies which entity table a tabular upload targets.
type ImportKind string

const (
	ImportKindVan    ImportKind = "van"
	ImportKindDriver ImportKind = "driver"
)

func (k ImportKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known ImportKind.
func (k ImportKind) IsValid() bool {
	return k == ImportKindVan || k == ImportKindDriver
}

// ParseImportKind converts raw input into an ImportKind.
func ParseImportKind(value string) (ImportKind, error) {
	switch ImportKind(value) {
	case ImportKindVan:
		return ImportKindVan, nil
	case ImportKindDriver:
		return ImportKindDriver, nil
	}
	return "", fmt.Errorf("invalid import kind %q", value)
}
