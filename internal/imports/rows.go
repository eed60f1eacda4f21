package imports

import "fmt"

// VanRow is one parsed fleet record keyed by van code.
type VanRow struct {
	Code              string
	Description       *string
	OperationalStatus *string
}

// DriverRow is one parsed roster record keyed by employee id.
type DriverRow struct {
	EmployeeID string
	Name       string
}

// RowError ties a rejection to its 1-based row in the uploaded file.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

func (e RowError) String() string {
	return fmt.Sprintf("Row %d: %s", e.Row, e.Message)
}
