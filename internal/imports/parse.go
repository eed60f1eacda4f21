package imports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	pkgerrors "github.com/fleetworks/vanlist-backend/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// ParseVanFile reads an uploaded fleet file. CSV uploads use the simple
// `code,description,operational_status` layout; XLSX uploads use the fleet
// export layout keyed by a `licensePlateNumber` header.
func ParseVanFile(filename string, r io.Reader) ([]VanRow, []RowError, error) {
	switch ext(filename) {
	case ".csv":
		return parseVanCSV(r)
	case ".xlsx":
		return parseFleetXLSX(r)
	default:
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported file type %q, expected .csv or .xlsx", ext(filename)))
	}
}

// ParseDriverFile reads an uploaded roster file. CSV uploads use the simple
// `employee_id,name` layout; XLSX uploads use the roster export layout keyed
// by `Associate name` / `Transporter ID` headers.
func ParseDriverFile(filename string, r io.Reader) ([]DriverRow, []RowError, error) {
	switch ext(filename) {
	case ".csv":
		return parseDriverCSV(r)
	case ".xlsx":
		return parseRosterXLSX(r)
	default:
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported file type %q, expected .csv or .xlsx", ext(filename)))
	}
}

func ext(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// normalizeHeader flattens a header cell so `Operational Status`,
// `operational_status` and `operationalStatus` all collapse to one key.
func normalizeHeader(cell string) string {
	cell = strings.ToLower(strings.TrimSpace(cell))
	cell = strings.ReplaceAll(cell, " ", "")
	cell = strings.ReplaceAll(cell, "_", "")
	return cell
}

func headerIndex(cells []string) map[string]int {
	index := make(map[string]int, len(cells))
	for i, cell := range cells {
		key := normalizeHeader(cell)
		if key == "" {
			continue
		}
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}
	return index
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func parseVanCSV(r io.Reader) ([]VanRow, []RowError, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed csv")
	}
	if len(records) == 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "file is empty")
	}

	index := headerIndex(records[0])
	codeIdx, ok := index["code"]
	if !ok {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "missing required column: code")
	}
	descIdx, hasDesc := index["description"]
	statusIdx, hasStatus := index["operationalstatus"]

	var rows []VanRow
	var rejects []RowError
	for i, record := range records[1:] {
		rowNum := i + 2
		code := cellAt(record, codeIdx)
		if code == "" {
			rejects = append(rejects, RowError{Row: rowNum, Message: "missing van code"})
			continue
		}
		row := VanRow{Code: code}
		if hasDesc {
			row.Description = optional(cellAt(record, descIdx))
		}
		if hasStatus {
			row.OperationalStatus = optional(cellAt(record, statusIdx))
		}
		rows = append(rows, row)
	}
	return rows, rejects, nil
}

func parseDriverCSV(r io.Reader) ([]DriverRow, []RowError, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed csv")
	}
	if len(records) == 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "file is empty")
	}

	index := headerIndex(records[0])
	idIdx, ok := index["employeeid"]
	if !ok {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "missing required column: employee_id")
	}
	nameIdx, hasName := index["name"]
	if !hasName {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "missing required column: name")
	}

	var rows []DriverRow
	var rejects []RowError
	for i, record := range records[1:] {
		rowNum := i + 2
		employeeID := cellAt(record, idIdx)
		name := cellAt(record, nameIdx)
		if employeeID == "" {
			rejects = append(rejects, RowError{Row: rowNum, Message: "missing employee id"})
			continue
		}
		if name == "" {
			rejects = append(rejects, RowError{Row: rowNum, Message: "missing driver name"})
			continue
		}
		rows = append(rows, DriverRow{EmployeeID: employeeID, Name: name})
	}
	return rows, rejects, nil
}

func readSheet(r io.Reader) ([][]string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read upload")
	}
	book, err := excelize.OpenReader(&buf)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed workbook")
	}
	defer book.Close()

	sheet := book.GetSheetName(0)
	if sheet == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "workbook has no sheets")
	}
	rows, err := book.GetRows(sheet)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read worksheet")
	}
	return rows, nil
}

// findHeaderRow scans the first rows of a sheet for one that carries all the
// required headers. Fleet and roster exports put a title block above it.
func findHeaderRow(rows [][]string, required ...string) (int, map[string]int) {
	limit := len(rows)
	if limit > 10 {
		limit = 10
	}
	for i := 0; i < limit; i++ {
		index := headerIndex(rows[i])
		found := true
		for _, key := range required {
			if _, ok := index[key]; !ok {
				found = false
				break
			}
		}
		if found {
			return i, index
		}
	}
	return -1, nil
}

func parseFleetXLSX(r io.Reader) ([]VanRow, []RowError, error) {
	sheet, err := readSheet(r)
	if err != nil {
		return nil, nil, err
	}

	headerRow, index := findHeaderRow(sheet, "licenseplatenumber")
	if headerRow < 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "missing required column: licensePlateNumber")
	}
	plateIdx := index["licenseplatenumber"]
	statusIdx, hasStatus := index["operationalstatus"]
	makeIdx, hasMake := index["make"]
	modelIdx, hasModel := index["model"]

	var rows []VanRow
	var rejects []RowError
	for i, record := range sheet[headerRow+1:] {
		rowNum := headerRow + i + 2
		plate := cellAt(record, plateIdx)
		if plate == "" {
			rejects = append(rejects, RowError{Row: rowNum, Message: "missing license plate number"})
			continue
		}
		row := VanRow{Code: plate}
		if hasStatus {
			row.OperationalStatus = optional(cellAt(record, statusIdx))
		}
		var parts []string
		if hasMake {
			if v := cellAt(record, makeIdx); v != "" {
				parts = append(parts, v)
			}
		}
		if hasModel {
			if v := cellAt(record, modelIdx); v != "" {
				parts = append(parts, v)
			}
		}
		row.Description = optional(strings.Join(parts, " "))
		rows = append(rows, row)
	}
	return rows, rejects, nil
}

func parseRosterXLSX(r io.Reader) ([]DriverRow, []RowError, error) {
	sheet, err := readSheet(r)
	if err != nil {
		return nil, nil, err
	}

	headerRow, index := findHeaderRow(sheet, "associatename", "transporterid")
	if headerRow < 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "missing required columns: Associate name, Transporter ID")
	}
	nameIdx := index["associatename"]
	idIdx := index["transporterid"]

	var rows []DriverRow
	var rejects []RowError
	for i, record := range sheet[headerRow+1:] {
		rowNum := headerRow + i + 2
		name := cellAt(record, nameIdx)
		employeeID := cellAt(record, idIdx)
		// Roster exports close with a summary line that has no transporter id.
		if employeeID == "" && strings.EqualFold(strings.TrimSpace(cellAt(record, 0)), "total") {
			continue
		}
		if employeeID == "" && name == "" {
			continue
		}
		if employeeID == "" {
			rejects = append(rejects, RowError{Row: rowNum, Message: "missing transporter id"})
			continue
		}
		if name == "" {
			rejects = append(rejects, RowError{Row: rowNum, Message: "missing associate name"})
			continue
		}
		rows = append(rows, DriverRow{EmployeeID: employeeID, Name: name})
	}
	return rows, rejects, nil
}
