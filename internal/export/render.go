package export

import (
	"encoding/csv"
	"io"
	"strconv"

	pkgerrors "github.com/fleetworks/vanlist-backend/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Assignments"

// Headers is the column order shared by the CSV and XLSX renderers.
var Headers = []string{
	"Date",
	"Week #",
	"Driver ID",
	"Driver Name",
	"Van",
	"Van Description",
	"Operational Status",
	"Status",
	"Created At",
	"Updated At",
	"Notes",
}

func (r Row) cells() []string {
	return []string{
		r.Date,
		strconv.Itoa(r.WeekNumber),
		r.DriverEmployeeID,
		r.DriverName,
		r.VanCode,
		r.VanDescription,
		r.OperationalStatus,
		r.Status,
		r.CreatedAt,
		r.UpdatedAt,
		r.Notes,
	}
}

// RenderCSV writes the header line and one line per row.
func RenderCSV(w io.Writer, rows []Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Headers); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv header")
	}
	for _, row := range rows {
		if err := writer.Write(row.cells()); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv row")
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flush csv")
	}
	return nil
}

// RenderXLSX writes a single-sheet workbook with the same layout as the CSV.
func RenderXLSX(w io.Writer, rows []Row) error {
	book := excelize.NewFile()
	defer book.Close()

	if err := book.SetSheetName(book.GetSheetName(0), sheetName); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "name worksheet")
	}
	if err := writeSheetRow(book, 1, Headers); err != nil {
		return err
	}
	for i, row := range rows {
		if err := writeSheetRow(book, i+2, row.cells()); err != nil {
			return err
		}
	}
	if err := book.Write(w); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write workbook")
	}
	return nil
}

func writeSheetRow(book *excelize.File, rowNum int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "address worksheet cell")
	}
	values := make([]interface{}, len(cells))
	for i, v := range cells {
		values[i] = v
	}
	if err := book.SetSheetRow(sheetName, cell, &values); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write worksheet row")
	}
	return nil
}
