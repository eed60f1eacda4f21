package imports

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"

	pkgerrors "github.com/fleetworks/vanlist-backend/pkg/errors"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) io.Reader {
	t.Helper()
	book := excelize.NewFile()
	defer book.Close()
	sheet := book.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := book.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := book.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestParseVanCSV(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"code,description,operational_status",
		"AB-123,Ford Transit,OPERATIONAL",
		"CD-456,,",
		",missing code,GROUNDED",
	}, "\n")

	rows, rejects, err := ParseVanFile("fleet.csv", strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected two rows, got %d", len(rows))
	}
	if rows[0].Code != "AB-123" || rows[0].Description == nil || *rows[0].Description != "Ford Transit" {
		t.Fatalf("unexpected first row %+v", rows[0])
	}
	if rows[0].OperationalStatus == nil || *rows[0].OperationalStatus != "OPERATIONAL" {
		t.Fatalf("unexpected status %+v", rows[0])
	}
	if rows[1].Code != "CD-456" || rows[1].Description != nil || rows[1].OperationalStatus != nil {
		t.Fatalf("blank optional cells must stay nil, got %+v", rows[1])
	}
	if len(rejects) != 1 || rejects[0].String() != "Row 4: missing van code" {
		t.Fatalf("unexpected rejects %+v", rejects)
	}
}

func TestParseVanCSVMissingCodeColumn(t *testing.T) {
	t.Parallel()

	_, _, err := ParseVanFile("fleet.csv", strings.NewReader("description\nFord Transit"))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseDriverCSV(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"employee_id,name",
		"TR-0101,Amir Khan",
		",No Badge",
		"TR-0202,",
	}, "\n")

	rows, rejects, err := ParseDriverFile("roster.csv", strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 1 || rows[0].EmployeeID != "TR-0101" || rows[0].Name != "Amir Khan" {
		t.Fatalf("unexpected rows %+v", rows)
	}
	if len(rejects) != 2 {
		t.Fatalf("expected two rejects, got %+v", rejects)
	}
	if rejects[0].String() != "Row 3: missing employee id" || rejects[1].String() != "Row 4: missing driver name" {
		t.Fatalf("unexpected reject messages %+v", rejects)
	}
}

func TestParseFleetXLSX(t *testing.T) {
	t.Parallel()

	reader := buildWorkbook(t, [][]interface{}{
		{"Fleet report"},
		{"licensePlateNumber", "make", "model", "operationalStatus"},
		{"AB-123", "Ford", "Transit", "OPERATIONAL"},
		{"CD-456", "Mercedes", "", "GROUNDED"},
		{"", "Ford", "Transit", ""},
	})

	rows, rejects, err := ParseVanFile("fleet.xlsx", reader)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected two rows, got %d", len(rows))
	}
	if rows[0].Code != "AB-123" || rows[0].Description == nil || *rows[0].Description != "Ford Transit" {
		t.Fatalf("make and model must join into the description, got %+v", rows[0])
	}
	if rows[1].Description == nil || *rows[1].Description != "Mercedes" {
		t.Fatalf("missing model must not leave a trailing space, got %+v", rows[1])
	}
	if rows[1].OperationalStatus == nil || *rows[1].OperationalStatus != "GROUNDED" {
		t.Fatalf("unexpected status %+v", rows[1])
	}
	if len(rejects) != 1 || rejects[0].String() != "Row 5: missing license plate number" {
		t.Fatalf("unexpected rejects %+v", rejects)
	}
}

func TestParseRosterXLSXSkipsSummaryRow(t *testing.T) {
	t.Parallel()

	reader := buildWorkbook(t, [][]interface{}{
		{"Weekly roster"},
		{"Associate name", "Transporter ID"},
		{"Amir Khan", "TR-0101"},
		{"Bea Ortiz", "TR-0202"},
		{"Total", ""},
	})

	rows, rejects, err := ParseDriverFile("roster.xlsx", reader)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rejects) != 0 {
		t.Fatalf("summary row must not be rejected, got %+v", rejects)
	}
	if len(rows) != 2 {
		t.Fatalf("expected two rows, got %d", len(rows))
	}
	if rows[0].EmployeeID != "TR-0101" || rows[1].Name != "Bea Ortiz" {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestParseRosterXLSXMissingHeaders(t *testing.T) {
	t.Parallel()

	reader := buildWorkbook(t, [][]interface{}{
		{"name", "badge"},
		{"Amir Khan", "TR-0101"},
	})

	_, _, err := ParseDriverFile("roster.xlsx", reader)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseRejectsUnknownExtension(t *testing.T) {
	t.Parallel()

	for _, filename := range []string{"fleet.pdf", "fleet"} {
		_, _, err := ParseVanFile(filename, strings.NewReader("code\nAB-123"))
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected validation error, got %v", filename, err)
		}
	}
}

func TestHeaderNormalization(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Operational Status": "operationalstatus",
		"operational_status": "operationalstatus",
		" Transporter ID ":   "transporterid",
	}
	for in, want := range cases {
		if got := normalizeHeader(in); got != want {
			t.Fatalf("normalizeHeader(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRowErrorString(t *testing.T) {
	t.Parallel()

	e := RowError{Row: 7, Message: "missing van code"}
	if got, want := e.String(), fmt.Sprintf("Row %d: %s", 7, "missing van code"); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
