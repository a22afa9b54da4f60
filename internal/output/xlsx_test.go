package output

import (
	"bytes"
	"slices"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/seenimoa/mortgagecli/internal/analysis/mortgage"
	"github.com/seenimoa/mortgagecli/internal/profile"
)

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func cellValue(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell)
	if err != nil {
		t.Fatalf("GetCellValue(%s!%s): %v", sheet, cell, err)
	}
	return v
}

func TestXLSXAnalysis(t *testing.T) {
	res, p := overBudget(t)
	var buf bytes.Buffer
	if err := (xlsxFormatter{}).Analysis(&buf, res, p); err != nil {
		t.Fatal(err)
	}
	f := openWorkbook(t, buf.Bytes())

	if got := f.GetSheetList(); !slices.Equal(got, []string{"Analysis"}) {
		t.Errorf("sheets: got %v", got)
	}
	tests := map[string]string{
		"A1":  "Metric",
		"B1":  "Value",
		"B2":  "default",
		"A12": "Total Upfront",
		"A19": "Verdict",
		"B19": "OVER BUDGET",
		"A21": "Warning",
		"B21": "Total upfront costs (96,400) exceed budget of 80,000",
	}
	for cell, want := range tests {
		if got := cellValue(t, f, "Analysis", cell); got != want {
			t.Errorf("%s: got %q, want %q", cell, got, want)
		}
	}
}

func TestXLSXMatrix(t *testing.T) {
	m, p := smallMatrix(t)
	var buf bytes.Buffer
	if err := (xlsxFormatter{}).Matrix(&buf, m, p); err != nil {
		t.Fatal(err)
	}
	f := openWorkbook(t, buf.Bytes())

	if got := f.GetSheetList(); !slices.Equal(got, []string{"Matrix", "Cells"}) {
		t.Errorf("sheets: got %v", got)
	}
	if got := cellValue(t, f, "Matrix", "A2"); got != "20%" {
		t.Errorf("row label: got %q", got)
	}
	rows, err := f.GetRows("Cells")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Errorf("cell rows: got %d, want 4", len(rows))
	}
	if got := cellValue(t, f, "Cells", "D4"); got != "red" {
		t.Errorf("last verdict: got %q", got)
	}
}

func TestXLSXAmortization(t *testing.T) {
	var buf bytes.Buffer
	rep := mortgage.BuildReport(100000, 0.20, profile.Default(), 10)
	if err := (xlsxFormatter{}).Amortization(&buf, rep); err != nil {
		t.Fatal(err)
	}
	f := openWorkbook(t, buf.Bytes())

	rows, err := f.GetRows("Amortization")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 11 {
		t.Errorf("rows: got %d, want 11", len(rows))
	}
	if got := cellValue(t, f, "Amortization", "A11"); got != "10" {
		t.Errorf("last year: got %q", got)
	}
	if got := cellValue(t, f, "Loan", "A3"); got != "Loan Amount" {
		t.Errorf("loan sheet: got %q", got)
	}
}

func TestXLSXProfilesAndComparison(t *testing.T) {
	var buf bytes.Buffer
	if err := (xlsxFormatter{}).ProfileList(&buf, []profile.Summary{{Name: "default", Builtin: true, Valid: true}}); err != nil {
		t.Fatal(err)
	}
	f := openWorkbook(t, buf.Bytes())
	if got := cellValue(t, f, "Profiles", "A2"); got != "default" {
		t.Errorf("profile name: got %q", got)
	}

	buf.Reset()
	if err := (xlsxFormatter{}).Comparison(&buf, comparison(t), 100000, 900); err != nil {
		t.Fatal(err)
	}
	f = openWorkbook(t, buf.Bytes())
	for cell, want := range map[string]string{"A3": "Profile", "A4": "pricey", "A6": "cheap", "H5": "GOOD"} {
		if got := cellValue(t, f, "Comparison", cell); got != want {
			t.Errorf("%s: got %q, want %q", cell, got, want)
		}
	}
}
