package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/seenimoa/mortgagecli/internal/profile"
)

// isolate points config and profiles at temporary directories.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	t.Setenv("MORTGAGECLI_PROFILES_DIR", dir)
	t.Setenv("MORTGAGECLI_OUTPUT_FORMAT", "table")
	t.Setenv("MORTGAGECLI_OUTPUT_NO_COLOR", "true")
	return dir
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, "", args...)
	if err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out
}

func TestVersion(t *testing.T) {
	out := mustRun(t, "version")
	if !strings.Contains(out, "mortgage-cli dev") {
		t.Errorf("got %q", out)
	}
}

func TestAnalyzeJSON(t *testing.T) {
	isolate(t)
	out := mustRun(t, "analyze", "-p", "50000", "-r", "800", "-o", "json")

	var doc struct {
		Analysis struct {
			Verdict       string  `json:"verdict"`
			BreakEvenRent float64 `json:"break_even_rent"`
		} `json:"analysis"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if doc.Analysis.Verdict != "green" || doc.Analysis.BreakEvenRent != 494.51 {
		t.Errorf("got %+v", doc.Analysis)
	}
}

func TestAnalyzeTable(t *testing.T) {
	isolate(t)
	out := mustRun(t, "analyze", "--price", "400000", "--rent", "1000")
	for _, want := range []string{"UPFRONT COSTS", "[OVER BUDGET]", "WARNINGS:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("no_color from the environment should disable ANSI codes")
	}
}

func TestAnalyzeDownPayment(t *testing.T) {
	isolate(t)
	for _, down := range []string{"100%", "100", "1"} {
		out := mustRun(t, "analyze", "-p", "100000", "-r", "900", "-d", down, "-o", "csv")
		if !strings.Contains(out, ",250,") {
			t.Errorf("--down %s: cash purchase should break even at 250:\n%s", down, out)
		}
	}
}

func TestAnalyzeErrors(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing rent", []string{"analyze", "-p", "100000"}, "rent"},
		{"bad down", []string{"analyze", "-p", "100000", "-r", "900", "-d", "lots"}, "invalid percentage"},
		{"down above 100%", []string{"analyze", "-p", "100000", "-r", "900", "-d", "150%"}, "down_payment_percent"},
		{"zero price", []string{"analyze", "-p", "0", "-r", "900"}, "price"},
		{"unknown format", []string{"analyze", "-p", "100000", "-r", "900", "-o", "pdf"}, "unknown format"},
		{"xlsx to stdout", []string{"analyze", "-p", "100000", "-r", "900", "-o", "xlsx"}, "--out-file"},
		{"missing profile", []string{"analyze", "-p", "100000", "-r", "900", "--profile", "ghost"}, "not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "", tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("got %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestAnalyzeOutFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "analysis.xlsx")
	out := mustRun(t, "analyze", "-p", "100000", "-r", "900", "-o", "xlsx", "--out-file", path)
	if out != "" {
		t.Errorf("stdout should be empty, got %q", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Error("xlsx output should be a zip archive")
	}
}

func TestMatrixCSV(t *testing.T) {
	isolate(t)
	out := mustRun(t, "matrix",
		"--price-min", "100000", "--price-max", "140000", "--price-step", "20000",
		"--down-min", "20%", "--down-max", "30%", "--down-step", "10%",
		"-o", "csv")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 7 {
		t.Fatalf("lines: got %d, want 7\n%s", len(lines), out)
	}
	if lines[0] != "price,down_payment_percent,break_even_rent,verdict,within_budget" {
		t.Errorf("header: got %q", lines[0])
	}
}

func TestMatrixErrors(t *testing.T) {
	isolate(t)
	if _, err := run(t, "", "matrix", "--price-min", "200000", "--price-max", "100000"); err == nil {
		t.Error("inverted price range should fail")
	}
	if _, err := run(t, "", "matrix", "--price-min", "100000", "--price-max", "200000", "--down-step", "x"); err == nil ||
		!strings.Contains(err.Error(), "--down-step") {
		t.Errorf("bad percentage: got %v", err)
	}
}

func TestAmortizeCSV(t *testing.T) {
	isolate(t)
	out := mustRun(t, "amortize", "--price", "100000", "--years", "3", "-o", "csv")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines: got %d, want 4\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[3], "3,") {
		t.Errorf("last row: got %q", lines[3])
	}

	if _, err := run(t, "", "amortize", "--price", "100000", "--years", "-1"); err == nil {
		t.Error("negative years should fail")
	}
}

func TestProfileLifecycle(t *testing.T) {
	dir := isolate(t)

	out := mustRun(t, "profile", "create", "conservative", "-d", "Lower risk")
	if !strings.Contains(out, "Created profile 'conservative'") {
		t.Errorf("create: got %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "conservative.yaml")); err != nil {
		t.Errorf("profile file not written: %v", err)
	}

	if _, err := run(t, "", "profile", "create", "conservative"); !errors.Is(err, profile.ErrExists) {
		t.Errorf("duplicate create: got %v", err)
	}

	out = mustRun(t, "profile", "list", "-o", "csv")
	if !strings.Contains(out, "conservative,Lower risk") || !strings.Contains(out, "default,Standard investment parameters") {
		t.Errorf("list: got %q", out)
	}

	out = mustRun(t, "profile", "show", "conservative")
	if !strings.Contains(out, "Profile: conservative") || !strings.Contains(out, "Description: Lower risk") {
		t.Errorf("show: got %q", out)
	}

	out = mustRun(t, "profile", "show", "conservative", "-o", "json")
	var shown struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(out), &shown); err != nil || shown.Name != "conservative" {
		t.Errorf("show json: got %q (%v)", out, err)
	}

	out, err := run(t, "n\n", "profile", "delete", "conservative")
	if err != nil || !strings.Contains(out, "Cancelled.") {
		t.Errorf("declined delete: got %q, %v", out, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "conservative.yaml")); err != nil {
		t.Error("declined delete should keep the file")
	}

	out, err = run(t, "y\n", "profile", "delete", "conservative")
	if err != nil || !strings.Contains(out, "Deleted profile 'conservative'") {
		t.Errorf("confirmed delete: got %q, %v", out, err)
	}

	if _, err := run(t, "", "profile", "delete", "conservative", "-f"); !errors.Is(err, profile.ErrNotFound) {
		t.Errorf("delete missing: got %v", err)
	}
	if _, err := run(t, "", "profile", "delete", "default", "-f"); !errors.Is(err, profile.ErrProtected) {
		t.Errorf("delete default: got %v", err)
	}
}

func TestProfileCompare(t *testing.T) {
	isolate(t)
	mustRun(t, "profile", "create", "copy")

	out := mustRun(t, "profile", "compare", "--price", "100000", "--rent", "900", "--profiles", "default,copy", "-o", "json")
	var doc struct {
		Comparison []struct {
			Profile string `json:"profile"`
		} `json:"comparison"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(doc.Comparison) != 2 || doc.Comparison[1].Profile != "copy" {
		t.Errorf("comparison: got %+v", doc.Comparison)
	}

	if _, err := run(t, "", "profile", "compare", "--price", "100000", "--rent", "900", "--profiles", "ghost"); !errors.Is(err, profile.ErrNotFound) {
		t.Errorf("unknown profile: got %v", err)
	}
}

func TestStatus(t *testing.T) {
	isolate(t)
	t.Setenv("MORTGAGECLI_API_PORT", "9090")
	out := mustRun(t, "status")

	for _, want := range []string{"Config File:   (none, using defaults)", "Settings:", "api.port:", "env MORTGAGECLI_API_PORT", "[default]"} {
		if !strings.Contains(out, want) {
			t.Errorf("status missing %q:\n%s", want, out)
		}
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes ", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got, err := confirm(strings.NewReader(tt.input), &out, "Sure?")
		if err != nil {
			t.Fatalf("confirm(%q): %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("confirm(%q): got %v, want %v", tt.input, got, tt.want)
		}
		if out.String() != "Sure? [y/N]: " {
			t.Errorf("prompt: got %q", out.String())
		}
	}
}
