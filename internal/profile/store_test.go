package profile

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"github.com/seenimoa/mortgagecli/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "profiles"))
}

func writeProfile(t *testing.T, s *Store, name, body string) {
	t.Helper()
	if err := os.MkdirAll(s.Dir(), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir(), name+".yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

// ── Load ──

func TestLoadBuiltinDefault(t *testing.T) {
	s := newTestStore(t)

	p, err := s.Load("default")
	if err != nil {
		t.Fatalf("Load(default): %v", err)
	}
	if !reflect.DeepEqual(p, Default()) {
		t.Errorf("got %+v, want built-in default", p)
	}
	if _, err := os.Stat(s.Dir()); !os.IsNotExist(err) {
		t.Error("loading the built-in default should not create the directory")
	}
}

func TestLoadNotFound(t *testing.T) {
	_, err := newTestStore(t).Load("nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestLoadRejectsPathNames(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"../etc/passwd", "", "a/b", ".hidden"} {
		if _, err := s.Load(name); !errors.Is(err, ErrInvalid) {
			t.Errorf("Load(%q): err = %v, want ErrInvalid", name, err)
		}
	}
}

func TestLoadAppliesFieldDefaults(t *testing.T) {
	s := newTestStore(t)
	writeProfile(t, s, "minimal", `
name: minimal
mortgage:
  interest_rate: 0.035
budget:
  total_available: 50000
  target_rent: 900
monthly_costs:
  property_tax: 80
purchase_costs:
  notary_legal: {type: percentage, value: 0.025}
  bank_arrangement: {type: fixed, value: 1200}
  survey_valuation: {type: fixed, value: 300}
`)

	p, err := s.Load("minimal")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if p.Mortgage.InterestRate != 0.035 || p.Mortgage.InsuranceRate != 0.001 {
		t.Errorf("Mortgage: got %+v", p.Mortgage)
	}
	if p.Mortgage.DurationYears != 20 || p.Mortgage.DefaultDownPayment != 0.20 {
		t.Errorf("Mortgage defaults: got %+v", p.Mortgage)
	}
	if p.MonthlyCosts.Total() != 80 {
		t.Errorf("MonthlyCosts.Total: got %v, want 80", p.MonthlyCosts.Total())
	}
	if p.PurchaseCosts.BankArrangement != models.Fixed(1200) {
		t.Errorf("BankArrangement: got %+v", p.PurchaseCosts.BankArrangement)
	}
	if p.PurchaseCosts.MortgageBroker != models.Fixed(0) || p.PurchaseCosts.Other != models.Fixed(0) {
		t.Errorf("optional purchase costs: got %+v / %+v", p.PurchaseCosts.MortgageBroker, p.PurchaseCosts.Other)
	}
	if p.Thresholds != (models.Thresholds{GreenBelow: 0.80, YellowBelow: 1.00}) {
		t.Errorf("Thresholds: got %+v", p.Thresholds)
	}
}

func TestLoadMissingRequiredField(t *testing.T) {
	s := newTestStore(t)
	writeProfile(t, s, "partial", "name: partial\nmortgage:\n  interest_rate: 0.04\n")

	_, err := s.Load("partial")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if verr.Fields[0].Field != "budget.total_available" || verr.Fields[0].Rule != "required" {
		t.Errorf("first field: got %+v", verr.Fields[0])
	}
}

func TestLoadOutOfRange(t *testing.T) {
	s := newTestStore(t)
	writeProfile(t, s, "wild", `
mortgage:
  interest_rate: 4
  duration_years: 80
budget: {total_available: 1, target_rent: 1}
purchase_costs:
  notary_legal: {type: percentage, value: 0.03}
  bank_arrangement: {type: percent, value: 0.01}
  survey_valuation: {type: fixed, value: 400}
`)

	_, err := s.Load("wild")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}

	got := map[string]string{}
	for _, f := range verr.Fields {
		got[f.Field] = f.Rule
	}
	want := map[string]string{
		"mortgage.interest_rate":               "lte",
		"mortgage.duration_years":              "lte",
		"purchase_costs.bank_arrangement.type": "oneof",
	}
	for field, rule := range want {
		if got[field] != rule {
			t.Errorf("%s: got rule %q, want %q (all: %v)", field, got[field], rule, got)
		}
	}
}

// ── Save ──

func TestSaveRoundTrip(t *testing.T) {
	s := newTestStore(t)

	p := Default().Clone("aggressive", "Low down payment")
	p.Mortgage.DefaultDownPayment = 0.10
	p.PurchaseCosts.MortgageBroker = models.Fixed(1500)
	p.Thresholds.GreenBelow = 0.9

	if err := s.Save(p, true); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load("aggressive")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, p) {
		t.Errorf("round trip:\n got  %+v\n want %+v", got, p)
	}
}

func TestSaveOverwrite(t *testing.T) {
	s := newTestStore(t)
	p := Default()

	if err := s.Save(p, true); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := s.Save(p, true); err != nil {
		t.Errorf("overwrite save: %v", err)
	}
	if err := s.Save(p, false); !errors.Is(err, ErrExists) {
		t.Errorf("save without overwrite: err = %v, want ErrExists", err)
	}
}

func TestSaveValidates(t *testing.T) {
	s := newTestStore(t)
	p := Default().Clone("bad", "")
	p.Budget.TotalAvailable = -1

	if err := s.Save(p, true); err == nil {
		t.Fatal("Save should reject a negative budget")
	}
	if s.Exists("bad") {
		t.Error("invalid profile should not be written")
	}
}

// ── Delete ──

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	if err := s.Save(Default().Clone("temp", ""), false); err != nil {
		t.Fatal(err)
	}

	if err := s.Delete("temp"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if s.Exists("temp") {
		t.Error("profile still exists after delete")
	}
	if err := s.Delete("temp"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}

func TestDeleteDefaultIsProtected(t *testing.T) {
	s := newTestStore(t)
	if err := s.Save(Default(), true); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("default"); !errors.Is(err, ErrProtected) {
		t.Errorf("err = %v, want ErrProtected", err)
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), "default.yaml")); err != nil {
		t.Errorf("default file should remain: %v", err)
	}
}

// ── List / Exists ──

func TestListEmptyDirectory(t *testing.T) {
	got, err := newTestStore(t).List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []Summary{{Name: "default", Description: "Standard investment parameters", Builtin: true, Valid: true}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestListSavedAndInvalid(t *testing.T) {
	s := newTestStore(t)
	if err := s.Save(Default().Clone("zeta", "last"), false); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(Default().Clone("alpha", "first"), false); err != nil {
		t.Fatal(err)
	}
	writeProfile(t, s, "broken", "mortgage: [not, a, map\n")
	writeProfile(t, s, "notes", "irrelevant")
	if err := os.Rename(filepath.Join(s.Dir(), "notes.yaml"), filepath.Join(s.Dir(), "notes.txt")); err != nil {
		t.Fatal(err)
	}

	got, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []Summary{
		{Name: "default", Description: "Standard investment parameters", Builtin: true, Valid: true},
		{Name: "alpha", Description: "first", Valid: true},
		{Name: "broken", Description: InvalidDescription},
		{Name: "zeta", Description: "last", Valid: true},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got  %+v\nwant %+v", got, want)
	}
}

func TestListDefaultOverriddenOnDisk(t *testing.T) {
	s := newTestStore(t)
	if err := s.Save(Default().Clone("default", "tuned"), true); err != nil {
		t.Fatal(err)
	}

	got, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Builtin || got[0].Description != "tuned" {
		t.Errorf("got %+v", got)
	}
}

func TestExists(t *testing.T) {
	s := newTestStore(t)
	if !s.Exists("default") {
		t.Error("default should always exist")
	}
	if s.Exists("custom") {
		t.Error("custom should not exist yet")
	}
	if s.Exists("../x") {
		t.Error("invalid names never exist")
	}
	if err := s.Save(Default().Clone("custom", ""), false); err != nil {
		t.Fatal(err)
	}
	if !s.Exists("custom") {
		t.Error("custom should exist after save")
	}
}

// ── Create ──

func TestCreateCopiesBase(t *testing.T) {
	s := newTestStore(t)

	base := Default().Clone("conservative", "Big down payment")
	base.Mortgage.DefaultDownPayment = 0.40
	if err := s.Save(base, false); err != nil {
		t.Fatal(err)
	}

	p, err := s.Create("derived", "Copied", "conservative")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Name != "derived" || p.Description != "Copied" {
		t.Errorf("identity: %q / %q", p.Name, p.Description)
	}
	if p.Mortgage.DefaultDownPayment != 0.40 {
		t.Errorf("settings not copied: %+v", p.Mortgage)
	}

	loaded, err := s.Load("derived")
	if err != nil || !reflect.DeepEqual(loaded, p) {
		t.Errorf("Load(derived) = %+v, %v", loaded, err)
	}
}

func TestCreateFromBuiltinDefault(t *testing.T) {
	s := newTestStore(t)
	p, err := s.Create("fresh", "", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Budget != Default().Budget {
		t.Errorf("Budget: got %+v", p.Budget)
	}
}

func TestCreateErrors(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Create("one", "", "default"); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Create("one", "", "default"); !errors.Is(err, ErrExists) {
		t.Errorf("duplicate: err = %v, want ErrExists", err)
	}
	if _, err := s.Create("two", "", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing base: err = %v, want ErrNotFound", err)
	}
	if s.Exists("two") {
		t.Error("failed create should not leave a file behind")
	}
}

func TestLoadMany(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Create("other", "", ""); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadMany([]string{"other", "default"})
	if err != nil {
		t.Fatalf("LoadMany: %v", err)
	}
	if len(got) != 2 || got[0].Name != "other" || got[1].Name != "default" {
		t.Errorf("got %v", got)
	}

	if _, err := s.LoadMany([]string{"default", "nope"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := newTestStore(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Save(Default().Clone("shared", "x"), true); err != nil {
				t.Errorf("Save: %v", err)
			}
			if _, err := s.Load("shared"); err != nil {
				t.Errorf("Load: %v", err)
			}
		}()
	}
	wg.Wait()
}
