// Package output renders analysis results as terminal tables, JSON, CSV,
// narrative summaries or Excel workbooks.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/seenimoa/mortgagecli/internal/analysis/mortgage"
	"github.com/seenimoa/mortgagecli/internal/profile"
	"github.com/seenimoa/mortgagecli/pkg/models"
	"github.com/seenimoa/mortgagecli/pkg/utils"
)

// Formatter renders every kind of result in one output format.
type Formatter interface {
	Analysis(w io.Writer, r models.AnalysisResult, p *models.Profile) error
	Matrix(w io.Writer, m *models.Matrix, p *models.Profile) error
	Amortization(w io.Writer, rep models.AmortizationReport) error
	ProfileList(w io.Writer, profiles []profile.Summary) error
	Comparison(w io.Writer, results []mortgage.Comparison, price, rent float64) error
}

// Options tune human-readable formats.
type Options struct {
	Currency string // symbol, DefaultCurrency when empty
	NoColor  bool
}

func (o Options) symbol() string {
	if o.Currency == "" {
		return utils.DefaultCurrency
	}
	return o.Currency
}

// money formats an amount with the configured symbol and no decimals.
func (o Options) money(v float64) string {
	return utils.FormatCurrency(v, o.symbol(), 0)
}

var registry = []struct {
	name string
	new  func(Options) Formatter
}{
	{"table", func(o Options) Formatter { return &tableFormatter{opts: o, pal: palette{enabled: !o.NoColor}} }},
	{"json", func(Options) Formatter { return jsonFormatter{} }},
	{"csv", func(Options) Formatter { return csvFormatter{} }},
	{"summary", func(o Options) Formatter { return summaryFormatter{opts: o} }},
	{"xlsx", func(o Options) Formatter { return xlsxFormatter{opts: o} }},
}

// Formats lists the supported format names.
func Formats() []string {
	names := make([]string, len(registry))
	for i, r := range registry {
		names[i] = r.name
	}
	return names
}

// Get returns the formatter registered under name.
func Get(name string, opts Options) (Formatter, error) {
	for _, r := range registry {
		if r.name == name {
			return r.new(opts), nil
		}
	}
	return nil, fmt.Errorf("unknown format %q, supported: %s", name, strings.Join(Formats(), ", "))
}

// Binary reports whether the format writes non-text output.
func Binary(name string) bool {
	return name == "xlsx"
}
