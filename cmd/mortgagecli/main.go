// mortgage-cli: rental property mortgage investment analyzer.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/seenimoa/mortgagecli/api"
	"github.com/seenimoa/mortgagecli/internal/analysis/mortgage"
	"github.com/seenimoa/mortgagecli/internal/config"
	"github.com/seenimoa/mortgagecli/internal/logging"
	"github.com/seenimoa/mortgagecli/internal/output"
	"github.com/seenimoa/mortgagecli/internal/profile"
	"github.com/seenimoa/mortgagecli/pkg/models"
	"github.com/seenimoa/mortgagecli/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app carries the state shared by every command once the config is loaded.
type app struct {
	cfg   *config.Config
	log   *logrus.Logger
	store *profile.Store
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "mortgage-cli",
		Short: "Rental property mortgage investment analyzer",
		Long: `mortgage-cli evaluates whether a rental property is a viable investment.

Given a purchase price, an expected monthly rent and an investor profile, it
computes upfront costs, the monthly mortgage payment, the break-even rent and
the cash-on-cash return, and classifies the property as GREEN, YELLOW, RED or
OVER BUDGET.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().String("config", "", "config file path (default: $XDG_CONFIG_HOME/mortgage-cli/config.yaml)")
	root.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	root.PersistentFlags().Bool("no-color", false, "disable colored table output")

	root.AddCommand(
		newVersionCmd(),
		a.newAnalyzeCmd(),
		a.newMatrixCmd(),
		a.newAmortizeCmd(),
		a.newProfileCmd(),
		a.newServeCmd(),
		a.newStatusCmd(),
	)
	return root
}

// setup loads the configuration, then builds the logger and the profile store.
func (a *app) setup(cmd *cobra.Command) error {
	var err error
	configFile, _ := cmd.Flags().GetString("config")
	if configFile != "" {
		a.cfg, err = config.LoadFromFile(configFile)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		a.cfg.Logging.Level = level
	}
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		a.cfg.Output.NoColor = true
	}

	a.log = logging.New(a.cfg.Logging, cmd.ErrOrStderr())
	a.store = profile.NewStore(a.cfg.ProfilesPath())
	a.log.WithFields(logrus.Fields{
		"config":   a.cfg.File,
		"profiles": a.store.Dir(),
	}).Debug("configuration loaded")
	return nil
}

// --- Version Command ---

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mortgage-cli %s\n", version)
			fmt.Fprintf(out, "  commit:  %s\n", commit)
			fmt.Fprintf(out, "  built:   %s\n", date)
		},
	}
}

// --- Analyze Command ---

func (a *app) newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a single property",
		Long:  "Compute upfront costs, monthly costs, break-even rent and a viability verdict for one property.",
		Example: `  mortgage-cli analyze --price 150000 --rent 900
  mortgage-cli analyze -p 200000 -r 1100 -d 30% --profile conservative -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			price, _ := cmd.Flags().GetFloat64("price")
			rent, _ := cmd.Flags().GetFloat64("rent")

			p, err := a.loadProfile(cmd)
			if err != nil {
				return err
			}

			in := models.PropertyInput{Price: price, ExpectedRent: rent}
			if down, _ := cmd.Flags().GetString("down"); down != "" {
				pct, err := utils.ParsePercentage(down)
				if err != nil {
					return err
				}
				in.DownPaymentPercent = &pct
			}
			if err := profile.ValidateProperty(in); err != nil {
				return err
			}

			res := mortgage.Analyze(in, p)
			a.log.WithFields(logrus.Fields{
				"profile": p.Name,
				"price":   price,
				"verdict": res.Verdict,
			}).Debug("analysis complete")

			return a.render(cmd, func(f output.Formatter, w io.Writer) error {
				return f.Analysis(w, res, p)
			})
		},
	}

	cmd.Flags().Float64P("price", "p", 0, "property purchase price")
	cmd.Flags().Float64P("rent", "r", 0, "expected monthly rent")
	cmd.Flags().StringP("down", "d", "", "down payment, e.g. 20%, 20 or 0.2 (default: profile setting)")
	addProfileFlag(cmd)
	addOutputFlags(cmd)
	_ = cmd.MarkFlagRequired("price")
	_ = cmd.MarkFlagRequired("rent")
	return cmd
}

// --- Matrix Command ---

func (a *app) newMatrixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Generate a break-even rent sensitivity matrix",
		Long: `Show break-even rent for combinations of purchase prices and down payment
percentages, colored by viability. Omitted steps and bounds come from the
matrix section of the configuration.`,
		Example: `  mortgage-cli matrix --price-min 100000 --price-max 200000
  mortgage-cli matrix --price-min 100000 --price-max 300000 --rent 1200 --down-step 10%`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadProfile(cmd)
			if err != nil {
				return err
			}

			grid, err := a.gridFromFlags(cmd)
			if err != nil {
				return err
			}
			prices, downs, err := grid.Axes()
			if err != nil {
				return err
			}

			rent, _ := cmd.Flags().GetFloat64("rent")
			if rent <= 0 {
				rent = p.Budget.TargetRent
			}
			workers, _ := cmd.Flags().GetInt("workers")
			if workers == 0 {
				workers = a.cfg.Matrix.Workers
			}

			m, err := mortgage.BuildMatrix(cmd.Context(), p, prices, downs, rent, workers)
			if err != nil {
				return err
			}
			a.log.WithFields(logrus.Fields{"profile": p.Name, "cells": m.Size()}).Debug("matrix complete")

			return a.render(cmd, func(f output.Formatter, w io.Writer) error {
				return f.Matrix(w, m, p)
			})
		},
	}

	cmd.Flags().Float64("price-min", 0, "minimum property price")
	cmd.Flags().Float64("price-max", 0, "maximum property price")
	cmd.Flags().Float64("price-step", 0, "price increment (default: config matrix.price_step)")
	cmd.Flags().String("down-min", "", "minimum down payment (default: config matrix.down_min)")
	cmd.Flags().String("down-max", "", "maximum down payment (default: config matrix.down_max)")
	cmd.Flags().String("down-step", "", "down payment increment (default: config matrix.down_step)")
	cmd.Flags().Float64P("rent", "r", 0, "rent to compare against (default: profile target rent)")
	cmd.Flags().Int("workers", 0, "concurrent workers (default: config matrix.workers)")
	addProfileFlag(cmd)
	addOutputFlags(cmd)
	_ = cmd.MarkFlagRequired("price-min")
	_ = cmd.MarkFlagRequired("price-max")
	return cmd
}

func (a *app) gridFromFlags(cmd *cobra.Command) (mortgage.Grid, error) {
	mc := a.cfg.Matrix
	g := mortgage.Grid{
		PriceStep: mc.PriceStep,
		DownMin:   mc.DownMin,
		DownMax:   mc.DownMax,
		DownStep:  mc.DownStep,
	}
	g.PriceMin, _ = cmd.Flags().GetFloat64("price-min")
	g.PriceMax, _ = cmd.Flags().GetFloat64("price-max")
	if step, _ := cmd.Flags().GetFloat64("price-step"); step != 0 {
		g.PriceStep = step
	}

	for flag, dst := range map[string]*float64{
		"down-min":  &g.DownMin,
		"down-max":  &g.DownMax,
		"down-step": &g.DownStep,
	} {
		v, _ := cmd.Flags().GetString(flag)
		if v == "" {
			continue
		}
		pct, err := utils.ParsePercentage(v)
		if err != nil {
			return g, fmt.Errorf("--%s: %w", flag, err)
		}
		*dst = pct
	}

	if g.PriceMin <= 0 {
		return g, fmt.Errorf("--price-min must be positive")
	}
	return g, nil
}

// --- Amortize Command ---

func (a *app) newAmortizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "amortize",
		Short: "Show the yearly amortization schedule of a loan",
		Example: `  mortgage-cli amortize --price 150000
  mortgage-cli amortize --price 150000 --down 30% --years 5 -o csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			price, _ := cmd.Flags().GetFloat64("price")
			if price <= 0 {
				return fmt.Errorf("--price must be positive")
			}
			years, _ := cmd.Flags().GetInt("years")
			if years < 0 {
				return fmt.Errorf("--years must not be negative")
			}

			p, err := a.loadProfile(cmd)
			if err != nil {
				return err
			}

			down := p.Mortgage.DefaultDownPayment
			if v, _ := cmd.Flags().GetString("down"); v != "" {
				if down, err = utils.ParsePercentage(v); err != nil {
					return err
				}
				if down < 0 || down > 1 {
					return fmt.Errorf("--down must be between 0%% and 100%%")
				}
			}

			rep := mortgage.BuildReport(price, down, p, years)
			return a.render(cmd, func(f output.Formatter, w io.Writer) error {
				return f.Amortization(w, rep)
			})
		},
	}

	cmd.Flags().Float64P("price", "p", 0, "property purchase price")
	cmd.Flags().StringP("down", "d", "", "down payment (default: profile setting)")
	cmd.Flags().Int("years", 0, "number of years to show (default: full term)")
	addProfileFlag(cmd)
	addOutputFlags(cmd)
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

// --- Serve Command (API Server) ---

func (a *app) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if host, _ := cmd.Flags().GetString("host"); host != "" {
				a.cfg.API.Host = host
			}
			if port, _ := cmd.Flags().GetInt("port"); port != 0 {
				a.cfg.API.Port = port
			}

			api.Version = version
			srv := api.NewServer(a.cfg, a.store, a.log)
			fmt.Fprintf(cmd.OutOrStdout(), "Starting mortgage-cli API server on %s\n", a.cfg.Addr())
			return srv.ListenAndServe(a.cfg.Addr())
		},
	}
	cmd.Flags().String("host", "", "listen host (default: config api.host)")
	cmd.Flags().Int("port", 0, "listen port (default: config api.port)")
	return cmd
}

// --- Status Command ---

func (a *app) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration and where each setting comes from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			rule := strings.Repeat("═", 39)

			configFile := a.cfg.File
			if configFile == "" {
				configFile = "(none, using defaults)"
			}
			profiles, err := a.store.List()
			if err != nil {
				return err
			}

			fmt.Fprintln(out, rule)
			fmt.Fprintln(out, "  mortgage-cli Status")
			fmt.Fprintln(out, rule)
			fmt.Fprintf(out, "  Version:       %s (%s)\n", version, commit)
			fmt.Fprintf(out, "  Config File:   %s\n", configFile)
			fmt.Fprintf(out, "  Profiles Dir:  %s\n", a.store.Dir())
			fmt.Fprintf(out, "  Profiles:      %d\n", len(profiles))
			fmt.Fprintln(out)

			fmt.Fprintln(out, "  Settings:")
			for _, s := range config.CheckSources(a.cfg) {
				source := string(s.Source)
				if s.Source == config.SourceEnv {
					source = "env " + s.EnvVar
				}
				fmt.Fprintf(out, "    %-25s %-20s [%s]\n", s.Key+":", s.Value, source)
			}
			fmt.Fprintln(out, rule)
			return nil
		},
	}
}

// --- Helpers ---

func addProfileFlag(cmd *cobra.Command) {
	cmd.Flags().String("profile", "", "profile name (default: config profiles.default)")
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "output format: "+strings.Join(output.Formats(), ", ")+" (default: config output.format)")
	cmd.Flags().String("out-file", "", "write output to a file instead of stdout (required for xlsx)")
}

func (a *app) profileName(cmd *cobra.Command) string {
	if name, _ := cmd.Flags().GetString("profile"); name != "" {
		return name
	}
	if a.cfg.Profiles.Default != "" {
		return a.cfg.Profiles.Default
	}
	return profile.DefaultName
}

func (a *app) loadProfile(cmd *cobra.Command) (*models.Profile, error) {
	return a.store.Load(a.profileName(cmd))
}

// render picks the formatter from --output and writes to stdout or --out-file.
func (a *app) render(cmd *cobra.Command, fn func(output.Formatter, io.Writer) error) error {
	format, _ := cmd.Flags().GetString("output")
	if format == "" {
		format = a.cfg.Output.Format
	}
	f, err := output.Get(format, output.Options{
		Currency: a.cfg.Output.Currency,
		NoColor:  a.cfg.Output.NoColor,
	})
	if err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("out-file")
	if path == "" {
		if output.Binary(format) {
			return fmt.Errorf("%s output is binary, use --out-file", format)
		}
		return fn(f, cmd.OutOrStdout())
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}
	if err := fn(f, file); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	a.log.WithFields(logrus.Fields{"file": path, "format": format}).Info("output written")
	return nil
}
