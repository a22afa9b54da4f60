package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seenimoa/mortgagecli/internal/analysis/mortgage"
	"github.com/seenimoa/mortgagecli/internal/output"
	"github.com/seenimoa/mortgagecli/internal/profile"
)

// --- Profile Commands ---

func (a *app) newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage investor profiles",
		Long: `Profiles hold the financial settings used by every analysis: mortgage terms,
budget, monthly and purchase costs, and verdict thresholds. They are stored as
YAML files in the profiles directory; the built-in "default" profile is always
available.`,
	}
	cmd.AddCommand(
		a.newProfileListCmd(),
		a.newProfileShowCmd(),
		a.newProfileCreateCmd(),
		a.newProfileDeleteCmd(),
		a.newProfileCompareCmd(),
	)
	return cmd
}

func (a *app) newProfileListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles, err := a.store.List()
			if err != nil {
				return err
			}
			return a.render(cmd, func(f output.Formatter, w io.Writer) error {
				return f.ProfileList(w, profiles)
			})
		},
	}
	addOutputFlags(cmd)
	return cmd
}

func (a *app) newProfileShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Show every setting of a profile",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := a.profileName(cmd)
			if len(args) == 1 {
				name = args[0]
			}
			p, err := a.store.Load(name)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			format, _ := cmd.Flags().GetString("output")
			switch format {
			case "", "table":
				return output.RenderProfile(out, p, output.Options{
					Currency: a.cfg.Output.Currency,
					NoColor:  a.cfg.Output.NoColor,
				})
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(p)
			}
			return fmt.Errorf("unsupported format %q for profile show, use table or json", format)
		},
	}
	cmd.Flags().StringP("output", "o", "table", "output format: table, json")
	return cmd
}

func (a *app) newProfileCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a profile by copying an existing one",
		Example: `  mortgage-cli profile create conservative -d "Lower risk"
  mortgage-cli profile create aggressive --base conservative`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			description, _ := cmd.Flags().GetString("description")
			base, _ := cmd.Flags().GetString("base")

			p, err := a.store.Create(args[0], description, base)
			if err != nil {
				return err
			}
			a.log.WithField("profile", p.Name).Debug("profile created")

			fmt.Fprintf(cmd.OutOrStdout(), "Created profile '%s'\n", p.Name)
			fmt.Fprintf(cmd.OutOrStdout(), "Edit %s/%s.yaml to customize it.\n", a.store.Dir(), p.Name)
			return nil
		},
	}
	cmd.Flags().StringP("description", "d", "", "profile description")
	cmd.Flags().StringP("base", "b", profile.DefaultName, "profile to copy settings from")
	return cmd
}

func (a *app) newProfileDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if name == profile.DefaultName {
				return profile.ErrProtected
			}
			if !a.store.Exists(name) {
				return fmt.Errorf("%w: %q", profile.ErrNotFound, name)
			}

			if force, _ := cmd.Flags().GetBool("force"); !force {
				ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete profile '%s'?", name))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}

			if err := a.store.Delete(name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted profile '%s'\n", name)
			return nil
		},
	}
	cmd.Flags().BoolP("force", "f", false, "skip confirmation")
	return cmd
}

// confirm asks a yes/no question; anything but y or yes is a no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func (a *app) newProfileCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "compare",
		Short:   "Analyze one property under several profiles",
		Example: `  mortgage-cli profile compare --price 150000 --rent 900 --profiles default,conservative`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			price, _ := cmd.Flags().GetFloat64("price")
			rent, _ := cmd.Flags().GetFloat64("rent")
			if price <= 0 || rent <= 0 {
				return fmt.Errorf("--price and --rent must be positive")
			}
			names, _ := cmd.Flags().GetStringSlice("profiles")
			if len(names) == 0 {
				return fmt.Errorf("--profiles must name at least one profile")
			}

			profiles, err := a.store.LoadMany(names)
			if err != nil {
				return err
			}
			results, err := mortgage.Compare(cmd.Context(), profiles, price, rent)
			if err != nil {
				return err
			}
			return a.render(cmd, func(f output.Formatter, w io.Writer) error {
				return f.Comparison(w, results, price, rent)
			})
		},
	}
	cmd.Flags().Float64P("price", "p", 0, "property purchase price")
	cmd.Flags().Float64P("rent", "r", 0, "expected monthly rent")
	cmd.Flags().StringSlice("profiles", []string{profile.DefaultName}, "comma-separated profile names")
	addOutputFlags(cmd)
	_ = cmd.MarkFlagRequired("price")
	_ = cmd.MarkFlagRequired("rent")
	return cmd
}
