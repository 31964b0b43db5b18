// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/techpub-engine/internal/brex"
	"github.com/pdiddy/techpub-engine/pkg/types"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage business rule sets and domain configuration",
}

// --- Show ---

var rulesShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "List rule sets, or dump one as YAML",
	Long: `Without arguments, show lists the stored rule sets and marks the active
one. With an id, the full definition is dumped as YAML; --domain dumps the
domain configuration of that id instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRulesShow,
}

func runRulesShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if len(args) == 0 {
		settings, err := st.Settings(ctx)
		if err != nil {
			return err
		}
		sets, err := st.Rulesets(ctx)
		if err != nil {
			return err
		}

		ids := make([]string, 0, len(sets))
		for id := range sets {
			ids = append(ids, id)
		}
		slices.Sort(ids)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tACTIVE")
		for _, id := range ids {
			active := ""
			if id == settings.ActiveRulesetID {
				active = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", id, sets[id], active)
		}
		return w.Flush()
	}

	var doc any
	if domain, _ := cmd.Flags().GetBool("domain"); domain {
		doc, err = st.DomainConfig(ctx, args[0])
	} else {
		doc, err = st.Ruleset(ctx, args[0])
	}
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

// --- Set active ---

var rulesSetActiveCmd = &cobra.Command{
	Use:   "set-active [id]",
	Short: "Activate a stored rule set or domain configuration",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesSetActive,
}

func runRulesSetActive(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	settings, err := st.Settings(ctx)
	if err != nil {
		return err
	}

	if domain, _ := cmd.Flags().GetBool("domain"); domain {
		if _, err := st.DomainConfig(ctx, args[0]); err != nil {
			return err
		}
		settings.ActiveDomainConfigID = args[0]
	} else {
		if _, err := st.Ruleset(ctx, args[0]); err != nil {
			return err
		}
		settings.ActiveRulesetID = args[0]
	}

	if err := st.UpdateSettings(ctx, settings); err != nil {
		return err
	}
	fmt.Printf("Active: %s\n", args[0])
	return nil
}

// --- Load ---

var rulesLoadCmd = &cobra.Command{
	Use:   "load [file]",
	Short: "Load a rule set or domain configuration from a YAML file",
	Long: `Load stores the definition under its own id, replacing any previous
version. Loading does not activate; use set-active for that. Validation
picks up changes to the active rule set on its next run.`,
	Args: cobra.ExactArgs(1),
	RunE: runRulesLoad,
}

func runRulesLoad(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if domain, _ := cmd.Flags().GetBool("domain"); domain {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var cfg types.DomainConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing domain config %s: %w", args[0], err)
		}
		if cfg.ID == "" {
			return fmt.Errorf("domain config %s: id is required", args[0])
		}
		if err := st.SaveDomainConfig(ctx, cfg); err != nil {
			return err
		}
		fmt.Printf("Loaded domain config %s\n", cfg.ID)
		return nil
	}

	rs, err := brex.Load(args[0])
	if err != nil {
		return err
	}
	if err := st.SaveRuleset(ctx, rs); err != nil {
		return err
	}
	fmt.Printf("Loaded ruleset %s (%d field rules, %d path rules)\n",
		rs.ID, len(rs.FieldRules), len(rs.PathRules))
	return nil
}

// --- Watch ---

var rulesWatchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Watch a rule set file and store every good reload",
	Long: `Watch blocks, reloading the file on every change. Each version that parses
cleanly is stored under its id; a version that does not is logged and the
stored one stays in effect. Interrupt to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runRulesWatch,
}

func runRulesWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	return brex.Watch(ctx, args[0], logger(), func(rs types.Ruleset) {
		if err := st.SaveRuleset(ctx, rs); err != nil {
			fmt.Fprintf(os.Stderr, "storing ruleset %s: %v\n", rs.ID, err)
			return
		}
		fmt.Printf("Reloaded ruleset %s\n", rs.ID)
	})
}

func init() {
	rulesShowCmd.Flags().Bool("domain", false, "operate on domain configurations")
	rulesSetActiveCmd.Flags().Bool("domain", false, "operate on domain configurations")
	rulesLoadCmd.Flags().Bool("domain", false, "operate on domain configurations")

	rulesCmd.AddCommand(rulesShowCmd, rulesSetActiveCmd, rulesLoadCmd, rulesWatchCmd)
	rootCmd.AddCommand(rulesCmd)
}
