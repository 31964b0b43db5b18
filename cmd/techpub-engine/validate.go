// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/techpub-engine/internal/brex"
	"github.com/pdiddy/techpub-engine/internal/store"
	"github.com/pdiddy/techpub-engine/internal/validate"
	"github.com/pdiddy/techpub-engine/pkg/types"
)

var validateCmd = &cobra.Command{
	Use:   "validate [dmcs...]",
	Short: "Validate modules against the active rule set",
	Long: `Validate runs each module through the active business rules: field rules,
schema and path-query checks over the rendered markup, and reference
integrity against the current corpus. Verdicts are persisted on the module
and recorded in its audit trail.

With --review, module content is also sent to the configured text provider
for an advisory semantic review; review findings downgrade a passing module
to warn but never fail it, and a failed review call never blocks the
verdict.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().Bool("all", false, "validate every module in the corpus")
	validateCmd.Flags().Bool("review", false, "enable the AI semantic review step")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	all, _ := cmd.Flags().GetBool("all")
	if !all && len(args) == 0 {
		return fmt.Errorf("provide module codes or --all")
	}

	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	review, _ := cmd.Flags().GetBool("review")
	cfg := types.ValidationConfig{
		ReviewEnabled: review || viper.GetBool("validation.review_enabled"),
		ReviewTimeout: viper.GetDuration("validation.review_timeout"),
	}

	var reviewer validate.Reviewer
	if cfg.ReviewEnabled {
		settings, err := st.Settings(ctx)
		if err != nil {
			return err
		}
		text, err := textProvider(settings)
		if err != nil {
			return err
		}
		reviewer = text
	}

	orch := validate.NewOrchestrator(st, brex.NewEvaluator(logger()), reviewer, cfg, logger())

	dmcs := args
	if all {
		mods, err := st.Modules(ctx, store.ListOptions{})
		if err != nil {
			return err
		}
		dmcs = make([]string, 0, len(mods))
		for _, m := range mods {
			dmcs = append(dmcs, m.DMC)
		}
	}

	var counts [3]int
	for _, dmc := range dmcs {
		v, err := orch.Validate(ctx, dmc)
		if err != nil {
			return fmt.Errorf("validating %s: %w", dmc, err)
		}

		fmt.Printf("%-4s  %s\n", v.Status, dmc)
		for _, e := range v.Errors {
			fmt.Printf("      %s\n", e)
		}

		switch v.Status {
		case types.StatusPass:
			counts[0]++
		case types.StatusWarn:
			counts[1]++
		case types.StatusFail:
			counts[2]++
		}
	}

	fmt.Printf("\n%d pass, %d warn, %d fail\n", counts[0], counts[1], counts[2])
	if counts[2] > 0 {
		return fmt.Errorf("%d module(s) failed validation", counts[2])
	}
	return nil
}
