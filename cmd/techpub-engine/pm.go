// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/techpub-engine/pkg/types"
)

var pmCmd = &cobra.Command{
	Use:   "pm",
	Short: "Define and inspect publication modules",
}

// --- Create ---

var pmCreateCmd = &cobra.Command{
	Use:   "create [pm-code] [title]",
	Short: "Create or replace a publication module definition",
	Long: `Create records which data modules a publication compiles, in which
formats and variants. Creating an existing code replaces its definition
and resets nothing else; rendering happens in the publish command.`,
	Args: cobra.ExactArgs(2),
	RunE: runPMCreate,
}

func runPMCreate(cmd *cobra.Command, args []string) error {
	modules, _ := cmd.Flags().GetString("modules")
	if modules == "" {
		return fmt.Errorf("provide the included module codes with --modules")
	}
	formats, err := parseFormats(cmd)
	if err != nil {
		return err
	}

	variantsCSV, _ := cmd.Flags().GetString("variants")
	var variants []string
	for _, v := range splitCSV(variantsCSV) {
		code := types.VariantCode(v)
		if code != types.VariantVerbatim && code != types.VariantSimplified {
			return fmt.Errorf("unknown variant %q: use verbatim or simplified", v)
		}
		variants = append(variants, code)
	}

	security, _ := cmd.Flags().GetString("security")

	pm := types.PublicationModule{
		PMCode:        args[0],
		Title:         args[1],
		DMList:        splitCSV(modules),
		Formats:       formats,
		Variants:      variants,
		SecurityLevel: types.SecurityLevel(security),
	}
	if pm.SecurityLevel == "" {
		pm.SecurityLevel = types.SecurityUnclassified
	}

	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.InsertPublication(ctx, pm); err != nil {
		return err
	}
	fmt.Printf("Created %s (%d modules)\n", pm.PMCode, len(pm.DMList))
	return nil
}

// --- List ---

var pmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List publication modules",
	RunE:  runPMList,
}

func runPMList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	pms, err := st.Publications(ctx)
	if err != nil {
		return err
	}
	if len(pms) == 0 {
		fmt.Println("No publications defined.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tSTATUS\tMODULES\tTITLE")
	for _, pm := range pms {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			pm.PMCode, pm.Status, len(pm.DMList), clip(pm.Title, 60))
	}
	return w.Flush()
}

// --- Show ---

var pmShowCmd = &cobra.Command{
	Use:   "show [pm-code]",
	Short: "Show a publication module definition",
	Args:  cobra.ExactArgs(1),
	RunE:  runPMShow,
}

func runPMShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	pm, err := st.Publication(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Code:      %s\n", pm.PMCode)
	fmt.Printf("Title:     %s\n", pm.Title)
	fmt.Printf("Status:    %s\n", pm.Status)
	fmt.Printf("Security:  %s\n", pm.SecurityLevel)
	fmt.Printf("Formats:   %s\n", joinFormats(pm.Formats))
	if len(pm.Variants) > 0 {
		fmt.Printf("Variants:  %s\n", strings.Join(pm.Variants, ", "))
	}
	fmt.Printf("Created:   %s\n", pm.CreatedAt.Format(time.RFC3339))
	fmt.Printf("Updated:   %s\n", pm.UpdatedAt.Format(time.RFC3339))

	fmt.Println("\nModules:")
	for _, dmc := range pm.DMList {
		fmt.Printf("  %s\n", dmc)
	}
	return nil
}

// --- Helpers ---

// parseFormats reads the --formats flag and validates every entry.
func parseFormats(cmd *cobra.Command) ([]types.Format, error) {
	csv, _ := cmd.Flags().GetString("formats")
	var formats []types.Format
	for _, f := range splitCSV(csv) {
		format := types.Format(strings.ToLower(f))
		if !types.KnownFormat(format) {
			return nil, fmt.Errorf("unsupported format %q: use xml, html, or pdf", f)
		}
		formats = append(formats, format)
	}
	return formats, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func joinFormats(formats []types.Format) string {
	if len(formats) == 0 {
		return "xml"
	}
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

func init() {
	pmCreateCmd.Flags().String("modules", "", "comma-separated module codes, in publication order")
	pmCreateCmd.Flags().String("formats", "", "comma-separated output formats (xml, html, pdf)")
	pmCreateCmd.Flags().String("variants", "", "comma-separated variants (verbatim, simplified)")
	pmCreateCmd.Flags().String("security", "", "security level (default UNCLASSIFIED)")

	pmCmd.AddCommand(pmCreateCmd, pmListCmd, pmShowCmd)
	rootCmd.AddCommand(pmCmd)
}
