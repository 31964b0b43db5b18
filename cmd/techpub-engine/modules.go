// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/techpub-engine/internal/store"
	"github.com/pdiddy/techpub-engine/pkg/types"
)

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List, inspect, search, export, and delete data modules",
}

// --- list subcommand ---

var modulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List data modules with optional filters",
	RunE:  runModulesList,
}

func runModulesList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	modType, _ := cmd.Flags().GetString("type")
	status, _ := cmd.Flags().GetString("status")
	variant, _ := cmd.Flags().GetString("variant")
	source, _ := cmd.Flags().GetString("source")
	limit, _ := cmd.Flags().GetInt("limit")

	opts := store.ListOptions{
		Type:             types.DMType(modType),
		Status:           types.ValidationStatus(status),
		SourceDocumentID: source,
		Limit:            limit,
	}
	if variant != "" {
		opts.Variant = types.VariantCode(variant)
	}

	mods, err := st.Modules(ctx, opts)
	if err != nil {
		return err
	}
	if len(mods) == 0 {
		fmt.Println("No modules found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DMC\tTYPE\tVAR\tSTATUS\tTITLE")
	for _, m := range mods {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			m.DMC, m.Type, m.InfoVariant, statusLabel(m.Status), clip(m.Title, 60))
	}
	w.Flush()

	fmt.Printf("\n%d modules\n", len(mods))
	return nil
}

// --- show subcommand ---

var modulesShowCmd = &cobra.Command{
	Use:   "show [dmc]",
	Short: "Show one module's fields, verdict, references, and audit trail",
	Args:  cobra.ExactArgs(1),
	RunE:  runModulesShow,
}

func runModulesShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	m, err := st.Module(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("DMC:         %s\n", m.DMC)
	fmt.Printf("Title:       %s\n", m.Title)
	fmt.Printf("Type:        %s\n", m.Type)
	fmt.Printf("Variant:     %s\n", m.InfoVariant)
	fmt.Printf("Security:    %s\n", m.SecurityLevel)
	fmt.Printf("Status:      %s\n", statusLabel(m.Status))
	fmt.Printf("Rule valid:  %v\n", m.RuleValid)
	fmt.Printf("Schema:      %v\n", m.SchemaValid)
	if m.ReadabilityScore > 0 {
		fmt.Printf("Readability: %.2f\n", m.ReadabilityScore)
	}
	if m.SourceDocumentID != "" {
		fmt.Printf("Source:      %s\n", m.SourceDocumentID)
	}
	fmt.Printf("Created:     %s\n", m.CreatedAt.Format(time.RFC3339))
	fmt.Printf("Updated:     %s\n", m.UpdatedAt.Format(time.RFC3339))

	if len(m.Errors) > 0 {
		fmt.Println("\nValidation errors:")
		for _, e := range m.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}
	if len(m.ModuleRefs) > 0 {
		fmt.Println("\nReferenced modules:")
		for _, r := range m.ModuleRefs {
			fmt.Printf("  %s\n", r)
		}
	}
	if len(m.IllustrationRefs) > 0 {
		fmt.Println("\nReferenced illustrations:")
		for _, r := range m.IllustrationRefs {
			fmt.Printf("  %s\n", r)
		}
	}

	trail, err := st.AuditTrail(ctx, m.DMC)
	if err != nil {
		return err
	}
	if len(trail) > 0 {
		fmt.Println("\nAudit trail:")
		for _, e := range trail {
			fmt.Printf("  %s  %-10s %-9s %s\n",
				e.Timestamp.Format(time.RFC3339), e.Action, e.Actor, e.Detail)
		}
	}

	fmt.Println("\nContent:")
	fmt.Println(m.Content)
	return nil
}

// --- search subcommand ---

var modulesSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search over module codes, titles, and content",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runModulesSearch,
}

func runModulesSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	hits, err := st.SearchModules(ctx, strings.Join(args, " "), limit)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tDMC\tTITLE\tSNIPPET")
	for i, h := range hits {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, h.DMC, clip(h.Title, 40), clip(h.Snippet, 60))
	}
	w.Flush()

	fmt.Printf("\n%d results\n", len(hits))
	return nil
}

// --- export subcommand ---

var modulesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the module corpus to YAML or JSON on stdout",
	RunE:  runModulesExport,
}

func runModulesExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	format, _ := cmd.Flags().GetString("format")
	return st.ExportModules(ctx, os.Stdout, format)
}

// --- delete subcommand ---

var modulesDeleteCmd = &cobra.Command{
	Use:   "delete [dmc]",
	Short: "Delete a module from the corpus",
	Long: `Delete removes the module and its search index entry. The audit trail is
kept; references from other modules to the deleted code become unresolved
and surface on their next validation.`,
	Args: cobra.ExactArgs(1),
	RunE: runModulesDelete,
}

func runModulesDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.DeleteModule(ctx, args[0]); err != nil {
		return err
	}
	if err := st.AppendAudit(ctx, args[0], types.AuditEntry{
		Action: "delete", Actor: "operator",
	}); err != nil {
		return err
	}

	fmt.Printf("Deleted %s\n", args[0])
	return nil
}

// --- shared helpers ---

// statusLabel renders a validation status, with "-" for modules never
// validated.
func statusLabel(s types.ValidationStatus) string {
	if s == "" {
		return "-"
	}
	return string(s)
}

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}

func init() {
	modulesListCmd.Flags().String("type", "", "filter by module type: PROC, DESC, IPD, CIR, SNS, WIR, GEN")
	modulesListCmd.Flags().String("status", "", "filter by validation status: pass, warn, fail")
	modulesListCmd.Flags().String("variant", "", "filter by variant: verbatim or simplified")
	modulesListCmd.Flags().String("source", "", "filter by source document id")
	modulesListCmd.Flags().Int("limit", 0, "maximum results (0 = all)")

	modulesSearchCmd.Flags().Int("limit", 0, "maximum results (0 = default 20)")

	modulesExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	modulesCmd.AddCommand(modulesListCmd)
	modulesCmd.AddCommand(modulesShowCmd)
	modulesCmd.AddCommand(modulesSearchCmd)
	modulesCmd.AddCommand(modulesExportCmd)
	modulesCmd.AddCommand(modulesDeleteCmd)

	rootCmd.AddCommand(modulesCmd)
}
