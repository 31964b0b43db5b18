// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/techpub-engine/internal/ingest"
	"github.com/pdiddy/techpub-engine/pkg/types"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Process source text files into coded data modules",
	Long: `Ingest classifies each source text file, generates a deterministic module
code, and stores a verbatim module plus a simplified-language variant with
scanned cross-references and rendered markup caches. Files the text provider
cannot classify are preserved as general (GEN) modules rather than dropped.

Source files must already be plain text; extraction from binary document
formats happens upstream.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().String("security", "", "security level for new modules (default UNCLASSIFIED)")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more source text files")
	}

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
	text, err := textProvider(settings)
	if err != nil {
		return err
	}

	security, _ := cmd.Flags().GetString("security")
	cfg := types.IngestConfig{DefaultSecurity: types.SecurityLevel(security)}

	proc := ingest.NewProcessor(st, text, cfg, logger())
	summary, err := proc.ProcessFiles(ctx, args, os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d file(s) failed ingestion", summary.Failed)
	}
	return nil
}
