// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/techpub-engine/internal/publish"
	"github.com/pdiddy/techpub-engine/pkg/types"
)

var publishCmd = &cobra.Command{
	Use:   "publish [pm-code]",
	Short: "Render a publication and package the delivery archive",
	Long: `Publish renders every module in the publication's list, stages the
artifacts, and compresses them into a single zip archive under the work
directory. Modules that fail to render are reported and skipped; the
archive holds everything that rendered cleanly. The publication moves to
published once an archive exists.`,
	Args: cobra.ExactArgs(1),
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().String("formats", "", "override output formats (comma-separated: xml, html, pdf)")
	publishCmd.Flags().String("variants", "", "override included variants (comma-separated: verbatim, simplified)")
	publishCmd.Flags().String("work-dir", "", "staging and archive root (default from config)")

	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
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

	formats, err := parseFormats(cmd)
	if err != nil {
		return err
	}
	variantsCSV, _ := cmd.Flags().GetString("variants")

	workDir, _ := cmd.Flags().GetString("work-dir")
	if workDir == "" {
		workDir = viper.GetString("publish.work_dir")
	}
	if workDir == "" {
		workDir = "publications"
	}

	opts := publish.Options{
		Formats:  formats,
		Variants: splitCSV(variantsCSV),
		WorkDir:  workDir,
	}

	result, err := publish.NewPackager().Publish(ctx, pm, st, opts)
	for _, msg := range result.Errors {
		fmt.Fprintln(os.Stderr, msg)
	}
	if err != nil {
		return fmt.Errorf("publishing %s: %w", pm.PMCode, err)
	}

	if err := st.UpdatePublicationStatus(ctx, pm.PMCode, types.PublicationPublished); err != nil {
		return err
	}
	err = st.AppendAudit(ctx, pm.PMCode, types.AuditEntry{
		Action: "publish",
		Actor:  "operator",
		Detail: fmt.Sprintf("archive %s, %d artifacts, %d errors",
			result.ArchivePath, result.Artifacts, len(result.Errors)),
	})
	if err != nil {
		return err
	}

	fmt.Printf("Archive: %s (%d artifacts)\n", result.ArchivePath, result.Artifacts)
	return nil
}
