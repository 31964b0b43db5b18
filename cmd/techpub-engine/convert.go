// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/techpub-engine/internal/container"
	"github.com/pdiddy/techpub-engine/internal/convert"
)

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Extract plain text from binary source documents",
	Long: `Convert extracts text from PDF and Office documents by piping them through
the markitdown container image, writing one text file per document into the
output directory. Those text files are what ingest consumes; plain text
sources skip this step entirely.

Requires docker or podman with the markitdown image available locally.`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("out", "", "output directory for extracted text (default from config)")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more source documents")
	}

	outDir, _ := cmd.Flags().GetString("out")
	if outDir == "" {
		outDir = viper.GetString("convert.out_dir")
	}
	if outDir == "" {
		outDir = "converted"
	}

	rt, err := container.DetectRuntime()
	if err != nil {
		return err
	}
	conv, err := convert.NewMarkitdownConverter(rt)
	if err != nil {
		return err
	}

	result, err := convert.ConvertFiles(cmd.Context(), conv, args, outDir, os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d document(s) failed conversion", result.Failed)
	}
	return nil
}
