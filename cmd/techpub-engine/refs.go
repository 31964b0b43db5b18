// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/techpub-engine/internal/ingest"
)

var refsCmd = &cobra.Command{
	Use:   "refs",
	Short: "Maintain cross-reference sets",
}

var refsRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rescan every module and merge new reference hits",
	Long: `Refresh rescans the content of every module against the current corpus and
merges newly found module and illustration references into the stored sets.
Stored references are never removed; targets that no longer exist surface as
unresolved references on the next validation.`,
	RunE: runRefsRefresh,
}

func init() {
	refsCmd.AddCommand(refsRefreshCmd)
	rootCmd.AddCommand(refsCmd)
}

func runRefsRefresh(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := ingest.RefreshRefs(ctx, st)
	if err != nil {
		return err
	}
	fmt.Printf("%d module(s) updated\n", n)
	return nil
}
