// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pdiddy/techpub-engine/internal/store"
	"github.com/pdiddy/techpub-engine/internal/xref"
	"github.com/pdiddy/techpub-engine/pkg/types"
)

var icnCmd = &cobra.Command{
	Use:   "icn",
	Short: "Register and annotate illustrations",
}

// --- List ---

var icnListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered illustrations",
	RunE:  runICNList,
}

func runICNList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	icns, err := st.ICNs(ctx)
	if err != nil {
		return err
	}
	if len(icns) == 0 {
		fmt.Println("No illustrations registered.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ICN\tLCN\tDIMENSIONS\tCAPTION")
	for _, ic := range icns {
		fmt.Fprintf(w, "%s\t%s\t%dx%d\t%s\n",
			ic.ICNID, ic.LCN, ic.Width, ic.Height, clip(ic.Caption, 60))
	}
	return w.Flush()
}

// --- Register ---

var icnRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new illustration",
	Long: `Register creates an illustration record with a generated ICN identifier.
The LCN is the code modules use in their content to reference the
illustration; annotation is a separate step.`,
	RunE: runICNRegister,
}

func runICNRegister(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	lcn, _ := cmd.Flags().GetString("lcn")
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")
	security, _ := cmd.Flags().GetString("security")

	ic := types.ICN{
		ICNID:         newICNID(),
		LCN:           lcn,
		Width:         width,
		Height:        height,
		SecurityLevel: types.SecurityLevel(security),
	}
	if ic.SecurityLevel == "" {
		ic.SecurityLevel = types.SecurityUnclassified
	}
	if err := st.InsertICN(ctx, ic); err != nil {
		return err
	}
	err = st.AppendAudit(ctx, ic.ICNID, types.AuditEntry{
		Action: "icn-update",
		Actor:  "operator",
		Detail: "registered",
	})
	if err != nil {
		return err
	}

	fmt.Printf("Registered %s", ic.ICNID)
	if lcn != "" {
		fmt.Printf(" (LCN %s)", lcn)
	}
	fmt.Println()
	return nil
}

// newICNID generates an illustration identifier in the "ICN-" plus eight
// uppercase hex characters shape.
func newICNID() string {
	return "ICN-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:8]
}

// --- Annotate ---

var icnAnnotateCmd = &cobra.Command{
	Use:   "annotate [icn-or-lcn]",
	Short: "Annotate an illustration with the vision provider",
	Long: `Annotate sends the image to the configured vision provider and stores the
generated caption, detected objects, and suggested hotspot regions. Every
module referencing the illustration has its update marker advanced so
downstream consumers detect the churn.`,
	Args: cobra.ExactArgs(1),
	RunE: runICNAnnotate,
}

func runICNAnnotate(cmd *cobra.Command, args []string) error {
	imagePath, _ := cmd.Flags().GetString("image")
	if imagePath == "" {
		return fmt.Errorf("provide the source image with --image")
	}
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return err
	}
	imageData := base64.StdEncoding.EncodeToString(data)

	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	ic, err := st.ICN(ctx, args[0])
	if err != nil {
		return err
	}

	settings, err := st.Settings(ctx)
	if err != nil {
		return err
	}
	vision, err := visionProvider(settings)
	if err != nil {
		return err
	}

	caption, err := vision.Caption(ctx, imageData)
	if err != nil {
		return fmt.Errorf("captioning %s: %w", ic.ICNID, err)
	}
	objects, err := vision.Objects(ctx, imageData)
	if err != nil {
		return fmt.Errorf("detecting objects in %s: %w", ic.ICNID, err)
	}
	hotspots, err := vision.Hotspots(ctx, imageData)
	if err != nil {
		return fmt.Errorf("suggesting hotspots for %s: %w", ic.ICNID, err)
	}

	if err := st.UpdateICNAnnotation(ctx, ic.ICNID, caption, objects, hotspots); err != nil {
		return err
	}
	touched, err := touchReferencing(ctx, st, ic)
	if err != nil {
		return err
	}
	err = st.AppendAudit(ctx, ic.ICNID, types.AuditEntry{
		Action: "icn-update",
		Actor:  "operator",
		Detail: fmt.Sprintf("annotated from %s: %d objects, %d hotspots",
			filepath.Base(imagePath), len(objects), len(hotspots)),
	})
	if err != nil {
		return err
	}

	fmt.Printf("Caption: %s\n", caption)
	if len(objects) > 0 {
		fmt.Printf("Objects: %s\n", strings.Join(objects, ", "))
	}
	for _, h := range hotspots {
		fmt.Printf("Hotspot: %d,%d %dx%d  %s\n", h.X, h.Y, h.Width, h.Height, h.Description)
	}
	if touched > 0 {
		fmt.Printf("Touched %d referencing module(s)\n", touched)
	}
	return nil
}

// --- Update ---

var icnUpdateCmd = &cobra.Command{
	Use:   "update [icn-or-lcn]",
	Short: "Edit an illustration's caption or hotspots",
	Long: `Update overrides the stored caption and replaces the hotspot regions.
Fields without a flag keep their current value. Referencing modules have
their update marker advanced, same as after annotation.`,
	Args: cobra.ExactArgs(1),
	RunE: runICNUpdate,
}

func runICNUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	ic, err := st.ICN(ctx, args[0])
	if err != nil {
		return err
	}

	caption := ic.Caption
	if cmd.Flags().Changed("caption") {
		caption, _ = cmd.Flags().GetString("caption")
	}

	hotspots := ic.Hotspots
	if specs, _ := cmd.Flags().GetStringArray("hotspot"); len(specs) > 0 {
		hotspots = make([]types.Hotspot, 0, len(specs))
		for _, spec := range specs {
			h, err := parseHotspot(spec)
			if err != nil {
				return err
			}
			hotspots = append(hotspots, h)
		}
	}

	if err := st.UpdateICNAnnotation(ctx, ic.ICNID, caption, ic.Objects, hotspots); err != nil {
		return err
	}
	touched, err := touchReferencing(ctx, st, ic)
	if err != nil {
		return err
	}
	err = st.AppendAudit(ctx, ic.ICNID, types.AuditEntry{
		Action: "icn-update",
		Actor:  "operator",
		Detail: fmt.Sprintf("edited: caption %q, %d hotspots", clip(caption, 40), len(hotspots)),
	})
	if err != nil {
		return err
	}

	fmt.Printf("Updated %s", ic.ICNID)
	if touched > 0 {
		fmt.Printf(", touched %d referencing module(s)", touched)
	}
	fmt.Println()
	return nil
}

// parseHotspot parses the "x,y,width,height,description" flag form.
func parseHotspot(spec string) (types.Hotspot, error) {
	parts := strings.SplitN(spec, ",", 5)
	if len(parts) != 5 {
		return types.Hotspot{}, fmt.Errorf("hotspot %q: want x,y,width,height,description", spec)
	}
	nums := make([]int, 4)
	for i, p := range parts[:4] {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return types.Hotspot{}, fmt.Errorf("hotspot %q: %w", spec, err)
		}
		nums[i] = n
	}
	return types.Hotspot{
		X:           nums[0],
		Y:           nums[1],
		Width:       nums[2],
		Height:      nums[3],
		Description: strings.TrimSpace(parts[4]),
	}, nil
}

// touchReferencing advances the update marker of every module referencing
// the illustration.
func touchReferencing(ctx context.Context, st *store.Store, ic types.ICN) (int, error) {
	mods, err := st.Modules(ctx, store.ListOptions{})
	if err != nil {
		return 0, err
	}
	dmcs := xref.TouchIllustration(ic, mods)
	for _, dmc := range dmcs {
		if err := st.TouchModule(ctx, dmc); err != nil {
			return 0, fmt.Errorf("touching %s: %w", dmc, err)
		}
	}
	return len(dmcs), nil
}

func init() {
	icnRegisterCmd.Flags().String("lcn", "", "human-assignable reference code")
	icnRegisterCmd.Flags().Int("width", 0, "image width in pixels")
	icnRegisterCmd.Flags().Int("height", 0, "image height in pixels")
	icnRegisterCmd.Flags().String("security", "", "security level (default UNCLASSIFIED)")

	icnAnnotateCmd.Flags().String("image", "", "path to the source image")

	icnUpdateCmd.Flags().String("caption", "", "replacement caption")
	icnUpdateCmd.Flags().StringArray("hotspot", nil, "hotspot as x,y,width,height,description (repeatable)")

	icnCmd.AddCommand(icnListCmd, icnRegisterCmd, icnAnnotateCmd, icnUpdateCmd)
	rootCmd.AddCommand(icnCmd)
}
