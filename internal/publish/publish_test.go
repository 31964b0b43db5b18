// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/techpub-engine/pkg/types"
)

const (
	dmcVerbatim   = "DMC-TPUB-A-00-00-00-00A-030A-A-00"
	dmcSimplified = "DMC-TPUB-A-00-00-00-00A-030A-A-01"
	dmcSecond     = "DMC-TPUB-A-01-00-00-00A-020A-A-00"
)

// stubFetcher mirrors the store contract: modules come back in request
// order, codes with no match are skipped.
type stubFetcher struct {
	mods  []types.DataModule
	err   error
	delay time.Duration
}

func (f *stubFetcher) ModulesByDMCs(_ context.Context, dmcs []string) ([]types.DataModule, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}

	byDMC := make(map[string]types.DataModule, len(f.mods))
	for _, m := range f.mods {
		byDMC[m.DMC] = m
	}

	var out []types.DataModule
	for _, d := range dmcs {
		if m, ok := byDMC[d]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func testModule(dmc, variant string) types.DataModule {
	return types.DataModule{
		DMC:         dmc,
		Title:       "Hydraulic pump removal",
		Type:        types.TypeProcedure,
		InfoVariant: variant,
		Content:     "Shut off hydraulic power.\nRemove the access panel.",
	}
}

func testPM(dmcs ...string) types.PublicationModule {
	return types.PublicationModule{
		PMCode:   "PMC-TPUB-00001-00",
		Title:    "Hydraulic system manual",
		DMList:   dmcs,
		Formats:  []types.Format{types.FormatXML},
		Variants: []string{"verbatim", "simplified"},
	}
}

func archiveEntries(t *testing.T, path string) map[string]string {
	t.Helper()

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	entries := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		entries[f.Name] = string(data)
	}
	return entries
}

func TestPublishCreatesArchive(t *testing.T) {
	workDir := t.TempDir()
	pm := testPM(dmcVerbatim, dmcSimplified)
	pm.Formats = []types.Format{types.FormatXML, types.FormatHTML}
	fetch := &stubFetcher{mods: []types.DataModule{
		testModule(dmcVerbatim, types.VariantVerbatim),
		testModule(dmcSimplified, types.VariantSimplified),
	}}

	got, err := NewPackager().Publish(context.Background(), pm, fetch, Options{WorkDir: workDir})
	require.NoError(t, err)
	assert.Empty(t, got.Errors)
	assert.Equal(t, 4, got.Artifacts)
	assert.Equal(t, filepath.Join(workDir, "archive", pm.PMCode+".zip"), got.ArchivePath)

	entries := archiveEntries(t, got.ArchivePath)
	require.Len(t, entries, 4)
	assert.Contains(t, entries, dmcVerbatim+"_00.xml")
	assert.Contains(t, entries, dmcVerbatim+"_00.html")
	assert.Contains(t, entries, dmcSimplified+"_01.xml")
	assert.Contains(t, entries, dmcSimplified+"_01.html")
	assert.Contains(t, entries[dmcVerbatim+"_00.xml"], "<dmc>"+dmcVerbatim+"</dmc>")
}

func TestPublishRemovesStaging(t *testing.T) {
	workDir := t.TempDir()
	pm := testPM(dmcVerbatim)
	fetch := &stubFetcher{mods: []types.DataModule{testModule(dmcVerbatim, types.VariantVerbatim)}}

	_, err := NewPackager().Publish(context.Background(), pm, fetch, Options{WorkDir: workDir})
	require.NoError(t, err)

	left, err := os.ReadDir(workDir)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "archive", left[0].Name())
}

func TestPublishRemovesStagingOnArchiveFailure(t *testing.T) {
	workDir := t.TempDir()
	pm := testPM(dmcVerbatim)
	fetch := &stubFetcher{mods: []types.DataModule{testModule(dmcVerbatim, types.VariantVerbatim)}}

	// A directory squatting on the archive path makes the zip write fail
	// after rendering succeeded.
	require.NoError(t, os.MkdirAll(filepath.Join(workDir, "archive", pm.PMCode+".zip"), 0o755))

	_, err := NewPackager().Publish(context.Background(), pm, fetch, Options{WorkDir: workDir})
	require.Error(t, err)

	left, err := os.ReadDir(workDir)
	require.NoError(t, err)
	require.Len(t, left, 1, "staging directory must not outlive a failed publish")
	assert.Equal(t, "archive", left[0].Name())
}

func TestPublishMarkupAlwaysRendered(t *testing.T) {
	workDir := t.TempDir()
	pm := testPM(dmcVerbatim)
	pm.Formats = []types.Format{types.FormatHTML}
	fetch := &stubFetcher{mods: []types.DataModule{testModule(dmcVerbatim, types.VariantVerbatim)}}

	got, err := NewPackager().Publish(context.Background(), pm, fetch, Options{WorkDir: workDir})
	require.NoError(t, err)
	assert.Equal(t, 2, got.Artifacts)

	entries := archiveEntries(t, got.ArchivePath)
	assert.Contains(t, entries, dmcVerbatim+"_00.xml", "markup is the baseline artifact")
	assert.Contains(t, entries, dmcVerbatim+"_00.html")
}

func TestPublishVariantFilter(t *testing.T) {
	workDir := t.TempDir()
	pm := testPM(dmcVerbatim, dmcSimplified)
	fetch := &stubFetcher{mods: []types.DataModule{
		testModule(dmcVerbatim, types.VariantVerbatim),
		testModule(dmcSimplified, types.VariantSimplified),
	}}

	got, err := NewPackager().Publish(context.Background(), pm, fetch, Options{
		WorkDir:  workDir,
		Variants: []string{"simplified"},
	})
	require.NoError(t, err)
	assert.Empty(t, got.Errors)
	assert.Equal(t, 1, got.Artifacts)

	entries := archiveEntries(t, got.ArchivePath)
	assert.Contains(t, entries, dmcSimplified+"_01.xml")
	assert.NotContains(t, entries, dmcVerbatim+"_00.xml")
}

func TestPublishVariantCodeSynonym(t *testing.T) {
	workDir := t.TempDir()
	pm := testPM(dmcVerbatim, dmcSimplified)
	fetch := &stubFetcher{mods: []types.DataModule{
		testModule(dmcVerbatim, types.VariantVerbatim),
		testModule(dmcSimplified, types.VariantSimplified),
	}}

	got, err := NewPackager().Publish(context.Background(), pm, fetch, Options{
		WorkDir:  workDir,
		Variants: []string{"00"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Artifacts)

	entries := archiveEntries(t, got.ArchivePath)
	assert.Contains(t, entries, dmcVerbatim+"_00.xml")
}

func TestPublishIsolatesRenderFailure(t *testing.T) {
	workDir := t.TempDir()
	broken := testModule(dmcSecond, types.VariantVerbatim)
	broken.Title = "" // fails the schema check
	pm := testPM(dmcVerbatim, dmcSecond, dmcSimplified)
	fetch := &stubFetcher{mods: []types.DataModule{
		testModule(dmcVerbatim, types.VariantVerbatim),
		broken,
		testModule(dmcSimplified, types.VariantSimplified),
	}}

	got, err := NewPackager().Publish(context.Background(), pm, fetch, Options{WorkDir: workDir})
	require.NoError(t, err, "one broken module must not abort the publication")
	require.Len(t, got.Errors, 1)
	assert.Contains(t, got.Errors[0], "Failed to export "+dmcSecond)
	assert.Equal(t, 2, got.Artifacts)

	entries := archiveEntries(t, got.ArchivePath)
	assert.Contains(t, entries, dmcVerbatim+"_00.xml")
	assert.Contains(t, entries, dmcSimplified+"_01.xml")
	assert.NotContains(t, entries, dmcSecond+"_00.xml")
}

func TestPublishMissingModule(t *testing.T) {
	workDir := t.TempDir()
	missing := "DMC-TPUB-A-99-00-00-00A-030A-A-00"
	pm := testPM(dmcVerbatim, missing)
	fetch := &stubFetcher{mods: []types.DataModule{testModule(dmcVerbatim, types.VariantVerbatim)}}

	got, err := NewPackager().Publish(context.Background(), pm, fetch, Options{WorkDir: workDir})
	require.NoError(t, err)
	require.Len(t, got.Errors, 1)
	assert.Contains(t, got.Errors[0], "Failed to export "+missing)
	assert.Contains(t, got.Errors[0], "module not found")
	assert.Equal(t, 1, got.Artifacts)
}

func TestPublishNothingRendered(t *testing.T) {
	workDir := t.TempDir()
	broken := testModule(dmcVerbatim, types.VariantVerbatim)
	broken.Title = ""
	pm := testPM(dmcVerbatim)
	fetch := &stubFetcher{mods: []types.DataModule{broken}}

	got, err := NewPackager().Publish(context.Background(), pm, fetch, Options{WorkDir: workDir})
	require.EqualError(t, err, "no artifacts rendered")
	assert.Empty(t, got.ArchivePath)
	assert.Len(t, got.Errors, 1)

	left, err := os.ReadDir(workDir)
	require.NoError(t, err)
	assert.Empty(t, left, "staging must be removed when nothing rendered")
}

func TestPublishPDFFormatOverride(t *testing.T) {
	workDir := t.TempDir()
	pm := testPM(dmcVerbatim)
	fetch := &stubFetcher{mods: []types.DataModule{testModule(dmcVerbatim, types.VariantVerbatim)}}

	got, err := NewPackager().Publish(context.Background(), pm, fetch, Options{
		WorkDir: workDir,
		Formats: []types.Format{types.FormatPDF},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, got.Artifacts)

	entries := archiveEntries(t, got.ArchivePath)
	assert.Contains(t, entries, dmcVerbatim+"_00.xml")
	require.Contains(t, entries, dmcVerbatim+"_00.pdf")
	assert.True(t, strings.HasPrefix(entries[dmcVerbatim+"_00.pdf"], "%PDF"))
}

func TestPublishFetchError(t *testing.T) {
	fetch := &stubFetcher{err: errors.New("database closed")}

	_, err := NewPackager().Publish(context.Background(), testPM(dmcVerbatim), fetch, Options{WorkDir: t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching modules")
}

func TestPublishCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetch := &stubFetcher{mods: []types.DataModule{testModule(dmcVerbatim, types.VariantVerbatim)}}
	got, err := NewPackager().Publish(ctx, testPM(dmcVerbatim), fetch, Options{WorkDir: t.TempDir()})
	require.EqualError(t, err, "no artifacts rendered")
	assert.Zero(t, got.Artifacts)
}

func TestPublishSameCodeSerialized(t *testing.T) {
	workDir := t.TempDir()
	pm := testPM(dmcVerbatim, dmcSimplified)
	fetch := &stubFetcher{
		delay: 5 * time.Millisecond,
		mods: []types.DataModule{
			testModule(dmcVerbatim, types.VariantVerbatim),
			testModule(dmcSimplified, types.VariantSimplified),
		},
	}

	p := NewPackager()
	results := make([]Result, 4)
	errs := make([]error, 4)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = p.Publish(context.Background(), pm, fetch, Options{WorkDir: workDir})
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, 2, results[i].Artifacts)
	}

	entries := archiveEntries(t, results[0].ArchivePath)
	assert.Len(t, entries, 2, "serialized publishes must leave a complete archive")
}
