// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package publish assembles delivery archives from rendered module
// artifacts. Each run stages its artifacts in an isolated directory under
// the work dir and compresses them into a single zip bundle, so concurrent
// publications never collide on the filesystem.
// See docs/ARCHITECTURE § Publication.
package publish

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/pdiddy/techpub-engine/internal/render"
	"github.com/pdiddy/techpub-engine/pkg/types"
)

// ModuleFetcher supplies the data modules named in a publication's DMList.
// *store.Store satisfies it.
type ModuleFetcher interface {
	ModulesByDMCs(ctx context.Context, dmcs []string) ([]types.DataModule, error)
}

// Options control a single publish run. Empty Formats or Variants fall back
// to the publication module's own settings.
type Options struct {
	// Formats overrides the publication's output formats.
	Formats []types.Format

	// Variants overrides the publication's variant selection. Names
	// ("verbatim", "simplified") and codes ("00", "01") are both accepted.
	Variants []string

	// WorkDir is the root under which staging directories and the archive
	// directory are created.
	WorkDir string
}

// Result reports what one publish run produced. A non-empty Errors list
// alongside a non-empty ArchivePath means partial success: the archive holds
// artifacts for every module that rendered cleanly.
type Result struct {
	ArchivePath string
	Artifacts   int
	Errors      []string
}

// Packager builds publication archives. Publishes of distinct publication
// codes run fully concurrently; publishes of the same code are serialized so
// an archive is never overwritten mid-write.
type Packager struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewPackager() *Packager {
	return &Packager{locks: make(map[string]*sync.Mutex)}
}

// codeLock returns the mutex serializing publishes of code.
func (p *Packager) codeLock(code string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.locks[code]
	if !ok {
		l = &sync.Mutex{}
		p.locks[code] = l
	}
	return l
}

// Publish renders the modules of pm and packages them into a zip archive
// under opts.WorkDir. A module that cannot be rendered is reported in
// Result.Errors and skipped; the remaining modules are still packaged. The
// run fails outright only when nothing at all could be rendered.
//
// Cancelling ctx stops new render work. Artifacts already rendered remain
// valid partial output and are packaged.
func (p *Packager) Publish(ctx context.Context, pm types.PublicationModule, fetch ModuleFetcher, opts Options) (Result, error) {
	lock := p.codeLock(pm.PMCode)
	lock.Lock()
	defer lock.Unlock()

	formats := opts.Formats
	if len(formats) == 0 {
		formats = pm.Formats
	}
	requested := make(map[types.Format]bool, len(formats))
	for _, f := range formats {
		requested[f] = true
	}

	variants := opts.Variants
	if len(variants) == 0 {
		variants = pm.Variants
	}
	wanted := make(map[string]bool, len(variants))
	for _, v := range variants {
		wanted[types.VariantCode(v)] = true
	}

	mods, err := fetch.ModulesByDMCs(ctx, pm.DMList)
	if err != nil {
		return Result{}, fmt.Errorf("fetching modules for %s: %w", pm.PMCode, err)
	}
	byDMC := make(map[string]types.DataModule, len(mods))
	for _, m := range mods {
		byDMC[m.DMC] = m
	}

	staging := filepath.Join(opts.WorkDir, pm.PMCode+"-"+uuid.New().String()[:8])
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return Result{}, fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	var (
		result Result
		names  []string
	)
	for _, dmc := range pm.DMList {
		if ctx.Err() != nil {
			break
		}

		m, ok := byDMC[dmc]
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to export %s: module not found", dmc))
			continue
		}
		if len(wanted) > 0 && !wanted[m.InfoVariant] {
			continue
		}

		exported, err := exportModule(m, staging, requested)
		names = append(names, exported...)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to export %s: %v", dmc, err))
		}
	}

	result.Artifacts = len(names)
	if len(names) == 0 {
		return result, errors.New("no artifacts rendered")
	}

	archiveDir := filepath.Join(opts.WorkDir, "archive")
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return result, fmt.Errorf("creating archive directory: %w", err)
	}
	archivePath := filepath.Join(archiveDir, pm.PMCode+".zip")
	if err := zipArtifacts(archivePath, staging, names); err != nil {
		return result, err
	}

	result.ArchivePath = archivePath
	return result, nil
}

// exportModule renders one module into dir. Structured markup is always
// produced and schema-checked; hypertext and paginated output follow the
// requested formats. The artifact names written before any failure are
// returned so partial output stays packageable.
func exportModule(m types.DataModule, dir string, requested map[types.Format]bool) ([]string, error) {
	markup, err := render.XML(m)
	if err != nil {
		return nil, err
	}
	if !render.SchemaValid(markup) {
		return nil, errors.New("markup failed schema validation")
	}

	var names []string
	write := func(ext string, data []byte) error {
		name := fmt.Sprintf("%s_%s.%s", m.DMC, m.InfoVariant, ext)
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return fmt.Errorf("writing %s artifact: %w", ext, err)
		}
		names = append(names, name)
		return nil
	}

	if err := write("xml", []byte(markup)); err != nil {
		return names, err
	}

	if requested[types.FormatHTML] {
		page, err := render.HTML(m)
		if err != nil {
			return names, err
		}
		if err := write("html", []byte(page)); err != nil {
			return names, err
		}
	}

	if requested[types.FormatPDF] {
		doc, err := render.PDF(m)
		if err != nil {
			return names, err
		}
		if err := write("pdf", doc); err != nil {
			return names, err
		}
	}

	return names, nil
}

// zipArtifacts compresses the named staging files into a single archive,
// storing each entry under its name relative to the staging root.
func zipArtifacts(archivePath, staging string, names []string) error {
	f, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("adding %s to archive: %w", name, err)
		}
		src, err := os.Open(filepath.Join(staging, name))
		if err != nil {
			return fmt.Errorf("opening artifact %s: %w", name, err)
		}
		_, err = io.Copy(w, src)
		src.Close()
		if err != nil {
			return fmt.Errorf("compressing %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalizing archive: %w", err)
	}
	return nil
}
