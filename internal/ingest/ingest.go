// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest turns raw source documents into stored data modules. The
// processor leans on the configured text provider for classification,
// extraction, and the simplified-language rewrite, and degrades to a plain
// GEN module when the provider cannot deliver a structured result.
// See docs/ARCHITECTURE § Ingestion.
package ingest

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pdiddy/techpub-engine/internal/ai"
	"github.com/pdiddy/techpub-engine/internal/dmc"
	"github.com/pdiddy/techpub-engine/internal/render"
	"github.com/pdiddy/techpub-engine/internal/store"
	"github.com/pdiddy/techpub-engine/internal/xref"
	"github.com/pdiddy/techpub-engine/pkg/types"
)

// auditActor marks records written by the pipeline itself, as opposed to
// operator-initiated changes.
const auditActor = "engine"

// Store is the persistence surface the processor needs. *store.Store
// satisfies it.
type Store interface {
	Settings(ctx context.Context) (types.Settings, error)
	Ruleset(ctx context.Context, id string) (types.Ruleset, error)
	DomainConfig(ctx context.Context, id string) (types.DomainConfig, error)
	InsertModules(ctx context.Context, mods []types.DataModule, audits []store.AuditRecord) error
	Modules(ctx context.Context, opts store.ListOptions) ([]types.DataModule, error)
	ICNs(ctx context.Context) ([]types.ICN, error)
	UpdateRefs(ctx context.Context, dmc string, moduleRefs, illustrationRefs []string) error
}

// Processor drives the ingestion pipeline for one configured text provider.
type Processor struct {
	store Store
	text  ai.TextProvider
	cfg   types.IngestConfig
	log   *slog.Logger
}

func NewProcessor(st Store, text ai.TextProvider, cfg types.IngestConfig, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Processor{store: st, text: text, cfg: cfg, log: log}
}

// ProcessText runs the pipeline over one source document: classify, extract,
// build the verbatim module, rewrite, build the simplified module, persist
// everything in one transaction, then refresh corpus references. A provider
// failure during classification or extraction degrades to a single GEN
// module preserving the source text; a rewrite failure degrades to the
// verbatim module alone. Only configuration problems and store errors fail
// the call.
func (p *Processor) ProcessText(ctx context.Context, sourceID, filename, text string) ([]types.DataModule, error) {
	settings, err := p.store.Settings(ctx)
	if err != nil {
		return nil, err
	}
	rs, err := p.store.Ruleset(ctx, settings.ActiveRulesetID)
	if err != nil {
		return nil, fmt.Errorf("active ruleset: %w", err)
	}
	domainCfg, err := p.store.DomainConfig(ctx, settings.ActiveDomainConfigID)
	if err != nil {
		return nil, fmt.Errorf("active domain config: %w", err)
	}

	mods, audits, err := p.buildModules(ctx, sourceID, filename, text, rs, domainCfg)
	if err != nil {
		return nil, err
	}

	if err := p.store.InsertModules(ctx, mods, audits); err != nil {
		return nil, err
	}
	if _, err := RefreshRefs(ctx, p.store); err != nil {
		return nil, fmt.Errorf("refreshing references: %w", err)
	}
	return mods, nil
}

// buildModules assembles the module set and audit records for one document.
// The returned error is non-nil only when ctx ended mid-pipeline; provider
// failures degrade instead.
func (p *Processor) buildModules(ctx context.Context, sourceID, filename, text string, rs types.Ruleset, domainCfg types.DomainConfig) ([]types.DataModule, []store.AuditRecord, error) {
	class, err := p.text.Classify(ctx, text)
	var ext types.Extraction
	if err == nil {
		ext, err = p.text.Extract(ctx, text)
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		p.log.Warn("text provider failed, storing source as GEN", "file", filename, "error", err)
		m := p.buildModule(types.Classification{Type: types.TypeGeneral, Title: filename},
			domainCfg, types.VariantVerbatim, text, sourceID)
		return []types.DataModule{m}, []store.AuditRecord{
			auditRecord(m.DMC, fmt.Sprintf("stored as GEN, text provider failed: %v", err)),
		}, nil
	}

	normalizeClassification(&class, filename, rs)

	verbatim := p.buildModule(class, domainCfg, types.VariantVerbatim, text, sourceID)
	mods := []types.DataModule{verbatim}
	audits := []store.AuditRecord{auditRecord(verbatim.DMC, fmt.Sprintf(
		"classified as %s (confidence %.2f); extracted %d sections, %d warnings, %d cautions",
		class.Type, class.Confidence, len(ext.Sections), len(ext.Warnings), len(ext.Cautions)))}

	rw, err := p.text.RewriteSimplified(ctx, text)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		p.log.Warn("simplified rewrite skipped", "file", filename, "error", err)
		return mods, audits, nil
	}

	content := rw.Text
	if content == "" {
		content = text
	}
	simplified := p.buildModule(class, domainCfg, types.VariantSimplified, content, sourceID)
	simplified.ReadabilityScore = rw.Score
	mods = append(mods, simplified)
	audits = append(audits, auditRecord(simplified.DMC, fmt.Sprintf(
		"simplified rewrite of %s, readability %.2f", verbatim.DMC, rw.Score)))

	return mods, audits, nil
}

// buildModule assembles one module with its derived caches and scanned
// reference sets. Scanned refs are raw pattern hits; the post-insert refresh
// and the validation integrity check deal with targets that do not exist.
func (p *Processor) buildModule(c types.Classification, domainCfg types.DomainConfig, variant, content, sourceID string) types.DataModule {
	security := p.cfg.DefaultSecurity
	if security == "" {
		security = types.SecurityUnclassified
	}

	m := types.DataModule{
		DMC:              dmc.Generate(c, domainCfg, variant),
		Title:            c.Title,
		Type:             c.Type,
		InfoVariant:      variant,
		Content:          content,
		SecurityLevel:    security,
		ModuleRefs:       xref.ScanModuleRefs(content),
		IllustrationRefs: xref.ScanIllustrationRefs(content),
		SourceDocumentID: sourceID,
	}

	markup, err := render.XML(m)
	if err != nil {
		p.log.Warn("markup cache skipped", "dmc", m.DMC, "error", err)
		return m
	}
	m.XMLContent = markup

	page, err := render.HTML(m)
	if err != nil {
		p.log.Warn("hypertext cache skipped", "dmc", m.DMC, "error", err)
		return m
	}
	m.HTMLContent = page
	return m
}

// normalizeClassification applies the fallbacks the rest of the pipeline
// relies on: an unknown or disallowed type becomes GEN, an empty title
// falls back to the source filename.
func normalizeClassification(c *types.Classification, filename string, rs types.Ruleset) {
	if !types.KnownDMType(c.Type) || !rs.AllowsType(c.Type) {
		c.Type = types.TypeGeneral
	}
	if c.Title == "" {
		c.Title = filename
	}
}

func auditRecord(subject, detail string) store.AuditRecord {
	return store.AuditRecord{
		Subject: subject,
		Entry:   types.AuditEntry{Action: "ingest", Actor: auditActor, Detail: detail},
	}
}

// RefreshRefs scans the whole corpus and persists the modules whose
// reference sets grew. It returns the number of modules updated. The refs
// CLI command calls this directly; ProcessText runs it after every insert.
func RefreshRefs(ctx context.Context, st Store) (int, error) {
	mods, err := st.Modules(ctx, store.ListOptions{})
	if err != nil {
		return 0, err
	}
	icns, err := st.ICNs(ctx)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, u := range xref.Refresh(mods, icns) {
		if err := st.UpdateRefs(ctx, u.DMC, u.ModuleRefs, u.IllustrationRefs); err != nil {
			return applied, fmt.Errorf("updating refs for %s: %w", u.DMC, err)
		}
		applied++
	}
	return applied, nil
}

// BatchSummary holds counts from a batch ingestion run.
type BatchSummary struct {
	Ingested int // files turned into modules
	Failed   int // files that could not be processed
	Modules  int // data modules created across all files
}

// Total returns the number of files attempted.
func (s BatchSummary) Total() int {
	return s.Ingested + s.Failed
}

// HasFailures reports whether any file failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// ProcessFiles ingests each named file in turn, writing progress lines to w.
// One unreadable or unprocessable file never aborts the batch; a cancelled
// context does.
func (p *Processor) ProcessFiles(ctx context.Context, paths []string, w io.Writer) (BatchSummary, error) {
	var summary BatchSummary

	for _, path := range paths {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		base := filepath.Base(path)
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", base, err)
			summary.Failed++
			continue
		}

		mods, err := p.ProcessText(ctx, sourceID(data), base, string(data))
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", base, err)
			summary.Failed++
			continue
		}

		fmt.Fprintf(w, "ingested %s (%d modules)\n", base, len(mods))
		for _, m := range mods {
			fmt.Fprintf(w, "  %s\n", m.DMC)
		}
		summary.Ingested++
		summary.Modules += len(mods)
	}

	fmt.Fprintf(w, "\nBatch summary: %d ingested, %d failed, %d modules (total: %d)\n",
		summary.Ingested, summary.Failed, summary.Modules, summary.Total())
	return summary, nil
}

// sourceID derives a stable document identifier from file content: the
// first 12 hex characters of its SHA-256. Re-ingesting identical content
// maps to the same source document.
func sourceID(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))[:12]
}
