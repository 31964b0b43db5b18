// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate composes rule evaluation, reference-integrity checking,
// and the optional semantic review into a single persisted verdict per
// module. See docs/ARCHITECTURE § Validation.
package validate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/pdiddy/techpub-engine/internal/brex"
	"github.com/pdiddy/techpub-engine/internal/store"
	"github.com/pdiddy/techpub-engine/internal/xref"
	"github.com/pdiddy/techpub-engine/pkg/types"
)

const defaultReviewTimeout = 30 * time.Second

// auditActor marks verdicts persisted by the orchestrator itself, as
// opposed to operator-initiated record changes.
const auditActor = "engine"

// Store is the slice of the document store the orchestrator reads and
// writes. *store.Store satisfies it.
type Store interface {
	Module(ctx context.Context, dmc string) (types.DataModule, error)
	Modules(ctx context.Context, opts store.ListOptions) ([]types.DataModule, error)
	ICNs(ctx context.Context) ([]types.ICN, error)
	Settings(ctx context.Context) (types.Settings, error)
	Ruleset(ctx context.Context, id string) (types.Ruleset, error)
	UpdateVerdict(ctx context.Context, dmc string, v types.Verdict) error
	AppendAudit(ctx context.Context, subject string, e types.AuditEntry) error
}

// Reviewer is the semantic-review slice of the text provider contract.
type Reviewer interface {
	Review(ctx context.Context, text string) (types.Review, error)
}

// Orchestrator runs validation requests. Each request is stateless: the
// active ruleset is re-read from the store per call, so rule changes apply
// without restart. Safe for concurrent use; concurrent validations of the
// same module are last-write-wins on the persisted verdict.
type Orchestrator struct {
	store    Store
	eval     *brex.Evaluator
	reviewer Reviewer
	cfg      types.ValidationConfig
	log      *slog.Logger
}

// NewOrchestrator wires an orchestrator. A nil reviewer disables the
// semantic-review step regardless of cfg. A nil log discards diagnostics.
func NewOrchestrator(st Store, eval *brex.Evaluator, reviewer Reviewer, cfg types.ValidationConfig, log *slog.Logger) *Orchestrator {
	if cfg.ReviewTimeout <= 0 {
		cfg.ReviewTimeout = defaultReviewTimeout
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Orchestrator{
		store:    st,
		eval:     eval,
		reviewer: reviewer,
		cfg:      cfg,
		log:      log,
	}
}

// Validate produces and persists the verdict for the module identified by
// dmc. The pipeline is: field and path rules, then reference integrity
// against the current corpus snapshot, then the optional semantic review.
// Rule violations and unresolved references are data, not errors; Validate
// returns a non-nil error only when the module is missing, the active
// ruleset cannot be loaded, or persisting the verdict fails.
func (o *Orchestrator) Validate(ctx context.Context, dmc string) (types.Verdict, error) {
	m, err := o.store.Module(ctx, dmc)
	if err != nil {
		return types.Verdict{}, err
	}

	settings, err := o.store.Settings(ctx)
	if err != nil {
		return types.Verdict{}, err
	}
	rs, err := o.store.Ruleset(ctx, settings.ActiveRulesetID)
	if err != nil {
		return types.Verdict{}, fmt.Errorf("active ruleset: %w", err)
	}

	v := o.eval.Evaluate(m, rs)

	if err := o.checkReferences(ctx, &v, m, rs.RefPolicy); err != nil {
		return types.Verdict{}, err
	}

	o.review(ctx, &v, m)

	if err := o.store.UpdateVerdict(ctx, dmc, v); err != nil {
		return v, err
	}
	err = o.store.AppendAudit(ctx, dmc, types.AuditEntry{
		Action: "validate",
		Actor:  auditActor,
		Detail: string(v.Status),
	})
	if err != nil {
		return v, err
	}

	return v, nil
}

// checkReferences reports every identifier in the module's reference sets
// with no existing target. Unresolved references downgrade the verdict to
// fail unless the ruleset allows broken references; either way they are
// recorded as errors.
func (o *Orchestrator) checkReferences(ctx context.Context, v *types.Verdict, m types.DataModule, policy types.RefPolicy) error {
	mods, err := o.store.Modules(ctx, store.ListOptions{})
	if err != nil {
		return fmt.Errorf("loading module snapshot: %w", err)
	}
	icns, err := o.store.ICNs(ctx)
	if err != nil {
		return fmt.Errorf("loading illustration snapshot: %w", err)
	}

	for _, ref := range xref.MissingTargets(m, mods, icns) {
		v.Errors = append(v.Errors, "Unresolved reference: "+ref)
		if !policy.AllowBrokenRefs {
			v.Status = types.StatusFail
		}
	}
	return nil
}

// review runs the semantic review when enabled and wired. Review findings
// are advisory: each issue is appended prefixed with "REVIEW: " and a
// passing verdict downgrades to warn, never to fail. A review that times
// out, fails, or returns garbage degrades to "no issues reported".
func (o *Orchestrator) review(ctx context.Context, v *types.Verdict, m types.DataModule) {
	if !o.cfg.ReviewEnabled || o.reviewer == nil {
		return
	}

	rctx, cancel := context.WithTimeout(ctx, o.cfg.ReviewTimeout)
	defer cancel()

	rev, err := o.reviewer.Review(rctx, m.Content)
	if err != nil {
		o.log.Warn("semantic review degraded", "dmc", m.DMC, "error", err)
		return
	}

	for _, issue := range rev.Issues {
		v.Errors = append(v.Errors, "REVIEW: "+issue)
	}
	if len(rev.Issues) > 0 && v.Status == types.StatusPass {
		v.Status = types.StatusWarn
	}
}
