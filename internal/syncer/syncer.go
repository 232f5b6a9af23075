// File: internal/syncer/syncer.go
// Package syncer drives the catalog pass: fetch every rule, resolve training
// content, render references, write them back. Strictly sequential; one HTTP
// call in flight at a time.
package syncer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/secwarden/rulelink-cli/internal/reference"
	"github.com/secwarden/rulelink-cli/internal/scw"
	"github.com/secwarden/rulelink-cli/internal/teamserver"
)

// PlatformAPI is the slice of the source-platform client the runner needs.
type PlatformAPI interface {
	ListRules(ctx context.Context) ([]teamserver.Rule, error)
	GetRule(ctx context.Context, name string) (*teamserver.Rule, error)
	UpdateRuleReferences(ctx context.Context, ruleName string, references []string) error
	SendUsageEvent(ctx context.Context, reset bool) error
}

// TrainingAPI is the slice of the training-content client the runner needs.
type TrainingAPI interface {
	Lookup(ctx context.Context, mappingList, mappingKey string) (*scw.Content, error)
	TrialURL(mappingList, mappingKey string) string
}

// Options control a pass.
type Options struct {
	// ContinueOnError logs per-rule failures and finishes the pass instead of
	// aborting on the first one. Either way a failed rule makes the pass
	// return an error; there is no retry and no resume checkpoint. The tool
	// is idempotent, so the recovery for any failure is to re-run it.
	ContinueOnError bool
	// DryRun computes and logs references without writing anything back.
	DryRun bool
	// UsageAnalytics sends the best-effort diagnostics event after the pass.
	UsageAnalytics bool
	// Rule restricts the pass to a single rule by name.
	Rule string
}

// Summary is the outcome of one pass.
type Summary struct {
	Total   int // rules visited
	Updated int // references written with content
	Cleared int // references overwritten with an empty list
	Missing int // rules with no training content anywhere
	Failed  int // rules whose lookup or write-back failed
}

// Runner owns one synchronization pass over the rule catalog.
type Runner struct {
	platform PlatformAPI
	training TrainingAPI
	logger   *zap.Logger
	opts     Options
}

// New builds a Runner.
func New(platform PlatformAPI, training TrainingAPI, logger *zap.Logger, opts Options) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		platform: platform,
		training: training,
		logger:   logger.Named("syncer"),
		opts:     opts,
	}
}

// Run executes a full sync pass: every visited rule gets its reference list
// recomputed and overwritten, including rules that resolve to nothing (their
// references are cleared). That empty overwrite is the documented hazard of
// this tool; it is logged per rule so the operator can see what was wiped.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	runID := uuid.New().String()
	log := r.logger.With(zap.String("runID", runID))

	rules, err := r.fetchRules(ctx)
	if err != nil {
		return Summary{}, err
	}
	log.Info("Starting reference sync", zap.Int("rules", len(rules)), zap.Bool("dry_run", r.opts.DryRun))

	var summary Summary
	for _, rule := range rules {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Total++
		if err := r.syncRule(ctx, log, rule, &summary); err != nil {
			summary.Failed++
			if !r.opts.ContinueOnError {
				return summary, fmt.Errorf("rule %s: %w", rule.Name, err)
			}
			log.Warn("Rule failed, continuing", zap.String("rule", rule.Name), zap.Error(err))
		}
	}

	r.sendUsage(ctx, log, false)
	r.logSummary(log, "Reference sync finished", summary)

	if summary.Failed > 0 {
		return summary, fmt.Errorf("sync finished with %d of %d rules failed", summary.Failed, summary.Total)
	}
	return summary, nil
}

// Reset executes a clear pass: every visited rule's references are
// overwritten with an empty list.
func (r *Runner) Reset(ctx context.Context) (Summary, error) {
	runID := uuid.New().String()
	log := r.logger.With(zap.String("runID", runID))

	rules, err := r.fetchRules(ctx)
	if err != nil {
		return Summary{}, err
	}
	log.Info("Starting reference reset", zap.Int("rules", len(rules)), zap.Bool("dry_run", r.opts.DryRun))

	var summary Summary
	for _, rule := range rules {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Total++
		if err := r.writeBack(ctx, log, rule.Name, []string{}); err != nil {
			summary.Failed++
			if !r.opts.ContinueOnError {
				return summary, fmt.Errorf("rule %s: %w", rule.Name, err)
			}
			log.Warn("Rule failed, continuing", zap.String("rule", rule.Name), zap.Error(err))
			continue
		}
		summary.Cleared++
		log.Info("Rule references cleared", zap.String("rule", rule.Name))
	}

	r.sendUsage(ctx, log, true)
	r.logSummary(log, "Reference reset finished", summary)

	if summary.Failed > 0 {
		return summary, fmt.Errorf("reset finished with %d of %d rules failed", summary.Failed, summary.Total)
	}
	return summary, nil
}

func (r *Runner) fetchRules(ctx context.Context) ([]teamserver.Rule, error) {
	if r.opts.Rule != "" {
		rule, err := r.platform.GetRule(ctx, r.opts.Rule)
		if err != nil {
			return nil, fmt.Errorf("fetching rule %s: %w", r.opts.Rule, err)
		}
		return []teamserver.Rule{*rule}, nil
	}
	rules, err := r.platform.ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching organization rules: %w", err)
	}
	return rules, nil
}

// syncRule resolves content for one rule and writes the resulting references.
func (r *Runner) syncRule(ctx context.Context, log *zap.Logger, rule teamserver.Rule, summary *Summary) error {
	mappingList, mappingKey := resolveMapping(rule)

	var content *scw.Content
	var trialURL string
	if mappingKey != "" {
		trialURL = r.training.TrialURL(mappingList, mappingKey)
		var err error
		content, err = r.training.Lookup(ctx, mappingList, mappingKey)
		if errors.Is(err, scw.ErrNoContent) && mappingList == scw.MappingCWE {
			// SCW's CWE list has holes; fall back to the pinned category
			// mapping when one exists for this rule.
			if key, ok := reference.MappingReserve(rule.Name); ok {
				mappingList, mappingKey = scw.MappingDefault, key
				trialURL = r.training.TrialURL(mappingList, mappingKey)
				content, err = r.training.Lookup(ctx, mappingList, mappingKey)
			}
		}
		switch {
		case errors.Is(err, scw.ErrNoContent):
			content = nil
			log.Info("No training content for rule",
				zap.String("rule", rule.Name),
				zap.String("mapping_list", mappingList),
				zap.String("mapping_key", mappingKey))
		case err != nil:
			return err
		}
	} else {
		log.Info("Rule has no CWE and no reserve mapping", zap.String("rule", rule.Name))
	}

	refs := reference.Build(rule, content, trialURL)

	if len(refs) == 0 {
		summary.Missing++
		// Still written: the pass owns the reference field outright, and a
		// rule that lost its content gets cleared rather than left stale.
		log.Warn("Nothing to link; overwriting rule with empty references",
			zap.String("rule", rule.Name), zap.String("cwe", rule.CWENumber()))
	}

	if err := r.writeBack(ctx, log, rule.Name, refs); err != nil {
		return err
	}

	if len(refs) == 0 {
		summary.Cleared++
	} else {
		summary.Updated++
		log.Info("Rule references updated",
			zap.String("rule", rule.Name), zap.Int("references", len(refs)))
	}
	return nil
}

func (r *Runner) writeBack(ctx context.Context, log *zap.Logger, ruleName string, refs []string) error {
	if r.opts.DryRun {
		log.Info("Dry run: skipping write-back",
			zap.String("rule", ruleName), zap.Strings("references", refs))
		return nil
	}
	return r.platform.UpdateRuleReferences(ctx, ruleName, refs)
}

// sendUsage fires the diagnostics event. Never fatal.
func (r *Runner) sendUsage(ctx context.Context, log *zap.Logger, reset bool) {
	if !r.opts.UsageAnalytics || r.opts.DryRun {
		return
	}
	if err := r.platform.SendUsageEvent(ctx, reset); err != nil {
		log.Warn("Unable to send usage data", zap.Error(err))
	}
}

func (r *Runner) logSummary(log *zap.Logger, msg string, s Summary) {
	log.Info(msg,
		zap.Int("total", s.Total),
		zap.Int("updated", s.Updated),
		zap.Int("cleared", s.Cleared),
		zap.Int("missing", s.Missing),
		zap.Int("failed", s.Failed),
	)
}

// resolveMapping decides which catalog lookup a rule gets: a hand-picked
// override first, then the rule's own CWE, then the pinned reserve mapping
// for rules SCW's CWE list doesn't cover.
func resolveMapping(rule teamserver.Rule) (mappingList, mappingKey string) {
	if key, ok := reference.Override(rule.Name); ok {
		return scw.MappingDefault, key
	}
	if cwe := rule.CWENumber(); cwe != "" {
		return scw.MappingCWE, cwe
	}
	if key, ok := reference.MappingReserve(rule.Name); ok {
		return scw.MappingDefault, key
	}
	return "", ""
}
