package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hotbench/hotbench/internal/domain"
	"github.com/hotbench/hotbench/internal/ports"
)

// Engine runs a complete contest pass: disqualification screening,
// concurrent evaluation, consolidation and ranking, statistics, and the
// optional meta-analysis. Only configuration errors are fatal; every
// runtime degradation is carried in the report instead of aborting.
type Engine struct {
	cfg          Config
	orchestrator *Orchestrator
	consolidator *Consolidator
	meta         ports.MetaAnalyzer
	logger       *slog.Logger
}

// NewEngine validates the configuration and wires the pipeline. The
// meta-analyzer and metrics collector may be nil; the engine then skips
// the meta-analysis pass and metric recording respectively.
func NewEngine(cfg Config, judges []ports.Judge, meta ports.MetaAnalyzer, metrics ports.MetricsCollector, logger *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	orchestrator, err := NewOrchestrator(cfg, judges, metrics, logger)
	if err != nil {
		return nil, err
	}

	roster := make([]string, len(judges))
	for i, judge := range judges {
		roster[i] = judge.ID()
	}
	consolidator, err := NewConsolidator(cfg.Rubric, roster, cfg.Aggregation, cfg.NumWinners)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:          cfg,
		orchestrator: orchestrator,
		consolidator: consolidator,
		meta:         meta,
		logger:       logger,
	}, nil
}

// Run evaluates the essay corpus and returns the final report. Essays
// over the word limit are set aside before any provider call is made.
func (e *Engine) Run(ctx context.Context, essays []domain.Essay) (*domain.RunReport, error) {
	started := time.Now()

	eligible, disqualified := partitionEligible(essays)
	for _, essay := range disqualified {
		e.logger.Warn("essay disqualified",
			"essay", essay.ID,
			"words", essay.WordCount,
			"reason", essay.DisqualificationReason)
	}

	if len(eligible) == 0 {
		return nil, domain.ErrNoEssays
	}

	set, err := e.orchestrator.Run(ctx, eligible)
	if err != nil {
		return nil, err
	}

	cons, err := e.consolidator.Consolidate(set, eligible)
	if err != nil {
		return nil, err
	}

	report := &domain.RunReport{
		Ranked:       cons.Ranked,
		Winners:      e.consolidator.Winners(cons),
		Incomplete:   cons.Incomplete,
		Disqualified: disqualified,
		Failures:     set.Failures(),
		StartedAt:    started,
	}

	stats := domain.ComputeCorpusStats(append(append([]domain.ConsolidatedScore{}, cons.Ranked...), cons.Incomplete...), e.cfg.Rubric)

	if e.meta != nil {
		meta, err := e.meta.Analyze(ctx, cons.Ranked, stats)
		if err != nil {
			// A failed meta-analysis degrades the report, never the run.
			warning := fmt.Sprintf("meta-analysis failed: %v", err)
			e.logger.Warn("meta-analysis pass failed", "error", err)
			report.Warnings = append(report.Warnings, warning)
		} else {
			report.Meta = &meta
		}
	}

	report.FinishedAt = time.Now()
	e.logger.Info("contest run complete",
		"ranked", len(report.Ranked),
		"winners", len(report.Winners),
		"incomplete", len(report.Incomplete),
		"disqualified", len(report.Disqualified),
		"duration", report.FinishedAt.Sub(started))

	return report, nil
}

// partitionEligible splits the corpus into essays eligible for judging
// and those disqualified before dispatch.
func partitionEligible(essays []domain.Essay) (eligible, disqualified []domain.Essay) {
	for _, essay := range essays {
		if essay.Disqualified {
			disqualified = append(disqualified, essay)
			continue
		}
		eligible = append(eligible, essay)
	}
	return eligible, disqualified
}
