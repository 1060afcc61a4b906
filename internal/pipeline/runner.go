// Package pipeline orchestrates a full load run: download reference
// datasets, parse them into node and relationship sets, and merge the
// sets into the graph store in dependency order.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/biograph/biograph/internal/config"
	"github.com/biograph/biograph/internal/datasource"
	"github.com/biograph/biograph/internal/graphset"
	"github.com/biograph/biograph/internal/graphstore"
	"github.com/biograph/biograph/internal/logger"
	"github.com/biograph/biograph/internal/mergeplan"
	"github.com/biograph/biograph/internal/parser"
	"github.com/biograph/biograph/internal/verifier"
)

// Store is the graph store surface a run needs: statement execution for
// indexes and merges, entity counts for verification.
type Store interface {
	graphset.Executor
	verifier.Counter
}

// Result contains statistics and status of one load run.
type Result struct {
	RunID               string
	StartedAt           time.Time
	CompletedAt         time.Time
	Duration            time.Duration
	SourcesUsed         int
	Downloads           int
	ParsersRun          int
	NodesMerged         int64
	RelationshipsMerged int64
	SetCounts           map[string]int
	Mismatches          []verifier.Mismatch
	Errors              []error
	Success             bool
}

// Runner coordinates one load run. Create one Runner per run; it is not
// safe for reuse or concurrent execution.
type Runner struct {
	config  *config.Config
	store   Store
	sources []datasource.Datasource
	logger  *logger.Logger
	runID   string
}

// NewRunner creates a run over the given store and datasources.
func NewRunner(cfg *config.Config, store Store, sources []datasource.Datasource, log *logger.Logger) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if store == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no datasources enabled")
	}
	if log == nil {
		log = logger.NewDefault()
	}

	runID := uuid.New().String()
	return &Runner{
		config:  cfg,
		store:   store,
		sources: sources,
		logger:  log.WithRun(runID),
		runID:   runID,
	}, nil
}

// RunID returns the unique identifier of this run.
func (r *Runner) RunID() string {
	return r.runID
}

// EnsureInstances returns a local instance for every datasource,
// downloading when nothing local exists or a pinned version is absent.
// The returned count is the number of downloads performed.
func (r *Runner) EnsureInstances(ctx context.Context) ([]*datasource.LocalInstance, int, error) {
	instances := make([]*datasource.LocalInstance, 0, len(r.sources))
	downloads := 0

	for _, src := range r.sources {
		srcCfg := r.config.GetSource(src.Name())
		log := r.logger.WithSource(src.Name())

		local, err := src.LatestLocalInstance()
		if err != nil {
			return nil, downloads, fmt.Errorf("failed to inspect local data for %s: %w", src.Name(), err)
		}

		wanted := srcCfg.Version
		if local != nil && (wanted == "" || local.Version == wanted) {
			log.Infow("Using local instance", "version", local.Version)
			instances = append(instances, local)
			continue
		}

		if wanted == "" {
			wanted, err = src.LatestRemoteVersion(ctx)
			if err != nil {
				return nil, downloads, fmt.Errorf("failed to determine remote version for %s: %w", src.Name(), err)
			}
		}

		log.Infow("Downloading", "version", wanted)
		instance, err := src.Download(ctx, wanted, datasource.Options{TaxIDs: srcCfg.TaxIDs})
		if err != nil {
			return nil, downloads, fmt.Errorf("download of %s failed: %w", src.Name(), err)
		}
		downloads++
		instances = append(instances, instance)
	}

	return instances, downloads, nil
}

// runParsers runs every parser registered for the given instances and
// returns their containers.
func (r *Runner) runParsers(ctx context.Context, instances []*datasource.LocalInstance) ([]*graphset.Container, int, error) {
	var containers []*graphset.Container
	parsersRun := 0

	for _, instance := range instances {
		parsers, err := parser.ForInstance(instance, r.config.GetSource(instance.Source), r.logger)
		if err != nil {
			return nil, parsersRun, err
		}
		for _, p := range parsers {
			r.logger.WithSource(instance.Source).Infow("Running parser",
				"parser", p.Name(),
				"version", instance.Version,
			)
			if err := p.Run(ctx); err != nil {
				return nil, parsersRun, fmt.Errorf("parser %s failed: %w", p.Name(), err)
			}
			parsersRun++
			containers = append(containers, p.Container())
		}
	}

	return containers, parsersRun, nil
}

// deduplicate applies the configured dedup policy to every set and
// collapses duplicates.
func (r *Runner) deduplicate(containers []*graphset.Container) error {
	policy, err := graphset.ParsePolicy(r.config.Processing.DedupPolicy)
	if err != nil {
		return err
	}

	for _, c := range containers {
		for _, ns := range c.NodeSets {
			ns.SetDedupPolicy(policy)
		}
		for _, rs := range c.RelationshipSets {
			rs.SetDedupPolicy(policy)
		}
		if err := c.Deduplicate(); err != nil {
			return err
		}
	}
	return nil
}

// Plan ensures local data, parses it, and computes the merge order
// without touching the store. Used by the plan command.
func (r *Runner) Plan(ctx context.Context) (*mergeplan.Plan, error) {
	instances, _, err := r.EnsureInstances(ctx)
	if err != nil {
		return nil, err
	}
	containers, _, err := r.runParsers(ctx, instances)
	if err != nil {
		return nil, err
	}
	if err := r.deduplicate(containers); err != nil {
		return nil, err
	}
	return mergeplan.NewBuilder(containers...).Build()
}

// Execute runs the full pipeline: ensure local data, parse,
// deduplicate, create indexes, merge nodes, merge relationships, and
// verify counts. Merges are idempotent, so a failed run can simply be
// repeated once the cause is fixed.
func (r *Runner) Execute(ctx context.Context) (*Result, error) {
	result := &Result{
		RunID:     r.runID,
		StartedAt: time.Now(),
		SetCounts: make(map[string]int),
	}

	r.logger.Infow("Starting load run",
		"sources", len(r.sources),
		"batch_size", r.config.Processing.BatchSize,
		"dedup_policy", r.config.Processing.DedupPolicy,
		"skip_verification", r.config.Verification.SkipVerification,
	)

	instances, downloads, err := r.EnsureInstances(ctx)
	if err != nil {
		return r.fail(result, err)
	}
	result.SourcesUsed = len(instances)
	result.Downloads = downloads

	containers, parsersRun, err := r.runParsers(ctx, instances)
	if err != nil {
		return r.fail(result, err)
	}
	result.ParsersRun = parsersRun

	if err := r.deduplicate(containers); err != nil {
		return r.fail(result, err)
	}

	plan, err := mergeplan.NewBuilder(containers...).Build()
	if err != nil {
		return r.fail(result, err)
	}
	r.logger.Infow("Merge plan computed",
		"node_sets", len(plan.NodeSets),
		"relationship_sets", len(plan.RelationshipSets),
	)

	if err := r.createIndexes(ctx, plan); err != nil {
		return r.fail(result, err)
	}
	if err := r.mergeNodes(ctx, plan, result); err != nil {
		return r.fail(result, err)
	}
	if err := r.mergeRelationships(ctx, plan, result); err != nil {
		return r.fail(result, err)
	}

	if r.skipVerification() {
		r.logger.Info("Verification skipped")
	} else {
		mismatches, err := verifier.New(r.store, r.logger).VerifyContainers(ctx, containers)
		if err != nil {
			return r.fail(result, err)
		}
		result.Mismatches = mismatches
		if len(mismatches) > 0 {
			return r.fail(result, fmt.Errorf("count verification failed for %d sets", len(mismatches)))
		}
	}

	result.Success = true
	r.finalize(result)

	r.logger.Infow("Load run completed",
		"duration", result.Duration,
		"nodes_merged", result.NodesMerged,
		"relationships_merged", result.RelationshipsMerged,
	)
	return result, nil
}

// createIndexes ensures every set's index exists before any merge runs.
func (r *Runner) createIndexes(ctx context.Context, plan *mergeplan.Plan) error {
	im := graphstore.NewIndexManager(r.store)
	return im.EnsureSetIndexes(ctx, plan.NodeSets, plan.RelationshipSets)
}

func (r *Runner) mergeNodes(ctx context.Context, plan *mergeplan.Plan, result *Result) error {
	for _, ns := range plan.NodeSets {
		log := r.logger.WithSet(ns.Name())
		log.Infow("Merging nodes", "records", ns.Len())
		if err := ns.Merge(ctx, r.store, r.config.Processing.BatchSize); err != nil {
			return err
		}
		result.NodesMerged += int64(ns.Len())
		result.SetCounts[ns.Name()] = ns.Len()
	}
	return nil
}

func (r *Runner) mergeRelationships(ctx context.Context, plan *mergeplan.Plan, result *Result) error {
	for _, rs := range plan.RelationshipSets {
		log := r.logger.WithSet(rs.Name())
		log.Infow("Merging relationships", "records", rs.Len())
		if err := rs.Merge(ctx, r.store, r.config.Processing.BatchSize); err != nil {
			return err
		}
		result.RelationshipsMerged += int64(rs.Len())
		result.SetCounts[rs.Name()] = rs.Len()
	}
	return nil
}

func (r *Runner) skipVerification() bool {
	return r.config.Verification.SkipVerification || r.config.Verification.Method == "none"
}

func (r *Runner) fail(result *Result, err error) (*Result, error) {
	result.Errors = append(result.Errors, err)
	r.finalize(result)
	r.logger.Errorw("Load run failed", "error", err, "duration", result.Duration)
	return result, err
}

func (r *Runner) finalize(result *Result) {
	result.CompletedAt = time.Now()
	result.Duration = result.CompletedAt.Sub(result.StartedAt)
}
