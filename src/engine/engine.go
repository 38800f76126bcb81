// Package engine wires the translator, logical-plan optimizer, physical
// planner, executor, and plan cache into the single entrypoint an
// embedding application calls: submit a translator.Query against a
// snapshot.Store and get back a queryresult.QueryResult, a []GroupResult,
// or a scalar AggResult depending on the query's shape.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/arrowkit/arrowkit/src/column"
	"github.com/arrowkit/arrowkit/src/exec"
	"github.com/arrowkit/arrowkit/src/logicalplan"
	"github.com/arrowkit/arrowkit/src/physicalplan"
	"github.com/arrowkit/arrowkit/src/plancache"
	"github.com/arrowkit/arrowkit/src/predicate"
	"github.com/arrowkit/arrowkit/src/queryresult"
	"github.com/arrowkit/arrowkit/src/snapshot"
	"github.com/arrowkit/arrowkit/src/translator"
)

// Engine is the embeddable query surface. One Engine is built per
// snapshot.Store; it is safe for concurrent queries once constructed.
type Engine struct {
	store      snapshot.Store
	tableName  string
	config     Config
	planner    *physicalplan.Planner
	optimizer  *logicalplan.Optimizer
	planCache  *plancache.Cache
}

// New builds an Engine over store, reachable at tableName in translated
// plans' Scan nodes.
func New(tableName string, store snapshot.Store, config Config) *Engine {
	return &Engine{
		store:     store,
		tableName: tableName,
		config:    config,
		planner:   physicalplan.NewPlanner(config.thresholds(), store),
		optimizer: logicalplan.NewOptimizer(snapshot.ZoneMapLookup(store)),
		planCache: plancache.New(config.PlanCacheCapacity),
	}
}

// State names a submitted query's position in its own lifecycle, surfaced
// for diagnostics (e.g. a slow-query log recording where time went).
type State int

const (
	StateSubmitted State = iota
	StateTranslated
	StateOptimized
	StatePlanned
	StateExecuting
	StateCompleted
	StateFailed
	StateCanceled
)

// Result is the outcome of a submitted query: exactly one of Rows, Groups,
// or Scalar is populated, selected by the query's terminal/group-by shape.
type Result struct {
	Rows   *queryresult.QueryResult
	Groups []exec.GroupResult
	Scalar *exec.AggResult
}

// Query translates, optimizes, plans, and executes q against e's store,
// reusing a cached physical plan when q's canonical shape was seen before.
func (e *Engine) Query(ctx context.Context, q translator.Query, cancel *exec.CancellationToken) (Result, error) {
	plan, err := e.planFor(q)
	if err != nil {
		return Result{}, err
	}

	switch plan.Node.(type) {
	case *logicalplan.GroupBy:
		groups, err := exec.ExecuteGroupBy(ctx, plan, cancel)
		if err != nil {
			return Result{}, classify(err)
		}
		return Result{Groups: groups}, nil

	case *logicalplan.Aggregate:
		scalar, err := exec.ExecuteScalar(ctx, plan, cancel)
		if err != nil {
			return Result{}, classify(err)
		}
		return Result{Scalar: &scalar}, nil

	default:
		rows, err := exec.Execute(ctx, plan, cancel)
		if err != nil {
			return Result{}, classify(err)
		}
		return Result{Rows: rows}, nil
	}
}

// planFor resolves q to a physical plan, consulting and populating the
// plan cache keyed by q's canonical (constant-abstracted) shape.
func (e *Engine) planFor(q translator.Query) (*physicalplan.Plan, error) {
	key := translator.CanonicalKey(q)
	if cached, ok := e.planCache.Get(key); ok {
		return cached, nil
	}

	scan := logicalplan.NewScan(e.tableName, e.store, e.store.Schema(), e.store.RowCount())
	logical, _, err := translator.Translate(scan, q, translator.Options{StrictPredicate: e.config.StrictPredicate})
	if err != nil {
		return nil, classify(err)
	}

	optimized := e.optimizer.Optimize(logical)
	plan := e.planner.Plan(optimized)
	e.planCache.Put(key, plan)
	return plan, nil
}

// Store returns the snapshot this engine queries.
func (e *Engine) Store() snapshot.Store { return e.store }

// PlanCacheStats reports the engine's plan cache hit/miss counters.
func (e *Engine) PlanCacheStats() plancache.Stats { return e.planCache.Stats() }

// classify maps a lower-layer error onto the engine's own error taxonomy
// so callers can branch with errors.Is(err, engine.ErrXxx) regardless of
// which package actually detected the problem.
func classify(err error) error {
	switch {
	case errors.Is(err, logicalplan.ErrPlanConstruction):
		return fmt.Errorf("%w: %v", ErrPlanConstruction, err)
	case errors.Is(err, predicate.ErrInvalidPredicate):
		return fmt.Errorf("%w: %v", ErrPredicateTypeMismatch, err)
	case errors.Is(err, translator.ErrUnsupportedProjection), errors.Is(err, translator.ErrUnsupportedPredicate), errors.Is(err, exec.ErrUnsupportedOperation):
		return fmt.Errorf("%w: %v", ErrUnsupportedOperation, err)
	case errors.Is(err, exec.ErrCanceled):
		return fmt.Errorf("%w: %v", ErrCanceled, err)
	case errors.Is(err, column.ErrDecimalCapacityExceeded):
		return fmt.Errorf("%w: %v", ErrCapacityExceeded, err)
	default:
		return err
	}
}
