package engine

import (
	"runtime"

	"github.com/arrowkit/arrowkit/src/physicalplan"
	"github.com/arrowkit/arrowkit/src/plancache"
)

// Config holds the tunables an embedding application can adjust; every
// field has a documented default matched by DefaultConfig.
type Config struct {
	// ChunkSize is carried into physicalplan.Thresholds.ChunkSize. Default
	// 16384. Zone maps and the filter kernels do not read it: they always
	// use the fixed zonemap.ChunkSize (16384).
	ChunkSize int
	// ParallelRowThreshold is the estimated row count at or above which
	// the physical planner chooses the parallel filter kernel. Default
	// 50000.
	ParallelRowThreshold uint64
	// SIMDRowThreshold is the estimated row count below which the
	// physical planner always chooses the sequential filter kernel,
	// regardless of hardware capability. Default 1000.
	SIMDRowThreshold uint64
	// PlanCacheCapacity bounds how many canonical query shapes the engine
	// keeps a compiled physical plan for. Default 100.
	PlanCacheCapacity int
	// StrictPredicate controls whether an unrecognized predicate in a
	// translated query is rejected outright (true) or silently dropped so
	// the remainder of the query still executes (false). Default true.
	StrictPredicate bool
	// WorkerCount bounds how many goroutines the parallel filter kernel
	// may use concurrently. Default runtime.NumCPU().
	WorkerCount int
	// BuildZoneMaps defaults to true. The engine never builds a snapshot
	// and no code reads this field; snapshot.NewInMemory always builds
	// zone maps for numeric columns regardless of it.
	BuildZoneMaps bool
}

// DefaultConfig matches the thresholds physicalplan.DefaultThresholds
// documents.
func DefaultConfig() Config {
	th := physicalplan.DefaultThresholds()
	return Config{
		ChunkSize:            th.ChunkSize,
		ParallelRowThreshold: th.ParallelRowThreshold,
		SIMDRowThreshold:     th.SIMDRowThreshold,
		PlanCacheCapacity:    plancache.DefaultCapacity,
		StrictPredicate:      true,
		WorkerCount:          runtime.NumCPU(),
		BuildZoneMaps:        true,
	}
}

func (c Config) thresholds() physicalplan.Thresholds {
	return physicalplan.Thresholds{
		SIMDRowThreshold:     c.SIMDRowThreshold,
		ParallelRowThreshold: c.ParallelRowThreshold,
		ChunkSize:            c.ChunkSize,
		WorkerCount:          c.WorkerCount,
	}
}
