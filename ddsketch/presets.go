// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2020 Datadog, Inc. for original work
// Copyright 2021 GraphMetrics for modifications

package ddsketch

import (
	"github.com/graphmetrics/ddsketch-go/ddsketch/mapping"
	"github.com/graphmetrics/ddsketch-go/ddsketch/store"
)

// NewDefaultDDSketch builds the library's default configuration: a balanced
// sketch over an unbounded dense store.
func NewDefaultDDSketch(relativeAccuracy float64) (*DDSketch, error) {
	return Balanced(relativeAccuracy)
}

// Balanced trades ingestion throughput for bin count with a quadratic
// interpolation of log2, backed by an unbounded dense store.
func Balanced(relativeAccuracy float64) (*DDSketch, error) {
	indexMapping, err := mapping.NewQuadraticallyInterpolatedMapping(relativeAccuracy)
	if err != nil {
		return nil, err
	}
	return NewDDSketch(indexMapping, store.NewDenseStore()), nil
}

// BalancedCollapsingLowest is Balanced bounded to maxNumBins, collapsing the
// lowest indices once the budget is exceeded.
func BalancedCollapsingLowest(relativeAccuracy float64, maxNumBins int) (*DDSketch, error) {
	indexMapping, err := mapping.NewQuadraticallyInterpolatedMapping(relativeAccuracy)
	if err != nil {
		return nil, err
	}
	return NewDDSketch(indexMapping, store.NewCollapsingLowestDenseStore(maxNumBins)), nil
}

// BalancedCollapsingHighest is Balanced bounded to maxNumBins, collapsing the
// highest indices once the budget is exceeded.
func BalancedCollapsingHighest(relativeAccuracy float64, maxNumBins int) (*DDSketch, error) {
	indexMapping, err := mapping.NewQuadraticallyInterpolatedMapping(relativeAccuracy)
	if err != nil {
		return nil, err
	}
	return NewDDSketch(indexMapping, store.NewCollapsingHighestDenseStore(maxNumBins)), nil
}

// Fast favors ingestion throughput over bin count with a linear
// interpolation of log2 via raw IEEE-754 bit manipulation, backed by an
// unbounded dense store.
func Fast(relativeAccuracy float64) (*DDSketch, error) {
	indexMapping, err := mapping.NewLinearlyInterpolatedMapping(relativeAccuracy)
	if err != nil {
		return nil, err
	}
	return NewDDSketch(indexMapping, store.NewDenseStore()), nil
}

// FastCollapsingLowest is Fast bounded to maxNumBins, collapsing the lowest
// indices once the budget is exceeded.
func FastCollapsingLowest(relativeAccuracy float64, maxNumBins int) (*DDSketch, error) {
	indexMapping, err := mapping.NewLinearlyInterpolatedMapping(relativeAccuracy)
	if err != nil {
		return nil, err
	}
	return NewDDSketch(indexMapping, store.NewCollapsingLowestDenseStore(maxNumBins)), nil
}

// FastCollapsingHighest is Fast bounded to maxNumBins, collapsing the
// highest indices once the budget is exceeded.
func FastCollapsingHighest(relativeAccuracy float64, maxNumBins int) (*DDSketch, error) {
	indexMapping, err := mapping.NewLinearlyInterpolatedMapping(relativeAccuracy)
	if err != nil {
		return nil, err
	}
	return NewDDSketch(indexMapping, store.NewCollapsingHighestDenseStore(maxNumBins)), nil
}

// MemoryOptimal favors minimal bin count over ingestion throughput with the
// exact logarithmic mapping, backed by an unbounded dense store.
func MemoryOptimal(relativeAccuracy float64) (*DDSketch, error) {
	indexMapping, err := mapping.NewLogarithmicMapping(relativeAccuracy)
	if err != nil {
		return nil, err
	}
	return NewDDSketch(indexMapping, store.NewDenseStore()), nil
}

// MemoryOptimalCollapsingLowest is MemoryOptimal bounded to maxNumBins,
// collapsing the lowest indices once the budget is exceeded.
func MemoryOptimalCollapsingLowest(relativeAccuracy float64, maxNumBins int) (*DDSketch, error) {
	indexMapping, err := mapping.NewLogarithmicMapping(relativeAccuracy)
	if err != nil {
		return nil, err
	}
	return NewDDSketch(indexMapping, store.NewCollapsingLowestDenseStore(maxNumBins)), nil
}

// MemoryOptimalCollapsingHighest is MemoryOptimal bounded to maxNumBins,
// collapsing the highest indices once the budget is exceeded.
func MemoryOptimalCollapsingHighest(relativeAccuracy float64, maxNumBins int) (*DDSketch, error) {
	indexMapping, err := mapping.NewLogarithmicMapping(relativeAccuracy)
	if err != nil {
		return nil, err
	}
	return NewDDSketch(indexMapping, store.NewCollapsingHighestDenseStore(maxNumBins)), nil
}
