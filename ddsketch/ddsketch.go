// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2020 Datadog, Inc. for original work
// Copyright 2021 GraphMetrics for modifications

package ddsketch

import (
	"math"

	"github.com/graphmetrics/ddsketch-go/ddsketch/mapping"
	"github.com/graphmetrics/ddsketch-go/ddsketch/store"
)

// DDSketch is a relative-error quantile sketch: it routes every accepted
// value to either a zero counter (values below minIndexedValue) or a store
// bin chosen by an IndexMapping. It is single-writer; nothing here
// synchronizes concurrent mutation.
type DDSketch struct {
	mapping.IndexMapping
	store           store.Store
	zeroCount       int64
	minIndexedValue float64
	maxIndexedValue float64
}

// NewDDSketch builds an empty sketch from an index mapping and a store.
// Values below indexMapping.MinIndexableValue() fall into the zero counter.
func NewDDSketch(indexMapping mapping.IndexMapping, store store.Store) *DDSketch {
	return &DDSketch{
		IndexMapping:    indexMapping,
		store:           store,
		minIndexedValue: indexMapping.MinIndexableValue(),
		maxIndexedValue: indexMapping.MaxIndexableValue(),
	}
}

// NewDDSketchWithMinIndexedValue is like NewDDSketch but raises the zero-
// counter threshold above the mapping's own floor. minIndexedValue is
// clamped up to indexMapping.MinIndexableValue() if given a lower value.
func NewDDSketchWithMinIndexedValue(indexMapping mapping.IndexMapping, store store.Store, minIndexedValue float64) *DDSketch {
	return &DDSketch{
		IndexMapping:    indexMapping,
		store:           store,
		minIndexedValue: math.Max(minIndexedValue, indexMapping.MinIndexableValue()),
		maxIndexedValue: indexMapping.MaxIndexableValue(),
	}
}

// Add inserts value with count 1.
func (s *DDSketch) Add(value float64) error {
	return s.AddWithCount(value, 1)
}

// AddWithCount inserts value with the given non-negative count. value must
// be non-negative, finite, and at most maxIndexedValue; violations are
// rejected before any state changes.
func (s *DDSketch) AddWithCount(value float64, count int64) error {
	if value < 0 || math.IsNaN(value) || value > s.maxIndexedValue {
		return invalidArgument("value %v is outside the range tracked by the sketch", value)
	}
	if count < 0 {
		return invalidArgument("count %d cannot be negative", count)
	}
	if count == 0 {
		return nil
	}

	if value < s.minIndexedValue {
		s.zeroCount += count
	} else {
		s.store.AddWithCount(s.Index(value), count)
	}
	return nil
}

// Copy returns a deep, independent duplicate of the sketch.
func (s *DDSketch) Copy() *DDSketch {
	return &DDSketch{
		IndexMapping:    s.IndexMapping,
		store:           s.store.Copy(),
		zeroCount:       s.zeroCount,
		minIndexedValue: s.minIndexedValue,
		maxIndexedValue: s.maxIndexedValue,
	}
}

// GetValueAtQuantile returns the value at the given quantile. It fails with
// ErrInvalidArgument if quantile is outside [0,1], and with ErrNoSuchElement
// if the sketch is empty.
func (s *DDSketch) GetValueAtQuantile(quantile float64) (float64, error) {
	return s.valueAtQuantile(quantile, s.GetCount())
}

// valueAtQuantile is GetValueAtQuantile with the total count n supplied by
// the caller.
func (s *DDSketch) valueAtQuantile(quantile float64, n int64) (float64, error) {
	if quantile < 0 || quantile > 1 {
		return math.NaN(), invalidArgument("quantile %v is not in [0, 1]", quantile)
	}

	if n == 0 {
		return math.NaN(), noSuchElement("cannot compute a quantile of an empty sketch")
	}

	rank := math.Floor(quantile * float64(n-1))
	if rank < float64(s.zeroCount) {
		return 0, nil
	}

	if quantile <= 0.5 {
		nCum := s.zeroCount
		cursor := s.store.Ascending()
		for cursor.Next() {
			bin := cursor.Bin()
			nCum += bin.Count()
			if float64(nCum) > rank {
				return s.Value(bin.Index()), nil
			}
		}
	} else {
		nCum := n
		cursor := s.store.Descending()
		for cursor.Next() {
			bin := cursor.Bin()
			nCum -= bin.Count()
			if float64(nCum) <= rank {
				return s.Value(bin.Index()), nil
			}
		}
	}

	// rank is derived from n - 1 and can never reach or exceed the total
	// count, so the loops above always return. This guard keeps a bug in
	// that invariant from silently surfacing an out-of-window bin instead
	// of an error.
	return math.NaN(), noSuchElement("rank %v could not be located within the store", rank)
}

// GetValuesAtQuantiles returns GetValueAtQuantile for every quantile in
// quantiles, computing the total count once and reusing it.
func (s *DDSketch) GetValuesAtQuantiles(quantiles []float64) ([]float64, error) {
	values := make([]float64, len(quantiles))
	n := s.GetCount()
	for i, q := range quantiles {
		val, err := s.valueAtQuantile(q, n)
		if err != nil {
			return nil, err
		}
		values[i] = val
	}
	return values, nil
}

// GetCount returns the total number of values accepted by the sketch.
func (s *DDSketch) GetCount() int64 {
	return s.zeroCount + s.store.TotalCount()
}

// IsEmpty reports whether no value has been added to the sketch.
func (s *DDSketch) IsEmpty() bool {
	return s.zeroCount == 0 && s.store.IsEmpty()
}

// GetMaxValue returns the maximum value added to the sketch.
func (s *DDSketch) GetMaxValue() (float64, error) {
	if s.IsEmpty() {
		return math.NaN(), noSuchElement("cannot compute the maximum of an empty sketch")
	}
	if s.store.IsEmpty() {
		return 0, nil
	}
	maxIndex, err := s.store.MaxIndex()
	if err != nil {
		return math.NaN(), noSuchElement(err.Error())
	}
	return s.Value(maxIndex), nil
}

// GetMinValue returns the minimum value added to the sketch.
func (s *DDSketch) GetMinValue() (float64, error) {
	if s.IsEmpty() {
		return math.NaN(), noSuchElement("cannot compute the minimum of an empty sketch")
	}
	if s.zeroCount > 0 {
		return 0, nil
	}
	minIndex, err := s.store.MinIndex()
	if err != nil {
		return math.NaN(), noSuchElement(err.Error())
	}
	return s.Value(minIndex), nil
}

// MergeWith folds other into s. After it returns, s encodes the union of the
// values accepted by both sketches. It fails with ErrInvalidArgument if the
// two sketches use different index mapping configurations.
func (s *DDSketch) MergeWith(other *DDSketch) error {
	if !s.IndexMapping.Equals(other.IndexMapping) {
		return invalidArgument("cannot merge sketches with different index mappings")
	}
	s.store.MergeWith(other.store)
	s.zeroCount += other.zeroCount
	return nil
}

// Bins streams the non-zero store bins in ascending index order.
func (s *DDSketch) Bins() <-chan store.Bin {
	return s.store.Bins()
}
