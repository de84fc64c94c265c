// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2020 Datadog, Inc. for original work
// Copyright 2021 GraphMetrics for modifications

package mapping

import "math"

const (
	expOverflow      = 7.094361393031e+02      // Below ln(MaxFloat64) ≈ 709.78, where math.Exp overflows; exp(expOverflow) ≈ MaxFloat64/√2
	minNormalFloat64 = 2.2250738585072014e-308 // 2^(-1022)
)

// IndexMapping is a bijection between positive real values and the bucket
// indices they belong to. Implementations trade off ingestion throughput
// against the number of buckets needed to cover a range of values for a
// given relative accuracy.
type IndexMapping interface {
	Equals(other IndexMapping) bool
	Index(value float64) int32
	Value(index int32) float64
	RelativeAccuracy() float64
	MinIndexableValue() float64
	MaxIndexableValue() float64
}

// floorIndex floors a real-valued index to the nearest i32, as required by
// mappings whose formula can yield negative fractional indices: (i32)x is a
// truncation towards zero, so negative values need an extra decrement.
func floorIndex(x float64) int32 {
	if x >= 0 {
		return int32(x)
	}
	return int32(x) - 1
}

func withinTolerance(x, y, tolerance float64) bool {
	if x == 0 || y == 0 {
		return math.Abs(x) <= tolerance && math.Abs(y) <= tolerance
	}
	return math.Abs(x-y) <= tolerance*math.Max(math.Abs(x), math.Abs(y))
}
