// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2020 Datadog, Inc. for original work
// Copyright 2021 GraphMetrics for modifications

package ddsketch

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/graphmetrics/ddsketch-go/dataset"
)

func evaluateValueAtQuantile(t *testing.T, s *DDSketch, d *dataset.Dataset, alpha float64) {
	for _, q := range []float64{0.01, 0.1, 0.25, 0.5, 0.75, 0.9, 0.99} {
		lo := d.LowerQuantile(q)
		hi := d.UpperQuantile(q)
		got, err := s.GetValueAtQuantile(q)
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, got, lo*(1-alpha)-1e-9)
		assert.LessOrEqual(t, got, hi*(1+alpha)+1e-9)
	}
}

func TestS1MemoryOptimalConsecutiveIntegers(t *testing.T) {
	alpha := 0.01
	s, err := MemoryOptimal(alpha)
	assert.NoError(t, err)

	for i := 1; i <= 1000; i++ {
		assert.NoError(t, s.Add(float64(i)))
	}

	median, err := s.GetValueAtQuantile(0.5)
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, median, 500*0.99)
	assert.LessOrEqual(t, median, 501*1.01)

	min, err := s.GetMinValue()
	assert.NoError(t, err)
	// Value(Index(1)) is exactly 1+alpha, so allow for floating-point rounding
	// at that boundary, as evaluateValueAtQuantile does.
	assert.InEpsilon(t, 1, min, alpha+1e-9)

	max, err := s.GetMaxValue()
	assert.NoError(t, err)
	assert.InEpsilon(t, 1000, max, alpha)
}

func TestS2BalancedWithZeroes(t *testing.T) {
	alpha := 0.1
	s, err := Balanced(alpha)
	assert.NoError(t, err)

	d := dataset.NewDataset()
	rng := rand.New(rand.NewSource(1))
	assert.NoError(t, s.Add(0.0))
	d.Add(0.0)
	for i := 0; i < 10000; i++ {
		v := rng.Float64()
		if v == 0 {
			continue
		}
		assert.NoError(t, s.Add(v))
		d.Add(v)
	}

	assert.Equal(t, int64(1), s.zeroCount)
	evaluateValueAtQuantile(t, s, d, alpha)
}

func TestS3MergeMatchesSingleSketch(t *testing.T) {
	alpha := 0.02
	a, err := MemoryOptimal(alpha)
	assert.NoError(t, err)
	b, err := MemoryOptimal(alpha)
	assert.NoError(t, err)
	reference, err := MemoryOptimal(alpha)
	assert.NoError(t, err)

	for i := 1; i <= 500; i++ {
		assert.NoError(t, a.Add(float64(i)))
		assert.NoError(t, reference.Add(float64(i)))
	}
	for i := 501; i <= 1000; i++ {
		assert.NoError(t, b.Add(float64(i)))
		assert.NoError(t, reference.Add(float64(i)))
	}

	assert.NoError(t, a.MergeWith(b))

	got, err := a.GetValueAtQuantile(0.9)
	assert.NoError(t, err)
	want, err := reference.GetValueAtQuantile(0.9)
	assert.NoError(t, err)
	assert.InEpsilon(t, want, got, alpha)
}

func TestS4CollapsingLowestRetainsHighQuantiles(t *testing.T) {
	alpha := 0.01
	s, err := MemoryOptimalCollapsingLowest(alpha, 32)
	assert.NoError(t, err)

	values := []float64{1e-6, 1e-3, 1, 1e3, 1e6}
	for _, v := range values {
		assert.NoError(t, s.Add(v))
	}

	assert.Equal(t, int64(5), s.GetCount())

	max, err := s.GetMaxValue()
	assert.NoError(t, err)
	assert.InEpsilon(t, 1e6, max, alpha)
}

func TestS5RejectionOnEmptyAndNegative(t *testing.T) {
	s, err := Balanced(0.01)
	assert.NoError(t, err)

	err = s.Add(-1)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = s.GetValueAtQuantile(0.5)
	assert.ErrorIs(t, err, ErrNoSuchElement)
}

func TestS6CopyIsIndependent(t *testing.T) {
	s, err := Balanced(0.01)
	assert.NoError(t, err)

	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 10000; i++ {
		assert.NoError(t, s.Add(rng.Float64()*1000+1e-3))
	}

	original := s.Copy()
	originalCount := original.GetCount()
	originalMedian, err := original.GetValueAtQuantile(0.5)
	assert.NoError(t, err)

	for i := 0; i < 10000; i++ {
		assert.NoError(t, s.Add(rng.Float64()*1000+1e-3))
	}

	assert.Equal(t, originalCount, original.GetCount())
	laterMedian, err := original.GetValueAtQuantile(0.5)
	assert.NoError(t, err)
	assert.Equal(t, originalMedian, laterMedian)
	assert.NotEqual(t, originalCount, s.GetCount())
}

func TestAcceptRejectsNaNAndInfinity(t *testing.T) {
	s, err := Balanced(0.01)
	assert.NoError(t, err)

	assert.ErrorIs(t, s.Add(math.NaN()), ErrInvalidArgument)
	assert.ErrorIs(t, s.Add(math.Inf(1)), ErrInvalidArgument)
}

func TestAcceptRejectsNegativeCount(t *testing.T) {
	s, err := Balanced(0.01)
	assert.NoError(t, err)
	assert.ErrorIs(t, s.AddWithCount(1, -1), ErrInvalidArgument)
}

func TestQuantileRejectsOutOfRange(t *testing.T) {
	s, err := Balanced(0.01)
	assert.NoError(t, err)
	assert.NoError(t, s.Add(1))

	_, err = s.GetValueAtQuantile(-0.1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = s.GetValueAtQuantile(1.1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestMergeRejectsIncompatibleMappings(t *testing.T) {
	a, err := Balanced(0.01)
	assert.NoError(t, err)
	b, err := Fast(0.01)
	assert.NoError(t, err)

	assert.ErrorIs(t, a.MergeWith(b), ErrInvalidArgument)
}

func TestCountConservation(t *testing.T) {
	s, err := Balanced(0.05)
	assert.NoError(t, err)

	rng := rand.New(rand.NewSource(3))
	var accepted int64
	for i := 0; i < 5000; i++ {
		v := rng.Float64() * 100
		count := int64(rng.Intn(5) + 1)
		assert.NoError(t, s.AddWithCount(v, count))
		accepted += count
	}

	assert.Equal(t, accepted, s.GetCount())
}

func TestMergeEquivalence(t *testing.T) {
	alpha := 0.01
	combined, err := Balanced(alpha)
	assert.NoError(t, err)
	left, err := Balanced(alpha)
	assert.NoError(t, err)
	right, err := Balanced(alpha)
	assert.NoError(t, err)

	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 2000; i++ {
		v := rng.Float64()*50 + 1e-3
		assert.NoError(t, combined.Add(v))
		if i%2 == 0 {
			assert.NoError(t, left.Add(v))
		} else {
			assert.NoError(t, right.Add(v))
		}
	}

	assert.NoError(t, left.MergeWith(right))

	assert.Equal(t, combined.GetCount(), left.GetCount())
	for _, q := range []float64{0.1, 0.5, 0.9} {
		want, err := combined.GetValueAtQuantile(q)
		assert.NoError(t, err)
		got, err := left.GetValueAtQuantile(q)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}
}
