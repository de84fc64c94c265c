// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2021 GraphMetrics for modifications

package mapping

import (
	"math"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
)

// fuzzPositiveValues generates n positive, finite float64s within [lo, hi),
// sampled log-uniformly since the indexable range typically spans many
// orders of magnitude and a linear sample would never reach the low end.
func fuzzPositiveValues(seed int64, n int, lo, hi float64) []float64 {
	f := fuzz.NewWithSeed(seed)
	logLo, logHi := math.Log(lo), math.Log(hi)
	values := make([]float64, 0, n)
	for len(values) < n {
		var frac float64
		f.Fuzz(&frac)
		frac -= float64(int64(frac)) // keep it in a tractable range before scaling
		if frac < 0 {
			frac = -frac
		}
		v := math.Exp(logLo + frac*(logHi-logLo))
		if v > 0 && v < hi && !isSpecial(v) {
			values = append(values, v)
		}
	}
	return values
}

func isSpecial(v float64) bool {
	return v != v || math.IsInf(v, 0)
}

func TestMappingsRoundTripUnderFuzzing(t *testing.T) {
	accuracies := []float64{1e-1, 1e-2, 1e-3}
	for _, ra := range accuracies {
		log, _ := NewLogarithmicMapping(ra)
		lin, _ := NewLinearlyInterpolatedMapping(ra)
		quad, _ := NewQuadraticallyInterpolatedMapping(ra)
		for _, m := range []IndexMapping{log, lin, quad} {
			values := fuzzPositiveValues(42, 200, m.MinIndexableValue(), m.MaxIndexableValue())
			for _, v := range values {
				got := m.Value(m.Index(v))
				assert.LessOrEqual(t, absDiff(got, v), ra*v+floatingPointAcceptableError)
			}
		}
	}
}

func TestMappingsIndexMonotonicUnderFuzzing(t *testing.T) {
	accuracies := []float64{1e-1, 1e-2, 1e-3}
	for _, ra := range accuracies {
		log, _ := NewLogarithmicMapping(ra)
		lin, _ := NewLinearlyInterpolatedMapping(ra)
		quad, _ := NewQuadraticallyInterpolatedMapping(ra)
		for _, m := range []IndexMapping{log, lin, quad} {
			values := fuzzPositiveValues(7, 200, m.MinIndexableValue(), m.MaxIndexableValue())
			for i := 1; i < len(values); i++ {
				v1, v2 := values[i-1], values[i]
				if v1 > v2 {
					v1, v2 = v2, v1
				}
				assert.LessOrEqual(t, m.Index(v1), m.Index(v2))
			}
		}
	}
}

func absDiff(a, b float64) float64 {
	d := a - b
	if d < 0 {
		return -d
	}
	return d
}
