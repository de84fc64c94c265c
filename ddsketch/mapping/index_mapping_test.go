// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2020 Datadog, Inc.

package mapping

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	testMaxRelativeAccuracy      = 1 - 1e-3
	testMinRelativeAccuracy      = 1e-7
	floatingPointAcceptableError = 1e-12
)

var multiplierStep = 1 + math.Sqrt(2)*1e2

func TestLogarithmicMappingEquivalence(t *testing.T) {
	relativeAccuracy := 0.01
	gamma := (1 + relativeAccuracy) / (1 - relativeAccuracy)
	mapping1, _ := NewLogarithmicMapping(relativeAccuracy)
	mapping2, _ := NewLogarithmicMappingWithGamma(gamma, 0)
	assert.True(t, mapping1.Equals(mapping2))
}

func TestLinearlyInterpolatedMappingEquivalence(t *testing.T) {
	gamma := 1.6
	relativeAccuracy := 1 - 2/(1+math.Exp(math.Log2(gamma)))
	mapping1, _ := NewLinearlyInterpolatedMapping(relativeAccuracy)
	mapping2, _ := NewLinearlyInterpolatedMappingWithGamma(gamma, 1/math.Log2(gamma))
	assert.True(t, mapping1.Equals(mapping2))
}

func TestQuadraticallyInterpolatedMappingEquivalence(t *testing.T) {
	gamma := 1.6
	relativeAccuracy := 1 - 2/(1+gamma)
	mapping1, _ := NewQuadraticallyInterpolatedMapping(relativeAccuracy)
	mapping2, _ := NewQuadraticallyInterpolatedMappingWithGamma(gamma, 0)
	assert.True(t, mapping1.Equals(mapping2))
}

func EvaluateRelativeAccuracy(t *testing.T, expected, actual, relativeAccuracy float64) {
	assert.True(t, expected >= 0)
	assert.True(t, actual >= 0)
	if expected == 0 {
		assert.InDelta(t, actual, 0, floatingPointAcceptableError)
	} else {
		assert.True(t, math.Abs(expected-actual)/expected <= relativeAccuracy+floatingPointAcceptableError)
	}
}

func EvaluateMappingAccuracy(t *testing.T, m IndexMapping, relativeAccuracy float64) {
	for value := m.MinIndexableValue(); value < m.MaxIndexableValue(); value *= multiplierStep {
		mappedValue := m.Value(m.Index(value))
		EvaluateRelativeAccuracy(t, value, mappedValue, relativeAccuracy)
	}
	value := m.MaxIndexableValue()
	mappedValue := m.Value(m.Index(value))
	EvaluateRelativeAccuracy(t, value, mappedValue, relativeAccuracy)
}

// EvaluateMappingMonotonicity checks that index is monotonically non-decreasing
// over an evenly-sampled sweep of the indexable range.
func EvaluateMappingMonotonicity(t *testing.T, m IndexMapping) {
	previousIndex := m.Index(m.MinIndexableValue())
	for value := m.MinIndexableValue() * multiplierStep; value < m.MaxIndexableValue(); value *= multiplierStep {
		index := m.Index(value)
		assert.True(t, index >= previousIndex)
		previousIndex = index
	}
}

func TestLogarithmicMappingAccuracy(t *testing.T) {
	for relativeAccuracy := testMaxRelativeAccuracy; relativeAccuracy >= testMinRelativeAccuracy; relativeAccuracy *= (testMaxRelativeAccuracy * testMaxRelativeAccuracy) {
		m, _ := NewLogarithmicMapping(relativeAccuracy)
		EvaluateMappingAccuracy(t, m, relativeAccuracy)
		EvaluateMappingMonotonicity(t, m)
	}
}

func TestLinearlyInterpolatedMappingAccuracy(t *testing.T) {
	for relativeAccuracy := testMaxRelativeAccuracy; relativeAccuracy >= testMinRelativeAccuracy; relativeAccuracy *= (testMaxRelativeAccuracy * testMaxRelativeAccuracy) {
		m, _ := NewLinearlyInterpolatedMapping(relativeAccuracy)
		EvaluateMappingAccuracy(t, m, relativeAccuracy)
		EvaluateMappingMonotonicity(t, m)
	}
}

func TestQuadraticallyInterpolatedMappingAccuracy(t *testing.T) {
	for relativeAccuracy := testMaxRelativeAccuracy; relativeAccuracy >= testMinRelativeAccuracy; relativeAccuracy *= (testMaxRelativeAccuracy * testMaxRelativeAccuracy) {
		m, _ := NewQuadraticallyInterpolatedMapping(relativeAccuracy)
		EvaluateMappingAccuracy(t, m, relativeAccuracy)
		EvaluateMappingMonotonicity(t, m)
	}
}

func TestInvalidRelativeAccuracy(t *testing.T) {
	_, err := NewLogarithmicMapping(0)
	assert.Error(t, err)
	_, err = NewLogarithmicMapping(1)
	assert.Error(t, err)
	_, err = NewLinearlyInterpolatedMapping(-0.1)
	assert.Error(t, err)
	_, err = NewQuadraticallyInterpolatedMapping(1.5)
	assert.Error(t, err)
}
