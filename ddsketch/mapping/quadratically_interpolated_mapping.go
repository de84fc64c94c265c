// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2020 Datadog, Inc. for original work
// Copyright 2021 GraphMetrics for modifications

package mapping

import (
	"bytes"
	"errors"
	"fmt"
	"math"
)

// A fast IndexMapping that approximates the memory-optimal LogarithmicMapping by
// extracting the floor value of the logarithm to the base 2 from the binary
// representation of floating-point values and quadratically interpolating the
// logarithm in-between, which is more accurate than the linear interpolation
// of LinearlyInterpolatedMapping at the same bucket count, and faster to
// compute than LogarithmicMapping's exact logarithm.
type QuadraticallyInterpolatedMapping struct {
	relativeAccuracy      float64
	multiplier            float64
	normalizedIndexOffset float64
}

func NewQuadraticallyInterpolatedMapping(relativeAccuracy float64) (*QuadraticallyInterpolatedMapping, error) {
	if relativeAccuracy <= 0 || relativeAccuracy >= 1 {
		return nil, errors.New("the relative accuracy must be between 0 and 1")
	}
	return &QuadraticallyInterpolatedMapping{
		relativeAccuracy: relativeAccuracy,
		multiplier:       1.0 / (4 * math.Log1p(2*relativeAccuracy/(1-relativeAccuracy))),
	}, nil
}

func NewQuadraticallyInterpolatedMappingWithGamma(gamma, indexOffset float64) (*QuadraticallyInterpolatedMapping, error) {
	if gamma <= 1 {
		return nil, errors.New("gamma must be greater than 1")
	}
	m := QuadraticallyInterpolatedMapping{
		relativeAccuracy: 1 - 2/(1+gamma),
		multiplier:       1 / (4 * math.Log(gamma)),
	}
	m.normalizedIndexOffset = indexOffset - m.approximateLog(1)*m.multiplier
	return &m, nil
}

func (m *QuadraticallyInterpolatedMapping) Equals(other IndexMapping) bool {
	o, ok := other.(*QuadraticallyInterpolatedMapping)
	if !ok {
		return false
	}
	tol := 1e-12
	return withinTolerance(m.multiplier, o.multiplier, tol) && withinTolerance(m.normalizedIndexOffset, o.normalizedIndexOffset, tol)
}

func (m *QuadraticallyInterpolatedMapping) Index(value float64) int32 {
	return floorIndex(m.approximateLog(value)*m.multiplier + m.normalizedIndexOffset)
}

func (m *QuadraticallyInterpolatedMapping) Value(index int32) float64 {
	x := (float64(index) - m.normalizedIndexOffset) / (3 * m.multiplier)
	return m.approximateInverseLog(x) * (1 + m.relativeAccuracy)
}

// approximateLog returns an approximation of 3*log2(x), obtained by
// reading the exponent and significand out of x's bit pattern and
// interpolating log2(significand) quadratically by -(s-5)(s-1), scaled so
// that the endpoints s=1 and s=2 match the exact logarithm.
func (m *QuadraticallyInterpolatedMapping) approximateLog(x float64) float64 {
	bits := math.Float64bits(x)
	e := getExponent(bits)
	s := getSignificandPlusOne(bits)
	return 3*e - (s-5)*(s-1)
}

// approximateInverseLog is the exact inverse of approximateLog, scaled by 1/3
// to match the x = i/(3*multiplier) convention used by Value.
func (m *QuadraticallyInterpolatedMapping) approximateInverseLog(x float64) float64 {
	e := math.Floor(x)
	s := 3 - math.Sqrt(4-3*(x-e))
	return buildFloat64(int(e), s)
}

func (m *QuadraticallyInterpolatedMapping) MinIndexableValue() float64 {
	return math.Max(
		math.Exp2((math.MinInt32-m.normalizedIndexOffset)/(3*m.multiplier)-m.approximateLog(1)/3+1), // so that index >= MinInt32
		minNormalFloat64*(1+m.relativeAccuracy)/(1-m.relativeAccuracy),
	)
}

func (m *QuadraticallyInterpolatedMapping) MaxIndexableValue() float64 {
	return math.Min(
		math.Exp2((math.MaxInt32-m.normalizedIndexOffset)/(3*m.multiplier)-m.approximateLog(1)/3-1), // so that index <= MaxInt32
		math.Exp(expOverflow)/(1+m.relativeAccuracy),                                                // so that math.Exp does not overflow
	)
}

func (m *QuadraticallyInterpolatedMapping) RelativeAccuracy() float64 {
	return m.relativeAccuracy
}

func (m *QuadraticallyInterpolatedMapping) string() string {
	var buffer bytes.Buffer
	buffer.WriteString(fmt.Sprintf("relativeAccuracy: %v, multiplier: %v, normalizedIndexOffset: %v\n", m.relativeAccuracy, m.multiplier, m.normalizedIndexOffset))
	return buffer.String()
}
