// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2020 Datadog, Inc. for original work
// Copyright 2021 GraphMetrics for modifications

package store

import "math"

// CollapsingHighestDenseStore is the mirror image of CollapsingLowestDenseStore:
// once the stream's index range would need more than maxNumBins bins, the
// highest indices are folded into a sentinel bin at the clipped maximum index
// instead of the lowest ones.
type CollapsingHighestDenseStore struct {
	bins        []int64
	count       int64
	offset      int32
	minIndex    int32
	maxIndex    int32
	maxNumBins  int32
	isCollapsed bool
}

func NewCollapsingHighestDenseStore(maxNumBins int) *CollapsingHighestDenseStore {
	return &CollapsingHighestDenseStore{
		maxNumBins: int32(maxNumBins),
		minIndex:   math.MaxInt32,
		maxIndex:   math.MinInt32,
	}
}

func (s *CollapsingHighestDenseStore) Add(index int32) {
	s.AddWithCount(index, 1)
}

func (s *CollapsingHighestDenseStore) AddWithCount(index int32, count int64) {
	if count == 0 {
		return
	}
	if s.isCollapsed && index > s.maxIndex {
		index = s.maxIndex
	}
	arrayIndex := s.normalize(index)
	s.bins[arrayIndex] += count
	s.count += count
}

func (s *CollapsingHighestDenseStore) AddBin(bin Bin) {
	if bin.Count() == 0 {
		return
	}
	s.AddWithCount(bin.Index(), bin.Count())
}

func (s *CollapsingHighestDenseStore) IsEmpty() bool {
	return s.count == 0
}

func (s *CollapsingHighestDenseStore) TotalCount() int64 {
	return s.count
}

func (s *CollapsingHighestDenseStore) MinIndex() (int32, error) {
	if s.IsEmpty() {
		return 0, ErrEmptyStore
	}
	return s.minIndex, nil
}

func (s *CollapsingHighestDenseStore) MaxIndex() (int32, error) {
	if s.IsEmpty() {
		return 0, ErrEmptyStore
	}
	return s.maxIndex, nil
}

func (s *CollapsingHighestDenseStore) normalize(index int32) int {
	if index < s.minIndex || index > s.maxIndex {
		s.extendRange(index, index)
		if s.isCollapsed && index > s.maxIndex {
			index = s.maxIndex
		}
	}
	return int(index - s.offset)
}

func (s *CollapsingHighestDenseStore) extendRange(newMin, newMax int32) {
	if s.IsEmpty() {
		if int64(newMax-newMin)+1 > int64(s.maxNumBins) {
			newMax = newMin + s.maxNumBins - 1
			s.isCollapsed = true
		}
		s.initialize(newMin, newMax)
		return
	}
	if newMin > s.minIndex {
		newMin = s.minIndex
	}
	if newMax < s.maxIndex {
		newMax = s.maxIndex
	}

	if newMin >= s.offset && newMax < s.offset+int32(len(s.bins)) {
		s.minIndex = newMin
		s.maxIndex = newMax
		return
	}

	var collapsedMass int64
	if desired := int64(newMax-newMin) + 1; desired > int64(s.maxNumBins) {
		clippedMax := newMin + s.maxNumBins - 1
		for i := s.maxIndex; i > clippedMax && i >= s.minIndex; i-- {
			collapsedMass += s.bins[i-s.offset]
		}
		newMax = clippedMax
		s.isCollapsed = true
	}

	desiredLength := int(newMax-newMin) + 1
	if desiredLength > len(s.bins) {
		s.growArray(newMin, desiredLength)
	} else {
		s.slideArray(newMin)
	}
	s.minIndex = newMin
	s.maxIndex = newMax
	s.bins[s.maxIndex-s.offset] += collapsedMass
}

func (s *CollapsingHighestDenseStore) initialize(minIdx, maxIdx int32) {
	length := s.getNewLength(int(maxIdx-minIdx) + 1)
	s.bins = make([]int64, length)
	s.offset = minIdx
	s.minIndex = minIdx
	s.maxIndex = maxIdx
}

// growArray reallocates the backing array, copying only the portion of the
// old one that still lands inside the new bounds. The part that falls
// outside (already folded into collapsedMass by the caller) is dropped
// instead of overflowing the destination slice.
func (s *CollapsingHighestDenseStore) growArray(newOffset int32, desiredLength int) {
	newBins := make([]int64, s.getNewLength(desiredLength))
	shift := int(s.offset - newOffset)
	destStart := shift
	if destStart < 0 {
		destStart = 0
	}
	destEnd := shift + len(s.bins)
	if destEnd > len(newBins) {
		destEnd = len(newBins)
	}
	if destStart < destEnd {
		copy(newBins[destStart:destEnd], s.bins[destStart-shift:destEnd-shift])
	}
	s.bins = newBins
	s.offset = newOffset
}

func (s *CollapsingHighestDenseStore) slideArray(newOffset int32) {
	shift := int(s.offset - newOffset)
	if shift >= len(s.bins) || -shift >= len(s.bins) {
		// The new window doesn't overlap the old backing array at all; every
		// bin it held has already been folded into collapsedMass.
		for i := range s.bins {
			s.bins[i] = 0
		}
		s.offset = newOffset
		return
	}
	if shift > 0 {
		copy(s.bins[shift:], s.bins[:len(s.bins)-shift])
		for i := 0; i < shift; i++ {
			s.bins[i] = 0
		}
	} else if shift < 0 {
		abs := -shift
		copy(s.bins[:len(s.bins)-abs], s.bins[abs:])
		for i := len(s.bins) - abs; i < len(s.bins); i++ {
			s.bins[i] = 0
		}
	}
	s.offset = newOffset
}

func (s *CollapsingHighestDenseStore) getNewLength(desiredLength int) int {
	chunks := (desiredLength+arrayLengthOverhead+arrayLengthGrowthIncrement-1)/arrayLengthGrowthIncrement + 1
	length := chunks * arrayLengthGrowthIncrement
	if length > int(s.maxNumBins) {
		length = int(s.maxNumBins)
	}
	return length
}

func (s *CollapsingHighestDenseStore) Bins() <-chan Bin {
	ch := make(chan Bin)
	go func() {
		defer close(ch)
		if s.IsEmpty() {
			return
		}
		for i := s.minIndex; i <= s.maxIndex; i++ {
			count := s.bins[i-s.offset]
			if count != 0 {
				ch <- Bin{index: i, count: count}
			}
		}
	}()
	return ch
}

type collapsingHighestCursor struct {
	s          *CollapsingHighestDenseStore
	pos        int32
	descending bool
	started    bool
}

func (c *collapsingHighestCursor) Next() bool {
	if c.s.IsEmpty() {
		return false
	}
	if !c.started {
		c.started = true
		if c.descending {
			c.pos = c.s.maxIndex
		} else {
			c.pos = c.s.minIndex
		}
	} else if c.descending {
		c.pos--
	} else {
		c.pos++
	}
	for {
		if c.descending {
			if c.pos < c.s.minIndex {
				return false
			}
		} else if c.pos > c.s.maxIndex {
			return false
		}
		if c.s.bins[c.pos-c.s.offset] != 0 {
			return true
		}
		if c.descending {
			c.pos--
		} else {
			c.pos++
		}
	}
}

func (c *collapsingHighestCursor) Bin() Bin {
	return Bin{index: c.pos, count: c.s.bins[c.pos-c.s.offset]}
}

func (s *CollapsingHighestDenseStore) Ascending() Cursor {
	return &collapsingHighestCursor{s: s}
}

func (s *CollapsingHighestDenseStore) Descending() Cursor {
	return &collapsingHighestCursor{s: s, descending: true}
}

func (s *CollapsingHighestDenseStore) KeyAtRank(rank float64) int32 {
	if s.IsEmpty() {
		return s.maxIndex
	}
	var n int64
	for i := s.minIndex; i <= s.maxIndex; i++ {
		n += s.bins[i-s.offset]
		if float64(n) > rank {
			return i
		}
	}
	return s.maxIndex
}

func (s *CollapsingHighestDenseStore) MergeWith(other Store) {
	if other.IsEmpty() {
		return
	}
	for bin := range other.Bins() {
		s.AddBin(bin)
	}
}

func (s *CollapsingHighestDenseStore) Copy() Store {
	bins := make([]int64, len(s.bins))
	copy(bins, s.bins)
	return &CollapsingHighestDenseStore{
		bins:        bins,
		count:       s.count,
		offset:      s.offset,
		minIndex:    s.minIndex,
		maxIndex:    s.maxIndex,
		maxNumBins:  s.maxNumBins,
		isCollapsed: s.isCollapsed,
	}
}
