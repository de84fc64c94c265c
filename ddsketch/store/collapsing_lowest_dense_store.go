// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2020 Datadog, Inc. for original work
// Copyright 2021 GraphMetrics for modifications

package store

import "math"

// CollapsingLowestDenseStore is a DenseStore bounded to at most maxNumBins
// populated bins. Once the stream's index range would need more bins than
// that budget, the lowest indices are folded into a single sentinel bin at
// the new minimum index, trading relative accuracy on the lowest quantiles
// for a hard memory bound.
type CollapsingLowestDenseStore struct {
	bins        []int64
	count       int64
	offset      int32
	minIndex    int32
	maxIndex    int32
	maxNumBins  int32
	isCollapsed bool
}

func NewCollapsingLowestDenseStore(maxNumBins int) *CollapsingLowestDenseStore {
	return &CollapsingLowestDenseStore{
		maxNumBins: int32(maxNumBins),
		minIndex:   math.MaxInt32,
		maxIndex:   math.MinInt32,
	}
}

func (s *CollapsingLowestDenseStore) Add(index int32) {
	s.AddWithCount(index, 1)
}

func (s *CollapsingLowestDenseStore) AddWithCount(index int32, count int64) {
	if count == 0 {
		return
	}
	if s.isCollapsed && index < s.minIndex {
		index = s.minIndex
	}
	arrayIndex := s.normalize(index)
	s.bins[arrayIndex] += count
	s.count += count
}

func (s *CollapsingLowestDenseStore) AddBin(bin Bin) {
	if bin.Count() == 0 {
		return
	}
	s.AddWithCount(bin.Index(), bin.Count())
}

func (s *CollapsingLowestDenseStore) IsEmpty() bool {
	return s.count == 0
}

func (s *CollapsingLowestDenseStore) TotalCount() int64 {
	return s.count
}

func (s *CollapsingLowestDenseStore) MinIndex() (int32, error) {
	if s.IsEmpty() {
		return 0, ErrEmptyStore
	}
	return s.minIndex, nil
}

func (s *CollapsingLowestDenseStore) MaxIndex() (int32, error) {
	if s.IsEmpty() {
		return 0, ErrEmptyStore
	}
	return s.maxIndex, nil
}

func (s *CollapsingLowestDenseStore) normalize(index int32) int {
	if index < s.minIndex || index > s.maxIndex {
		s.extendRange(index, index)
		if s.isCollapsed && index < s.minIndex {
			index = s.minIndex
		}
	}
	return int(index - s.offset)
}

// extendRange grows or slides the backing array to cover [newMin, newMax]
// unioned with the current window. If the union would exceed maxNumBins, the
// lowest indices are collapsed into a sentinel at the clipped minimum.
func (s *CollapsingLowestDenseStore) extendRange(newMin, newMax int32) {
	if s.IsEmpty() {
		if int64(newMax-newMin)+1 > int64(s.maxNumBins) {
			newMin = newMax - s.maxNumBins + 1
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
		clippedMin := newMax - s.maxNumBins + 1
		for i := s.minIndex; i < clippedMin && i <= s.maxIndex; i++ {
			collapsedMass += s.bins[i-s.offset]
		}
		newMin = clippedMin
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
	s.bins[s.minIndex-s.offset] += collapsedMass
}

func (s *CollapsingLowestDenseStore) initialize(minIdx, maxIdx int32) {
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
func (s *CollapsingLowestDenseStore) growArray(newOffset int32, desiredLength int) {
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

func (s *CollapsingLowestDenseStore) slideArray(newOffset int32) {
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

// getNewLength rounds up to the growth chunk size, like DenseStore, but never
// beyond the bin budget.
func (s *CollapsingLowestDenseStore) getNewLength(desiredLength int) int {
	chunks := (desiredLength+arrayLengthOverhead+arrayLengthGrowthIncrement-1)/arrayLengthGrowthIncrement + 1
	length := chunks * arrayLengthGrowthIncrement
	if length > int(s.maxNumBins) {
		length = int(s.maxNumBins)
	}
	return length
}

func (s *CollapsingLowestDenseStore) Bins() <-chan Bin {
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

type collapsingLowestCursor struct {
	s          *CollapsingLowestDenseStore
	pos        int32
	descending bool
	started    bool
}

func (c *collapsingLowestCursor) Next() bool {
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

func (c *collapsingLowestCursor) Bin() Bin {
	return Bin{index: c.pos, count: c.s.bins[c.pos-c.s.offset]}
}

func (s *CollapsingLowestDenseStore) Ascending() Cursor {
	return &collapsingLowestCursor{s: s}
}

func (s *CollapsingLowestDenseStore) Descending() Cursor {
	return &collapsingLowestCursor{s: s, descending: true}
}

func (s *CollapsingLowestDenseStore) KeyAtRank(rank float64) int32 {
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

func (s *CollapsingLowestDenseStore) MergeWith(other Store) {
	if other.IsEmpty() {
		return
	}
	for bin := range other.Bins() {
		s.AddBin(bin)
	}
}

func (s *CollapsingLowestDenseStore) Copy() Store {
	bins := make([]int64, len(s.bins))
	copy(bins, s.bins)
	return &CollapsingLowestDenseStore{
		bins:        bins,
		count:       s.count,
		offset:      s.offset,
		minIndex:    s.minIndex,
		maxIndex:    s.maxIndex,
		maxNumBins:  s.maxNumBins,
		isCollapsed: s.isCollapsed,
	}
}
