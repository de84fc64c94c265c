// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2020 Datadog, Inc. for original work
// Copyright 2021 GraphMetrics for modifications

package store

import "math"

const (
	// arrayLengthGrowthIncrement rounds every allocation up to a multiple of
	// this many bins, so that a stream whose range grows geometrically only
	// reallocates a logarithmic number of times.
	arrayLengthGrowthIncrement = 64
	// arrayLengthOverhead pads every allocation by a few extra bins so that
	// inserts landing just outside the current window don't immediately
	// trigger another grow.
	arrayLengthOverhead = 2
)

// DenseStore is a Store backed by a contiguous counter array that grows to
// cover whatever index range the stream touches. Insertion is amortized
// O(1): the backing array grows by chunks, and indices that fall inside the
// window but outside the backing array are handled by sliding the window
// rather than reallocating.
type DenseStore struct {
	bins     []int64
	count    int64
	offset   int32
	minIndex int32
	maxIndex int32
}

func NewDenseStore() *DenseStore {
	return &DenseStore{
		minIndex: math.MaxInt32,
		maxIndex: math.MinInt32,
	}
}

func (s *DenseStore) Add(index int32) {
	s.AddWithCount(index, 1)
}

func (s *DenseStore) AddWithCount(index int32, count int64) {
	if count == 0 {
		return
	}
	arrayIndex := s.normalize(index)
	s.bins[arrayIndex] += count
	s.count += count
}

func (s *DenseStore) AddBin(bin Bin) {
	if bin.Count() == 0 {
		return
	}
	s.AddWithCount(bin.Index(), bin.Count())
}

func (s *DenseStore) IsEmpty() bool {
	return s.count == 0
}

func (s *DenseStore) TotalCount() int64 {
	return s.count
}

func (s *DenseStore) MinIndex() (int32, error) {
	if s.IsEmpty() {
		return 0, ErrEmptyStore
	}
	return s.minIndex, nil
}

func (s *DenseStore) MaxIndex() (int32, error) {
	if s.IsEmpty() {
		return 0, ErrEmptyStore
	}
	return s.maxIndex, nil
}

// normalize ensures the backing array covers index, extending the window if
// needed, and returns the array position that holds index's count.
func (s *DenseStore) normalize(index int32) int {
	if index < s.minIndex || index > s.maxIndex {
		s.extendRange(index, index)
	}
	return int(index - s.offset)
}

// extendRange grows or slides the backing array so that [newMin, newMax],
// unioned with the current logical window, is fully represented.
func (s *DenseStore) extendRange(newMin, newMax int32) {
	if s.IsEmpty() {
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
		// The union still fits in the existing backing array; only the
		// logical window needs updating.
		s.minIndex = newMin
		s.maxIndex = newMax
		return
	}

	desiredLength := int(newMax-newMin) + 1
	if desiredLength > len(s.bins) {
		s.growArray(newMin, desiredLength)
	} else {
		s.slideArray(newMin)
	}
	s.minIndex = newMin
	s.maxIndex = newMax
}

func (s *DenseStore) initialize(minIdx, maxIdx int32) {
	length := getNewLength(int(maxIdx-minIdx) + 1)
	s.bins = make([]int64, length)
	s.offset = minIdx
	s.minIndex = minIdx
	s.maxIndex = maxIdx
}

// growArray reallocates the backing array to fit desiredLength bins, keeping
// the existing counts but re-anchoring the window at newOffset. Only the
// portion of the old array that still lands inside the new one is copied;
// a shift that would place part of it outside the new bounds simply drops
// that part rather than overflowing the destination slice.
func (s *DenseStore) growArray(newOffset int32, desiredLength int) {
	newBins := make([]int64, getNewLength(desiredLength))
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

// slideArray shifts the existing counts within the same backing array so
// that the window starting at newOffset is represented, without growing.
func (s *DenseStore) slideArray(newOffset int32) {
	shift := int(s.offset - newOffset)
	if shift >= len(s.bins) || -shift >= len(s.bins) {
		// The new window doesn't overlap the old backing array at all.
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

func getNewLength(desiredLength int) int {
	chunks := (desiredLength+arrayLengthOverhead+arrayLengthGrowthIncrement-1)/arrayLengthGrowthIncrement + 1
	return chunks * arrayLengthGrowthIncrement
}

func (s *DenseStore) Bins() <-chan Bin {
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

type denseCursor struct {
	s          *DenseStore
	pos        int32
	descending bool
	started    bool
}

func (c *denseCursor) Next() bool {
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
		} else {
			if c.pos > c.s.maxIndex {
				return false
			}
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

func (c *denseCursor) Bin() Bin {
	return Bin{index: c.pos, count: c.s.bins[c.pos-c.s.offset]}
}

func (s *DenseStore) Ascending() Cursor {
	return &denseCursor{s: s}
}

func (s *DenseStore) Descending() Cursor {
	return &denseCursor{s: s, descending: true}
}

func (s *DenseStore) KeyAtRank(rank float64) int32 {
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

func (s *DenseStore) MergeWith(other Store) {
	if other.IsEmpty() {
		return
	}
	if o, ok := other.(*DenseStore); ok {
		s.extendRange(o.minIndex, o.maxIndex)
		for i := o.minIndex; i <= o.maxIndex; i++ {
			count := o.bins[i-o.offset]
			if count != 0 {
				s.bins[i-s.offset] += count
				s.count += count
			}
		}
		return
	}
	for bin := range other.Bins() {
		s.AddBin(bin)
	}
}

func (s *DenseStore) Copy() Store {
	bins := make([]int64, len(s.bins))
	copy(bins, s.bins)
	return &DenseStore{
		bins:     bins,
		count:    s.count,
		offset:   s.offset,
		minIndex: s.minIndex,
		maxIndex: s.maxIndex,
	}
}
