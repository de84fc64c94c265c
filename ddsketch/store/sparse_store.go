// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2020 Datadog, Inc. for original work
// Copyright 2021 GraphMetrics for modifications

package store

import (
	"math"
	"sort"
)

// SparseStore is a map-backed Store, suited to distributions whose indices
// are scattered across a wide range relative to how many are actually
// populated. It never collapses bins and has no bin budget; it is kept as a
// lighter-weight fallback to DenseStore for callers that know their stream
// is sparse and want to avoid the dense array's contiguous allocation.
type SparseStore struct {
	bins     map[int32]int64
	count    int64
	minIndex int32
	maxIndex int32
}

func NewSparseStore() *SparseStore {
	return &SparseStore{
		bins:     make(map[int32]int64),
		minIndex: math.MaxInt32,
		maxIndex: math.MinInt32,
	}
}

func (s *SparseStore) Add(index int32) {
	s.AddWithCount(index, 1)
}

func (s *SparseStore) AddBin(bin Bin) {
	if bin.Count() == 0 {
		return
	}
	s.AddWithCount(bin.Index(), bin.Count())
}

func (s *SparseStore) AddWithCount(index int32, count int64) {
	if count == 0 {
		return
	}
	if index > s.maxIndex {
		s.maxIndex = index
	}
	if index < s.minIndex {
		s.minIndex = index
	}
	s.bins[index] += count
	s.count += count
}

func (s *SparseStore) sortedKeys() []int32 {
	keys := make([]int32, 0, len(s.bins))
	for k := range s.bins {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (s *SparseStore) Bins() <-chan Bin {
	ch := make(chan Bin)
	go func() {
		defer close(ch)
		for _, k := range s.sortedKeys() {
			ch <- Bin{index: k, count: s.bins[k]}
		}
	}()
	return ch
}

type sparseCursor struct {
	keys  []int32
	bins  map[int32]int64
	pos   int
	valid bool
}

func (c *sparseCursor) Next() bool {
	if c.pos >= len(c.keys) {
		c.valid = false
		return false
	}
	c.valid = true
	c.pos++
	return true
}

func (c *sparseCursor) Bin() Bin {
	k := c.keys[c.pos-1]
	return Bin{index: k, count: c.bins[k]}
}

func (s *SparseStore) Ascending() Cursor {
	return &sparseCursor{keys: s.sortedKeys(), bins: s.bins}
}

func (s *SparseStore) Descending() Cursor {
	keys := s.sortedKeys()
	for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
		keys[i], keys[j] = keys[j], keys[i]
	}
	return &sparseCursor{keys: keys, bins: s.bins}
}

func (s *SparseStore) Copy() Store {
	bins := make(map[int32]int64, len(s.bins))
	for k, v := range s.bins {
		bins[k] = v
	}
	return &SparseStore{
		bins:     bins,
		count:    s.count,
		minIndex: s.minIndex,
		maxIndex: s.maxIndex,
	}
}

func (s *SparseStore) IsEmpty() bool {
	return s.count == 0
}

func (s *SparseStore) MaxIndex() (int32, error) {
	if s.IsEmpty() {
		return 0, ErrEmptyStore
	}
	return s.maxIndex, nil
}

func (s *SparseStore) MinIndex() (int32, error) {
	if s.IsEmpty() {
		return 0, ErrEmptyStore
	}
	return s.minIndex, nil
}

func (s *SparseStore) TotalCount() int64 {
	return s.count
}

func (s *SparseStore) KeyAtRank(rank float64) int32 {
	keys := s.sortedKeys()
	var n int64
	for _, k := range keys {
		n += s.bins[k]
		if float64(n) > rank {
			return k
		}
	}
	return s.maxIndex
}

func (s *SparseStore) MergeWith(other Store) {
	if other.IsEmpty() {
		return
	}
	o, ok := other.(*SparseStore)
	if !ok {
		for bin := range other.Bins() {
			s.AddBin(bin)
		}
		return
	}
	if o.minIndex < s.minIndex {
		s.minIndex = o.minIndex
	}
	if o.maxIndex > s.maxIndex {
		s.maxIndex = o.maxIndex
	}
	for k, v := range o.bins {
		s.bins[k] += v
	}
	s.count += o.count
}
