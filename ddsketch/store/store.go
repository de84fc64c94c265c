// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2020 Datadog, Inc. for original work
// Copyright 2021 GraphMetrics for modifications

package store

import "errors"

// ErrEmptyStore is returned by MinIndex/MaxIndex when the store holds no bins.
var ErrEmptyStore = errors.New("no such element: store is empty")

// Store is a growable counter indexed by signed bucket index. Implementations
// are not safe for concurrent use; a Store is expected to have a single
// writer, and any iterator it hands out must not outlive a subsequent
// mutation.
type Store interface {
	Add(index int32)
	AddWithCount(index int32, count int64)
	AddBin(bin Bin)

	// Bins streams every non-zero bin in ascending index order, then closes
	// the channel. Kept for compatibility with callers that prefer a
	// range-based iteration style over the Ascending/Descending cursors.
	Bins() <-chan Bin

	// Ascending and Descending return cursors over the non-zero bins, sorted
	// by index, reflecting the store's state at the time of the call.
	Ascending() Cursor
	Descending() Cursor

	IsEmpty() bool
	TotalCount() int64
	MinIndex() (int32, error)
	MaxIndex() (int32, error)

	// KeyAtRank returns the index of the bin that contains the given rank,
	// counting cumulatively from the lowest index. A rank at or beyond the
	// total count returns the highest populated index.
	KeyAtRank(rank float64) int32

	MergeWith(other Store)
	Copy() Store
}

// Cursor walks a finite, sorted sequence of bins. Next advances the cursor
// and reports whether a bin is available; Bin returns the bin at the current
// position. Calling Bin before a successful Next, or after Next returns
// false, is not meaningful.
type Cursor interface {
	Next() bool
	Bin() Bin
}
