// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2020 Datadog, Inc. for original work
// Copyright 2021 GraphMetrics for modifications

package ddsketch

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is the sentinel wrapped by the sketch's argument-
// validation failures: a negative or non-finite value, a negative count, a
// quantile outside [0,1], or incompatible merge mappings. An out-of-range
// accuracy passed to a preset is reported by the mapping constructor's own
// error, which does not wrap this sentinel.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrNoSuchElement is the sentinel wrapped by sketch queries that have no
// answer on an empty sketch: min/max value or a quantile. The store package
// reports an empty store's MinIndex/MaxIndex with store.ErrEmptyStore, which
// does not wrap this sentinel.
var ErrNoSuchElement = errors.New("no such element")

func invalidArgument(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func noSuchElement(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNoSuchElement, fmt.Sprintf(format, args...))
}
