// Copyright The MemHealth Authors
// SPDX-License-Identifier: Apache-2.0

// Package osmemory reports total and available physical memory as seen
// by the current process. On hosts with a memory cgroup limit the
// reported numbers are scoped to the cgroup, otherwise they are
// host-wide kernel statistics.
package osmemory // import "github.com/buildforge/memhealth/osmemory"

import "errors"

var (
	// ErrUnavailable is returned when no memory source could be read,
	// or when the readings were too incomplete to resolve total and
	// available memory.
	ErrUnavailable = errors.New("system memory unavailable")

	// ErrUnparsableMeminfo is returned when a recognized /proc/meminfo
	// field does not carry a value in the expected "<digits> kB" form.
	ErrUnparsableMeminfo = errors.New("unable to parse /proc/meminfo")
)

// Snapshot is a point-in-time reading of physical memory, in bytes.
// Values are never negative.
type Snapshot struct {
	// Total is the total physical memory, or the cgroup memory limit
	// when the reading is cgroup-scoped.
	Total int64

	// Available is an estimate of the memory available for new
	// allocations without swapping.
	Available int64
}

// Provider produces memory snapshots. Implementations are safe for
// concurrent use.
type Provider interface {
	Snapshot() (Snapshot, error)
}
