// Copyright The MemHealth Authors
// SPDX-License-Identifier: Apache-2.0

package osmemory // import "github.com/buildforge/memhealth/osmemory"

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// /proc/meminfo states every value in kB since Linux 4.0.
var meminfoLinePattern = regexp.MustCompile(`^\D+(\d+) kB$`)

// meminfo accumulates the fields of a single /proc/meminfo scan.
// Fields the input did not carry stay -1.
type meminfo struct {
	total       int64
	available   int64
	free        int64
	buffers     int64
	cached      int64
	reclaimable int64
	mapped      int64
}

// availableBytes resolves available memory after a scan.
//
// Linux >= 3.14 reports MemAvailable directly. Older kernels are
// approximated as MemFree + Buffers + Cached + SReclaimable - Mapped.
func (m *meminfo) availableBytes() int64 {
	if m.available != -1 {
		return m.available
	}
	if m.free != -1 && m.buffers != -1 && m.cached != -1 && m.reclaimable != -1 && m.mapped != -1 {
		return m.free + m.buffers + m.cached + m.reclaimable - m.mapped
	}
	return -1
}

// snapshotFromMeminfo parses /proc/meminfo lines into a candidate
// snapshot. Total or Available come back -1 when the input did not
// carry enough fields to resolve them; a recognized label with a
// malformed value is an error.
func snapshotFromMeminfo(lines []string) (Snapshot, error) {
	info := meminfo{
		total:       -1,
		available:   -1,
		free:        -1,
		buffers:     -1,
		cached:      -1,
		reclaimable: -1,
		mapped:      -1,
	}

	for _, line := range lines {
		var err error
		switch {
		case strings.HasPrefix(line, "MemAvailable"):
			info.available, err = parseMeminfoBytes(line)
		case strings.HasPrefix(line, "MemFree"):
			info.free, err = parseMeminfoBytes(line)
		case strings.HasPrefix(line, "Buffers"):
			info.buffers, err = parseMeminfoBytes(line)
		case strings.HasPrefix(line, "Cached"):
			info.cached, err = parseMeminfoBytes(line)
		case strings.HasPrefix(line, "SReclaimable"):
			info.reclaimable, err = parseMeminfoBytes(line)
		case strings.HasPrefix(line, "Mapped"):
			info.mapped, err = parseMeminfoBytes(line)
		case strings.HasPrefix(line, "MemTotal"):
			info.total, err = parseMeminfoBytes(line)
		}
		if err != nil {
			return Snapshot{}, err
		}
	}

	return Snapshot{Total: info.total, Available: info.availableBytes()}, nil
}

// parseMeminfoBytes extracts the byte count from one meminfo line,
// e.g. "MemAvailable:    2109560 kB" -> 2160189440.
func parseMeminfoBytes(line string) (int64, error) {
	match := meminfoLinePattern.FindStringSubmatch(line)
	if match == nil {
		return 0, fmt.Errorf("%w: %q", ErrUnparsableMeminfo, line)
	}
	kb, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrUnparsableMeminfo, line, err)
	}
	return kb * 1024, nil
}
