// Copyright The MemHealth Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package osmemory // import "github.com/buildforge/memhealth/osmemory"

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const (
	meminfoPath     = "/proc/meminfo"
	cgroupUsagePath = "/sys/fs/cgroup/memory/memory.usage_in_bytes"
	cgroupLimitPath = "/sys/fs/cgroup/memory/memory.limit_in_bytes"
)

// linuxProvider prefers the memory cgroup limit and usage files and
// falls back to /proc/meminfo once the cgroup files prove unreadable.
type linuxProvider struct {
	logger *zap.Logger

	usagePath   string
	limitPath   string
	meminfoPath string

	// mu serializes the whole snapshot sequence, covering both the
	// check-then-act on tryCgroup and the meminfo parse.
	mu sync.Mutex

	// tryCgroup transitions true->false the first time the cgroup
	// files cannot be read, and is never reset.
	tryCgroup bool
}

var _ Provider = (*linuxProvider)(nil)

// NewProvider returns the Linux snapshot provider.
func NewProvider(logger *zap.Logger) Provider {
	return &linuxProvider{
		logger:      logger,
		usagePath:   cgroupUsagePath,
		limitPath:   cgroupLimitPath,
		meminfoPath: meminfoPath,
		tryCgroup:   true,
	}
}

func (p *linuxProvider) Snapshot() (Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tryCgroup {
		snap, err := p.cgroupSnapshot()
		if err == nil {
			return snap, nil
		}
		// Any cgroup read failure permanently disables the cgroup path
		// for this provider; transient errors are not distinguished.
		p.tryCgroup = false
		p.logger.Debug("Unable to read cgroup memory files, falling back to /proc/meminfo.",
			zap.String("usage_file", p.usagePath),
			zap.String("limit_file", p.limitPath),
			zap.Error(err))
	}

	data, err := os.ReadFile(p.meminfoPath)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: reading %s: %v", ErrUnavailable, p.meminfoPath, err)
	}

	snap, err := snapshotFromMeminfo(strings.Split(string(data), "\n"))
	if err != nil {
		return Snapshot{}, err
	}
	if snap.Total < 0 || snap.Available < 0 {
		return Snapshot{}, fmt.Errorf("%w: %s is missing required fields", ErrUnavailable, p.meminfoPath)
	}
	return snap, nil
}

func (p *linuxProvider) cgroupSnapshot() (Snapshot, error) {
	usage, err := readCgroupValue(p.usagePath)
	if err != nil {
		return Snapshot{}, err
	}
	limit, err := readCgroupValue(p.limitPath)
	if err != nil {
		return Snapshot{}, err
	}

	free := limit - usage
	if free < 0 {
		free = 0
	}
	return Snapshot{Total: limit, Available: free}, nil
}

func readCgroupValue(path string) (int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
}
