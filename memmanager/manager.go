// Copyright The MemHealth Authors
// SPDX-License-Identifier: Apache-2.0

// Package memmanager periodically samples OS memory and exposes a
// throttle signal for schedulers that decide whether to spawn or hold
// back work.
package memmanager // import "github.com/buildforge/memhealth/memmanager"

import (
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/buildforge/memhealth/osmemory"
)

const mibBytes = 1024 * 1024

// Listener is notified with every successful memory sample.
type Listener func(osmemory.Snapshot)

// Manager drives a snapshot provider on a fixed interval and tracks
// whether available memory has dropped below the configured floor.
type Manager struct {
	provider osmemory.Provider

	// minAvailableBytes is the fixed floor; 0 means the floor is
	// resolved per sample from minAvailablePct.
	minAvailableBytes int64
	minAvailablePct   int64

	memCheckWait time.Duration
	ticker       *time.Ticker

	// mustThrottle is flipped by the sampling loop and read by
	// arbitrary scheduler threads.
	mustThrottle *atomic.Bool

	logger *zap.Logger

	listenersLock sync.Mutex
	listeners     []Listener

	refCounterLock sync.Mutex
	refCounter     int
	waitGroup      sync.WaitGroup
	closed         chan struct{}
}

// NewManager returns a new memory manager sampling the given provider.
func NewManager(cfg *Config, provider osmemory.Provider, logger *zap.Logger) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Info("Memory manager configured",
		zap.Uint32("min_available_mib", cfg.MinAvailableMiB),
		zap.Uint32("min_available_percentage", cfg.MinAvailablePercentage),
		zap.Duration("check_interval", cfg.CheckInterval))

	return &Manager{
		provider:          provider,
		minAvailableBytes: int64(cfg.MinAvailableMiB) * mibBytes,
		minAvailablePct:   int64(cfg.MinAvailablePercentage),
		memCheckWait:      cfg.CheckInterval,
		ticker:            time.NewTicker(cfg.CheckInterval),
		mustThrottle:      atomic.NewBool(false),
		logger:            logger,
	}, nil
}

// Start launches the sampling loop. Calls are refcounted so several
// consumers can share one manager.
func (m *Manager) Start() error {
	m.refCounterLock.Lock()
	defer m.refCounterLock.Unlock()

	m.refCounter++
	if m.refCounter == 1 {
		m.closed = make(chan struct{})
		m.waitGroup.Add(1)
		go func() {
			defer m.waitGroup.Done()

			for {
				select {
				case <-m.ticker.C:
				case <-m.closed:
					return
				}
				m.CheckMemory()
			}
		}()
	}
	return nil
}

// Shutdown stops the sampling loop once the last consumer has shut
// down.
func (m *Manager) Shutdown() error {
	m.refCounterLock.Lock()
	defer m.refCounterLock.Unlock()

	switch m.refCounter {
	case 0:
		return nil
	case 1:
		m.ticker.Stop()
		close(m.closed)
		m.waitGroup.Wait()
	}
	m.refCounter--
	return nil
}

// MustThrottle returns true while available memory is below the
// configured floor.
func (m *Manager) MustThrottle() bool {
	return m.mustThrottle.Load()
}

// AddListener registers a callback invoked with every successful
// sample.
func (m *Manager) AddListener(l Listener) {
	m.listenersLock.Lock()
	defer m.listenersLock.Unlock()
	m.listeners = append(m.listeners, l)
}

// CheckMemory takes one sample and updates the throttle state. A failed
// sample is logged and leaves the previous state in place.
func (m *Manager) CheckMemory() {
	snap, err := m.provider.Snapshot()
	if err != nil {
		m.logger.Warn("Failed to sample OS memory.", zap.Error(err))
		return
	}

	m.notifyListeners(snap)

	floor := m.floor(snap)
	belowFloor := snap.Available < floor

	if belowFloor && !m.mustThrottle.Load() {
		m.logger.Warn("Available memory below floor. Throttling.",
			zap.Int64("available_mib", snap.Available/mibBytes),
			zap.Int64("floor_mib", floor/mibBytes))
	}
	if !belowFloor && m.mustThrottle.Load() {
		m.logger.Info("Available memory back above floor. Resuming normal operation.",
			zap.Int64("available_mib", snap.Available/mibBytes))
	}
	m.mustThrottle.Store(belowFloor)
}

func (m *Manager) floor(snap osmemory.Snapshot) int64 {
	if m.minAvailableBytes != 0 {
		return m.minAvailableBytes
	}
	return snap.Total * m.minAvailablePct / 100
}

func (m *Manager) notifyListeners(snap osmemory.Snapshot) {
	m.listenersLock.Lock()
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.listenersLock.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}
