// Copyright The MemHealth Authors
// SPDX-License-Identifier: Apache-2.0

package memmetrics

import (
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/buildforge/memhealth/osmemory"
)

type providerStub struct {
	snap osmemory.Snapshot
	err  error
}

func (s *providerStub) Snapshot() (osmemory.Snapshot, error) {
	return s.snap, s.err
}

func TestCollectorHealthyProvider(t *testing.T) {
	c := NewCollector(&providerStub{
		snap: osmemory.Snapshot{Total: 4096, Available: 1024},
	}, zaptest.NewLogger(t))

	expected := `
# HELP osmem_available_bytes Estimated memory available for new allocations in bytes.
# TYPE osmem_available_bytes gauge
osmem_available_bytes 1024
# HELP osmem_snapshot_errors_total Number of failed memory snapshot attempts.
# TYPE osmem_snapshot_errors_total counter
osmem_snapshot_errors_total 0
# HELP osmem_total_bytes Total physical memory or cgroup memory limit in bytes.
# TYPE osmem_total_bytes gauge
osmem_total_bytes 4096
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected)))
}

func TestCollectorFailingProvider(t *testing.T) {
	c := NewCollector(&providerStub{
		err: errors.New("meminfo unreadable"),
	}, zaptest.NewLogger(t))

	expected := `
# HELP osmem_snapshot_errors_total Number of failed memory snapshot attempts.
# TYPE osmem_snapshot_errors_total counter
osmem_snapshot_errors_total 1
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected)))
}
