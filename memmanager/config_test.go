// Copyright The MemHealth Authors
// SPDX-License-Identifier: Apache-2.0

package memmanager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
		err  error
	}{
		{
			name: "valid fixed floor",
			cfg: &Config{
				CheckInterval:   100 * time.Millisecond,
				MinAvailableMiB: 512,
			},
			err: nil,
		},
		{
			name: "valid percentage floor",
			cfg: &Config{
				CheckInterval:          time.Second,
				MinAvailablePercentage: 10,
			},
			err: nil,
		},
		{
			name: "zero check interval",
			cfg: &Config{
				MinAvailableMiB: 512,
			},
			err: errCheckIntervalOutOfRange,
		},
		{
			name: "no floor set",
			cfg: &Config{
				CheckInterval: time.Second,
			},
			err: errThresholdNotSet,
		},
		{
			name: "percentage out of range",
			cfg: &Config{
				CheckInterval:          time.Second,
				MinAvailablePercentage: 101,
			},
			err: errPercentageOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestConfigValidateAggregatesErrors(t *testing.T) {
	err := (&Config{}).Validate()
	assert.ErrorIs(t, err, errCheckIntervalOutOfRange)
	assert.ErrorIs(t, err, errThresholdNotSet)
}
