// Copyright The MemHealth Authors
// SPDX-License-Identifier: Apache-2.0

package memmanager // import "github.com/buildforge/memhealth/memmanager"

import (
	"errors"
	"time"

	"go.uber.org/multierr"
)

var (
	errCheckIntervalOutOfRange = errors.New(
		"check_interval must be greater than zero")
	errThresholdNotSet = errors.New(
		"min_available_mib or min_available_percentage must be set")
	errPercentageOutOfRange = errors.New(
		"min_available_percentage must not be greater than 100")
)

// Config defines configuration for the memory manager.
type Config struct {
	// CheckInterval is the time between memory samples.
	CheckInterval time.Duration `mapstructure:"check_interval"`

	// MinAvailableMiB is the floor of available memory, in MiB, below
	// which MustThrottle reports true. Takes precedence over
	// MinAvailablePercentage.
	MinAvailableMiB uint32 `mapstructure:"min_available_mib"`

	// MinAvailablePercentage is the floor expressed as a percentage of
	// total memory, used when MinAvailableMiB is unset. The percentage
	// is resolved against each sample's total, so cgroup-scoped and
	// host-wide readings both work.
	MinAvailablePercentage uint32 `mapstructure:"min_available_percentage"`
}

// Validate checks if the manager configuration is valid.
func (cfg *Config) Validate() error {
	var errs error
	if cfg.CheckInterval <= 0 {
		errs = multierr.Append(errs, errCheckIntervalOutOfRange)
	}
	if cfg.MinAvailableMiB == 0 && cfg.MinAvailablePercentage == 0 {
		errs = multierr.Append(errs, errThresholdNotSet)
	}
	if cfg.MinAvailablePercentage > 100 {
		errs = multierr.Append(errs, errPercentageOutOfRange)
	}
	return errs
}
