package life

import "errors"

// Sentinel errors.
var (
	// ErrInvalidConfig is returned by Config.Validate and NewSession for
	// unusable settings.
	ErrInvalidConfig = errors.New("life: invalid config")

	// ErrWorkgroupMismatch is returned by NewSession when a compute
	// program declares a @workgroup_size other than
	// Config.WorkgroupSize in x and y.
	ErrWorkgroupMismatch = errors.New("life: workgroup size mismatch")

	// ErrSeedTooLarge is returned when a seed image is larger than the
	// generation buffer.
	ErrSeedTooLarge = errors.New("life: seed larger than grid")

	// ErrClosed is returned by operations on a closed session or buffer.
	ErrClosed = errors.New("life: closed")
)
