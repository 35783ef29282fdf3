package analysis

import "errors"

var (
	// ErrSourceUnavailable means the frame source never became active.
	ErrSourceUnavailable = errors.New("frame source unavailable")

	// ErrSamplerUsed is returned when Start is called on a sampler that
	// already ran.
	ErrSamplerUsed = errors.New("sampler already started")

	// ErrDetectorFailed is returned by a detector whose initialisation failed.
	ErrDetectorFailed = errors.New("landmark detector failed to initialize")
)
