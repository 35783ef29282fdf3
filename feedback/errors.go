package feedback

import "errors"

var (
	ErrProviderUnavailable = errors.New("feedback provider unavailable")
	ErrMissingCredential   = errors.New("feedback provider credential not configured")
	ErrInvalidResult       = errors.New("invalid feedback result")
)
