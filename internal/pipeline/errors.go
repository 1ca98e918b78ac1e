package pipeline

import "errors"

var (
	// ErrServiceNeverReady marks a backing service that exhausted its
	// readiness poll without answering.
	ErrServiceNeverReady = errors.New("service never became ready")

	// ErrUnknownAction marks a step referencing an unregistered action.
	ErrUnknownAction = errors.New("unknown action")
)
