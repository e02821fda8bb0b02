package backend

import "errors"

var (
	// ErrUnavailable indicates the platform API could not be reached or kept
	// failing with server errors after all retries.
	ErrUnavailable = errors.New("disbursement backend unavailable")

	// ErrRejected indicates the platform API refused the plan (4xx).
	ErrRejected = errors.New("disbursement plan rejected by backend")

	// ErrTimeout indicates the submission exceeded the configured timeout.
	ErrTimeout = errors.New("disbursement backend request timed out")
)
