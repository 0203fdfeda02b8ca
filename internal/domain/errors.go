package domain

import "errors"

var (
	// ErrNotFound is returned by repositories when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidKind indicates an unknown metric or activity type.
	ErrInvalidKind = errors.New("invalid type")
	// ErrInvalidMetric indicates a metric that failed validation.
	ErrInvalidMetric = errors.New("invalid metric")
	// ErrInvalidActivity indicates an activity that failed validation.
	ErrInvalidActivity = errors.New("invalid activity")
	// ErrRejected indicates the remote service refused a write. Rejected
	// writes are reported to the caller and never queued for replay.
	ErrRejected = errors.New("rejected by server")
	// ErrConflict indicates a uniqueness violation, such as a taken username.
	ErrConflict = errors.New("already exists")
	// ErrShareExpired indicates a share code past its expiry.
	ErrShareExpired = errors.New("share has expired")
)
