package stage

import "errors"

var (
	// ErrStoreRequired is returned when a Runner is created without a store.
	ErrStoreRequired = errors.New("artifact store is required")

	// ErrHandlerRequired is returned when a Runner is created without a handler.
	ErrHandlerRequired = errors.New("handler is required")

	// ErrInvalidReportInterval is returned when progress is requested with an
	// interval below one.
	ErrInvalidReportInterval = errors.New("report interval must be greater than 0")
)
