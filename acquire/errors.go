package acquire

import "errors"

var (
	// ErrExecutorRequired is returned when a Downloader is created without an executor.
	ErrExecutorRequired = errors.New("executor is required")

	// ErrTranscriberRequired is returned when a TranscriptionStage is created without a transcriber.
	ErrTranscriberRequired = errors.New("transcriber is required")
)
