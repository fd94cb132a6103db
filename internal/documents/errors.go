package documents

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")

	// errForcedFailure backs MemoryRepo.FailFileDeletes.
	errForcedFailure = errors.New("forced failure")
)
