package intake

import "errors"

var (
	// ErrValidation indicates missing or malformed request fields.
	ErrValidation = errors.New("invalid intake request")

	// ErrDecode indicates the uploaded payload could not be decoded or
	// yielded no usable text.
	ErrDecode = errors.New("unable to decode document content")

	// ErrAIProcessing indicates classification or summarization failed.
	ErrAIProcessing = errors.New("ai processing failed")
)
