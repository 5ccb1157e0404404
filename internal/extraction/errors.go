package extraction

import "errors"

// ErrNotFound is returned when an extraction job does not exist.
var ErrNotFound = errors.New("extraction job not found")

// ErrAlreadyFinished is returned when a job cannot be taken for processing
// because it already completed. Queue redelivery after a lost ack lands here.
var ErrAlreadyFinished = errors.New("extraction job already completed")

const (
	ErrorCodeLLMTimeout     = "LLM_TIMEOUT"
	ErrorCodeLLMUnavailable = "LLM_UNAVAILABLE"
	ErrorCodeParse          = "EXTRACTION_PARSE_ERROR"
	ErrorCodeSchemaMismatch = "SCHEMA_MISMATCH"
	ErrorCodeStorage        = "STORAGE_ERROR"
	ErrorCodeInternal       = "INTERNAL_ERROR"
)
