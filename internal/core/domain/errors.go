package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	// Returned when the content root or a source path is missing.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider, backend or document format.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrIngestionInProgress indicates an ingestion run is already active.
	ErrIngestionInProgress = errors.New("ingestion in progress")

	// ErrLoadFailure indicates a document could not be read or normalised.
	// Recorded per candidate; never aborts an ingestion run.
	ErrLoadFailure = errors.New("load failure")

	// ErrRetrievalFailure indicates the index or embedding service failed during retrieval.
	ErrRetrievalFailure = errors.New("retrieval failure")

	// ErrIterationBudgetExceeded indicates the reasoning loop hit its iteration cap.
	ErrIterationBudgetExceeded = errors.New("iteration budget exceeded")

	// ErrCompletionUnavailable indicates the completion service is not configured.
	ErrCompletionUnavailable = errors.New("completion service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrIndexUnavailable indicates the vector index is not configured or not reachable.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrSourceUnavailable indicates the content source is not configured.
	ErrSourceUnavailable = errors.New("content source unavailable")
)
