package domain

import "errors"

var (
	ErrDocumentNotFound   = errors.New("document not found")
	ErrJobNotFound        = errors.New("job not found")
	ErrExtractionNotFound = errors.New("extraction not found")
	ErrJobAlreadyActive   = errors.New("an active job of this type already exists for the document")
	ErrUnsupportedFile    = errors.New("unsupported file type; only pdf is accepted")
	ErrFileTooLarge       = errors.New("file exceeds maximum allowed size")
	ErrTooManyPages       = errors.New("document exceeds the maximum page count")
	ErrInvalidTaskType    = errors.New("invalid task type")
	ErrInvalidChunkParams = errors.New("chunk overlap must be smaller than chunk size")
	ErrEmbeddingDimension = errors.New("embedding dimensionality does not match configured size")
	ErrUploadFailed       = errors.New("file upload to storage failed")
	ErrInvalidReviewData  = errors.New("review data is not a valid extraction payload")
)
