package internal

import "errors"

var (
	// ErrMissingKnowledgeBaseID is returned when a query has no knowledge base to run against.
	ErrMissingKnowledgeBaseID = errors.New("knowledge base id is required")
	// ErrEmptyQuestion is returned when a query has no question text.
	ErrEmptyQuestion = errors.New("question is required")
	// ErrInvalidNumberOfResults is returned when the requested passage count does not fit the API range.
	ErrInvalidNumberOfResults = errors.New("number of results out of range")
	// ErrMalformedResponse is returned when the service response carries no answer text.
	ErrMalformedResponse = errors.New("response has no output text")
)
