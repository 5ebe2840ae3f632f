package domain

import "errors"

var (
	// ErrMissingCredential is fatal at startup: the generation provider has no API key.
	ErrMissingCredential = errors.New("missing credential")
	// ErrEmptyCorpus is returned when building an index with no documents loaded.
	ErrEmptyCorpus = errors.New("no documents loaded")
	// ErrIndexNotFound is returned when the persisted index or document list is absent.
	ErrIndexNotFound = errors.New("index not found")
	// ErrIndexCorrupt marks persisted artifacts whose sizes disagree.
	ErrIndexCorrupt = errors.New("index corrupt")
	// ErrGeneration wraps any failure of the generation provider.
	ErrGeneration = errors.New("generation failed")
	// ErrLogIO wraps analytics persistence failures. Never fatal.
	ErrLogIO = errors.New("interaction log i/o failed")
)
