package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrValidation signals a malformed request.
	ErrValidation = errors.New("validation failed")
	// ErrFeatureDisabled signals a feature switched off in the system config.
	ErrFeatureDisabled = errors.New("feature disabled")
	// ErrSweepRunning signals that a re-indexing sweep is already in progress.
	ErrSweepRunning = errors.New("indexing sweep already running")
	// ErrNoJobs signals that no indexing sweep has ever run.
	ErrNoJobs = errors.New("no indexing jobs yet")
	// ErrProviderConfig signals a provider requested without its required key.
	ErrProviderConfig = errors.New("provider misconfigured")
	// ErrUnknownProvider signals an unrecognized provider name.
	ErrUnknownProvider = errors.New("unknown embedding provider")
	// ErrProviderUnavailable signals an embedding or generative call failure
	// for providers that do not self-degrade.
	ErrProviderUnavailable = errors.New("provider unavailable")
)
