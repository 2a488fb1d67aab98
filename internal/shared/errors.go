package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Processing errors
	ErrUnsupportedOperation = fmt.Errorf("unsupported operation")
	ErrTranscodeFailed      = fmt.Errorf("transcode failed")
	ErrResourceAllocation   = fmt.Errorf("resource allocation failed")

	// Collaborator errors
	ErrFetchFailed   = fmt.Errorf("fetch failed")
	ErrPublishFailed = fmt.Errorf("publish failed")

	// Persistence errors
	ErrNotFound = fmt.Errorf("not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
