package apperrors

import "fmt"

// ErrNotFound represents an error when a requested resource is not found.
type ErrNotFound struct {
	Resource string
	ID       interface{}
}

// Error implements the error interface.
func (e *ErrNotFound) Error() string {
	if e.ID != nil {
		return fmt.Sprintf("%s with ID %v not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is allows for error checking with errors.Is().
func (e *ErrNotFound) Is(target error) bool {
	_, ok := target.(*ErrNotFound)
	return ok
}

// NewNotFoundError creates a new ErrNotFound.
func NewNotFoundError(resource string, id interface{}) *ErrNotFound {
	return &ErrNotFound{
		Resource: resource,
		ID:       id,
	}
}

// NewSourceNotFoundError creates a specific error for when no download source has the given URL.
func NewSourceNotFoundError(url string) *ErrNotFound {
	return &ErrNotFound{
		Resource: "source",
		ID:       url,
	}
}

// ErrDuplicateSource is returned when a source with the same URL is already in the list.
type ErrDuplicateSource struct {
	URL string
}

// Error implements the error interface.
func (e *ErrDuplicateSource) Error() string {
	return fmt.Sprintf("source with URL %s already exists", e.URL)
}

// Is allows for error checking with errors.Is().
func (e *ErrDuplicateSource) Is(target error) bool {
	_, ok := target.(*ErrDuplicateSource)
	return ok
}

// ErrInvalidTransition is returned when a source status change is not allowed.
type ErrInvalidTransition struct {
	From string
	To   string
}

// Error implements the error interface.
func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

// Is allows for error checking with errors.Is().
func (e *ErrInvalidTransition) Is(target error) bool {
	_, ok := target.(*ErrInvalidTransition)
	return ok
}

// ErrUnknownChannel is returned when an IPC request names a channel with no handler.
type ErrUnknownChannel struct {
	Channel string
}

// Error implements the error interface.
func (e *ErrUnknownChannel) Error() string {
	return fmt.Sprintf("no handler registered for channel %q", e.Channel)
}

// Is allows for error checking with errors.Is().
func (e *ErrUnknownChannel) Is(target error) bool {
	_, ok := target.(*ErrUnknownChannel)
	return ok
}

// ErrUnknownDownloader is returned when the configured executable is not a supported downloader.
type ErrUnknownDownloader struct {
	Name string
}

// Error implements the error interface.
func (e *ErrUnknownDownloader) Error() string {
	return fmt.Sprintf("unknown downloader %q", e.Name)
}

// Is allows for error checking with errors.Is().
func (e *ErrUnknownDownloader) Is(target error) bool {
	_, ok := target.(*ErrUnknownDownloader)
	return ok
}

// ErrExecFailed is returned when the external downloader could not be spawned or exited non-zero.
// Code is the process exit code, or -1 when the process never ran to completion.
type ErrExecFailed struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *ErrExecFailed) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("downloader exited with code %d", e.Code)
	}
	return fmt.Sprintf("downloader exited with code %d: %s", e.Code, e.Message)
}

// Is allows for error checking with errors.Is().
func (e *ErrExecFailed) Is(target error) bool {
	_, ok := target.(*ErrExecFailed)
	return ok
}
