package model

import "fmt"

// ValidationError reports a Result that cannot be stored: a required field
// is blank or a unique field collides with an existing document.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// FetchError reports a source URL whose content could not be extracted.
// Creation of the Result is aborted.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// RecognitionError reports a failed call to the entity recognizer. The
// processing run is aborted and the Result keeps its previous state.
type RecognitionError struct {
	Err error
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("recognition failed: %v", e.Err)
}

func (e *RecognitionError) Unwrap() error { return e.Err }

// LookupError reports a failed contribution lookup for one recipient and
// contributor pair. It is logged and the pair is skipped.
type LookupError struct {
	RecipientID   string
	ContributorID string
	Err           error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup %s/%s: %v", e.RecipientID, e.ContributorID, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }
