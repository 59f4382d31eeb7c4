package domain

import "fmt"

// TransportError reports a failed retrieval from the station. Connection
// errors, timeouts and unexpected HTTP statuses all classify the same way
// for retry purposes.
type TransportError struct {
	URL    string
	Status int // HTTP status when a response arrived, 0 otherwise
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("station returned status %d for %s", e.Status, e.URL)
	}
	return fmt.Sprintf("station request %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError reports a station document that could not be understood:
// malformed XML, the wrong root structure, or a measurement value that is
// not numeric.
type ParseError struct {
	Fragment string // offending portion of the document
	Err      error
}

func (e *ParseError) Error() string {
	if e.Fragment != "" {
		return fmt.Sprintf("parse station data: %v (at %q)", e.Err, e.Fragment)
	}
	return fmt.Sprintf("parse station data: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
