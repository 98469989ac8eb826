package linkcrawl

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	ECLOSED   = "closed"
	EINTERNAL = "internal"
	EINVALID  = "invalid"
)

// Error represents an application-specific error.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("linkcrawl error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error.".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorKind classifies why a single URL could not be crawled.
type ErrorKind string

// Per-URL failure kinds.
const (
	// KindMalformedURL means the URL could not be parsed or has no host.
	KindMalformedURL ErrorKind = "malformed_url"
	// KindDownload means the Downloader failed to fetch the page.
	KindDownload ErrorKind = "download"
	// KindExtraction means the page was fetched but its links could not be extracted.
	KindExtraction ErrorKind = "extraction"
)

// URLError records the failure of a single URL during a crawl.
// It never aborts the crawl; it is collected into Result.Errors.
type URLError struct {
	Kind ErrorKind
	URL  string
	Err  error
}

// Error implements the error interface.
func (e *URLError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *URLError) Unwrap() error {
	return e.Err
}

// ErrorKindOf returns the kind of a per-URL error, or "" if err is not a URLError.
func ErrorKindOf(err error) ErrorKind {
	var e *URLError
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
