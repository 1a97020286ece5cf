/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package catalog

// ValidationError is a recoverable input problem meant to be shown inline.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	ErrEmptyTitle      = &ValidationError{Field: "title", Message: "song title cannot be empty"}
	ErrEmptyAnswer     = &ValidationError{Field: "answer", Message: "song answer cannot be empty"}
	ErrInvalidMediaRef = &ValidationError{Field: "url", Message: "not a recognised YouTube link or video ID"}
)
