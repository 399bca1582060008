package timeparse

import "fmt"

// ParseError is returned when an expression matches none of the supported forms
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not parse %q as a date: %v", e.Input, e.Err)
	}
	return fmt.Sprintf("could not parse %q as a date", e.Input)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
