package domain

import "errors"

var (
	// ErrParameter marks invalid caller-supplied run parameters, such
	// as a malformed start date. Surfaced before any generation begins.
	ErrParameter = errors.New("invalid parameter")

	// ErrConfiguration marks a configuration under which the generator
	// cannot produce meaningful output, such as zero customers or zero
	// terminals. The run fails fast rather than emitting empty days.
	ErrConfiguration = errors.New("invalid configuration")
)
