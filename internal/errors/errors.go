// Package errors provides error handling for cooc.
//
// It re-exports github.com/cockroachdb/errors (stack traces, wrapping, hints)
// and defines the sentinel errors of the sampling error taxonomy:
//
//	ErrInvalidConfig          fatal, returned before any graph traversal
//	ErrInsufficientSamples    partial result, a cluster produced fewer samples than requested
//	ErrMissingNodeType        ghost node encountered during traversal, skipped
//	ErrMalformedAttrs         stored node attrs failed to decode, node skipped on load
//	ErrDegenerateNeighborhood pruned subgraph is empty or lost an endpoint
//
// Only ErrInvalidConfig is ever returned from a sampling run. The others
// are recovered locally and reported through run diagnostics.
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New      = crdb.New
	Newf     = crdb.Newf
	Wrap     = crdb.Wrap
	Wrapf    = crdb.Wrapf
	Mark     = crdb.Mark
	WithHint = crdb.WithHint
)

// Error inspection
var (
	Is          = crdb.Is
	As          = crdb.As
	GetAllHints = crdb.GetAllHints
)

var (
	ErrNotFound               = New("not found")
	ErrInvalidConfig          = New("invalid configuration")
	ErrInsufficientSamples    = New("insufficient samples")
	ErrMissingNodeType        = New("missing node type")
	ErrMalformedAttrs         = New("malformed node attributes")
	ErrDegenerateNeighborhood = New("degenerate neighborhood")
)

// NewConfigError creates an error marked as ErrInvalidConfig.
func NewConfigError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrInvalidConfig)
}

// IsConfigError reports whether err is or wraps a configuration error.
func IsConfigError(err error) bool {
	return err != nil && Is(err, ErrInvalidConfig)
}
