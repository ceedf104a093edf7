package model

import (
	"context"
	"errors"

	"github.com/kvarnsen/fmex/internal/catalog"
)

// Domain errors for model invocations.
var (
	// ErrUnknownOverride indicates a start-value override for a location
	// the model does not expose.
	ErrUnknownOverride = errors.New("model: unknown override location")

	// ErrUnknownOutput indicates a requested output column the model
	// does not expose.
	ErrUnknownOutput = errors.New("model: unknown output variable")

	// ErrBadInterval indicates a non-positive time interval or sampling
	// resolution.
	ErrBadInterval = errors.New("model: invalid simulation interval")

	// ErrDiverged indicates the solver produced a non-finite state.
	ErrDiverged = errors.New("model: solver diverged (NaN or Inf state)")
)

// Request describes one simulation interval handed to a model. StartValues
// override declared start values by location string; Outputs names exactly
// the columns the caller wants recorded.
type Request struct {
	StartTime      float64
	StopTime       float64
	OutputInterval float64
	StartValues    map[string]float64
	Outputs        []string
}

// Model is the external simulation collaborator: a black box exposing a
// variable catalog and an invocation that integrates over one interval.
// Implementations own all numerics; callers own run-to-run continuity.
type Model interface {
	Name() string
	Variables() []catalog.Variable
	Simulate(ctx context.Context, req Request) (*Result, error)
}
