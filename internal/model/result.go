package model

import (
	"errors"
	"fmt"
)

// ErrNotRecorded indicates a column absent from a result because it was
// not requested as an output.
var ErrNotRecorded = errors.New("model: variable not recorded in result")

// Result is the time-indexed trajectory table produced by one simulation
// run, keyed by location string. One run replaces the previous result
// wholesale; no history is kept beyond it.
type Result struct {
	Times   []float64
	Columns map[string][]float64
}

// NewResult allocates a result with capacity for n samples of the given
// columns.
func NewResult(columns []string, n int) *Result {
	r := &Result{
		Times:   make([]float64, 0, n),
		Columns: make(map[string][]float64, len(columns)),
	}
	for _, c := range columns {
		r.Columns[c] = make([]float64, 0, n)
	}
	return r
}

// Len returns the number of recorded samples.
func (r *Result) Len() int { return len(r.Times) }

// FinalTime returns the timestamp of the last sample.
func (r *Result) FinalTime() float64 {
	if len(r.Times) == 0 {
		return 0
	}
	return r.Times[len(r.Times)-1]
}

// Column returns the full trajectory of one recorded variable.
func (r *Result) Column(name string) ([]float64, error) {
	col, ok := r.Columns[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRecorded, name)
	}
	return col, nil
}

// First returns the first sample of one recorded variable.
func (r *Result) First(name string) (float64, error) {
	col, err := r.Column(name)
	if err != nil {
		return 0, err
	}
	if len(col) == 0 {
		return 0, fmt.Errorf("model: empty column %s", name)
	}
	return col[0], nil
}

// Last returns the final sample of one recorded variable.
func (r *Result) Last(name string) (float64, error) {
	col, err := r.Column(name)
	if err != nil {
		return 0, err
	}
	if len(col) == 0 {
		return 0, fmt.Errorf("model: empty column %s", name)
	}
	return col[len(col)-1], nil
}
