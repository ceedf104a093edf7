package model

import (
	"errors"
	"testing"
)

func TestResultAccessors(t *testing.T) {
	res := NewResult([]string{"bioreactor.V"}, 3)
	res.Times = []float64{0, 1, 2}
	res.Columns["bioreactor.V"] = []float64{4.5, 4.6, 4.7}

	if res.Len() != 3 {
		t.Fatalf("Len() = %d", res.Len())
	}
	if res.FinalTime() != 2 {
		t.Fatalf("FinalTime() = %v", res.FinalTime())
	}
	if v, err := res.First("bioreactor.V"); err != nil || v != 4.5 {
		t.Fatalf("First() = %v, %v", v, err)
	}
	if v, err := res.Last("bioreactor.V"); err != nil || v != 4.7 {
		t.Fatalf("Last() = %v, %v", v, err)
	}
	if _, err := res.Column("bioreactor.S"); !errors.Is(err, ErrNotRecorded) {
		t.Fatalf("Column(unrecorded) error = %v", err)
	}
}

func TestEmptyResult(t *testing.T) {
	res := NewResult(nil, 0)
	if res.FinalTime() != 0 {
		t.Fatalf("FinalTime() on empty result = %v", res.FinalTime())
	}
	if _, err := res.Last("anything"); err == nil {
		t.Fatal("Last() on empty result should fail")
	}
}
