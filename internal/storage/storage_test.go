package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kvarnsen/fmex/internal/model"
	"github.com/kvarnsen/fmex/internal/session"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(t.TempDir())
	if err := s.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleResult() *model.Result {
	res := model.NewResult([]string{"bioreactor.V"}, 3)
	res.Times = []float64{0, 0.5, 1}
	res.Columns["bioreactor.V"] = []float64{4.5, 4.5, 4.5}
	return res
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, ok, err := s.LoadSnapshot(ctx); err != nil || ok {
		t.Fatalf("LoadSnapshot on empty store = ok=%v, err=%v", ok, err)
	}

	snap := session.Snapshot{
		Cursor:     6,
		Parameters: map[string]float64{"Y": 0.5, "V_start": 4.5},
		States:     map[string]float64{"bioreactor.V": 4.5},
		Overrides:  map[string]float64{"bioreactor.culture.Y": 0.5},
	}
	if err := s.SaveSnapshot(ctx, snap); err != nil {
		t.Fatal(err)
	}

	got, ok, err := s.LoadSnapshot(ctx)
	if err != nil || !ok {
		t.Fatalf("LoadSnapshot = ok=%v, err=%v", ok, err)
	}
	if got.Cursor != 6 || got.Parameters["Y"] != 0.5 || got.States["bioreactor.V"] != 4.5 {
		t.Fatalf("LoadSnapshot = %+v", got)
	}

	// Saving again replaces rather than accumulates.
	snap.Cursor = 9
	if err := s.SaveSnapshot(ctx, snap); err != nil {
		t.Fatal(err)
	}
	got, _, err = s.LoadSnapshot(ctx)
	if err != nil || got.Cursor != 9 {
		t.Fatalf("LoadSnapshot after replace = %+v, err=%v", got, err)
	}

	if err := s.ClearSnapshot(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := s.LoadSnapshot(ctx); err != nil || ok {
		t.Fatalf("LoadSnapshot after clear = ok=%v, err=%v", ok, err)
	}
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, err := s.SaveRun(ctx, RunMetadata{
		Model: "batch-bioreactor", Mode: "init",
		CreatedAt: time.Now().Add(-time.Minute),
		StartTime: 0, StopTime: 6, Points: 500,
	}, sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.SaveRun(ctx, RunMetadata{
		Model: "batch-bioreactor", Mode: "cont",
		StartTime: 6, StopTime: 9, Points: 500,
	}, sampleResult())
	if err != nil {
		t.Fatal(err)
	}

	runs, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("ListRuns = %d entries, want 2", len(runs))
	}
	if runs[0].ID != second || runs[1].ID != first {
		t.Fatalf("ListRuns order = [%s, %s], want newest first", runs[0].ID, runs[1].ID)
	}

	meta, res, err := s.LoadRun(ctx, first)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Mode != "init" || meta.StopTime != 6 {
		t.Fatalf("LoadRun metadata = %+v", meta)
	}
	if res.Len() != 3 || res.FinalTime() != 1 {
		t.Fatalf("LoadRun trajectory = %d samples, final %v", res.Len(), res.FinalTime())
	}
	if got := res.Columns["bioreactor.V"][0]; got != 4.5 {
		t.Fatalf("trajectory column = %v, want 4.5", got)
	}
}

func TestLoadRunNotFound(t *testing.T) {
	s := newTestStore(t)
	_, _, err := s.LoadRun(context.Background(), "no-such-run")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadRun error = %v, want ErrNotFound", err)
	}
}

func TestUninitializedStoreFails(t *testing.T) {
	s := New(t.TempDir())
	if err := s.SaveSnapshot(context.Background(), session.Snapshot{}); err == nil {
		t.Fatal("SaveSnapshot without Init should fail")
	}
}
