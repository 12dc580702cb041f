package storage

import (
	"testing"

	"github.com/san-kum/simplot/internal/series"
)

func sampleSet(t *testing.T) *series.Set {
	t.Helper()
	s := series.NewSet([]string{"temp", "load"})
	for i, vals := range [][]float64{{10, 0.1}, {12, 0.4}, {9, 0.2}} {
		if err := s.Append(int64(i), vals); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	return s
}

func TestStore_SaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	runID, err := st.Save("temp & load", sampleSet(t))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if meta.Title != "temp & load" {
		t.Errorf("Title = %q", meta.Title)
	}
	if meta.Steps != 3 {
		t.Errorf("Steps = %d, want 3", meta.Steps)
	}
	if len(meta.Variables) != 2 || meta.Variables[0] != "temp" {
		t.Errorf("Variables = %v", meta.Variables)
	}
}

func TestStore_LoadSeries(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	runID, err := st.Save("run", sampleSet(t))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	set, err := st.LoadSeries(runID)
	if err != nil {
		t.Fatalf("LoadSeries: %v", err)
	}
	if set.Len() != 3 {
		t.Fatalf("Len = %d, want 3", set.Len())
	}
	full := set.Window(0)
	if full.Times[2] != 2 {
		t.Errorf("Times = %v", full.Times)
	}
	if full.Values["temp"][1] != 12 || full.Values["load"][1] != 0.4 {
		t.Errorf("Values = %v", full.Values)
	}
}

func TestStore_List(t *testing.T) {
	st := New(t.TempDir())

	runs, err := st.List()
	if err != nil {
		t.Fatalf("List on missing dir: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}

	if err := st.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := st.Save("run", sampleSet(t)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("List returned %d runs, want 1", len(runs))
	}
}

func TestStore_LoadMissing(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); err == nil {
		t.Error("expected error for missing run")
	}
	if _, err := st.LoadSeries("nope"); err == nil {
		t.Error("expected error for missing samples")
	}
}
