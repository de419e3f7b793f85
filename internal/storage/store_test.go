package storage

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/Eisbrenner/parcels/internal/particle"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s := New(filepath.Join(t.TempDir(), "runs"))
	if err := s.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return s
}

func writeRun(t *testing.T, s *Store, id string) {
	t.Helper()
	w, err := s.Begin(RunMetadata{
		ID: id, Flow: "stationary_eddy", Kernel: "RK4",
		Dt: 180, Runtime: 3600, OutputInterval: 1800, NumParticles: 2,
	})
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	ps := []*particle.Particle{
		particle.New(0, 12000, 12500, 0, 0),
		particle.New(1, 21000, 12500, 0, 0),
	}
	for _, ts := range []float64{0, 1800, 3600} {
		for _, p := range ps {
			p.Lon += 10
		}
		if err := w.Write(ts, ps); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestRunRoundtrip(t *testing.T) {
	s := testStore(t)
	writeRun(t, s, "testrun")

	meta, err := s.Load("testrun")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if meta.Flow != "stationary_eddy" || meta.NumParticles != 2 {
		t.Errorf("metadata = %+v", meta)
	}
	if meta.Timestamp.IsZero() {
		t.Error("Begin should stamp the run")
	}

	trajs, err := s.LoadTrajectories("testrun")
	if err != nil {
		t.Fatalf("LoadTrajectories failed: %v", err)
	}
	if len(trajs) != 2 {
		t.Fatalf("got %d trajectories, want 2", len(trajs))
	}
	pts := trajs[1]
	if len(pts) != 3 {
		t.Fatalf("particle 1 has %d points, want 3", len(pts))
	}
	if pts[0].Time != 0 || pts[2].Time != 3600 {
		t.Errorf("times = %g..%g, want 0..3600", pts[0].Time, pts[2].Time)
	}
	if math.Abs(pts[2].Lon-21030) > 1e-6 {
		t.Errorf("final lon = %g, want 21030", pts[2].Lon)
	}
	if pts[0].State != "Evaluate" {
		t.Errorf("state = %q, want Evaluate", pts[0].State)
	}
}

func TestListRuns(t *testing.T) {
	s := testStore(t)
	if runs, err := s.List(); err != nil || len(runs) != 0 {
		t.Fatalf("fresh store List = (%v, %v), want empty", runs, err)
	}
	writeRun(t, s, "run_a")
	writeRun(t, s, "run_b")
	runs, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("listed %d runs, want 2", len(runs))
	}
}

func TestListMissingBaseDir(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "never-created"))
	runs, err := s.List()
	if err != nil {
		t.Fatalf("List on missing dir failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("listed %d runs, want none", len(runs))
	}
}

func TestBeginGeneratesID(t *testing.T) {
	s := testStore(t)
	w, err := s.Begin(RunMetadata{Flow: "periodic"})
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if w.ID() == "" {
		t.Error("Begin should generate a run ID")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := s.Load(w.ID()); err != nil {
		t.Errorf("generated run not loadable: %v", err)
	}
}

func TestLoadUnknownRun(t *testing.T) {
	s := testStore(t)
	if _, err := s.Load("absent"); err == nil {
		t.Error("expected error for unknown run")
	}
	if _, err := s.LoadTrajectories("absent"); err == nil {
		t.Error("expected error for unknown trajectories")
	}
}
