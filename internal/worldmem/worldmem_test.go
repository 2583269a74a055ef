package worldmem

import (
	"testing"

	"navbot/internal/geom"
	"navbot/internal/protocol"
)

func TestKnownWaypoints_SortedSnapshot(t *testing.T) {
	m := New([]protocol.Beacon{
		{ID: "B3", Pos: [3]float64{3, 0, 0}},
		{ID: "B1", Pos: [3]float64{1, 0, 0}},
		{ID: "B2", Pos: [3]float64{2, 0, 0}},
	})

	wps := m.KnownWaypoints()
	if len(wps) != 3 {
		t.Fatalf("len=%d want 3", len(wps))
	}
	for i, want := range []string{"B1", "B2", "B3"} {
		if wps[i].ID != want {
			t.Fatalf("wps[%d].ID=%s want %s", i, wps[i].ID, want)
		}
	}

	// Mutating the snapshot must not touch the memory.
	wps[0].ID = "mutated"
	if got := m.KnownWaypoints()[0].ID; got != "B1" {
		t.Fatalf("snapshot mutation leaked into memory: %s", got)
	}
}

func TestKnownWaypoints_Empty(t *testing.T) {
	m := New(nil)
	if wps := m.KnownWaypoints(); len(wps) != 0 {
		t.Fatalf("len=%d want 0", len(wps))
	}
}

func TestObservePos(t *testing.T) {
	m := New(nil)
	if m.AgentLocation() != (geom.Vec3{}) {
		t.Fatalf("fresh memory should report origin")
	}
	m.ObservePos([3]float64{10, 20, 30})
	if got := m.AgentLocation(); got != (geom.Vec3{X: 10, Y: 20, Z: 30}) {
		t.Fatalf("pos=%+v", got)
	}
}
