// Package worldmem is the bot's model of the world: the static beacon set
// announced in WELCOME plus the last observed position of the bot itself.
package worldmem

import (
	"sort"

	"navbot/internal/brain"
	"navbot/internal/geom"
	"navbot/internal/protocol"
)

// Memory implements brain.WorldMemory. It is updated and read only from
// the session goroutine, so it carries no lock.
type Memory struct {
	waypoints []brain.Waypoint
	pos       geom.Vec3
}

// New builds a Memory from the WELCOME beacon list. Beacons are ordered by
// ID so waypoint snapshots are stable regardless of wire order.
func New(beacons []protocol.Beacon) *Memory {
	wps := make([]brain.Waypoint, 0, len(beacons))
	for _, b := range beacons {
		wps = append(wps, brain.Waypoint{ID: b.ID, Loc: geom.FromArray(b.Pos)})
	}
	sort.Slice(wps, func(i, j int) bool { return wps[i].ID < wps[j].ID })
	return &Memory{waypoints: wps}
}

// ObservePos records the bot's position from an OBS message.
func (m *Memory) ObservePos(pos [3]float64) {
	m.pos = geom.FromArray(pos)
}

// KnownWaypoints returns a copy of the known waypoint set; callers may
// keep or mutate it freely.
func (m *Memory) KnownWaypoints() []brain.Waypoint {
	out := make([]brain.Waypoint, len(m.waypoints))
	copy(out, m.waypoints)
	return out
}

func (m *Memory) AgentLocation() geom.Vec3 {
	return m.pos
}
