// Package brain holds the bot's decision logic: pick a random known
// waypoint, pursue it one movement step per tick, and drop it once the
// move terminates, whether by arriving or by getting stuck.
package brain

import (
	"errors"
	"math/rand"

	"navbot/internal/geom"
)

// ArriveDist is the proximity, in world units, under which a terminated
// pursuit counts as an arrival.
const ArriveDist = 100

// ErrNoWaypoints is returned by Tick when the world memory holds no
// waypoints to choose from. The loop does not recover from this; the
// driver decides whether it is fatal.
var ErrNoWaypoints = errors.New("no waypoints known")

// Waypoint is a named point in the world usable as a navigation target.
type Waypoint struct {
	ID  string
	Loc geom.Vec3
}

// WorldMemory is the bot's read-only view of the world.
type WorldMemory interface {
	// KnownWaypoints returns a snapshot of the currently known waypoints.
	// Callers own the returned slice.
	KnownWaypoints() []Waypoint

	// AgentLocation returns the bot's current position.
	AgentLocation() geom.Vec3
}

// Mover advances the bot one step toward a location. StepToward returns
// true while the move is still in progress and false once it has
// terminated; it does not say whether termination means arrival.
type Mover interface {
	StepToward(geom.Vec3) bool
}

// Logger is the loop's diagnostic sink. Implementations must not panic.
type Logger interface {
	Infof(format string, args ...any)
	Debugf(format string, args ...any)
}

// Tracer observes pursuit transitions, for trace and telemetry sinks.
type Tracer interface {
	Chose(wp Waypoint)
	Arrived(wp Waypoint, dist float64)
	PathBroken(wp Waypoint, dist float64)
}

// NopTracer discards all transitions.
type NopTracer struct{}

func (NopTracer) Chose(Waypoint)               {}
func (NopTracer) Arrived(Waypoint, float64)    {}
func (NopTracer) PathBroken(Waypoint, float64) {}

// Loop is the pursuit loop for one agent. It is not safe for concurrent
// use; the driver calls Tick from a single goroutine, once per tick.
type Loop struct {
	mem    WorldMemory
	mover  Mover
	log    Logger
	tracer Tracer
	rng    *rand.Rand

	chosen *Waypoint
}

func New(mem WorldMemory, mover Mover, log Logger, seed int64) *Loop {
	return &Loop{
		mem:    mem,
		mover:  mover,
		log:    log,
		tracer: NopTracer{},
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// SetTracer replaces the transition sink. Call before the first Tick.
func (l *Loop) SetTracer(t Tracer) {
	l.tracer = t
}

// Target returns the waypoint currently being pursued, if any.
func (l *Loop) Target() (Waypoint, bool) {
	if l.chosen == nil {
		return Waypoint{}, false
	}
	return *l.chosen, true
}

// Tick runs one iteration: ensure a target is chosen, then issue one
// movement step toward it. When the move terminates, the outcome is
// logged and the target cleared so the next tick picks a fresh one.
func (l *Loop) Tick() error {
	l.log.Debugf("tick")

	if l.chosen == nil {
		wps := l.mem.KnownWaypoints()
		if len(wps) == 0 {
			return ErrNoWaypoints
		}
		wp := wps[l.rng.Intn(len(wps))]
		l.chosen = &wp
		l.log.Infof("chose waypoint %s at (%.1f, %.1f, %.1f)", wp.ID, wp.Loc.X, wp.Loc.Y, wp.Loc.Z)
		l.tracer.Chose(wp)
	}

	if l.mover.StepToward(l.chosen.Loc) {
		// Still en route; keep the target for the next tick.
		return nil
	}

	d := geom.Dist(l.mem.AgentLocation(), l.chosen.Loc)
	if d < ArriveDist {
		l.log.Infof("arrived at waypoint %s", l.chosen.ID)
		l.tracer.Arrived(*l.chosen, d)
	} else {
		l.log.Infof("path to waypoint %s broken (%.1f units away), dropping it", l.chosen.ID, d)
		l.tracer.PathBroken(*l.chosen, d)
	}
	l.chosen = nil
	return nil
}
