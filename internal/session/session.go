// Package session runs one bot connection: it feeds server observations
// into the world memory and the mover, drives the pursuit loop once per
// tick, and fans pursuit events out to the trace and visit sinks.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"navbot/internal/brain"
	"navbot/internal/mover"
	"navbot/internal/persistence/trace"
	"navbot/internal/persistence/visitdb"
	"navbot/internal/protocol"
	"navbot/internal/worldmem"
)

// Conn is the server connection the session drives. *wsclient.Client
// satisfies it.
type Conn interface {
	ReadMessage() (protocol.BaseMessage, []byte, error)
	SendAct(protocol.ActMsg) error
	Close() error
}

type Options struct {
	RunID string
	Debug bool

	// Optional sinks; nil disables them.
	Trace  *trace.Writer
	Visits *visitdb.DB
}

type Session struct {
	conn Conn
	mem  *worldmem.Memory
	mv   *mover.Mover
	loop *brain.Loop
	log  *log.Logger

	runID  string
	trace  *trace.Writer
	visits *visitdb.DB

	tick uint64
	pos  [3]float64
}

// New builds a session from a completed handshake. A world without
// beacons is a configuration error: the pursuit loop would have nothing
// to choose from on its first tick.
func New(conn Conn, welcome *protocol.WelcomeMsg, logger *log.Logger, opts Options) (*Session, error) {
	if len(welcome.Beacons) == 0 {
		return nil, fmt.Errorf("world %s announced no beacons: %w", welcome.SessionID, brain.ErrNoWaypoints)
	}

	s := &Session{
		conn:   conn,
		mem:    worldmem.New(welcome.Beacons),
		log:    logger,
		runID:  opts.RunID,
		trace:  opts.Trace,
		visits: opts.Visits,
	}
	s.mv = mover.New(conn, logger)
	s.loop = brain.New(s.mem, s.mv, &stdLogger{l: logger, debug: opts.Debug}, welcome.WorldParams.Seed)
	s.loop.SetTracer(s)
	return s, nil
}

// Run reads server messages until the connection drops or ctx is
// cancelled. Cancellation closes the connection to unblock the read and
// returns nil.
func (s *Session) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = s.conn.Close()
		case <-done:
		}
	}()

	for {
		base, raw, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		switch base.Type {
		case protocol.TypeObs:
			var obs protocol.ObsMsg
			if err := json.Unmarshal(raw, &obs); err != nil {
				s.log.Printf("bad OBS: %v", err)
				continue
			}
			if err := s.handleObs(&obs); err != nil {
				return err
			}

		case protocol.TypeError:
			var e protocol.ErrorMsg
			if err := json.Unmarshal(raw, &e); err != nil {
				s.log.Printf("bad ERROR: %v", err)
				continue
			}
			if !protocol.IsKnownCode(e.Code) {
				s.log.Printf("server error (unknown code) %s: %s", e.Code, e.Message)
				continue
			}
			s.log.Printf("server error %s: %s", e.Code, e.Message)

		default:
			s.log.Printf("ignoring message type %s", base.Type)
		}
	}
}

func (s *Session) handleObs(obs *protocol.ObsMsg) error {
	s.tick = obs.Tick
	s.pos = obs.Self.Pos
	s.mem.ObservePos(obs.Self.Pos)
	s.mv.Observe(obs)

	if err := s.loop.Tick(); err != nil {
		return fmt.Errorf("tick %d: %w", obs.Tick, err)
	}
	return nil
}

// Chose, Arrived and PathBroken implement brain.Tracer.

func (s *Session) Chose(wp brain.Waypoint) {
	s.record(trace.EventChose, wp, 0)
}

func (s *Session) Arrived(wp brain.Waypoint, dist float64) {
	s.record(trace.EventArrived, wp, dist)
}

func (s *Session) PathBroken(wp brain.Waypoint, dist float64) {
	s.record(trace.EventPathBroken, wp, dist)
}

func (s *Session) record(event string, wp brain.Waypoint, dist float64) {
	if s.trace != nil {
		rec := trace.Record{
			Tick:     s.tick,
			Event:    event,
			Waypoint: wp.ID,
			Pos:      s.pos,
			Dist:     dist,
			At:       time.Now().UTC().Format(time.RFC3339Nano),
		}
		if err := s.trace.Write(rec); err != nil {
			s.log.Printf("trace write: %v", err)
		}
	}
	if s.visits != nil {
		s.visits.RecordVisit(s.runID, s.tick, wp.ID, event, dist)
	}
}

// stdLogger adapts the process logger to brain.Logger. Debug lines are
// dropped unless enabled.
type stdLogger struct {
	l     *log.Logger
	debug bool
}

func (a *stdLogger) Infof(format string, args ...any) {
	a.l.Printf(format, args...)
}

func (a *stdLogger) Debugf(format string, args ...any) {
	if a.debug {
		a.l.Printf(format, args...)
	}
}
