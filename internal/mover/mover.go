// Package mover executes movement through the server's MOVE_TO task
// primitive. The server owns pathfinding; the mover only issues the task
// and relays its observed status back to the caller as a step-wise
// "still moving" signal.
package mover

import (
	"fmt"
	"log"

	"navbot/internal/geom"
	"navbot/internal/protocol"
)

// moveTolerance is the stop radius, in world units, requested from the
// server for MOVE_TO tasks. Tighter than the arrival check so a finished
// task lands comfortably inside it.
const moveTolerance = 10

// ActSender delivers an ACT message to the server.
type ActSender interface {
	SendAct(protocol.ActMsg) error
}

type pursuit struct {
	taskID string
	target geom.Vec3
	done   bool
}

// Mover implements brain.Mover. Observe must be fed every OBS message
// before the tick's StepToward call so task status stays current.
type Mover struct {
	send ActSender
	log  *log.Logger

	agentID string
	tick    uint64
	seq     uint64
	current *pursuit
}

func New(send ActSender, logger *log.Logger) *Mover {
	return &Mover{send: send, log: logger}
}

// Observe updates the mover from an OBS message: current tick, agent id,
// and the status of the in-flight MOVE_TO task, if any.
func (m *Mover) Observe(obs *protocol.ObsMsg) {
	m.tick = obs.Tick
	m.agentID = obs.AgentID
	if m.current == nil {
		return
	}
	for _, task := range obs.Tasks {
		if task.TaskID != m.current.taskID {
			continue
		}
		if task.Status == protocol.TaskDone || task.Status == protocol.TaskFailed {
			m.current.done = true
		}
	}
}

// StepToward keeps one MOVE_TO task running toward target. It returns
// true while the task is en route and false once the task terminated (or
// could not be issued). A changed target abandons the old task and issues
// a fresh one.
func (m *Mover) StepToward(target geom.Vec3) bool {
	if m.current != nil && m.current.target == target {
		if m.current.done {
			m.current = nil
			return false
		}
		return true
	}

	m.seq++
	p := &pursuit{
		taskID: fmt.Sprintf("K_move_%d", m.seq),
		target: target,
	}
	act := protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		Tick:            m.tick,
		AgentID:         m.agentID,
		Tasks: []protocol.TaskReq{
			{ID: p.taskID, Type: protocol.KindMoveTo, Target: target.ToArray(), Tolerance: moveTolerance},
		},
	}
	if err := m.send.SendAct(act); err != nil {
		m.log.Printf("send MOVE_TO: %v", err)
		m.current = nil
		return false
	}
	m.current = p
	return true
}
