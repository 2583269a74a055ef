package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	AgentName       string            `json:"agent_name"`
	Capabilities    HelloCapabilities `json:"capabilities"`
}

type HelloCapabilities struct {
	MaxQueue int `json:"max_queue,omitempty"`
}

// WELCOME (server -> client). Beacons is the full set of navigation beacons
// for the session; it does not change until the connection ends.
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	AgentID         string      `json:"agent_id"`
	SessionID       string      `json:"session_id,omitempty"`
	WorldParams     WorldParams `json:"world_params"`
	Beacons         []Beacon    `json:"beacons"`
}

type WorldParams struct {
	TickRateHz int   `json:"tick_rate_hz"`
	Seed       int64 `json:"seed"`
}

type Beacon struct {
	ID  string     `json:"id"`
	Pos [3]float64 `json:"pos"`
}

// OBS (server -> client): one per tick.
type ObsMsg struct {
	Type            string    `json:"type"`
	ProtocolVersion string    `json:"protocol_version"`
	Tick            uint64    `json:"tick"`
	AgentID         string    `json:"agent_id"`
	Self            SelfObs   `json:"self"`
	Tasks           []TaskObs `json:"tasks,omitempty"`
}

type SelfObs struct {
	Pos [3]float64 `json:"pos"`
	Yaw float64    `json:"yaw,omitempty"`
}

// TaskObs reports a task the server is running for this agent. Terminal
// statuses (DONE, FAILED) are reported once, on the tick the task ends.
type TaskObs struct {
	TaskID string     `json:"task_id"`
	Kind   string     `json:"kind"`
	Status string     `json:"status"`
	Target [3]float64 `json:"target,omitempty"`
}

// ACT (client -> server)
type ActMsg struct {
	Type            string    `json:"type"`
	ProtocolVersion string    `json:"protocol_version"`
	Tick            uint64    `json:"tick"`
	AgentID         string    `json:"agent_id"`
	Tasks           []TaskReq `json:"tasks,omitempty"`
}

type TaskReq struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Target    [3]float64 `json:"target"`
	Tolerance float64    `json:"tolerance,omitempty"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
