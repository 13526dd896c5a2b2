package server

// Client-to-server message types.
const (
	MsgJoin  = "join"
	MsgMove  = "move"
	MsgSpawn = "spawn"
)

// Server-to-client message types.
const (
	MsgWelcome  = "welcome"
	MsgSnapshot = "snapshot"
	MsgError    = "error"
)

// ClientMessage is any message a session sends over its socket.
type ClientMessage struct {
	Type string `json:"type"`

	// join
	Name string `json:"name,omitempty"`

	// move: desired velocity for the session's player entity
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`
	Z float64 `json:"z,omitempty"`

	// spawn: prefab file to instantiate
	Prefab string `json:"prefab,omitempty"`
}

// WelcomeMessage is sent once after a successful join.
type WelcomeMessage struct {
	Type       string `json:"type"`
	SessionID  string `json:"session_id"`
	Entity     uint64 `json:"entity"`
	TickRate   int    `json:"tick_rate"`
	Compressed bool   `json:"compressed"`
}

// ErrorMessage reports a rejected client message.
type ErrorMessage struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// EntitySnapshot is one entity's replicated state.
type EntitySnapshot struct {
	ID       uint64   `json:"id"`
	Name     string   `json:"name,omitempty"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Z        float64  `json:"z"`
	Yaw      float64  `json:"yaw,omitempty"`
	VX       float64  `json:"vx,omitempty"`
	VY       float64  `json:"vy,omitempty"`
	VZ       float64  `json:"vz,omitempty"`
	Touching []uint64 `json:"touching,omitempty"`
}

// SnapshotMessage is the periodic world state broadcast.
type SnapshotMessage struct {
	Type     string           `json:"type"`
	Tick     uint64           `json:"tick"`
	Entities []EntitySnapshot `json:"entities"`
}
