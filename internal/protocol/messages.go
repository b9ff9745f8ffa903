package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	AgentName       string     `json:"agent_name"`
	Auth            *HelloAuth `json:"auth,omitempty"`
}

type HelloAuth struct {
	ResumeToken string `json:"resume_token,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	AgentID         string      `json:"agent_id"`
	ResumeToken     string      `json:"resume_token"`
	WorldParams     WorldParams `json:"world_params"`
}

type WorldParams struct {
	TickRateHz int    `json:"tick_rate_hz"`
	ChunkSize  [3]int `json:"chunk_size"`
	ChunksY    int    `json:"chunks_y"`
	ViewRadius int64  `json:"view_radius"`
	Seed       int64  `json:"seed"`
}

// MOVE (client -> server): teleport to an absolute block position.
type MoveMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	Pos             [3]int64 `json:"pos"`
}

// ACCEPT_CHUNKS (client -> server): grants the server permission to
// send up to Amount more ADD_CHUNK messages.
type AcceptChunksMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Amount          uint32 `json:"amount"`
}

// BYE (client -> server)
type ByeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
}

// ADD_CHUNK (server -> client): a chunk entered the client's loaded
// set. ClientsideIdx is the slot the client must store it under;
// REMOVE_CHUNK refers back to it.
type AddChunkMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	Pos             [3]int64 `json:"pos"`
	ClientsideIdx   int      `json:"clientside_idx"`
	Blocks          string   `json:"blocks"` // EncodeBlocks output
}

// REMOVE_CHUNK (server -> client)
type RemoveChunkMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	Pos             [3]int64 `json:"pos"`
	ClientsideIdx   int      `json:"clientside_idx"`
}

// ERROR (server -> client), sent before the server closes the
// connection on a protocol violation.
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}
