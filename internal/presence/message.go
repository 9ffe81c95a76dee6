package presence

// Event names exchanged with room clients.
const (
	EventJoin         = "join"
	EventJoined       = "joined"
	EventCodeChange   = "code-change"
	EventSyncCode     = "sync-code"
	EventDisconnected = "disconnected"
)

// Message is one outbound frame: an event name plus its payload.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Client describes a room member as announced to the others.
type Client struct {
	SocketID string `json:"socketId"`
	Username string `json:"username"`
}

// JoinedPayload announces a join to every member of the room.
type JoinedPayload struct {
	Clients  []Client `json:"clients"`
	Username string   `json:"username"`
	SocketID string   `json:"socketId"`
}

// CodePayload carries an editor buffer.
type CodePayload struct {
	Code string `json:"code"`
}

// DisconnectedPayload announces a departure.
type DisconnectedPayload struct {
	SocketID string `json:"socketId"`
	Username string `json:"username"`
}
