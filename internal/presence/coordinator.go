// Package presence tracks who is in which collaborative room and relays editor events
// between room members.
package presence

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Conn is a live client connection able to receive messages. Send is called with the
// coordinator lock held, so it must not block and must not call back into the Coordinator.
type Conn interface {
	ID() string
	Send(Message) error
}

type delivery struct {
	to  Conn
	msg Message
}

// Coordinator owns the presence state of every room. The zero value is not usable; create
// one with NewCoordinator.
type Coordinator struct {
	mu     sync.Mutex
	conns  map[string]Conn
	names  map[string]string
	rooms  map[string]map[string]struct{}
	joined map[string]map[string]struct{} // connection id -> room ids
	logger *zap.Logger
}

// NewCoordinator creates an empty coordinator.
func NewCoordinator(logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		conns:  make(map[string]Conn),
		names:  make(map[string]string),
		rooms:  make(map[string]map[string]struct{}),
		joined: make(map[string]map[string]struct{}),
		logger: logger,
	}
}

// Register makes conn addressable for unicast. Nothing is broadcast.
func (c *Coordinator) Register(conn Conn) {
	if conn == nil || conn.ID() == "" {
		return
	}
	c.mu.Lock()
	c.conns[conn.ID()] = conn
	c.mu.Unlock()
}

// Join puts connID into roomID under displayName and announces the new member list to the
// whole room, joiner included. Empty room or name is ignored.
func (c *Coordinator) Join(connID, roomID, displayName string) {
	if roomID == "" || displayName == "" {
		return
	}

	c.mu.Lock()
	if _, ok := c.conns[connID]; !ok {
		c.mu.Unlock()
		c.logger.Debug("join from unregistered connection", zap.String("conn_id", connID))
		return
	}
	c.names[connID] = displayName
	members, ok := c.rooms[roomID]
	if !ok {
		members = make(map[string]struct{})
		c.rooms[roomID] = members
	}
	members[connID] = struct{}{}
	rooms, ok := c.joined[connID]
	if !ok {
		rooms = make(map[string]struct{})
		c.joined[connID] = rooms
	}
	rooms[roomID] = struct{}{}

	msg := Message{Event: EventJoined, Data: JoinedPayload{
		Clients:  c.clientsLocked(roomID),
		Username: displayName,
		SocketID: connID,
	}}
	out := c.fanoutLocked(roomID, "", msg)
	c.deliverLocked(out)
	c.mu.Unlock()

	c.logger.Debug("connection joined room",
		zap.String("conn_id", connID),
		zap.String("room_id", roomID),
		zap.Int("members", len(out)))
}

// CodeChange relays code to every member of roomID except the sender. Senders that are not
// members of the room are ignored.
func (c *Coordinator) CodeChange(connID, roomID, code string) {
	c.mu.Lock()
	if _, ok := c.rooms[roomID][connID]; !ok {
		c.mu.Unlock()
		return
	}
	c.deliverLocked(c.fanoutLocked(roomID, connID, Message{Event: EventCodeChange, Data: CodePayload{Code: code}}))
	c.mu.Unlock()
}

// SyncCode sends code to targetID only. The requester must have joined a room.
func (c *Coordinator) SyncCode(requesterID, targetID, code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.joined[requesterID]) == 0 {
		return
	}
	target, ok := c.conns[targetID]
	if !ok {
		return
	}
	c.deliverLocked([]delivery{{to: target, msg: Message{Event: EventCodeChange, Data: CodePayload{Code: code}}}})
}

// Disconnect drops connID from every room, telling each room's remaining members once.
func (c *Coordinator) Disconnect(connID string) {
	c.mu.Lock()
	name := c.names[connID]
	var out []delivery
	for roomID := range c.joined[connID] {
		members := c.rooms[roomID]
		delete(members, connID)
		if len(members) == 0 {
			delete(c.rooms, roomID)
			continue
		}
		msg := Message{Event: EventDisconnected, Data: DisconnectedPayload{SocketID: connID, Username: name}}
		out = append(out, c.fanoutLocked(roomID, connID, msg)...)
	}
	delete(c.joined, connID)
	delete(c.names, connID)
	delete(c.conns, connID)
	c.deliverLocked(out)
	c.mu.Unlock()
}

// Members returns the connection ids currently in roomID, sorted.
func (c *Coordinator) Members(roomID string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.rooms[roomID]))
	for id := range c.rooms[roomID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Rooms returns the room ids connID has joined, sorted.
func (c *Coordinator) Rooms(connID string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.joined[connID]))
	for id := range c.joined[connID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Name returns the display name registered for connID.
func (c *Coordinator) Name(connID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	name, ok := c.names[connID]
	return name, ok
}

// RoomCount reports the number of non-empty rooms.
func (c *Coordinator) RoomCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rooms)
}

// Close forgets every connection and room without notifying anyone.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conns = make(map[string]Conn)
	c.names = make(map[string]string)
	c.rooms = make(map[string]map[string]struct{})
	c.joined = make(map[string]map[string]struct{})
}

func (c *Coordinator) clientsLocked(roomID string) []Client {
	clients := make([]Client, 0, len(c.rooms[roomID]))
	for id := range c.rooms[roomID] {
		clients = append(clients, Client{SocketID: id, Username: c.names[id]})
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].SocketID < clients[j].SocketID })
	return clients
}

func (c *Coordinator) fanoutLocked(roomID, except string, msg Message) []delivery {
	out := make([]delivery, 0, len(c.rooms[roomID]))
	for id := range c.rooms[roomID] {
		if id == except {
			continue
		}
		conn, ok := c.conns[id]
		if !ok {
			continue
		}
		out = append(out, delivery{to: conn, msg: msg})
	}
	return out
}

// deliverLocked sends while c.mu is held so every member sees events in the order the
// membership changes were applied.
func (c *Coordinator) deliverLocked(out []delivery) {
	for _, d := range out {
		if err := d.to.Send(d.msg); err != nil {
			c.logger.Debug("dropping message",
				zap.String("conn_id", d.to.ID()),
				zap.String("event", d.msg.Event),
				zap.Error(err))
		}
	}
}
