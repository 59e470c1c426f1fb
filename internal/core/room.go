package core

// UserRoom returns the personal delivery room name for a user. Every device
// a user joins with lands in the same room, so "deliver to all devices" and
// "is this user reachable" are the same mechanism.
func UserRoom(userID string) string {
	return "user_" + userID
}

// PostRoom returns the fan-out room name for a post's comment/like events.
func PostRoom(postID string) string {
	return "post_" + postID
}

// Room groups clients subscribed to the same channel.
type Room struct {
	Name    string
	clients map[*Client]struct{}
}

func newRoom(name string) *Room {
	return &Room{
		Name:    name,
		clients: make(map[*Client]struct{}),
	}
}

func (r *Room) add(c *Client) bool {
	if _, exists := r.clients[c]; exists {
		return false
	}
	r.clients[c] = struct{}{}
	return true
}

func (r *Room) remove(c *Client) bool {
	if _, exists := r.clients[c]; !exists {
		return false
	}
	delete(r.clients, c)
	return true
}

// broadcast sends an event to all clients in the room.
func (r *Room) broadcast(event *Event) {
	for client := range r.clients {
		select {
		case client.Events <- event:
		default:
			// Drop if slow consumer.
		}
	}
}

func (r *Room) empty() bool {
	return len(r.clients) == 0
}

// Router owns the room membership indices. Rooms come into existence on
// first join and disappear when the last member leaves; there is no explicit
// room lifecycle. The router is mutated only from the hub goroutine.
type Router struct {
	rooms map[string]*Room
}

// NewRouter constructs a router with no rooms.
func NewRouter() *Router {
	return &Router{rooms: make(map[string]*Room)}
}

// Join adds the connection to the named room, creating it on demand.
// Joining a room twice is a no-op.
func (rt *Router) Join(c *Client, name string) {
	room, ok := rt.rooms[name]
	if !ok {
		room = newRoom(name)
		rt.rooms[name] = room
	}
	if room.add(c) {
		c.Rooms[name] = struct{}{}
	}
}

// Leave removes the connection from the named room, dropping the room once
// empty. Leaving a room the connection is not in is a no-op.
func (rt *Router) Leave(c *Client, name string) {
	room, ok := rt.rooms[name]
	if !ok {
		return
	}
	if room.remove(c) {
		delete(c.Rooms, name)
	}
	if room.empty() {
		delete(rt.rooms, name)
	}
}

// LeaveAll removes the connection from every room it joined.
func (rt *Router) LeaveAll(c *Client) {
	for name := range c.Rooms {
		rt.Leave(c, name)
	}
}

// Broadcast delivers the event to every member of the named room.
// An empty or missing room is a silent no-op; callers decide whether that
// means "go to the offline buffer".
func (rt *Router) Broadcast(name string, event *Event) {
	if room, ok := rt.rooms[name]; ok {
		room.broadcast(event)
	}
}

// BroadcastToUser delivers the event to every device in the user's personal
// room and reports whether anyone was there to receive it.
func (rt *Router) BroadcastToUser(userID string, event *Event) bool {
	room, ok := rt.rooms[UserRoom(userID)]
	if !ok || room.empty() {
		return false
	}
	room.broadcast(event)
	return true
}
