package core

import "sync"

// Client is a live transport connection as seen by the core layer.
// UserID stays empty until the connection issues a join command.
type Client struct {
	ID       string
	UserID   string
	Commands chan *Command
	Events   chan *Event
	Rooms    map[string]struct{}

	closeOnce sync.Once
}

// NewClient constructs a client with initialized channels.
func NewClient(id string) *Client {
	return &Client{
		ID:       id,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 32),
		Rooms:    make(map[string]struct{}),
	}
}

// close shuts the client's channels exactly once. Called by the hub after
// the connection left every room and the presence registry.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.Commands)
		close(c.Events)
	})
}
