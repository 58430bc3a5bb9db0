package wsserver

import (
	"net"
	"sync"
	"time"
)

// ClientConnection is one connected browser. The server's registry is the
// only owner; the connection is removed by the cleanup sweep, on read-loop
// exit, or on a failed write.
type ClientConnection struct {
	ID            string
	ConnectedAt   time.Time
	Authenticated bool

	conn net.Conn

	mu           sync.Mutex
	lastActivity time.Time
	userAgent    string
	currentURL   string
}

func newClientConnection(id string, conn net.Conn, userAgent string) *ClientConnection {
	now := time.Now()
	return &ClientConnection{
		ID:           id,
		ConnectedAt:  now,
		conn:         conn,
		lastActivity: now,
		userAgent:    userAgent,
	}
}

// send writes one already-encoded frame. Writes to the same client are
// serialized; the registry lock is never held across this call.
func (c *ClientConnection) send(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.conn.Write(frame)
	return err
}

// touch records inbound activity.
func (c *ClientConnection) touch() {
	c.mu.Lock()
	c.lastActivity = time.Now()
	c.mu.Unlock()
}

// LastActivity returns the instant of the last inbound message.
func (c *ClientConnection) LastActivity() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActivity
}

// UserAgent returns the client's reported user agent.
func (c *ClientConnection) UserAgent() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userAgent
}

// CurrentURL returns the page the client last reported.
func (c *ClientConnection) CurrentURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentURL
}

func (c *ClientConnection) setInfo(userAgent, currentURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if userAgent != "" {
		c.userAgent = userAgent
	}
	if currentURL != "" {
		c.currentURL = currentURL
	}
}

func (c *ClientConnection) close() {
	_ = c.conn.Close()
}
