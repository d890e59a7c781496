// Package mpv talks to a running mpv over its JSON IPC socket so the trimmer
// can loop the selected range while it is being edited.
package mpv

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"
)

// DefaultSocketPath is where the preview player listens unless configured otherwise.
const DefaultSocketPath = "/tmp/clip-trimmer-mpv.sock"

const (
	dialTimeout  = 2 * time.Second
	replyTimeout = 3 * time.Second
)

var (
	ErrNotConnected   = errors.New("mpv: not connected")
	ErrSocketNotFound = errors.New("mpv: no player listening (start one with clip-trimmer preview)")
)

type ipcRequest struct {
	Command   []any  `json:"command"`
	RequestID uint64 `json:"request_id"`
}

// ipcResponse is either a reply (request_id set) or an unsolicited event.
type ipcResponse struct {
	Data      any    `json:"data"`
	RequestID uint64 `json:"request_id"`
	Error     string `json:"error"`
}

// Client holds one connection to the player. Calls are serialized; mpv
// answers in order but interleaves events, which are discarded.
type Client struct {
	socketPath string

	mu     sync.Mutex
	conn   net.Conn
	lines  *bufio.Reader
	nextID uint64
}

// NewClient returns an unconnected client. An empty path means DefaultSocketPath.
func NewClient(socketPath string) *Client {
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}
	return &Client{socketPath: socketPath}
}

func (c *Client) SocketPath() string { return c.socketPath }

// Connect dials the socket. Connecting twice is a no-op.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return nil
	}
	conn, err := net.DialTimeout("unix", c.socketPath, dialTimeout)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrSocketNotFound, c.socketPath)
	}
	c.conn, c.lines = conn, bufio.NewReader(conn)
	return nil
}

func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn, c.lines = nil, nil
	return err
}

// GetProperty reads a player property such as "time-pos".
func (c *Client) GetProperty(name string) (any, error) {
	return c.call("get_property", name)
}

func (c *Client) SetProperty(name string, value any) error {
	_, err := c.call("set_property", name, value)
	return err
}

// GetTimePos is the playhead position in seconds.
func (c *Client) GetTimePos() (float64, error) {
	return c.seconds("time-pos")
}

func (c *Client) GetDuration() (float64, error) {
	return c.seconds("duration")
}

func (c *Client) GetPaused() (bool, error) {
	v, err := c.GetProperty("pause")
	if err != nil {
		return false, err
	}
	if paused, ok := v.(bool); ok {
		return paused, nil
	}
	return false, fmt.Errorf("mpv: pause is %T, not bool", v)
}

// Seek moves the playhead to an absolute, frame-exact position.
func (c *Client) Seek(seconds float64) error {
	_, err := c.call("seek", seconds, "absolute+exact")
	return err
}

// SetABLoop makes the player repeat [a, b].
func (c *Client) SetABLoop(a, b float64) error {
	return c.setLoop(a, b)
}

func (c *Client) ClearABLoop() error {
	return c.setLoop("no", "no")
}

func (c *Client) SetMute(mute bool) error {
	return c.SetProperty("mute", mute)
}

func (c *Client) setLoop(a, b any) error {
	if err := c.SetProperty("ab-loop-a", a); err != nil {
		return err
	}
	return c.SetProperty("ab-loop-b", b)
}

func (c *Client) seconds(property string) (float64, error) {
	v, err := c.GetProperty(property)
	if err != nil {
		return 0, err
	}
	// encoding/json decodes every number into float64.
	if f, ok := v.(float64); ok {
		return f, nil
	}
	return 0, fmt.Errorf("mpv: %s is %T, not a number", property, v)
}

// call writes one request line and reads lines until the matching reply.
func (c *Client) call(name string, args ...any) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil, ErrNotConnected
	}

	c.nextID++
	req := ipcRequest{Command: append([]any{name}, args...), RequestID: c.nextID}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("mpv: encode %s: %w", name, err)
	}
	_ = c.conn.SetDeadline(time.Now().Add(replyTimeout))
	defer c.conn.SetDeadline(time.Time{})

	if _, err := c.conn.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("mpv: send %s: %w", name, err)
	}
	for {
		line, err := c.lines.ReadBytes('\n')
		if err != nil {
			return nil, fmt.Errorf("mpv: read reply to %s: %w", name, err)
		}
		var resp ipcResponse
		if json.Unmarshal(line, &resp) != nil || resp.RequestID != req.RequestID {
			continue
		}
		if resp.Error != "" && resp.Error != "success" {
			return nil, fmt.Errorf("mpv: %s", resp.Error)
		}
		return resp.Data, nil
	}
}
