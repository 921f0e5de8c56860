// internal/motion/hans/client.go

// Package hans talks to an Elfin-series controller over its comma-separated
// TCP command interface. One command is in flight at a time.
package hans

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/FrankJIE09/Hans-robot/internal/log"
	"github.com/FrankJIE09/Hans-robot/internal/motion"
)

const (
	cmdMoveL          = "MoveL"
	cmdReadRobotState = "ReadRobotState"
	cmdReadActPos     = "ReadActPos"

	replyOK   = "OK"
	replyFail = "Fail"

	terminator = ';'
)

// Fixed MoveL trailer: no seek, no IO bit, state 1, command id 1.
const (
	moveIsSeek = 0
	moveBit    = 0
	moveState  = 1
	moveCmdID  = 1
)

type Config struct {
	Endpoint string
	RobotID  int
	Timeout  time.Duration
}

// ErrDisconnected is returned when the connection was dropped and cannot be re-established.
var ErrDisconnected = errors.New("hans: not connected")

// Client is a persistent connection to one controller.
//
// Replies carry no request id, so a failed exchange leaves the stream in an
// unknown position. The client then drops the connection and redials on the
// next call instead of reading a stale reply.
type Client struct {
	mu       sync.Mutex
	conn     net.Conn
	reader   *bufio.Reader
	endpoint string
	robotID  int
	timeout  time.Duration
}

// Dial connects to cfg.Endpoint.
func Dial(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("hans: endpoint required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}

	conn, err := net.DialTimeout("tcp", cfg.Endpoint, cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("hans: dial: %w", err)
	}

	log.Info("hans: connected", "endpoint", cfg.Endpoint, "robot", cfg.RobotID)
	return newClient(conn, cfg), nil
}

// newClient wraps an established connection. With an empty cfg.Endpoint a
// dropped connection is not redialed.
func newClient(conn net.Conn, cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	return &Client{
		conn:     conn,
		reader:   bufio.NewReader(conn),
		endpoint: cfg.Endpoint,
		robotID:  cfg.RobotID,
		timeout:  cfg.Timeout,
	}
}

func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn, c.reader = nil, nil
	return err
}

//
// Implements motion.Service
//

// MoveLinear reads the current joints as seek reference, then issues MoveL.
func (c *Client) MoveLinear(ctx context.Context, target motion.Pose, p motion.MoveParams) error {
	joints, err := c.JointPositions(ctx)
	if err != nil {
		return err
	}

	args := make([]string, 0, 22)
	args = append(args, strconv.Itoa(c.robotID))
	for _, v := range target.Array() {
		args = append(args, formatFloat(v))
	}
	for _, v := range joints {
		args = append(args, formatFloat(v))
	}
	args = append(args,
		p.TCP,
		p.UCS,
		formatFloat(p.Speed),
		formatFloat(p.Acceleration),
		formatFloat(p.Radius),
		strconv.Itoa(moveIsSeek),
		strconv.Itoa(moveBit),
		strconv.Itoa(moveState),
		strconv.Itoa(moveCmdID),
	)

	_, err = c.call(ctx, cmdMoveL, args...)
	return err
}

// MotionState reports Done once the controller is no longer moving.
// A raised error state surfaces as *motion.StatusError with the controller's code.
func (c *Client) MotionState(ctx context.Context) (motion.State, error) {
	fields, err := c.call(ctx, cmdReadRobotState, strconv.Itoa(c.robotID))
	if err != nil {
		return motion.StatePending, err
	}

	// moving, enabled, error state, error code, ...
	v, err := parseInts(fields, 4)
	if err != nil {
		return motion.StatePending, fmt.Errorf("hans: %s: %w", cmdReadRobotState, err)
	}
	if v[2] != 0 {
		return motion.StatePending, &motion.StatusError{Op: cmdReadRobotState, Code: v[3]}
	}
	if v[0] != 0 {
		return motion.StatePending, nil
	}
	return motion.StateDone, nil
}

func (c *Client) JointPositions(ctx context.Context) (motion.Joints, error) {
	v, err := c.readActPos(ctx)
	if err != nil {
		return motion.Joints{}, err
	}
	var j motion.Joints
	copy(j[:], v[0:6])
	return j, nil
}

// Telemetry returns joints and TCP pose from a single ReadActPos sample.
func (c *Client) Telemetry(ctx context.Context) (motion.Snapshot, error) {
	v, err := c.readActPos(ctx)
	if err != nil {
		return motion.Snapshot{}, err
	}
	tcp, err := motion.PoseFromSlice(v[6:12])
	if err != nil {
		return motion.Snapshot{}, err
	}
	var s motion.Snapshot
	copy(s.Joints[:], v[0:6])
	s.TCP = tcp
	return s, nil
}

func (c *Client) TCPPose(ctx context.Context) (motion.Pose, error) {
	v, err := c.readActPos(ctx)
	if err != nil {
		return motion.Pose{}, err
	}
	return motion.PoseFromSlice(v[6:12])
}

// readActPos returns joints followed by the TCP pose in the base frame.
func (c *Client) readActPos(ctx context.Context) ([]float64, error) {
	fields, err := c.call(ctx, cmdReadActPos, strconv.Itoa(c.robotID))
	if err != nil {
		return nil, err
	}
	v, err := parseFloats(fields, 12)
	if err != nil {
		return nil, fmt.Errorf("hans: %s: %w", cmdReadActPos, err)
	}
	return v, nil
}

//
// ---- wire ----
//

// call sends "<cmd>,<args...>,;" and returns the payload fields of an OK reply.
func (c *Client) call(ctx context.Context, cmd string, args ...string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		if err := c.redial(); err != nil {
			return nil, fmt.Errorf("hans: %s: %w", cmd, err)
		}
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = c.conn.SetDeadline(deadline)

	if err := writeAll(c.conn, encodeCommand(cmd, args)); err != nil {
		c.drop(cmd, err)
		return nil, fmt.Errorf("hans: %s: write: %w", cmd, err)
	}

	line, err := c.reader.ReadString(terminator)
	if err != nil {
		c.drop(cmd, err)
		return nil, fmt.Errorf("hans: %s: read: %w", cmd, err)
	}

	fields, err := parseReply(cmd, line)
	if err != nil {
		// a Fail reply still answers this command; anything else means the stream is out of step
		var se *motion.StatusError
		if !errors.As(err, &se) {
			c.drop(cmd, err)
		}
		return nil, err
	}
	return fields, nil
}

// drop closes a connection whose stream position is unknown. Caller holds mu.
func (c *Client) drop(cmd string, cause error) {
	log.Warn("hans: dropping connection", "endpoint", c.endpoint, "cmd", cmd, "err", cause)
	_ = c.conn.Close()
	c.conn, c.reader = nil, nil
}

// redial replaces a dropped connection. Caller holds mu.
func (c *Client) redial() error {
	if c.endpoint == "" {
		return ErrDisconnected
	}
	conn, err := net.DialTimeout("tcp", c.endpoint, c.timeout)
	if err != nil {
		return fmt.Errorf("%w: redial: %v", ErrDisconnected, err)
	}
	log.Info("hans: reconnected", "endpoint", c.endpoint)
	c.conn = conn
	c.reader = bufio.NewReader(conn)
	return nil
}

func encodeCommand(cmd string, args []string) []byte {
	var b strings.Builder
	b.WriteString(cmd)
	b.WriteByte(',')
	for _, a := range args {
		b.WriteString(a)
		b.WriteByte(',')
	}
	b.WriteByte(terminator)
	return []byte(b.String())
}

func parseReply(cmd, line string) ([]string, error) {
	line = strings.TrimSpace(line)
	line = strings.TrimSuffix(line, string(terminator))
	line = strings.TrimSuffix(line, ",")

	parts := strings.Split(line, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 2 || parts[0] != cmd {
		return nil, fmt.Errorf("hans: %s: unexpected reply %q", cmd, line)
	}

	switch parts[1] {
	case replyOK:
		return parts[2:], nil
	case replyFail:
		code := -1
		if len(parts) > 2 {
			if n, err := strconv.Atoi(parts[2]); err == nil {
				code = n
			}
		}
		return nil, &motion.StatusError{Op: cmd, Code: code}
	default:
		return nil, fmt.Errorf("hans: %s: unknown status %q", cmd, parts[1])
	}
}

//
// ---- helpers ----
//

func writeAll(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		b = b[n:]
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d fields, got %d", n, len(fields))
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func parseInts(fields []string, n int) ([]int, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d fields, got %d", n, len(fields))
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		v, err := strconv.Atoi(fields[i])
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
