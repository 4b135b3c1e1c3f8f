package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/muurk/aquaclean/internal/logging"
	"github.com/muurk/aquaclean/internal/protocol"
	"github.com/muurk/aquaclean/internal/transport"
	"go.uber.org/zap"
)

const (
	// DefaultResponseTimeout is how long a request waits for its response
	// before reporting no-response.
	DefaultResponseTimeout = 10 * time.Second
)

// ErrNoResponse reports that the appliance did not answer a request within
// the timeout. This is a normal outcome, not a link failure: firmware
// variants simply ignore requests for features they lack, so callers use
// it for feature probing as well as command confirmation.
var ErrNoResponse = errors.New("no response from appliance")

// Client exchanges requests and responses with one appliance over a
// Transport.
//
// Exactly one request is outstanding at a time. The request mutex
// serializes callers at the API boundary; underneath, a single response
// slot pairs the in-flight request with the next completed inbound
// message. Issuing a new request replaces any previous slot (last write
// wins), so an orphaned earlier waiter can only time out, never observe a
// torn result.
type Client struct {
	transport transport.Transport
	timeout   time.Duration

	// reqMu enforces the single-outstanding-request discipline for all
	// exported operations.
	reqMu sync.Mutex

	// mu guards the response slot and the collector, which are shared
	// with the notification path.
	mu        sync.Mutex
	pending   chan []byte
	collector *protocol.FrameCollector

	state *State
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the response timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// New creates a client on top of an open transport and subscribes to its
// notifications.
func New(t transport.Transport, opts ...Option) *Client {
	c := &Client{
		transport: t,
		timeout:   DefaultResponseTimeout,
		collector: protocol.NewFrameCollector(),
		state:     NewState(),
	}
	for _, opt := range opts {
		opt(c)
	}

	t.Subscribe(c.handleNotification)
	return c
}

// State returns the client's device-state tracker.
func (c *Client) State() *State {
	return c.state
}

// handleNotification is the inbound path: unstuff, parse, reassemble, and
// deliver a completed message to the waiting request. Errors are logged
// and the packet discarded; they never disturb pending fragments of other
// frame kinds or future notifications.
func (c *Client) handleNotification(data []byte) {
	frame, err := protocol.DecodeFrame(data)
	if err != nil {
		logging.Warn("Discarding undecodable notification",
			zap.Error(err),
			zap.Int("length", len(data)),
		)
		return
	}

	logging.Debug("Frame received", zap.String("frame", frame.String()))

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.collector.AddFrame(frame) {
		return
	}

	for {
		msg, ok := c.collector.CompleteMessage()
		if !ok {
			return
		}
		c.deliverLocked(msg)
	}
}

// deliverLocked hands a completed message to the current response slot.
// Without a waiter the message is an unsolicited status push; it is logged
// and dropped, because snapshots are only trusted from explicit reads.
func (c *Client) deliverLocked(msg []byte) {
	if c.pending == nil {
		logging.Debug("Unsolicited message dropped", zap.Int("length", len(msg)))
		return
	}
	c.pending <- msg // buffered; the slot takes exactly one message
	c.pending = nil
}

// begin replaces the response slot for a new request. A previous waiter
// whose slot is replaced can only time out: last write wins.
func (c *Client) begin() chan []byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan []byte, 1)
	c.pending = ch
	return ch
}

// finish clears the slot if it still belongs to this request.
func (c *Client) finish(ch chan []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == ch {
		c.pending = nil
	}
}

// sendFrame stuffs and transmits a request frame, then suspends until the
// response slot fires or the timeout elapses. Timeout surfaces as
// ErrNoResponse; the appliance may still act on the command afterwards.
func (c *Client) sendFrame(ctx context.Context, f *protocol.Frame) ([]byte, error) {
	ch := c.begin()
	packet := protocol.EncodeFrame(f)

	if err := c.transport.Write(ctx, packet); err != nil {
		c.finish(ch)
		return nil, fmt.Errorf("write request: %w", err)
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case msg := <-ch:
		return msg, nil
	case <-timer.C:
		c.finish(ch)
		return nil, ErrNoResponse
	case <-ctx.Done():
		c.finish(ch)
		return nil, ctx.Err()
	}
}

// request runs one serialized request/response exchange.
func (c *Client) request(ctx context.Context, f *protocol.Frame) ([]byte, error) {
	c.reqMu.Lock()
	defer c.reqMu.Unlock()
	return c.sendFrame(ctx, f)
}

// Identify requests the appliance's identification record.
func (c *Client) Identify(ctx context.Context) (protocol.DeviceIdentification, error) {
	msg, err := c.request(ctx, protocol.NewDeviceInfoRequest())
	if err != nil {
		return protocol.DeviceIdentification{}, err
	}

	ident := protocol.ParseDeviceIdentification(msg)
	c.state.SetIdentification(ident)

	logging.Info("Device identified",
		zap.String("serial", ident.SerialNumber),
		zap.String("firmware", ident.FirmwareVersion),
	)
	return ident, nil
}

// ReadStatus requests a fresh system-parameters snapshot. The confirmed
// state is replaced wholesale and any tentative toggles are reconciled.
func (c *Client) ReadStatus(ctx context.Context) (protocol.SystemParameters, error) {
	msg, err := c.request(ctx, protocol.NewSystemStatusRequest())
	if err != nil {
		return protocol.SystemParameters{}, err
	}

	params := protocol.ParseSystemParameters(msg)
	c.state.ApplyStatus(params)
	return params, nil
}

// SendCommand issues a high-level command and waits for the acknowledgment
// message. ErrNoResponse means the command went unacknowledged; it may
// still take effect on the appliance.
func (c *Client) SendCommand(ctx context.Context, cmd protocol.Command) error {
	_, err := c.request(ctx, protocol.NewCommandRequest(cmd))
	if err != nil {
		return err
	}

	logging.Info("Command acknowledged", zap.String("command", cmd.String()))
	return nil
}

// ReadDataPoint reads one data point and returns the raw response bytes.
func (c *Client) ReadDataPoint(ctx context.Context, dp protocol.DataPoint) ([]byte, error) {
	if !dp.Readable() {
		return nil, fmt.Errorf("data point %d is not readable", dp)
	}
	return c.request(ctx, protocol.NewDataPointRead(dp))
}

// WriteDataPoint writes raw value bytes to one data point and returns the
// raw response bytes.
func (c *Client) WriteDataPoint(ctx context.Context, dp protocol.DataPoint, value []byte) ([]byte, error) {
	if !dp.Writable() {
		return nil, fmt.Errorf("data point %d is not writable", dp)
	}

	f, err := protocol.NewDataPointWrite(dp, value)
	if err != nil {
		return nil, err
	}
	return c.request(ctx, f)
}

// Close shuts the underlying transport down.
func (c *Client) Close() error {
	return c.transport.Close()
}
