package transport

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muurk/aquaclean/internal/logging"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the bridge
	writeWait = 10 * time.Second

	// Time allowed between inbound messages before the read pump gives up
	readWait = 120 * time.Second

	// Maximum notification size accepted from the bridge. The appliance
	// link MTU is ~20 bytes; anything near this limit is garbage.
	maxMessageSize = 4096

	// DefaultDialTimeout bounds the initial bridge handshake
	DefaultDialTimeout = 15 * time.Second
)

// WSTransport is a Transport over a BLE-to-WebSocket bridge. The bridge
// relays each appliance notification as one binary WebSocket message and
// forwards binary messages it receives to the appliance link unchanged.
type WSTransport struct {
	conn *websocket.Conn
	addr string

	mu       sync.Mutex // guards conn writes and closed
	closed   bool
	notifyMu sync.RWMutex
	notify   func(data []byte)

	done chan struct{}
}

// DialBridge connects to a bridge endpoint (host:port) and starts the
// read pump. Notifications are dropped until Subscribe installs a callback.
func DialBridge(ctx context.Context, addr string) (*WSTransport, error) {
	u := url.URL{Scheme: "ws", Host: addr, Path: "/link"}

	dialer := websocket.Dialer{HandshakeTimeout: DefaultDialTimeout}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial bridge %s: %w", addr, err)
	}

	conn.SetReadLimit(maxMessageSize)

	t := &WSTransport{
		conn: conn,
		addr: addr,
		done: make(chan struct{}),
	}

	logging.LogConnection(addr, "bridge_connected")
	go t.readPump()

	return t, nil
}

// Write sends one stuffed packet to the bridge as a binary message.
func (t *WSTransport) Write(ctx context.Context, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}

	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := t.conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}

	logging.LogRawBytes("Bridge write", data)
	if err := t.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return fmt.Errorf("write to bridge %s: %w", t.addr, err)
	}
	return nil
}

// Subscribe installs the notification callback, replacing any previous one.
func (t *WSTransport) Subscribe(fn func(data []byte)) {
	t.notifyMu.Lock()
	t.notify = fn
	t.notifyMu.Unlock()
}

// Close shuts the connection down and stops the read pump.
func (t *WSTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	// Best effort close handshake; the read pump exits on the error.
	_ = t.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))

	err := t.conn.Close()
	<-t.done
	logging.LogConnection(t.addr, "bridge_closed")
	return err
}

// Done is closed when the read pump has exited, whether from Close or a
// link failure.
func (t *WSTransport) Done() <-chan struct{} {
	return t.done
}

// readPump delivers inbound binary messages to the subscriber until the
// connection dies. Text and control messages from the bridge are ignored.
func (t *WSTransport) readPump() {
	defer close(t.done)

	for {
		if err := t.conn.SetReadDeadline(time.Now().Add(readWait)); err != nil {
			return
		}

		msgType, data, err := t.conn.ReadMessage()
		if err != nil {
			t.mu.Lock()
			closed := t.closed
			t.mu.Unlock()
			if !closed {
				logging.Info("Bridge connection lost",
					zap.String("addr", t.addr),
					zap.Error(err),
				)
			}
			return
		}

		if msgType != websocket.BinaryMessage {
			logging.Debug("Ignoring non-binary bridge message",
				zap.String("addr", t.addr),
				zap.Int("type", msgType),
			)
			continue
		}

		logging.LogNotification(t.addr, data)

		t.notifyMu.RLock()
		fn := t.notify
		t.notifyMu.RUnlock()
		if fn != nil {
			fn(data)
		}
	}
}

// compile-time interface check
var _ Transport = (*WSTransport)(nil)
