package transport

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// bridgeServer is a minimal in-process stand-in for a BLE bridge: it
// echoes every binary message back prefixed with 0xEE.
func bridgeServer(t *testing.T) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/link" {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if msgType != websocket.BinaryMessage {
				continue
			}
			reply := append([]byte{0xEE}, data...)
			if err := conn.WriteMessage(websocket.BinaryMessage, reply); err != nil {
				return
			}
		}
	}))
}

func dialTest(t *testing.T, srv *httptest.Server) *WSTransport {
	t.Helper()

	addr := strings.TrimPrefix(srv.URL, "http://")
	tr, err := DialBridge(context.Background(), addr)
	if err != nil {
		t.Fatalf("DialBridge() error = %v", err)
	}
	return tr
}

func TestWSTransport_WriteAndNotify(t *testing.T) {
	srv := bridgeServer(t)
	defer srv.Close()

	tr := dialTest(t, srv)
	defer tr.Close()

	received := make(chan []byte, 1)
	tr.Subscribe(func(data []byte) {
		received <- data
	})

	packet := []byte{0x02, 0x16, 0x00}
	if err := tr.Write(context.Background(), packet); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	select {
	case data := <-received:
		want := append([]byte{0xEE}, packet...)
		if !bytes.Equal(data, want) {
			t.Errorf("notification = %x, want %x", data, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no notification delivered")
	}
}

func TestWSTransport_NotificationOrder(t *testing.T) {
	srv := bridgeServer(t)
	defer srv.Close()

	tr := dialTest(t, srv)
	defer tr.Close()

	received := make(chan byte, 16)
	tr.Subscribe(func(data []byte) {
		if len(data) >= 2 {
			received <- data[1]
		}
	})

	for i := byte(1); i <= 5; i++ {
		if err := tr.Write(context.Background(), []byte{i}); err != nil {
			t.Fatalf("Write(%d) error = %v", i, err)
		}
	}

	for i := byte(1); i <= 5; i++ {
		select {
		case got := <-received:
			if got != i {
				t.Fatalf("notification %d out of order: got %d", i, got)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("notification %d never arrived", i)
		}
	}
}

func TestWSTransport_WriteAfterClose(t *testing.T) {
	srv := bridgeServer(t)
	defer srv.Close()

	tr := dialTest(t, srv)
	if err := tr.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if err := tr.Write(context.Background(), []byte{0x01}); err != ErrClosed {
		t.Errorf("Write() after close = %v, want ErrClosed", err)
	}

	// Close is idempotent
	if err := tr.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestDialBridge_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := DialBridge(ctx, "127.0.0.1:1"); err == nil {
		t.Error("DialBridge to unreachable address should fail")
	}
}
