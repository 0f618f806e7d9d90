package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/roach88/devlink/internal/protocol"
)

type chanSubmitter chan []protocol.Msg

func (s chanSubmitter) Submit(batch []protocol.Msg) bool {
	s <- batch
	return true
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// newServer starts a websocket server running handle for each connection.
// The connection is closed when handle returns.
func newServer(handle func(n int, conn *websocket.Conn)) (*httptest.Server, string) {
	var count atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		handle(int(count.Add(1)), conn)
	}))
	return srv, "ws" + strings.TrimPrefix(srv.URL, "http")
}

// drain blocks until the peer closes the connection.
func drain(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func runClient(t *testing.T, c *Client) (cancel func() error) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- c.Run(ctx)
	}()
	return func() error {
		stop()
		select {
		case err := <-errCh:
			return err
		case <-time.After(2 * time.Second):
			t.Fatal("client did not stop")
			return nil
		}
	}
}

func receive(t *testing.T, batches chanSubmitter) []protocol.Msg {
	t.Helper()
	select {
	case b := <-batches:
		return b
	case <-time.After(2 * time.Second):
		t.Fatal("no batch received")
		return nil
	}
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{}, make(chanSubmitter))
	assert.Error(t, err)

	_, err = NewClient(Config{URL: "ws://localhost"}, nil)
	assert.Error(t, err)
}

func TestClient_SubmitsDecodedFrames(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv, url := newServer(func(_ int, conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`[
			{"type":"color","time_stamp":2,"device_id":"d","device_nr":0,"color":"red"},
			{"type":"color","time_stamp":3,"device_id":"d","device_nr":0,"color":7},
			{"type":"key","time_stamp":1,"device_id":"d","device_nr":0,"key":"up"}
		]`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"gyro","time_stamp":4,"device_id":"d","device_nr":0,"alpha":1,"beta":2,"gamma":3}`))
		drain(conn)
	})
	defer srv.Close()

	batches := make(chanSubmitter, 4)
	c, err := NewClient(Config{URL: url, DeviceID: "d"}, batches, WithLogger(quietLogger()))
	require.NoError(t, err)
	stop := runClient(t, c)

	first := receive(t, batches)
	require.Len(t, first, 2, "undecodable element is dropped, the rest kept")
	assert.Equal(t, protocol.KindColor, first[0].Kind())
	assert.Equal(t, protocol.KindKey, first[1].Kind())

	second := receive(t, batches)
	require.Len(t, second, 1)
	assert.Equal(t, protocol.KindGyro, second[0].Kind())

	assert.ErrorIs(t, stop(), context.Canceled)
}

func TestClient_ValidatorDropsInvalid(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv, url := newServer(func(_ int, conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`[
			{"type":"acceleration","time_stamp":1,"device_id":"d","device_nr":0,"x":1,"y":2},
			{"type":"acceleration","time_stamp":2,"device_id":"d","device_nr":0,"x":1,"y":2,"z":3}
		]`))
		drain(conn)
	})
	defer srv.Close()

	v, err := protocol.NewValidator()
	require.NoError(t, err)

	batches := make(chanSubmitter, 1)
	c, err := NewClient(Config{URL: url}, batches, WithValidator(v), WithLogger(quietLogger()))
	require.NoError(t, err)
	stop := runClient(t, c)

	got := receive(t, batches)
	require.Len(t, got, 1)
	assert.Equal(t, 2.0, got[0].TimeStamp)

	assert.ErrorIs(t, stop(), context.Canceled)
}

func TestClient_SendStampsHeader(t *testing.T) {
	defer goleak.VerifyNone(t)

	received := make(chan []byte, 1)
	srv, url := newServer(func(_ int, conn *websocket.Conn) {
		_, data, err := conn.ReadMessage()
		if err == nil {
			received <- data
		}
		drain(conn)
	})
	defer srv.Close()

	fixed := time.UnixMilli(1700000000123)
	c, err := NewClient(Config{URL: url, DeviceID: "dev-9", WriteTimeout: time.Second}, make(chanSubmitter),
		WithLogger(quietLogger()), WithNow(func() time.Time { return fixed }))
	require.NoError(t, err)

	assert.ErrorIs(t, c.Send(protocol.New(protocol.Header{}, protocol.Key{Key: "up"})), ErrNotConnected)

	stop := runClient(t, c)
	require.Eventually(t, c.Connected, 2*time.Second, 5*time.Millisecond)

	err = c.Send(protocol.New(protocol.Header{CallerID: "ask-1"}, protocol.InputResponse{Response: "blue", DisplayedAt: 5}))
	require.NoError(t, err)

	select {
	case data := <-received:
		var got map[string]any
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, "input_response", got["type"])
		assert.Equal(t, "dev-9", got["device_id"])
		assert.Equal(t, 1700000000123.0, got["time_stamp"])
		assert.Equal(t, "ask-1", got["caller_id"])
		assert.Equal(t, "blue", got["response"])
	case <-time.After(2 * time.Second):
		t.Fatal("server did not receive message")
	}

	assert.ErrorIs(t, stop(), context.Canceled)
	assert.False(t, c.Connected())
}

func TestClient_Reconnects(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv, url := newServer(func(n int, conn *websocket.Conn) {
		if n == 1 {
			return // drop the first connection immediately
		}
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"key","time_stamp":1,"device_id":"d","device_nr":0,"key":"home"}`))
		drain(conn)
	})
	defer srv.Close()

	batches := make(chanSubmitter, 1)
	c, err := NewClient(Config{URL: url, InitialBackoff: 5 * time.Millisecond, MaxBackoff: 20 * time.Millisecond},
		batches, WithLogger(quietLogger()))
	require.NoError(t, err)
	stop := runClient(t, c)

	got := receive(t, batches)
	require.Len(t, got, 1)
	assert.Equal(t, protocol.Key{Key: "home"}, got[0].Payload)

	assert.ErrorIs(t, stop(), context.Canceled)
}

func TestClient_GivesUpAfterMaxElapsed(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	c, err := NewClient(Config{
		URL:                 url,
		InitialBackoff:      5 * time.Millisecond,
		MaxBackoff:          10 * time.Millisecond,
		ReconnectMaxElapsed: 50 * time.Millisecond,
	}, make(chanSubmitter), WithLogger(quietLogger()))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = c.Run(ctx)
	require.Error(t, err)
	assert.False(t, errors.Is(err, context.DeadlineExceeded), "gave up on its own, got %v", err)
	assert.Contains(t, err.Error(), "connect")
}

func TestClient_BacksOffWhenPeerDropsImmediately(t *testing.T) {
	defer goleak.VerifyNone(t)

	var dials atomic.Int32
	srv, url := newServer(func(n int, _ *websocket.Conn) {
		dials.Store(int32(n))
	})
	defer srv.Close()

	c, err := NewClient(Config{URL: url, InitialBackoff: 20 * time.Millisecond, MaxBackoff: time.Second},
		make(chanSubmitter), WithLogger(quietLogger()))
	require.NoError(t, err)
	stop := runClient(t, c)

	time.Sleep(300 * time.Millisecond)
	assert.ErrorIs(t, stop(), context.Canceled)

	// Growing 20ms waits fit well under 15 redials in 300ms; without a
	// delay the client spins through hundreds.
	n := dials.Load()
	assert.GreaterOrEqual(t, n, int32(2), "dropped connection is redialed")
	assert.Less(t, n, int32(15), "redials follow the backoff")
}

func TestClient_GivesUpOnUnstablePeer(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv, url := newServer(func(int, *websocket.Conn) {})
	defer srv.Close()

	c, err := NewClient(Config{
		URL:                 url,
		InitialBackoff:      5 * time.Millisecond,
		MaxBackoff:          10 * time.Millisecond,
		ReconnectMaxElapsed: 50 * time.Millisecond,
	}, make(chanSubmitter), WithLogger(quietLogger()))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = c.Run(ctx)
	require.Error(t, err)
	assert.False(t, errors.Is(err, context.DeadlineExceeded), "gave up on its own, got %v", err)
	assert.Contains(t, err.Error(), "unstable")
}
