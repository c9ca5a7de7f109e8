package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mechprop/internal/config"
	"mechprop/internal/shared/testutil"
	"mechprop/pkg/contracts/events"
)

// fakeConn records writes and blocks reads until closed.
type fakeConn struct {
	mu      sync.Mutex
	written [][]byte
	closed  chan struct{}
	once    sync.Once
}

func newFakeConn() *fakeConn { return &fakeConn{closed: make(chan struct{})} }

func (f *fakeConn) WriteMessage(mt int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if mt == websocket.TextMessage {
		f.written = append(f.written, data)
	}
	return nil
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	<-f.closed
	return 0, nil, errors.New("closed")
}

func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeConn) SetReadDeadline(time.Time) error { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error { return nil }
func (f *fakeConn) SetReadLimit(int64) {}
func (f *fakeConn) SetPongHandler(func(string) error) {}
func (f *fakeConn) RemoteAddr() string { return "127.0.0.1:1" }

func (f *fakeConn) messages() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.written...)
}

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	hub := NewHub(logger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-hub.Done()
	})
	return hub, cancel
}

func TestHub_BroadcastReachesClients(t *testing.T) {
	hub, _ := startHub(t)

	conn := newFakeConn()
	client := NewClient(hub, conn, time.Hour, time.Hour, nil)
	require.True(t, hub.Register(client))
	go client.WritePump()

	hub.Broadcast(events.NewMessage(events.MessageTypeSessionUpdated, map[string]float64{"slope": 2}))

	require.Eventually(t, func() bool { return len(conn.messages()) == 2 }, time.Second, 5*time.Millisecond)

	var greeting, update events.WebSocketMessage
	msgs := conn.messages()
	require.NoError(t, json.Unmarshal(msgs[0], &greeting))
	require.NoError(t, json.Unmarshal(msgs[1], &update))
	assert.Equal(t, events.MessageTypeConnect, greeting.Type)
	assert.Equal(t, events.MessageTypeSessionUpdated, update.Type)
	assert.Equal(t, map[string]interface{}{"slope": float64(2)}, update.Data)

	assert.Equal(t, 1, hub.ClientCount())
	assert.Equal(t, int64(1), hub.Stats()["messages_sent"])
}

func TestHub_UnregisterOnReadError(t *testing.T) {
	hub, _ := startHub(t)

	conn := newFakeConn()
	client := NewClient(hub, conn, time.Hour, time.Hour, nil)
	require.True(t, hub.Register(client))
	go client.ReadPump()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_StoppedHubDoesNotBlock(t *testing.T) {
	hub, cancel := startHub(t)
	cancel()
	<-hub.Done()

	done := make(chan struct{})
	go func() {
		hub.Broadcast(events.NewMessage(events.MessageTypeAnalysisLoaded, nil))
		assert.False(t, hub.Register(NewClient(hub, newFakeConn(), time.Hour, time.Hour, nil)))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub blocked after stop")
	}
}

func TestHandler_Upgrade(t *testing.T) {
	hub, _ := startHub(t)
	cfg := config.Default().WebSocket
	srv := httptest.NewServer(NewHandler(hub, cfg, []string{"http://allowed.test"}, nil))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	header := http.Header{"Origin": {"http://allowed.test"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var greeting events.WebSocketMessage
	require.NoError(t, conn.ReadJSON(&greeting))
	assert.Equal(t, events.MessageTypeConnect, greeting.Type)

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://evil.test"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
