package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type wsEnv struct {
	*testEnv
	handler *WebSocketHandler
	server  *httptest.Server
}

func newWSEnv(t *testing.T) *wsEnv {
	t.Helper()

	env := newTestEnv(t, nil)
	bus := NewEventBus(zap.NewNop())
	go bus.Start()
	env.stimulator.AddListener(NewDeviceEventHandler(bus, zap.NewNop()))

	ws := NewWebSocketHandler(env.stimulator, bus, nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	ws.Start(ctx)

	router := gin.New()
	ws.RegisterRoutes(router.Group("/ws"))
	server := httptest.NewServer(router)

	t.Cleanup(func() {
		server.Close()
		cancel()
		ws.Stop()
		bus.Close()
	})

	return &wsEnv{testEnv: env, handler: ws, server: server}
}

func (e *wsEnv) dial(t *testing.T, path string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(e.server.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	msg := readMessage(t, conn)
	require.Equal(t, "initial_status", msg.Type)
	return conn
}

type wsMessage struct {
	Type      string                 `json:"type"`
	Data      map[string]interface{} `json:"data"`
	RequestID string                 `json:"request_id"`
}

func readMessage(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg wsMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

// readUntil skips messages until one of msgType arrives
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) wsMessage {
	t.Helper()

	for i := 0; i < 20; i++ {
		msg := readMessage(t, conn)
		if msg.Type == msgType {
			return msg
		}
	}
	t.Fatalf("no %s message received", msgType)
	return wsMessage{}
}

func TestSerialStreamReceivesOutput(t *testing.T) {
	env := newWSEnv(t)
	conn := env.dial(t, "/ws/serial")

	require.Eventually(t, func() bool {
		return env.handler.GetConnectionStats().TotalConnections == 1
	}, 2*time.Second, 10*time.Millisecond)

	env.loopback.Inject("stimjim ready\r\n")
	_, err := env.stimulator.Poll(context.Background())
	require.NoError(t, err)

	msg := readUntil(t, conn, EventSerialOutput)
	assert.Equal(t, "stimjim ready\r\n", msg.Data["text"])
}

func TestSerialStreamAcceptsCommands(t *testing.T) {
	env := newWSEnv(t)
	conn := env.dial(t, "/ws/serial")

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type":       "command",
		"data":       map[string]string{"command": "?"},
		"request_id": "req-1",
	}))

	msg := readUntil(t, conn, "command_response")
	assert.Equal(t, true, msg.Data["success"])
	assert.Equal(t, "req-1", msg.RequestID)
	assert.Equal(t, "?", lastLine(t, env.loopback))
	assert.Equal(t, []string{"?"}, env.stimulator.History())

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": "ping"}))
	readUntil(t, conn, "pong")

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": "reboot"}))
	msg = readUntil(t, conn, "error")
	assert.Contains(t, msg.Data["error"], "reboot")
}

func TestEventStreamSubscriptions(t *testing.T) {
	env := newWSEnv(t)
	conn := env.dial(t, "/ws/events")

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type": "subscribe",
		"data": map[string]string{"topic": EventProgramChanged},
	}))
	readUntil(t, conn, "subscription_confirmed")

	_, err := env.stimulator.AddStage("full", 0, nil)
	require.NoError(t, err)

	msg := readUntil(t, conn, EventProgramChanged)
	assert.Equal(t, "full", msg.Data["mode"])
}

func TestClientWants(t *testing.T) {
	serial := &Client{Type: ClientTypeSerial}
	assert.True(t, serial.Wants(EventSerialOutput))
	assert.True(t, serial.Wants(EventCommandSent))
	assert.False(t, serial.Wants(EventProgramChanged))

	events := &Client{Type: ClientTypeEvents}
	for _, eventType := range EventTypes() {
		assert.True(t, events.Wants(eventType))
	}

	events.Subscribe(EventConnectionChanged)
	assert.True(t, events.Wants(EventConnectionChanged))
	assert.False(t, events.Wants(EventSerialOutput))

	events.Unsubscribe(EventConnectionChanged)
	assert.True(t, events.Wants(EventSerialOutput))
}

func TestEventBus(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	output := bus.Subscribe(EventSerialOutput)
	go bus.Start()

	handler := NewDeviceEventHandler(bus, zap.NewNop())
	handler.OnCommandSent("C\n")
	handler.OnSerialOutput("hello")

	select {
	case event := <-output:
		assert.Equal(t, EventSerialOutput, event.Type)
		assert.Equal(t, "hello", event.Data["text"])
		assert.False(t, event.Timestamp.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}

	bus.Close()
	bus.Close()
	bus.Publish(Event{Type: EventSerialOutput})

	select {
	case _, ok := <-output:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber channel not closed")
	}
}
