package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"codeberg.org/mutker/ventsim/internal/api"
	"codeberg.org/mutker/ventsim/internal/logger"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wsMessage struct {
	Type api.MessageType `json:"type"`
	Data json.RawMessage `json:"data"`
}

func dial(t *testing.T, srv *httptest.Server, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()

	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	return websocket.DefaultDialer.Dial(u, header)
}

// next reads messages until one of type want arrives
func next(t *testing.T, conn *websocket.Conn, want api.MessageType) wsMessage {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg wsMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == want {
			return msg
		}
	}
}

func TestWebSocketStream(t *testing.T) {
	f := newFixture(t, api.Deps{})
	srv := httptest.NewServer(f.server.Handler())
	defer srv.Close()

	conn, _, err := dial(t, srv, nil)
	require.NoError(t, err)
	defer conn.Close()

	hello := next(t, conn, api.MessageFans)
	var fans []map[string]any
	require.NoError(t, json.Unmarshal(hello.Data, &fans))
	assert.Len(t, fans, 6)

	require.Eventually(t, func() bool { return f.server.Hub().Clients() == 1 }, time.Second, 10*time.Millisecond)

	_, err = f.engine.Toggle("Fan 1-1")
	require.NoError(t, err)

	msg := next(t, conn, api.MessageEvent)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(msg.Data, &entry))
	assert.Equal(t, "Fan 1-1", entry["fan_id"])
	assert.Equal(t, "fan switched off", entry["message"])

	_, err = f.engine.OpenView("Fan 1-3")
	require.NoError(t, err)
	_, err = f.engine.Step("Fan 1-3")
	require.NoError(t, err)

	msg = next(t, conn, api.MessageReading)
	var reading map[string]any
	require.NoError(t, json.Unmarshal(msg.Data, &reading))
	assert.Equal(t, "Fan 1-3", reading["fan_id"])
}

func TestWebSocketOrigin(t *testing.T) {
	f := newFixture(t, api.Deps{})
	s := api.New(api.Config{AllowedOrigins: []string{"http://allowed.example"}}, api.Deps{
		Engine:    f.engine,
		Dashboard: f.dash,
	}, logger.New(io.Discard))
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	_, resp, err := dial(t, srv, http.Header{"Origin": []string{"http://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := dial(t, srv, http.Header{"Origin": []string{"http://allowed.example"}})
	require.NoError(t, err)
	conn.Close()
}

func TestServeShutdown(t *testing.T) {
	f := newFixture(t, api.Deps{})

	ln, err := (&net.ListenConfig{}).Listen(context.Background(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.server.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
