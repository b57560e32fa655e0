package widget

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// socketBackend answers each ask frame with reply(question). A nil reply
// never answers.
func socketBackend(t *testing.T, reply func(socketMessage) *socketMessage) (string, *atomic.Int32) {
	t.Helper()
	var dials atomic.Int32
	upgrader := websocket.Upgrader{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		dials.Add(1)
		defer conn.Close()
		for {
			var msg socketMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			out := reply(msg)
			if out == nil {
				continue
			}
			if err := conn.WriteJSON(out); err != nil {
				return
			}
		}
	}))
	t.Cleanup(ts.Close)
	return "ws" + strings.TrimPrefix(ts.URL, "http"), &dials
}

func TestSocketTransportReusesConnection(t *testing.T) {
	url, dials := socketBackend(t, func(m socketMessage) *socketMessage {
		return &socketMessage{Type: "response", ID: m.ID, Content: "answer to " + m.Question}
	})

	tr := NewSocketTransport(url, nil)
	defer tr.Close()

	got, err := tr.Ask(context.Background(), "first")
	require.NoError(t, err)
	assert.Equal(t, "answer to first", got)

	got, err = tr.Ask(context.Background(), "second")
	require.NoError(t, err)
	assert.Equal(t, "answer to second", got)

	assert.Equal(t, int32(1), dials.Load())
}

func TestSocketTransportErrorFrame(t *testing.T) {
	url, _ := socketBackend(t, func(m socketMessage) *socketMessage {
		return &socketMessage{Type: "error", ID: m.ID, Content: "An error occurred: boom"}
	})

	ctl := New(NewSocketTransport(url, nil))
	out := ctl.Submit(context.Background(), "walmart?")
	assert.Equal(t, KindNetworkError, out.Kind)
	assert.EqualError(t, out.Err, "An error occurred: boom")
}

func TestSocketTransportMismatchedID(t *testing.T) {
	url, _ := socketBackend(t, func(m socketMessage) *socketMessage {
		return &socketMessage{Type: "response", ID: "other", Content: "x"}
	})

	_, err := NewSocketTransport(url, nil).Ask(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "arrived while waiting")
}

func TestSocketTransportTimeout(t *testing.T) {
	url, dials := socketBackend(t, func(m socketMessage) *socketMessage { return nil })

	tr := NewSocketTransport(url, nil)
	defer tr.Close()
	ctl := New(tr, WithTimeout(50*time.Millisecond))

	start := time.Now()
	out := ctl.Submit(context.Background(), "slow")
	assert.Equal(t, KindTimeout, out.Kind)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.False(t, ctl.InFlight())

	// A timed out connection is not reused.
	ctl.Submit(context.Background(), "again")
	assert.Equal(t, int32(2), dials.Load())
}

func TestSocketTransportHandshakeStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer ts.Close()

	ctl := New(NewSocketTransport("ws"+strings.TrimPrefix(ts.URL, "http"), nil))
	out := ctl.Submit(context.Background(), "q")
	assert.Equal(t, KindHTTPError, out.Kind)
	assert.Equal(t, http.StatusForbidden, out.Status)
}

func TestSocketTransportUnreachable(t *testing.T) {
	ctl := New(NewSocketTransport("ws://127.0.0.1:1/ws", nil))
	out := ctl.Submit(context.Background(), "q")
	assert.Equal(t, KindNetworkError, out.Kind)
}
