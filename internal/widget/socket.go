package widget

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// DefaultSocketEndpoint is the backend's websocket endpoint.
const DefaultSocketEndpoint = "ws://localhost:8080/ws"

type socketMessage struct {
	Type     string `json:"type"`
	ID       string `json:"id,omitempty"`
	Question string `json:"question,omitempty"`
	Content  string `json:"content,omitempty"`
}

// SocketTransport asks over one long-lived websocket connection, dialled on
// first use and redialled after any failure.
type SocketTransport struct {
	endpoint string
	dialer   *websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewSocketTransport creates a transport for a ws:// or wss:// endpoint. A nil
// dialer uses websocket.DefaultDialer.
func NewSocketTransport(endpoint string, dialer *websocket.Dialer) *SocketTransport {
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	return &SocketTransport{endpoint: endpoint, dialer: dialer}
}

func (t *SocketTransport) Ask(ctx context.Context, question string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	conn, err := t.connect(ctx)
	if err != nil {
		return "", err
	}

	// Unblock reads and writes as soon as ctx ends.
	stop := context.AfterFunc(ctx, func() {
		conn.SetReadDeadline(time.Now())
		conn.SetWriteDeadline(time.Now())
	})

	answer, err := exchange(conn, uuid.NewString(), question)
	interrupted := !stop()
	if err != nil || interrupted {
		// The deadlines may have been tripped; the connection is not reusable.
		t.drop()
	}
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("waiting for answer: %w", ctx.Err())
		}
		return "", err
	}
	return answer, nil
}

func exchange(conn *websocket.Conn, id, question string) (string, error) {
	if err := conn.WriteJSON(socketMessage{Type: "ask", ID: id, Question: question}); err != nil {
		return "", fmt.Errorf("sending question: %w", err)
	}

	var reply socketMessage
	if err := conn.ReadJSON(&reply); err != nil {
		return "", fmt.Errorf("reading answer: %w", err)
	}
	switch {
	case reply.ID != id:
		return "", fmt.Errorf("answer for %q arrived while waiting for %q", reply.ID, id)
	case reply.Type == "error":
		return "", errors.New(reply.Content)
	case reply.Type != "response":
		return "", fmt.Errorf("unexpected frame type %q", reply.Type)
	}
	return reply.Content, nil
}

func (t *SocketTransport) connect(ctx context.Context) (*websocket.Conn, error) {
	if t.conn != nil {
		return t.conn, nil
	}
	conn, resp, err := t.dialer.DialContext(ctx, t.endpoint, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dialing %s: %w", t.endpoint, &StatusError{Code: resp.StatusCode})
		}
		return nil, fmt.Errorf("dialing %s: %w", t.endpoint, err)
	}
	t.conn = conn
	return conn, nil
}

func (t *SocketTransport) drop() {
	if t.conn != nil {
		t.conn.Close()
		t.conn = nil
	}
}

// Close closes the connection, if any.
func (t *SocketTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}
