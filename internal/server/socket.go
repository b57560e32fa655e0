package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/nunnai/marketmentor/internal/history"
)

// socketMessage is the frame format in both directions on /ws. Clients send
// type "ask"; the server answers with "response" or "error" echoing ID.
type socketMessage struct {
	Type     string `json:"type"`
	ID       string `json:"id,omitempty"`
	Question string `json:"question,omitempty"`
	Content  string `json:"content,omitempty"`
}

func (s *Server) newUpgrader() *websocket.Upgrader {
	return &websocket.Upgrader{CheckOrigin: s.checkOrigin}
}

// checkOrigin applies the CORS origin list to websocket handshakes. Requests
// without an Origin header come from non-browser clients and are allowed, as
// are same-host pages.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if originAllowed(s.allowedOrigins(), origin) {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && strings.EqualFold(u.Host, r.Host)
}

// originAllowed matches origin the way the CORS middleware does: "*" allows
// everything, and a pattern may hold one "*" wildcard.
func originAllowed(patterns []string, origin string) bool {
	origin = strings.ToLower(origin)
	for _, p := range patterns {
		p = strings.ToLower(p)
		if p == "*" || p == origin {
			return true
		}
		prefix, suffix, ok := strings.Cut(p, "*")
		if ok && len(origin) >= len(prefix)+len(suffix) &&
			strings.HasPrefix(origin, prefix) && strings.HasSuffix(origin, suffix) {
			return true
		}
	}
	return false
}

// handleSocket keeps a connection open and answers one question per "ask"
// frame, in order.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	reqID := middleware.GetReqID(r.Context())
	for {
		var msg socketMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read", zap.String("request_id", reqID), zap.Error(err))
			}
			return
		}

		reply := s.socketReply(r.Context(), msg)
		if err := conn.WriteJSON(reply); err != nil {
			s.logger.Warn("websocket write", zap.String("request_id", reqID), zap.Error(err))
			return
		}
	}
}

func (s *Server) socketReply(parent context.Context, msg socketMessage) socketMessage {
	if msg.Type != "ask" {
		return socketMessage{Type: "error", ID: msg.ID, Content: "unknown message type: " + msg.Type}
	}
	if strings.TrimSpace(msg.Question) == "" {
		return socketMessage{Type: "error", ID: msg.ID, Content: msgInvalidQuestion}
	}

	ctx, cancel := context.WithTimeout(parent, s.cfg.RequestTimeout)
	defer cancel()

	ans, err := s.answer(ctx, history.ChannelSocket, msg.Question)
	if err != nil {
		s.logger.Error("socket ask failed", zap.String("id", msg.ID), zap.Error(err))
		return socketMessage{Type: "error", ID: msg.ID, Content: fmt.Sprintf("An error occurred: %s", err)}
	}
	return socketMessage{Type: "response", ID: msg.ID, Content: ans.Text}
}
