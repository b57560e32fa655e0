package server

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/nunnai/marketmentor/internal/format"
	"github.com/nunnai/marketmentor/internal/history"
	"github.com/nunnai/marketmentor/internal/mentor"
	"github.com/nunnai/marketmentor/internal/widget"
)

const maxBodyBytes = 64 << 10

// Copy returned by the question endpoints.
const (
	msgInvalidQuestion = "Please provide a valid question."
	msgInvalidBody     = "Invalid request body."
)

type askRequest struct {
	Question *string `json:"question"`
}

type askResponse struct {
	Response string `json:"response"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, askResponse{Response: msgInvalidBody})
		return
	}
	if req.Question == nil || strings.TrimSpace(*req.Question) == "" {
		writeJSON(w, http.StatusOK, askResponse{Response: msgInvalidQuestion})
		return
	}

	ans, err := s.answer(r.Context(), history.ChannelAPI, *req.Question)
	if err != nil {
		s.logger.Error("ask failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeJSON(w, http.StatusOK, askResponse{Response: fmt.Sprintf("An error occurred: %s", err)})
		return
	}
	writeJSON(w, http.StatusOK, askResponse{Response: ans.Text})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderIndex(w, http.StatusOK, indexPage{})
}

// handleAnswer is the no-script form target. It renders the answer the same
// way the widget does.
func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		s.renderIndex(w, http.StatusBadRequest, indexPage{Message: msgInvalidBody})
		return
	}

	question := strings.TrimSpace(r.PostForm.Get("question"))
	if question == "" {
		s.renderIndex(w, http.StatusOK, indexPage{Message: widget.MessageEmptyInput})
		return
	}

	ans, err := s.answer(r.Context(), history.ChannelForm, question)
	if err != nil {
		s.logger.Error("answer failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		s.renderIndex(w, http.StatusOK, indexPage{Question: question, Message: widget.MessageFailure})
		return
	}

	s.renderIndex(w, http.StatusOK, indexPage{
		Question: question,
		Answer:   template.HTML(s.cfg.Footer.Append(format.Format(ans.Text))),
	})
}

func (s *Server) legalHandler(path, title, failure string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content, err := s.legal.Render(path)
		if err != nil {
			s.logger.Error("loading legal page", zap.String("path", path), zap.Error(err))
			http.Error(w, failure, http.StatusInternalServerError)
			return
		}
		s.renderPage(w, http.StatusOK, "legal.html", legalPage{Title: title, Content: content})
	}
}

// answer runs the pipeline and records metrics and history.
func (s *Server) answer(ctx context.Context, ch history.Channel, question string) (mentor.Answer, error) {
	s.metrics.inFlight.Inc()
	defer s.metrics.inFlight.Dec()

	start := time.Now()
	ans, err := s.answerer.Process(ctx, question)
	elapsed := time.Since(start)

	route := string(ans.Route)
	switch {
	case err != nil:
		route = history.RouteError
	case ans.Failed:
		route = "failed"
	}
	s.metrics.observeQuestion(route, elapsed)
	s.recordHistory(ctx, ch, question, ans, err, elapsed)
	return ans, err
}

func (s *Server) recordHistory(ctx context.Context, ch history.Channel, question string, ans mentor.Answer, err error, elapsed time.Duration) {
	if s.history == nil {
		return
	}
	e := history.Entry{
		RequestID: middleware.GetReqID(ctx),
		Channel:   ch,
		Question:  strings.TrimSpace(question),
		Route:     string(ans.Route),
		Failed:    ans.Failed,
		AnswerLen: len(ans.Text),
		Duration:  elapsed,
	}
	if err != nil {
		e.Route = history.RouteError
		e.Error = err.Error()
	}
	// The request may already be cancelled; the log entry should still land.
	if rerr := s.history.Record(context.WithoutCancel(ctx), e); rerr != nil {
		s.logger.Warn("recording question", zap.Error(rerr))
	}
}

func (s *Server) renderIndex(w http.ResponseWriter, status int, data indexPage) {
	s.renderPage(w, status, "index.html", data)
}

func (s *Server) renderPage(w http.ResponseWriter, status int, name string, data any) {
	var buf strings.Builder
	if err := s.pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("rendering page", zap.String("template", name), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(buf.String()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
