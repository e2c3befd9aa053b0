// Package webhook receives LINE Platform message events and answers them
// through a pluggable responder, typically a prebuilt workflow. A responder
// failure never surfaces to the end user: the reply degrades to an apology
// and the webhook still acknowledges the event.
package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	linewebhook "github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/iangithub/langchain-ai-agent/log"
)

// apologyReply is returned to the user when the responder fails.
const apologyReply = "抱歉，系統目前發生問題，請稍後再試。"

// Responder produces the reply for one user message. sessionID identifies
// the sending user so conversational responders can keep per-user state.
type Responder func(ctx context.Context, userText, sessionID string) (string, error)

// ReplyFunc delivers a reply for the given reply token.
type ReplyFunc func(ctx context.Context, replyToken, text string) error

// Server handles LINE webhook callbacks.
type Server struct {
	responder     Responder
	reply         ReplyFunc
	channelSecret string
	logger        log.Logger
	mux           *http.ServeMux
}

var _ http.Handler = (*Server)(nil)

// Option configures the server.
type Option func(*Server)

// WithChannelSecret enables X-Line-Signature verification.
func WithChannelSecret(secret string) Option {
	return func(s *Server) { s.channelSecret = secret }
}

// WithReplyFunc sets the reply delivery mechanism. Without one, replies are
// only logged, which is enough for local development.
func WithReplyFunc(f ReplyFunc) Option {
	return func(s *Server) { s.reply = f }
}

// WithLogger replaces the server's logger.
func WithLogger(l log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer builds a webhook server around the responder.
func NewServer(responder Responder, opts ...Option) *Server {
	s := &Server{
		responder: responder,
		logger:    log.Default(),
		mux:       http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mux.HandleFunc("GET /", s.handleHealth)
	s.mux.HandleFunc("POST /webhook", s.handleWebhook)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "running",
		"service": "agent webhook",
	})
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	cb, err := s.parseCallback(r)
	if err != nil {
		s.logger.Warn("webhook: rejected request: %v", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	for _, event := range cb.Events {
		me, ok := event.(linewebhook.MessageEvent)
		if !ok {
			continue
		}
		text, ok := me.Message.(linewebhook.TextMessageContent)
		if !ok {
			continue
		}
		s.handleTextMessage(r.Context(), me.ReplyToken, sourceID(me.Source), text.Text)
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// parseCallback validates and decodes the callback body. Without a channel
// secret (local development) the body is decoded unverified.
func (s *Server) parseCallback(r *http.Request) (*linewebhook.CallbackRequest, error) {
	if s.channelSecret != "" {
		return linewebhook.ParseRequest(s.channelSecret, r)
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	var cb linewebhook.CallbackRequest
	if err := json.Unmarshal(body, &cb); err != nil {
		return nil, err
	}
	return &cb, nil
}

func (s *Server) handleTextMessage(ctx context.Context, replyToken, userID, text string) {
	s.logger.Info("webhook: message from %s", userID)

	response, err := s.responder(ctx, text, userID)
	if err != nil {
		s.logger.Error("webhook: responder failed: %v", err)
		response = apologyReply
	}

	if s.reply == nil {
		s.logger.Info("webhook: reply (no delivery configured): %s", response)
		return
	}
	if err := s.reply(ctx, replyToken, response); err != nil {
		s.logger.Error("webhook: reply delivery failed: %v", err)
	}
}

// sourceID extracts the id that keys conversational state: the user for 1:1
// chats, the group or room otherwise.
func sourceID(src linewebhook.SourceInterface) string {
	switch s := src.(type) {
	case linewebhook.UserSource:
		return s.UserId
	case linewebhook.GroupSource:
		return s.GroupId
	case linewebhook.RoomSource:
		return s.RoomId
	default:
		return ""
	}
}
