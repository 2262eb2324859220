// Package chat is the request-level use case: validate a customer message,
// record it, ask the gateway for a reply and record that too.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"spurchat/config"
	"spurchat/gateway"
	"spurchat/model"
	"spurchat/storage"
)

const apologyPrefix = "I apologize, but I'm having trouble processing your request right now. "

// Generator produces the assistant reply for a conversation.
type Generator interface {
	GenerateReply(ctx context.Context, history []model.Message, newMessage string) (string, error)
}

// Result is the outcome of ProcessMessage. SessionID is always the
// conversation actually used, which may differ from the one supplied.
type Result struct {
	Reply     string `json:"reply"`
	SessionID string `json:"sessionId"`
}

// Service orchestrates one chat turn.
type Service struct {
	store     storage.ConversationStore
	generator Generator
	logger    zerolog.Logger
	maxLength int
}

// Option customizes the service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMaxMessageLength sets the limit in characters (defaults to 2000).
func WithMaxMessageLength(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLength = n
		}
	}
}

// NewService wires the store and generator.
func NewService(store storage.ConversationStore, generator Generator, opts ...Option) *Service {
	s := &Service{
		store:     store,
		generator: generator,
		logger:    zerolog.Nop(),
		maxLength: config.DefaultMaxMessageLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "chat").Logger()
	return s
}

// Validate checks a raw message and returns it trimmed.
func (s *Service) Validate(message string) (string, error) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return "", &ValidationError{Message: "Message cannot be empty"}
	}
	if utf8.RuneCountInString(trimmed) > s.maxLength {
		return "", &ValidationError{
			Message: fmt.Sprintf("Message too long. Maximum length is %d characters.", s.maxLength),
		}
	}
	return trimmed, nil
}

// ProcessMessage runs one customer turn. An empty sessionID, or one that
// does not resolve, starts a new conversation.
//
// Validation fails before any store or gateway call. Gateway failures become
// an apology reply; store failures are returned as *PersistenceError.
func (s *Service) ProcessMessage(ctx context.Context, message, sessionID string) (*Result, error) {
	trimmed, err := s.Validate(message)
	if err != nil {
		return nil, err
	}

	conversationID, err := s.resolveConversation(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.AddMessage(ctx, conversationID, model.SenderUser, trimmed); err != nil {
		return nil, persistence("save user message", err)
	}

	history, err := s.store.GetMessages(ctx, conversationID)
	if err != nil {
		return nil, persistence("load history", err)
	}

	reply := s.generate(ctx, conversationID, history, trimmed)

	if _, err := s.store.AddMessage(ctx, conversationID, model.SenderAI, reply); err != nil {
		return nil, persistence("save reply", err)
	}

	return &Result{Reply: reply, SessionID: conversationID}, nil
}

func (s *Service) resolveConversation(ctx context.Context, sessionID string) (string, error) {
	if sessionID != "" {
		conv, err := s.store.GetConversation(ctx, sessionID)
		switch {
		case err == nil:
			return conv.ID, nil
		case !errors.Is(err, storage.ErrConversationNotFound):
			return "", persistence("load conversation", err)
		}
		s.logger.Debug().Str("session_id", sessionID).Msg("unknown session, starting a new conversation")
	}

	conv, err := s.store.CreateConversation(ctx)
	if err != nil {
		return "", persistence("create conversation", err)
	}
	return conv.ID, nil
}

// generate calls the gateway and turns any error or panic into an apology.
func (s *Service) generate(ctx context.Context, conversationID string, history []model.Message, message string) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Interface("panic", r).
				Str("conversation_id", conversationID).
				Msg("reply generation panicked")
			reply = apology(fmt.Errorf("%v", r))
		}
	}()

	reply, err := s.generator.GenerateReply(ctx, history, message)
	if err == nil {
		return reply
	}

	event := s.logger.Warn()
	if errors.Is(err, gateway.ErrAuthConfiguration) {
		event = s.logger.Error().Bool("fatal_config", true)
	}
	event.Err(err).Str("conversation_id", conversationID).Msg("reply generation failed")
	return apology(err)
}

func apology(err error) string {
	detail := "Please try again later."
	if err != nil && err.Error() != "" {
		detail = err.Error()
	}
	return apologyPrefix + detail
}

// GetConversationHistory returns the turns of sessionID in order, or an
// empty slice when the session does not exist.
func (s *Service) GetConversationHistory(ctx context.Context, sessionID string) ([]model.Message, error) {
	if _, err := s.store.GetConversation(ctx, sessionID); err != nil {
		if errors.Is(err, storage.ErrConversationNotFound) {
			return []model.Message{}, nil
		}
		return nil, persistence("load conversation", err)
	}

	msgs, err := s.store.GetMessages(ctx, sessionID)
	if err != nil {
		return nil, persistence("load history", err)
	}
	return msgs, nil
}
