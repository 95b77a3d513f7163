package adk

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/model"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"

	contractx "github.com/tanpawarit/Chative-Student-Advisor/agent/contract"
	llmx "github.com/tanpawarit/Chative-Student-Advisor/agent/llm"
)

const (
	AppName       = "student-advisor"
	DefaultUserID = "student"
)

// NewGeminiModel returns the Gemini model used by every ADK agent.
func NewGeminiModel(ctx context.Context, cfg llmx.Config) (model.LLM, error) {
	if err := cfg.ValidateGemini(); err != nil {
		return nil, err
	}
	llm, err := gemini.NewModel(ctx, strings.TrimSpace(cfg.GeminiModel), &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.GeminiAPIKey),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create gemini model: %v", contractx.ErrModelInvoke, err)
	}
	return llm, nil
}

// Session is one ADK conversation backed by an in-memory session service.
type Session struct {
	runner    *runner.Runner
	sessions  session.Service
	userID    string
	sessionID string
}

func NewSession(ctx context.Context, root agent.Agent, userID, sessionID string) (*Session, error) {
	if root == nil {
		return nil, fmt.Errorf("adk: root agent is required")
	}
	if strings.TrimSpace(userID) == "" {
		userID = DefaultUserID
	}
	if strings.TrimSpace(sessionID) == "" {
		sessionID = uuid.NewString()
	}

	sessions := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        AppName,
		Agent:          root,
		SessionService: sessions,
	})
	if err != nil {
		return nil, fmt.Errorf("create adk runner: %w", err)
	}

	if _, err := sessions.Create(ctx, &session.CreateRequest{
		AppName:   AppName,
		UserID:    userID,
		SessionID: sessionID,
	}); err != nil {
		return nil, fmt.Errorf("create adk session: %w", err)
	}

	return &Session{
		runner:    r,
		sessions:  sessions,
		userID:    userID,
		sessionID: sessionID,
	}, nil
}

func (s *Session) ID() string {
	return s.sessionID
}

// Send runs one user turn and returns the text of the final responses.
func (s *Session) Send(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("%w: message is empty", contractx.ErrValidation)
	}

	content := &genai.Content{
		Role:  "user",
		Parts: []*genai.Part{{Text: message}},
	}
	cfg := agent.RunConfig{StreamingMode: agent.StreamingModeNone}

	var replies []string
	for event, err := range s.runner.Run(ctx, s.userID, s.sessionID, content, cfg) {
		if err != nil {
			return "", fmt.Errorf("%w: adk run: %v", contractx.ErrModelInvoke, err)
		}
		if event == nil {
			continue
		}
		log.Debug().
			Str("session_id", s.sessionID).
			Str("author", event.Author).
			Bool("final", event.IsFinalResponse()).
			Msg("adk event")

		if !event.IsFinalResponse() || event.Content == nil {
			continue
		}
		for _, part := range event.Content.Parts {
			if part != nil && strings.TrimSpace(part.Text) != "" {
				replies = append(replies, strings.TrimSpace(part.Text))
			}
		}
	}

	reply := strings.Join(replies, "\n\n")
	if reply == "" {
		return "", fmt.Errorf("%w: agent produced no reply", contractx.ErrSchemaViolation)
	}
	return reply, nil
}
