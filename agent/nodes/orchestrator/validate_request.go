package orchestratornode

import (
	"errors"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Student-Advisor/agent/contract"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidSession = errors.New("session id is empty")
	ErrUnknownAgent   = errors.New("no specialist for agent")
)

type GraphInput struct {
	Context contractx.RequestContext
	Text    string
}

type GraphOutput struct {
	Reply string
	Agent contractx.AgentType
}

type GraphState struct {
	Context contractx.RequestContext
	Text    string

	Route contractx.PlannerResponse

	Message     string
	ToolPasses  int
	ToolResults []contractx.ToolResult
}

// ValidateRequest normalizes the per-turn context. Term is lower-cased and
// Now defaults to the orchestrator clock.
func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	rc := in.Context
	rc.SessionID = strings.TrimSpace(rc.SessionID)
	if rc.SessionID == "" {
		return nil, ErrInvalidSession
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	rc.StudentID = strings.TrimSpace(rc.StudentID)
	rc.Term = strings.ToLower(strings.TrimSpace(rc.Term))
	if rc.Now.IsZero() {
		rc.Now = nowFn()
	}
	rc.Now = rc.Now.UTC()

	return &GraphState{
		Context: rc,
		Text:    text,
	}, nil
}
