package contract

import (
	"encoding/json"
	"time"
)

type AgentType string

const (
	AgentTypeCoordinator AgentType = "coordinator"
	AgentTypeTalkative   AgentType = "talkative"
	AgentTypeScheduler   AgentType = "scheduler"
)

// RequestContext carries per-turn identity and defaults into tools.
// Callers build a fresh copy for every message; Now is the time of that turn.
type RequestContext struct {
	SessionID string    `json:"session_id"`
	StudentID string    `json:"student_id,omitempty"`
	Term      string    `json:"term,omitempty"`
	Year      int       `json:"year,omitempty"`
	Now       time.Time `json:"now"`
}

type PlannerRequest struct {
	UserMessage string         `json:"user_message"`
	Context     RequestContext `json:"context"`
}

type PlannerResponse struct {
	Agent  AgentType `json:"agent"`
	Reason string    `json:"reason,omitempty"`
}

// SpecialistRequest is one specialist pass. Respond forces a final reply
// without further tool calls.
type SpecialistRequest struct {
	UserMessage string         `json:"user_message"`
	Context     RequestContext `json:"context"`
	ToolResults []ToolResult   `json:"tool_results,omitempty"`
	Respond     bool           `json:"respond,omitempty"`
}

type SpecialistResponse struct {
	Message      string        `json:"message"`
	ToolRequests []ToolRequest `json:"tool_requests,omitempty"`
}

type ToolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

type ToolStatus string

const (
	ToolStatusSuccess ToolStatus = "success"
	ToolStatusError   ToolStatus = "error"
)

// ToolResult is the tagged result of one tool call. On the wire it keeps the
// flat shape {"status", "message", "<payload key>": payload}.
type ToolResult struct {
	Tool       string
	Status     ToolStatus
	Message    string
	Kind       ErrorKind
	PayloadKey string
	Payload    any
}

func Succeeded(tool, payloadKey string, payload any, message string) ToolResult {
	return ToolResult{
		Tool:       tool,
		Status:     ToolStatusSuccess,
		Message:    message,
		PayloadKey: payloadKey,
		Payload:    payload,
	}
}

// Failed builds an error result. empty is the zero collection reported under
// the payload key so callers always find the key present.
func Failed(tool, payloadKey string, empty any, err error) ToolResult {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return ToolResult{
		Tool:       tool,
		Status:     ToolStatusError,
		Message:    msg,
		Kind:       KindOf(err),
		PayloadKey: payloadKey,
		Payload:    empty,
	}
}

func (r ToolResult) OK() bool {
	return r.Status == ToolStatusSuccess
}

// Map returns the wire form of the result.
func (r ToolResult) Map() map[string]any {
	out := map[string]any{
		"status": string(r.Status),
	}
	if r.Message != "" {
		out["message"] = r.Message
	}
	if r.Kind != "" {
		out["error_kind"] = string(r.Kind)
	}
	if r.PayloadKey != "" {
		out[r.PayloadKey] = r.Payload
	}
	return out
}

func (r ToolResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Map())
}
