package specialist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Student-Advisor/agent/contract"
)

// plannerImpl is the coordinator: it only picks the specialist for a turn.
type plannerImpl struct {
	runner compose.Runnable[map[string]any, plannerLLMOutput]
}

type plannerLLMOutput struct {
	Agent  string `json:"agent"`
	Reason string `json:"reason,omitempty"`
}

func newPlanner(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*plannerImpl, error) {
	runner, err := compilePlannerGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: compile planner graph: %v", contractx.ErrModelInvoke, err)
	}
	return &plannerImpl{runner: runner}, nil
}

func (p *plannerImpl) Plan(ctx context.Context, req contractx.PlannerRequest) (contractx.PlannerResponse, error) {
	if strings.TrimSpace(req.UserMessage) == "" {
		return contractx.PlannerResponse{}, fmt.Errorf("%w: user message is required", contractx.ErrValidation)
	}

	payload := map[string]any{
		"user_message": req.UserMessage,
		"context":      summarizeContext(req.Context),
	}
	inputBytes, err := json.Marshal(payload)
	if err != nil {
		return contractx.PlannerResponse{}, fmt.Errorf("%w: marshal planner payload: %v", contractx.ErrValidation, err)
	}

	out, err := p.runner.Invoke(ctx, map[string]any{
		"input": string(inputBytes),
	})
	if err != nil {
		return contractx.PlannerResponse{}, fmt.Errorf("%w: planner invoke: %v", contractx.ErrModelInvoke, err)
	}

	resp := contractx.PlannerResponse{
		Agent:  contractx.AgentType(strings.ToLower(strings.TrimSpace(out.Agent))),
		Reason: strings.TrimSpace(out.Reason),
	}
	if err := validatePlannerResponse(resp); err != nil {
		return contractx.PlannerResponse{}, err
	}

	log.Debug().
		Str("session_id", req.Context.SessionID).
		Str("agent", string(resp.Agent)).
		Str("reason", resp.Reason).
		Msg("coordinator routed message")
	return resp, nil
}

func validatePlannerResponse(resp contractx.PlannerResponse) error {
	switch resp.Agent {
	case contractx.AgentTypeTalkative, contractx.AgentTypeScheduler:
		return nil
	default:
		return fmt.Errorf("%w: unsupported agent=%q", contractx.ErrSchemaViolation, resp.Agent)
	}
}

// summarizeContext is the slice of the request context models may see.
func summarizeContext(rc contractx.RequestContext) map[string]any {
	out := map[string]any{}
	if rc.StudentID != "" {
		out["student_id"] = rc.StudentID
	}
	if rc.Term != "" {
		out["term"] = rc.Term
	}
	if rc.Year != 0 {
		out["year"] = rc.Year
	}
	if !rc.Now.IsZero() {
		out["today"] = rc.Now.Format("2006-01-02")
	}
	return out
}
