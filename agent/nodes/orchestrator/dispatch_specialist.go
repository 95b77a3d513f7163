package orchestratornode

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Student-Advisor/agent/contract"
)

// DispatchSpecialist runs the routed specialist. Up to maxPasses act passes
// may request tools; after that the specialist must reply without tools.
func DispatchSpecialist(
	ctx context.Context,
	in *GraphState,
	models contractx.Registry,
	tools contractx.ToolGateway,
	maxPasses int,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if maxPasses < 1 {
		maxPasses = 1
	}

	specialist, err := pickSpecialist(in.Route.Agent, models)
	if err != nil {
		return nil, err
	}

	req := contractx.SpecialistRequest{
		UserMessage: in.Text,
		Context:     in.Context,
	}

	for pass := 0; pass < maxPasses; pass++ {
		resp, err := specialist.Run(ctx, req)
		if err != nil {
			return nil, err
		}
		if len(resp.ToolRequests) == 0 {
			in.Message = strings.TrimSpace(resp.Message)
			in.ToolResults = req.ToolResults
			return in, nil
		}

		results, err := tools.Execute(ctx, in.Route.Agent, in.Context, resp.ToolRequests)
		if err != nil {
			return nil, err
		}
		in.ToolPasses++
		req.ToolResults = append(req.ToolResults, results...)

		log.Debug().
			Str("session_id", in.Context.SessionID).
			Str("agent", string(in.Route.Agent)).
			Int("pass", in.ToolPasses).
			Int("tool_calls", len(resp.ToolRequests)).
			Msg("tool pass executed")
	}

	req.Respond = true
	resp, err := specialist.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.ToolRequests) > 0 {
		return nil, fmt.Errorf("%w: specialist requested tools after %d passes", contractx.ErrSchemaViolation, in.ToolPasses)
	}

	in.Message = strings.TrimSpace(resp.Message)
	in.ToolResults = req.ToolResults
	return in, nil
}

func pickSpecialist(agent contractx.AgentType, models contractx.Registry) (contractx.Specialist, error) {
	switch agent {
	case contractx.AgentTypeTalkative:
		return models.Talkative(), nil
	case contractx.AgentTypeScheduler:
		return models.Scheduler(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAgent, agent)
	}
}
