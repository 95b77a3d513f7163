package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/Chative-Student-Advisor/agent/contract"
)

func RouteRequest(
	ctx context.Context,
	in *GraphState,
	planner contractx.Planner,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	route, err := planner.Plan(ctx, contractx.PlannerRequest{
		UserMessage: in.Text,
		Context:     in.Context,
	})
	if err != nil {
		return nil, err
	}

	in.Route = route
	return in, nil
}
