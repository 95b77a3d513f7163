package contract

import "context"

type Planner interface {
	Plan(ctx context.Context, req PlannerRequest) (PlannerResponse, error)
}

type Specialist interface {
	Run(ctx context.Context, req SpecialistRequest) (SpecialistResponse, error)
}

type Registry interface {
	Planner() Planner
	Talkative() Specialist
	Scheduler() Specialist
}

type ToolGateway interface {
	Execute(ctx context.Context, agentType AgentType, rc RequestContext, reqs []ToolRequest) ([]ToolResult, error)
}
