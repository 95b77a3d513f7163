package specialist

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	contractx "github.com/tanpawarit/Chative-Student-Advisor/agent/contract"
	llmx "github.com/tanpawarit/Chative-Student-Advisor/agent/llm"
	promptx "github.com/tanpawarit/Chative-Student-Advisor/agent/prompt"
)

type registryImpl struct {
	planner   contractx.Planner
	talkative contractx.Specialist
	scheduler contractx.Specialist
}

func (r *registryImpl) Planner() contractx.Planner {
	return r.planner
}

func (r *registryImpl) Talkative() contractx.Specialist {
	return r.talkative
}

func (r *registryImpl) Scheduler() contractx.Specialist {
	return r.scheduler
}

func NewRegistry(ctx context.Context, cfg llmx.Config) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	models := make(map[contractx.AgentType]einomodel.ToolCallingChatModel, 3)
	for _, at := range []contractx.AgentType{
		contractx.AgentTypeCoordinator,
		contractx.AgentTypeTalkative,
		contractx.AgentTypeScheduler,
	} {
		modelCfg := cfg.OpenRouterFor(at)
		m, err := modelCfg.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: create %s model: %v", contractx.ErrModelInvoke, at, err)
		}
		models[at] = m
	}

	return newRegistry(ctx, promptx.LoadPromptSet(),
		models[contractx.AgentTypeCoordinator],
		models[contractx.AgentTypeTalkative],
		models[contractx.AgentTypeScheduler],
	)
}

func newRegistry(
	ctx context.Context,
	prompts promptx.PromptSet,
	coordinatorModel einomodel.BaseChatModel,
	talkativeModel einomodel.ToolCallingChatModel,
	schedulerModel einomodel.ToolCallingChatModel,
) (*registryImpl, error) {
	if err := prompts.Validate(); err != nil {
		return nil, err
	}

	planner, err := newPlanner(ctx, coordinatorModel, prompts.RouterPrompt())
	if err != nil {
		return nil, err
	}
	talkative, err := newSpecialist(ctx, contractx.AgentTypeTalkative, talkativeModel,
		prompts.SpecialistPrompt(contractx.AgentTypeTalkative))
	if err != nil {
		return nil, err
	}
	scheduler, err := newSpecialist(ctx, contractx.AgentTypeScheduler, schedulerModel,
		prompts.SpecialistPrompt(contractx.AgentTypeScheduler))
	if err != nil {
		return nil, err
	}

	return &registryImpl{
		planner:   planner,
		talkative: talkative,
		scheduler: scheduler,
	}, nil
}
