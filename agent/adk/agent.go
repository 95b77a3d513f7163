package adk

import (
	"fmt"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"

	promptx "github.com/tanpawarit/Chative-Student-Advisor/agent/prompt"
)

const (
	ManagerAgentName   = "manager"
	TalkativeAgentName = "talkative"
	SchedulerAgentName = "scheduler"
)

// NewCoordinator builds the manager agent with the talkative and scheduler
// agents as sub-agents. ADK adds the transfer tools for sub-agents itself.
func NewCoordinator(llm model.LLM, h *Handlers, prompts promptx.PromptSet) (agent.Agent, error) {
	if llm == nil {
		return nil, fmt.Errorf("adk: model is required")
	}
	if h == nil {
		return nil, fmt.Errorf("adk: tool handlers are required")
	}
	if err := prompts.Validate(); err != nil {
		return nil, err
	}

	talkativeTools, err := h.TalkativeTools()
	if err != nil {
		return nil, err
	}
	talkative, err := llmagent.New(llmagent.Config{
		Name:        TalkativeAgentName,
		Description: prompts.Talkative.Description,
		Model:       llm,
		Instruction: prompts.Talkative.Instruction,
		Tools:       talkativeTools,
	})
	if err != nil {
		return nil, fmt.Errorf("create talkative agent: %w", err)
	}

	schedulerTools, err := h.SchedulerTools()
	if err != nil {
		return nil, err
	}
	scheduler, err := llmagent.New(llmagent.Config{
		Name:        SchedulerAgentName,
		Description: prompts.Scheduler.Description,
		Model:       llm,
		Instruction: prompts.Scheduler.Instruction,
		Tools:       schedulerTools,
	})
	if err != nil {
		return nil, fmt.Errorf("create scheduler agent: %w", err)
	}

	manager, err := llmagent.New(llmagent.Config{
		Name:        ManagerAgentName,
		Description: prompts.Coordinator.Description,
		Model:       llm,
		Instruction: prompts.Coordinator.Instruction,
		SubAgents:   []agent.Agent{talkative, scheduler},
		// Multi-turn: the manager sees the whole session history.
		IncludeContents: llmagent.IncludeContentsDefault,
	})
	if err != nil {
		return nil, fmt.Errorf("create manager agent: %w", err)
	}
	return manager, nil
}
