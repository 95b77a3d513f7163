package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Student-Advisor/agent/contract"
)

var (
	//go:embed template/coordinator.txt
	coordinatorRaw string

	//go:embed template/coordinator_description.txt
	coordinatorDescRaw string

	//go:embed template/talkative.txt
	talkativeRaw string

	//go:embed template/talkative_description.txt
	talkativeDescRaw string

	//go:embed template/scheduler.txt
	schedulerRaw string

	//go:embed template/scheduler_description.txt
	schedulerDescRaw string

	//go:embed template/route_format.txt
	routeFormatRaw string

	//go:embed template/reply_format.txt
	replyFormatRaw string
)

// Agent is the instruction and one-line description of one agent.
type Agent struct {
	Instruction string
	Description string
}

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Coordinator Agent
	Talkative   Agent
	Scheduler   Agent

	RouteFormat string
	ReplyFormat string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Coordinator: Agent{
			Instruction: strings.TrimSpace(coordinatorRaw),
			Description: strings.TrimSpace(coordinatorDescRaw),
		},
		Talkative: Agent{
			Instruction: strings.TrimSpace(talkativeRaw),
			Description: strings.TrimSpace(talkativeDescRaw),
		},
		Scheduler: Agent{
			Instruction: strings.TrimSpace(schedulerRaw),
			Description: strings.TrimSpace(schedulerDescRaw),
		},
		RouteFormat: strings.TrimSpace(routeFormatRaw),
		ReplyFormat: strings.TrimSpace(replyFormatRaw),
	}
}

func (p PromptSet) For(agentType contractx.AgentType) Agent {
	switch agentType {
	case contractx.AgentTypeCoordinator:
		return p.Coordinator
	case contractx.AgentTypeTalkative:
		return p.Talkative
	case contractx.AgentTypeScheduler:
		return p.Scheduler
	default:
		return Agent{}
	}
}

// RouterPrompt is the coordinator instruction plus the routing output format.
func (p PromptSet) RouterPrompt() string {
	return p.Coordinator.Instruction + "\n\n" + p.RouteFormat
}

// SpecialistPrompt is a specialist instruction plus the reply output format.
func (p PromptSet) SpecialistPrompt(agentType contractx.AgentType) string {
	return p.For(agentType).Instruction + "\n\n" + p.ReplyFormat
}

func (p PromptSet) Validate() error {
	for _, at := range []contractx.AgentType{
		contractx.AgentTypeCoordinator,
		contractx.AgentTypeTalkative,
		contractx.AgentTypeScheduler,
	} {
		a := p.For(at)
		if a.Instruction == "" || a.Description == "" {
			return fmt.Errorf("%w: agent=%s", contractx.ErrPromptMissing, at)
		}
	}
	if p.RouteFormat == "" || p.ReplyFormat == "" {
		return fmt.Errorf("%w: output format", contractx.ErrPromptMissing)
	}
	return nil
}
