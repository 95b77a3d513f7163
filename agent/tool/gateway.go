package tool

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Student-Advisor/agent/contract"
)

// Gateway runs tool requests for the orchestrator, one executor per agent.
type Gateway struct {
	executors map[contractx.AgentType]Executor
	metrics   *Metrics
}

var _ contractx.ToolGateway = (*Gateway)(nil)

type GatewayOption func(*Gateway)

func WithMetrics(m *Metrics) GatewayOption {
	return func(g *Gateway) {
		if m != nil {
			g.metrics = m
		}
	}
}

func NewGateway(box *Toolbox, opts ...GatewayOption) (*Gateway, error) {
	if box == nil {
		return nil, errors.New("toolbox is required")
	}
	g := &Gateway{
		executors: map[contractx.AgentType]Executor{
			contractx.AgentTypeTalkative: NewExecutor(contractx.AgentTypeTalkative, box),
			contractx.AgentTypeScheduler: NewExecutor(contractx.AgentTypeScheduler, box),
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g, nil
}

// Execute runs reqs in order. Tool faults come back as error results; the
// returned error is reserved for a cancelled context.
func (g *Gateway) Execute(ctx context.Context, agentType contractx.AgentType, rc contractx.RequestContext, reqs []contractx.ToolRequest) ([]contractx.ToolResult, error) {
	exec, ok := g.executors[agentType]
	if !ok {
		exec = NewExecutor(agentType, nil)
	}

	out := make([]contractx.ToolResult, 0, len(reqs))
	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		start := time.Now()
		res := exec(ctx, rc, req.Tool, req.Args)
		elapsed := time.Since(start)

		if g.metrics != nil {
			label := metricLabel(req.Tool)
			g.metrics.Calls.WithLabelValues(label, string(res.Status)).Inc()
			g.metrics.Duration.WithLabelValues(label).Observe(elapsed.Seconds())
		}
		evt := log.Debug()
		if !res.OK() {
			evt = log.Warn().Str("error_kind", string(res.Kind)).Str("message", res.Message)
		}
		evt.Str("agent", string(agentType)).
			Str("tool", req.Tool).
			Str("status", string(res.Status)).
			Dur("elapsed", elapsed).
			Msg("tool executed")

		out = append(out, res)
	}
	return out, nil
}
