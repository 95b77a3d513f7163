package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Student-Advisor/agent/contract"
	nodex "github.com/tanpawarit/Chative-Student-Advisor/agent/nodes/orchestrator"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidSession = nodex.ErrInvalidSession
	ErrUnknownAgent   = nodex.ErrUnknownAgent
)

const defaultMaxToolPasses = 3

type Config struct {
	MaxToolPasses int
}

// Orchestrator is the coordinator runtime: route, run one specialist, reply.
// It keeps no dialogue state between turns.
type Orchestrator struct {
	models contractx.Registry
	tools  contractx.ToolGateway

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	maxToolPasses int
	now           func() time.Time
}

func New(
	models contractx.Registry,
	tools contractx.ToolGateway,
	cfg Config,
) (*Orchestrator, error) {
	if models == nil {
		return nil, errors.New("model registry is required")
	}
	if tools == nil {
		return nil, errors.New("tool gateway is required")
	}

	maxToolPasses := cfg.MaxToolPasses
	if maxToolPasses <= 0 {
		maxToolPasses = defaultMaxToolPasses
	}

	o := &Orchestrator{
		models:        models,
		tools:         tools,
		maxToolPasses: maxToolPasses,
		now:           time.Now,
	}

	graphRunner, err := o.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

func (o *Orchestrator) HandleMessage(ctx context.Context, rc contractx.RequestContext, text string) (string, error) {
	start := o.now()
	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{
		Context: rc,
		Text:    text,
	})
	if err != nil {
		log.Warn().Err(err).Str("session_id", rc.SessionID).Msg("handle message failed")
		return "", err
	}

	log.Info().
		Str("session_id", rc.SessionID).
		Str("agent", string(out.Agent)).
		Dur("elapsed", o.now().Sub(start)).
		Msg("message handled")
	return out.Reply, nil
}
