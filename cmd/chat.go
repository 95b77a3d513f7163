package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	adkx "github.com/tanpawarit/Chative-Student-Advisor/agent/adk"
	"github.com/tanpawarit/Chative-Student-Advisor/agent/agents/orchestrator"
	"github.com/tanpawarit/Chative-Student-Advisor/agent/agents/specialist"
	contractx "github.com/tanpawarit/Chative-Student-Advisor/agent/contract"
	llmx "github.com/tanpawarit/Chative-Student-Advisor/agent/llm"
	promptx "github.com/tanpawarit/Chative-Student-Advisor/agent/prompt"
	configx "github.com/tanpawarit/Chative-Student-Advisor/pkg/config"
)

const replPrompt = "you> "

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the advisor through the OpenRouter coordinator",
	Long: `chat routes every message through the coordinator, which hands it to the
talkative or scheduler assistant. Requires LLM_API_KEY. Type exit to quit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, rc, err := session(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		llmCfg, err := configx.New[llmx.Config]("LLM")
		if err != nil {
			return fmt.Errorf("load llm config: %w", err)
		}
		reg, err := specialist.NewRegistry(cmd.Context(), *llmCfg)
		if err != nil {
			return err
		}
		orch, err := orchestrator.New(reg, a.gateway, orchestrator.Config{
			MaxToolPasses: firstPositive(a.cfg.MaxToolPasses, llmCfg.MaxToolPasses),
		})
		if err != nil {
			return err
		}

		rc.SessionID = uuid.NewString()
		return repl(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), perTurn(orch, rc, time.Now))
	},
}

var adkCmd = &cobra.Command{
	Use:   "adk",
	Short: "Talk to the advisor through the Gemini agent runtime",
	Long: `adk runs the manager agent with talkative and scheduler sub-agents on
Gemini. Requires LLM_GEMINI_API_KEY. Type exit to quit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, rc, err := session(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		llmCfg, err := configx.New[llmx.Config]("LLM")
		if err != nil {
			return fmt.Errorf("load llm config: %w", err)
		}
		llm, err := adkx.NewGeminiModel(cmd.Context(), *llmCfg)
		if err != nil {
			return err
		}

		sessionID := uuid.NewString()
		rc.SessionID = sessionID
		root, err := adkx.NewCoordinator(llm, adkx.NewHandlers(a.toolbox, rc), promptx.LoadPromptSet())
		if err != nil {
			return err
		}
		sess, err := adkx.NewSession(cmd.Context(), root, firstNonEmpty(rc.StudentID, adkx.DefaultUserID), sessionID)
		if err != nil {
			return err
		}
		return repl(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), sess.Send)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd, adkCmd)
}

type replyFunc func(ctx context.Context, text string) (string, error)

type messageHandler interface {
	HandleMessage(ctx context.Context, rc contractx.RequestContext, text string) (string, error)
}

// perTurn copies base for every message and stamps it with the current time.
func perTurn(h messageHandler, base contractx.RequestContext, now func() time.Time) replyFunc {
	return func(ctx context.Context, text string) (string, error) {
		rc := base
		rc.Now = now().UTC()
		return h.HandleMessage(ctx, rc, text)
	}
}

// repl reads one message per line until EOF or exit. A failed turn is
// reported and the conversation continues.
func repl(ctx context.Context, in io.Reader, out io.Writer, reply replyFunc) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, replPrompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		text := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(text) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		answer, err := reply(ctx, text)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			log.Debug().Err(err).Msg("turn failed")
			fmt.Fprintf(out, "advisor: sorry, that did not work (%s)\n", contractx.KindOf(err))
			continue
		}
		if err := render(out, answer); err != nil {
			return err
		}
	}
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
