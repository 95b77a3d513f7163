package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Student-Advisor/agent/contract"
	openrouterx "github.com/tanpawarit/Chative-Student-Advisor/pkg/openrouter"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"google/gemini-2.0-flash-001"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.3"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	CoordinatorModel       string  `envconfig:"COORDINATOR_MODEL" split_words:"true"`
	TalkativeModel         string  `envconfig:"TALKATIVE_MODEL" split_words:"true"`
	SchedulerModel         string  `envconfig:"SCHEDULER_MODEL" split_words:"true"`
	CoordinatorTemperature float32 `envconfig:"COORDINATOR_TEMPERATURE" split_words:"true" default:"0"`
	TalkativeTemperature   float32 `envconfig:"TALKATIVE_TEMPERATURE" split_words:"true" default:"-1"`
	SchedulerTemperature   float32 `envconfig:"SCHEDULER_TEMPERATURE" split_words:"true" default:"-1"`

	// MaxToolPasses bounds the act/execute loop of one specialist turn.
	MaxToolPasses int `envconfig:"MAX_TOOL_PASSES" split_words:"true" default:"3"`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY" split_words:"true"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" split_words:"true" default:"gemini-2.0-flash"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	if c.MaxToolPasses < 1 {
		return fmt.Errorf("%w: max tool passes must be >= 1", contractx.ErrValidation)
	}
	return nil
}

// ValidateGemini checks the settings used by the ADK runtime.
func (c Config) ValidateGemini() error {
	if strings.TrimSpace(c.GeminiAPIKey) == "" {
		return fmt.Errorf("%w: gemini api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.GeminiModel) == "" {
		return fmt.Errorf("%w: gemini model is required", contractx.ErrValidation)
	}
	return nil
}

func (c Config) OpenRouterFor(agentType contractx.AgentType) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch agentType {
	case contractx.AgentTypeCoordinator:
		if v := strings.TrimSpace(c.CoordinatorModel); v != "" {
			modelName = v
		}
		if c.CoordinatorTemperature >= 0 {
			temp = c.CoordinatorTemperature
		}
	case contractx.AgentTypeTalkative:
		if v := strings.TrimSpace(c.TalkativeModel); v != "" {
			modelName = v
		}
		if c.TalkativeTemperature >= 0 {
			temp = c.TalkativeTemperature
		}
	case contractx.AgentTypeScheduler:
		if v := strings.TrimSpace(c.SchedulerModel); v != "" {
			modelName = v
		}
		if c.SchedulerTemperature >= 0 {
			temp = c.SchedulerTemperature
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
