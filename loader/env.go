package loader

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/nathoo/wolfcore/agent"
)

// Settings are the process-level knobs read from the environment. Flags
// given on the command line take precedence.
type Settings struct {
	Seed     int64  `env:"WOLFCORE_SEED"`
	Lang     string `env:"WOLFCORE_LANG"      envDefault:"en"`
	SaveDir  string `env:"WOLFCORE_SAVE_DIR"`
	DB       string `env:"WOLFCORE_DB"`
	LogLevel string `env:"WOLFCORE_LOG_LEVEL" envDefault:"warn"`
	LogFile  string `env:"WOLFCORE_LOG_FILE"`
	LLM      LLMSettings
}

// ProviderSettings hold one chat provider's credentials. Empty fields take
// the provider's defaults.
type ProviderSettings struct {
	APIKey  string `env:"API_KEY"`
	BaseURL string `env:"BASE_URL"`
	Model   string `env:"MODEL"`
}

// LLMSettings configure model-backed players, using the variable names the
// providers' own tools read (OPENAI_API_KEY, ANTHROPIC_MODEL, ...).
type LLMSettings struct {
	OpenAI      ProviderSettings `envPrefix:"OPENAI_"`
	Anthropic   ProviderSettings `envPrefix:"ANTHROPIC_"`
	XAI         ProviderSettings `envPrefix:"XAI_"`
	Local       ProviderSettings `envPrefix:"LOCAL_"`
	Custom      ProviderSettings `envPrefix:"CUSTOM_"`
	Temperature float64          `env:"WOLFCORE_LLM_TEMPERATURE" envDefault:"0.7"`
	MaxTokens   int              `env:"WOLFCORE_LLM_MAX_TOKENS"  envDefault:"500"`
	Timeout     time.Duration    `env:"WOLFCORE_LLM_TIMEOUT"     envDefault:"60s"`
}

// Config builds the agent configuration for provider. A non-empty model
// overrides the provider's configured model.
func (s LLMSettings) Config(provider, model string) (agent.LLMConfig, error) {
	var p ProviderSettings
	switch strings.ToLower(provider) {
	case agent.ProviderOpenAI, "":
		p = s.OpenAI
		provider = agent.ProviderOpenAI
	case agent.ProviderAnthropic:
		p = s.Anthropic
	case agent.ProviderXAI:
		p = s.XAI
	case agent.ProviderLocal:
		p = s.Local
	case agent.ProviderCustom:
		p = s.Custom
	default:
		return agent.LLMConfig{}, fmt.Errorf("unknown llm provider %q", provider)
	}
	if model == "" {
		model = p.Model
	}
	return agent.LLMConfig{
		Provider:    strings.ToLower(provider),
		Model:       model,
		BaseURL:     p.BaseURL,
		APIKey:      p.APIKey,
		Temperature: s.Temperature,
		MaxTokens:   s.MaxTokens,
		Timeout:     s.Timeout,
	}, nil
}

// LoadSettings parses Settings from the environment.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	return s, nil
}
