package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"jobfit-agent/internal/usecase"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	defaultGeminiModel = "gemini-2.5-flash"
)

type Config struct {
	SessionTable string `mapstructure:"session_table"`
	ParamPrefix  string `mapstructure:"param_prefix"`

	PerplexityAPIKey string `mapstructure:"perplexity_api_key"`
	OpenAIAPIKey     string `mapstructure:"openai_api_key"`
	GeminiAPIKey     string `mapstructure:"gemini_api_key"`

	PerplexityBaseURL string `mapstructure:"perplexity_base_url"`
	OpenAIBaseURL     string `mapstructure:"openai_base_url"`
	SDKProvider       string `mapstructure:"sdk_provider"`

	ModelAnalyzeJob          string `mapstructure:"model_analyze_job"`
	ModelAnalyzeFit          string `mapstructure:"model_analyze_fit"`
	ModelGenerateResume      string `mapstructure:"model_generate_resume"`
	ModelGenerateCoverLetter string `mapstructure:"model_generate_cover_letter"`

	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	LogLevel    string        `mapstructure:"log_level"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("session_table", "")
	v.SetDefault("param_prefix", "")
	v.SetDefault("perplexity_api_key", "")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("perplexity_base_url", "https://api.perplexity.ai")
	v.SetDefault("openai_base_url", "")
	v.SetDefault("sdk_provider", ProviderOpenAI)
	v.SetDefault("model_analyze_job", "")
	v.SetDefault("model_analyze_fit", "")
	v.SetDefault("model_generate_resume", "")
	v.SetDefault("model_generate_cover_letter", "")
	v.SetDefault("http_timeout", "0s")
	v.SetDefault("log_level", "info")
}

// Load reads the configuration from the environment. Every key is the
// upper-cased field tag, e.g. SESSION_TABLE.
func Load() (*Config, error) {
	v := viper.New()
	defaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.SDKProvider = strings.ToLower(strings.TrimSpace(cfg.SDKProvider))
	cfg.ParamPrefix = strings.TrimSpace(cfg.ParamPrefix)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.SessionTable) == "" {
		errs = append(errs, errors.New("SESSION_TABLE is required"))
	}
	switch c.SDKProvider {
	case ProviderOpenAI, ProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("SDK_PROVIDER must be %q or %q, got %q", ProviderOpenAI, ProviderGemini, c.SDKProvider))
	}
	if c.HTTPTimeout < 0 {
		errs = append(errs, errors.New("HTTP_TIMEOUT must not be negative"))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Models returns the per-operation models. Unset SDK models default to a
// Gemini model when that backend is selected; the rest are filled in by
// the usecase package.
func (c *Config) Models() usecase.Models {
	m := usecase.Models{
		AnalyzeJob:          c.ModelAnalyzeJob,
		AnalyzeFit:          c.ModelAnalyzeFit,
		GenerateResume:      c.ModelGenerateResume,
		GenerateCoverLetter: c.ModelGenerateCoverLetter,
	}
	if c.SDKProvider == ProviderGemini {
		for _, model := range []*string{&m.AnalyzeFit, &m.GenerateResume, &m.GenerateCoverLetter} {
			if *model == "" {
				*model = defaultGeminiModel
			}
		}
	}
	return m
}
