package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"jobfit-agent/handler"
	"jobfit-agent/internal/config"
	"jobfit-agent/internal/integrations/gemini"
	"jobfit-agent/internal/integrations/openai"
	"jobfit-agent/internal/integrations/paramstore"
	"jobfit-agent/internal/integrations/perplexity"
	"jobfit-agent/internal/repository"
	"jobfit-agent/internal/usecase"
)

const (
	perplexityTokenKey = "perplexity-token"
	openAITokenKey     = "openai-token"
	geminiTokenKey     = "gemini-token"
)

type ssmAPI interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

type secretSource interface {
	Value(ctx context.Context) (string, error)
}

// AWS holds the service clients the handler depends on.
type AWS struct {
	SSM      ssmAPI
	DynamoDB dynamodbAPI
}

func LoadAWS(ctx context.Context) (AWS, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return AWS{}, fmt.Errorf("bootstrap: load aws config: %w", err)
	}
	return AWS{
		SSM:      ssm.NewFromConfig(cfg),
		DynamoDB: dynamodb.NewFromConfig(cfg),
	}, nil
}

// NewHandler wires the providers, session store and assistant service
// described by cfg.
func NewHandler(cfg *config.Config, clients AWS, logger *slog.Logger) (*handler.Handler, error) {
	if logger == nil {
		logger = slog.Default()
	}

	secrets, err := newSecrets(cfg, clients.SSM)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	pplx, err := perplexity.NewClient(secrets.perplexity,
		perplexity.WithBaseURL(cfg.PerplexityBaseURL),
		perplexity.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: perplexity client: %w", err)
	}

	sdk, err := newSDKCompleter(cfg, secrets, httpClient)
	if err != nil {
		return nil, err
	}

	sessions, err := repository.NewSessionStore(clients.DynamoDB, cfg.SessionTable)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: session store: %w", err)
	}

	assistant, err := usecase.NewAssistantService(pplx, sdk, cfg.Models(), logger)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: assistant: %w", err)
	}

	logger.Info("handler configured",
		"sdk_provider", sdk.Name(),
		"secrets", secrets.origin,
		"session_table", cfg.SessionTable,
	)
	return handler.NewHandler(assistant, sessions, logger)
}

type providerSecrets struct {
	origin     string
	perplexity secretSource
	openai     secretSource
	gemini     secretSource
}

// newSecrets reads API keys from SSM when a parameter prefix is configured
// and from the environment otherwise.
func newSecrets(cfg *config.Config, api ssmAPI) (providerSecrets, error) {
	if cfg.ParamPrefix == "" {
		return providerSecrets{
			origin:     "env",
			perplexity: paramstore.Static(cfg.PerplexityAPIKey),
			openai:     paramstore.Static(cfg.OpenAIAPIKey),
			gemini:     paramstore.Static(cfg.GeminiAPIKey),
		}, nil
	}

	if api == nil {
		return providerSecrets{}, errors.New("bootstrap: PARAM_PREFIX is set but no ssm client is available")
	}
	store, err := paramstore.New(api, cfg.ParamPrefix)
	if err != nil {
		return providerSecrets{}, fmt.Errorf("bootstrap: paramstore: %w", err)
	}
	out := providerSecrets{origin: "ssm"}
	for key, dst := range map[string]*secretSource{
		perplexityTokenKey: &out.perplexity,
		openAITokenKey:     &out.openai,
		geminiTokenKey:     &out.gemini,
	} {
		secret, err := store.Secret(key)
		if err != nil {
			return providerSecrets{}, fmt.Errorf("bootstrap: secret %s: %w", key, err)
		}
		*dst = secret
	}
	return out, nil
}

func newSDKCompleter(cfg *config.Config, secrets providerSecrets, httpClient *http.Client) (usecase.Completer, error) {
	switch cfg.SDKProvider {
	case config.ProviderGemini:
		c, err := gemini.NewClient(secrets.gemini, gemini.WithHTTPClient(httpClient))
		if err != nil {
			return nil, fmt.Errorf("bootstrap: gemini client: %w", err)
		}
		return c, nil
	default:
		opts := []openai.Option{openai.WithHTTPClient(httpClient)}
		if cfg.OpenAIBaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.OpenAIBaseURL))
		}
		c, err := openai.NewClient(secrets.openai, opts...)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: openai client: %w", err)
		}
		return c, nil
	}
}
