// Package openai implements the translation provider on top of the OpenAI
// chat completions API, for both plain OpenAI-compatible endpoints and Azure
// OpenAI deployments.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/troosts/doctranslate/pkg/providers"
)

// Config holds the client settings.
type Config struct {
	// APIType is "openai" or "azure".
	APIType string
	// Endpoint is the service base URL. Required for azure, optional for
	// openai (defaults to api.openai.com).
	Endpoint string
	APIKey   string
	// APIVersion is the Azure API version, e.g. "2024-02-01".
	APIVersion string
	// Model is the model name, or the deployment name on Azure.
	Model string

	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// Provider is the OpenAI-backed translation provider.
type Provider struct {
	client *openai.Client
	cfg    Config
	log    *zap.Logger
}

// New creates a provider from the given config.
func New(cfg Config, log *zap.Logger) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai provider requires an API key")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("openai provider requires a model or deployment name")
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 300 * time.Second
	}

	var clientCfg openai.ClientConfig
	switch cfg.APIType {
	case "azure":
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("azure provider requires an endpoint")
		}
		clientCfg = openai.DefaultAzureConfig(cfg.APIKey, cfg.Endpoint)
		if cfg.APIVersion != "" {
			clientCfg.APIVersion = cfg.APIVersion
		}
		// The configured model name doubles as the deployment name.
		clientCfg.AzureModelMapperFunc = func(model string) string {
			return cfg.Model
		}
	default:
		clientCfg = openai.DefaultConfig(cfg.APIKey)
		if cfg.Endpoint != "" {
			// go-openai appends path suffixes that start with a slash.
			clientCfg.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")
		}
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Provider{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
		log:    log,
	}, nil
}

// Name identifies the provider in logs and status output.
func (p *Provider) Name() string {
	if p.cfg.APIType == "azure" {
		return "azure-openai"
	}
	return "openai"
}

// Translate sends a single chat completion request and returns the raw
// response text. Errors are returned as-is; the invoker decides how to
// degrade.
func (p *Provider) Translate(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: p.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.Text},
		},
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: p.cfg.Temperature,
	}

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	p.log.Debug("translation request completed",
		zap.String("model", p.cfg.Model),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)

	return &providers.Response{
		Text:      resp.Choices[0].Message.Content,
		TokensIn:  resp.Usage.PromptTokens,
		TokensOut: resp.Usage.CompletionTokens,
	}, nil
}
