package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/LucasSantana-Dev/uiforge-engine/pkg/config"
)

// ComponentStreamer is the interface for streaming component generation.
// Use it for dependency injection to enable mocking in tests.
type ComponentStreamer interface {
	StreamComponent(ctx context.Context, req *StreamRequest, onDelta func(string)) (string, error)
	Model() string
}

// Embedder converts text to fixed-length vectors.
type Embedder interface {
	Embed(ctx context.Context, text string, mode EmbedMode) ([]float32, error)
}

// ClientFactory creates LLM clients, resolving the platform credential
// against an optional caller-supplied one (bring-your-own-key).
type ClientFactory interface {
	CreateGenerationClient(apiKey string) (ComponentStreamer, error)
	CreateEmbeddingClient(apiKey string) (Embedder, error)
}

// Factory creates clients from the server AI configuration.
type Factory struct {
	cfg    *config.AIConfig
	logger *zap.Logger
}

// NewFactory creates a new client factory.
func NewFactory(cfg *config.AIConfig, logger *zap.Logger) *Factory {
	return &Factory{cfg: cfg, logger: logger}
}

// CreateGenerationClient creates a streaming client for the direct backend.
// A caller-supplied apiKey overrides the platform default for this client.
func (f *Factory) CreateGenerationClient(apiKey string) (ComponentStreamer, error) {
	key := apiKey
	if key == "" {
		key = f.cfg.LLMAPIKey
	}

	client, err := NewClient(&Config{
		Endpoint: f.cfg.LLMBaseURL,
		Model:    f.cfg.LLMModel,
		APIKey:   key,
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("create generation client: %w", err)
	}
	return client, nil
}

// CreateEmbeddingClient creates a client for embeddings. Uses the
// embedding-specific endpoint, falling back to the LLM endpoint.
func (f *Factory) CreateEmbeddingClient(apiKey string) (Embedder, error) {
	key := apiKey
	if key == "" {
		key = f.cfg.EffectiveEmbeddingAPIKey()
	}

	client, err := NewClient(&Config{
		Endpoint: f.cfg.EffectiveEmbeddingBaseURL(),
		Model:    f.cfg.EmbeddingModel,
		APIKey:   key,
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("create embedding client: %w", err)
	}
	return client, nil
}

var _ ClientFactory = (*Factory)(nil)
