package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/LucasSantana-Dev/uiforge-engine/pkg/apperrors"
)

// EmbedMode selects how the embedding model weights the text: query-oriented
// encoding for retrieval, document-oriented encoding for indexing.
type EmbedMode string

const (
	EmbedModeQuery    EmbedMode = "query"
	EmbedModeDocument EmbedMode = "document"
)

// Retrieval-instruction prefixes understood by nomic/E5-family embedding
// models. The serving layer strips them for models that do not use prefixes.
const (
	queryPrefix    = "search_query: "
	documentPrefix = "search_document: "
)

// Embed converts text to a fixed-length vector. A credential is required:
// without one the call fails with a configuration error before any network
// request. Deterministic for a given model version; retries are the caller's
// decision.
func (c *Client) Embed(ctx context.Context, text string, mode EmbedMode) ([]float32, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: no embedding credential available", apperrors.ErrConfiguration)
	}

	input := text
	switch mode {
	case EmbedModeQuery:
		input = queryPrefix + text
	case EmbedModeDocument:
		input = documentPrefix + text
	}

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.model),
		Input: []string{input},
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", ClassifyError(err))
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("no embedding in response")
	}

	return resp.Data[0].Embedding, nil
}
