package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/LucasSantana-Dev/uiforge-engine/pkg/llm"
	"github.com/LucasSantana-Dev/uiforge-engine/pkg/models"
	"github.com/LucasSantana-Dev/uiforge-engine/pkg/repositories"
)

// MaxExcerptLength is the hard cap on code excerpts rendered into the
// context block.
const MaxExcerptLength = 1500

const truncationMarker = "\n// ... (truncated)"

// EnrichmentOptions tune a single enrichment pass.
type EnrichmentOptions struct {
	MaxGenerations      int
	MaxPatterns         int
	MinQuality          float64
	GenerationThreshold float64
	PatternThreshold    float64

	// Framework, when set, post-filters both result sets.
	Framework models.Framework

	// APIKey optionally overrides the platform embedding credential (BYOK).
	APIKey string
}

// DefaultEnrichmentOptions returns the standard retrieval tuning.
func DefaultEnrichmentOptions() EnrichmentOptions {
	return EnrichmentOptions{
		MaxGenerations:      3,
		MaxPatterns:         2,
		MinQuality:          0.7,
		GenerationThreshold: 0.7,
		PatternThreshold:    0.5,
	}
}

// EnrichmentResult carries the retrieval matches and the rendered context
// block. ContextBlock is empty when nothing matched.
type EnrichmentResult struct {
	Generations  []models.GenerationMatch
	Patterns     []models.PatternMatch
	ContextBlock string
}

// EnrichmentService retrieves semantically close prior generations and
// reusable patterns and renders them into a textual context block for the
// generation backend.
type EnrichmentService interface {
	Enrich(ctx context.Context, prompt string, opts EnrichmentOptions) (*EnrichmentResult, error)
}

type enrichmentService struct {
	llmFactory     llm.ClientFactory
	similarityRepo repositories.SimilarityRepository
	logger         *zap.Logger
}

// NewEnrichmentService creates a new EnrichmentService.
func NewEnrichmentService(
	llmFactory llm.ClientFactory,
	similarityRepo repositories.SimilarityRepository,
	logger *zap.Logger,
) EnrichmentService {
	return &enrichmentService{
		llmFactory:     llmFactory,
		similarityRepo: similarityRepo,
		logger:         logger.Named("enrichment"),
	}
}

var _ EnrichmentService = (*enrichmentService)(nil)

func (s *enrichmentService) Enrich(ctx context.Context, prompt string, opts EnrichmentOptions) (*EnrichmentResult, error) {
	embedder, err := s.llmFactory.CreateEmbeddingClient(opts.APIKey)
	if err != nil {
		return nil, fmt.Errorf("create embedding client: %w", err)
	}

	vector, err := embedder.Embed(ctx, prompt, llm.EmbedModeQuery)
	if err != nil {
		return nil, fmt.Errorf("embed prompt: %w", err)
	}

	// Both similarity queries run concurrently; enrichment returns once both
	// complete.
	var (
		generations []models.GenerationMatch
		patterns    []models.PatternMatch
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		generations, err = s.similarityRepo.MatchGenerations(gctx, vector, opts.GenerationThreshold, opts.MaxGenerations, opts.MinQuality)
		if err != nil {
			return fmt.Errorf("match generations: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		patterns, err = s.similarityRepo.MatchPatterns(gctx, vector, opts.PatternThreshold, opts.MaxPatterns)
		if err != nil {
			return fmt.Errorf("match patterns: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if opts.Framework != "" {
		generations = filterGenerationsByFramework(generations, opts.Framework)
		patterns = filterPatternsByFramework(patterns, opts.Framework)
	}

	result := &EnrichmentResult{
		Generations:  generations,
		Patterns:     patterns,
		ContextBlock: renderContextBlock(generations, patterns),
	}

	s.logger.Debug("Enrichment completed",
		zap.Int("generation_matches", len(generations)),
		zap.Int("pattern_matches", len(patterns)),
		zap.Int("context_len", len(result.ContextBlock)))

	return result, nil
}

func filterGenerationsByFramework(matches []models.GenerationMatch, framework models.Framework) []models.GenerationMatch {
	filtered := matches[:0]
	for _, m := range matches {
		if m.Framework == framework {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

func filterPatternsByFramework(matches []models.PatternMatch, framework models.Framework) []models.PatternMatch {
	filtered := matches[:0]
	for _, m := range matches {
		if m.Framework == framework {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

// renderContextBlock renders matches into the textual block handed to the
// generation backend. Empty when there is nothing to render.
func renderContextBlock(generations []models.GenerationMatch, patterns []models.PatternMatch) string {
	if len(generations) == 0 && len(patterns) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("## Reference examples\n\n")
	b.WriteString("Use the following prior components and reusable patterns as exemplars of style and quality:\n")

	for i, g := range generations {
		fmt.Fprintf(&b, "\n### Example %d\n", i+1)
		fmt.Fprintf(&b, "Prompt: %s\n", g.Prompt)
		fmt.Fprintf(&b, "```\n%s\n```\n", truncateExcerpt(g.Code))
	}

	for _, p := range patterns {
		fmt.Fprintf(&b, "\n### Pattern: %s (%s)\n", p.Name, p.Category)
		fmt.Fprintf(&b, "%s\n", p.Description)
		fmt.Fprintf(&b, "```\n%s\n```\n", truncateExcerpt(p.Code))
	}

	b.WriteString("\nMatch or exceed the quality of these examples in your implementation.\n")
	return b.String()
}

func truncateExcerpt(code string) string {
	if len(code) <= MaxExcerptLength {
		return code
	}
	return code[:MaxExcerptLength] + truncationMarker
}
