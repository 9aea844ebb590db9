package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/LucasSantana-Dev/uiforge-engine/pkg/apperrors"
	"github.com/LucasSantana-Dev/uiforge-engine/pkg/config"
	"github.com/LucasSantana-Dev/uiforge-engine/pkg/llm"
	"github.com/LucasSantana-Dev/uiforge-engine/pkg/models"
	"github.com/LucasSantana-Dev/uiforge-engine/pkg/quality"
)

// cleanComponent passes every quality gate: no unsafe sinks, no debug output,
// typed props, labelled interactive element, layout utilities and a breakpoint.
const cleanComponent = `import React from 'react';

interface ButtonProps {
  label: string;
  onClick: () => void;
}

export function Button({ label, onClick }: ButtonProps) {
  return (
    <button onClick={onClick} className="flex items-center px-4 py-2 md:px-6">
      {label}
    </button>
  );
}`

type generationFixture struct {
	repo       *mockGenerationRepo
	embeddings *mockEmbeddingRepo
	usage      *mockUsageRepo
	enrichment *mockEnrichment
	factory    *mockLLMFactory
	gateway    *mockGateway
	svc        GenerationService
}

func newGenerationFixture(t *testing.T) *generationFixture {
	t.Helper()
	f := &generationFixture{
		repo:       newMockGenerationRepo(),
		embeddings: &mockEmbeddingRepo{},
		usage:      &mockUsageRepo{},
		enrichment: &mockEnrichment{},
		factory: &mockLLMFactory{
			streamer: &mockStreamer{chunks: []string{cleanComponent}},
			embedder: &mockEmbedder{},
		},
		gateway: &mockGateway{},
	}
	cfg := &config.Config{
		AI: config.AIConfig{EmbeddingModel: "text-embedding-3-small"},
		Retrieval: config.RetrievalConfig{
			MaxGenerations:      3,
			MaxPatterns:         2,
			MinQuality:          0.7,
			GenerationThreshold: 0.7,
			PatternThreshold:    0.5,
		},
	}
	f.svc = NewGenerationService(f.repo, f.embeddings, f.usage, f.enrichment, f.factory, f.gateway, cfg, zap.NewNop())
	return f
}

func (f *generationFixture) waitPostProcessing() {
	f.svc.(*generationService).postTasks.Wait()
}

func validRequest() *models.GenerationRequest {
	return &models.GenerationRequest{
		Prompt:    "Create a modern button component with hover effects",
		Framework: models.FrameworkReact,
	}
}

func collectEvents(t *testing.T, run func(events chan<- models.GenerationEvent) error) ([]models.GenerationEvent, error) {
	t.Helper()
	events := make(chan models.GenerationEvent, 64)
	err := run(events)
	close(events)
	var collected []models.GenerationEvent
	for event := range events {
		collected = append(collected, event)
	}
	return collected, err
}

func TestGenerate_SuccessfulPipeline(t *testing.T) {
	f := newGenerationFixture(t)
	f.enrichment.result = &EnrichmentResult{ContextBlock: "## Reference examples\n"}
	userID := uuid.New()

	events, err := collectEvents(t, func(events chan<- models.GenerationEvent) error {
		return f.svc.Generate(context.Background(), userID, validRequest(), events)
	})
	require.NoError(t, err)

	// start, one chunk, quality, complete
	require.Len(t, events, 4)
	assert.Equal(t, models.EventStart, events[0].Type)
	assert.Equal(t, models.EventChunk, events[1].Type)
	assert.Equal(t, cleanComponent, events[1].Content)
	assert.Equal(t, models.EventQuality, events[2].Type)
	assert.Equal(t, models.EventComplete, events[3].Type)

	start, ok := events[0].Data.(models.StartPayload)
	require.True(t, ok)
	assert.Equal(t, models.ProviderDirect, start.Provider)
	assert.Equal(t, "mock-model", start.Model)

	report, ok := events[2].Data.(*models.QualityReport)
	require.True(t, ok)
	require.Len(t, report.Results, len(quality.GateOrder))
	for i, gate := range quality.GateOrder {
		assert.Equal(t, gate, report.Results[i].Gate)
	}
	assert.True(t, report.Passed)
	assert.Equal(t, 1.0, report.Score)

	complete, ok := events[3].Data.(models.CompletePayload)
	require.True(t, ok)
	assert.Equal(t, cleanComponent, complete.Code)
	assert.True(t, complete.QualityPassed)
	assert.True(t, complete.ContextUsed)

	record := f.repo.single()
	require.NotNil(t, record)
	assert.Equal(t, models.StatusCompleted, record.Status)
	assert.Equal(t, userID, record.UserID)
	require.NotNil(t, record.Code)
	assert.Equal(t, cleanComponent, *record.Code)
	require.NotNil(t, record.QualityScore)
	assert.Equal(t, 1.0, *record.QualityScore)
}

func TestGenerate_ValidationFailureCreatesNoRecord(t *testing.T) {
	f := newGenerationFixture(t)
	req := validRequest()
	req.Prompt = "too short"

	events, err := collectEvents(t, func(events chan<- models.GenerationEvent) error {
		return f.svc.Generate(context.Background(), uuid.New(), req, events)
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Empty(t, events)
	assert.Nil(t, f.repo.single())
}

func TestGenerate_GatewayUnavailableCreatesNoRecord(t *testing.T) {
	f := newGenerationFixture(t)
	req := validRequest()
	req.Provider = models.ProviderGateway

	events, err := collectEvents(t, func(events chan<- models.GenerationEvent) error {
		return f.svc.Generate(context.Background(), uuid.New(), req, events)
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrGatewayUnavailable)
	assert.Empty(t, events)
	assert.Nil(t, f.repo.single())
}

func TestGenerate_BackendFailureMarksRecordFailed(t *testing.T) {
	f := newGenerationFixture(t)
	f.factory.streamer = &mockStreamer{err: errors.New("model overloaded")}

	events, err := collectEvents(t, func(events chan<- models.GenerationEvent) error {
		return f.svc.Generate(context.Background(), uuid.New(), validRequest(), events)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")

	// The start event is already out when the backend fails. The caller emits
	// the terminal error event, so none appears here.
	require.Len(t, events, 1)
	assert.Equal(t, models.EventStart, events[0].Type)

	record := f.repo.single()
	require.NotNil(t, record)
	assert.Equal(t, models.StatusFailed, record.Status)
	require.NotNil(t, record.ErrorMessage)
	assert.Contains(t, *record.ErrorMessage, "model overloaded")
	assert.Nil(t, record.Code)
}

func TestGenerate_EnrichmentFailureIsNonFatal(t *testing.T) {
	f := newGenerationFixture(t)
	f.enrichment.err = errors.New("similarity search timed out")

	events, err := collectEvents(t, func(events chan<- models.GenerationEvent) error {
		return f.svc.Generate(context.Background(), uuid.New(), validRequest(), events)
	})
	require.NoError(t, err)

	complete, ok := events[len(events)-1].Data.(models.CompletePayload)
	require.True(t, ok)
	assert.False(t, complete.ContextUsed)

	record := f.repo.single()
	require.NotNil(t, record)
	assert.Equal(t, models.StatusCompleted, record.Status)
}

func TestGenerate_RetrievalDisabledSkipsEnrichment(t *testing.T) {
	f := newGenerationFixture(t)
	disabled := false
	req := validRequest()
	req.EnableRetrieval = &disabled

	_, err := collectEvents(t, func(events chan<- models.GenerationEvent) error {
		return f.svc.Generate(context.Background(), uuid.New(), req, events)
	})
	require.NoError(t, err)
	assert.Zero(t, f.enrichment.calls)
}

func TestGenerate_GatewayProviderStreamsSingleChunk(t *testing.T) {
	f := newGenerationFixture(t)
	f.gateway.configured = true
	f.gateway.code = cleanComponent
	req := validRequest()
	req.Provider = models.ProviderGateway

	events, err := collectEvents(t, func(events chan<- models.GenerationEvent) error {
		return f.svc.Generate(context.Background(), uuid.New(), req, events)
	})
	require.NoError(t, err)

	var chunks []models.GenerationEvent
	for _, e := range events {
		if e.Type == models.EventChunk {
			chunks = append(chunks, e)
		}
	}
	require.Len(t, chunks, 1)
	assert.Equal(t, cleanComponent, chunks[0].Content)

	start, ok := events[0].Data.(models.StartPayload)
	require.True(t, ok)
	assert.Equal(t, models.ProviderGateway, start.Provider)
	assert.Equal(t, "specialist", start.Model)

	record := f.repo.single()
	require.NotNil(t, record)
	assert.Equal(t, models.ProviderGateway, record.Provider)
}

func TestGenerate_PostProcessingStoresEmbeddingAndUsage(t *testing.T) {
	f := newGenerationFixture(t)
	userID := uuid.New()

	_, err := collectEvents(t, func(events chan<- models.GenerationEvent) error {
		return f.svc.Generate(context.Background(), userID, validRequest(), events)
	})
	require.NoError(t, err)
	f.waitPostProcessing()

	record := f.repo.single()
	require.NotNil(t, record)
	require.Len(t, f.embeddings.upserts, 1)
	assert.Equal(t, record.ID, f.embeddings.upserts[0])
	require.Len(t, f.usage.increments, 1)
	assert.Equal(t, userID, f.usage.increments[0])

	embedder := f.factory.embedder.(*mockEmbedder)
	require.NotEmpty(t, embedder.calls)
	last := embedder.calls[len(embedder.calls)-1]
	assert.Equal(t, llm.EmbedModeDocument, last.Mode)
	assert.Equal(t, validRequest().Prompt, last.Text)
}

func TestGenerate_PostProcessingFailuresAreSwallowed(t *testing.T) {
	f := newGenerationFixture(t)
	f.factory.embedder = &mockEmbedder{err: errors.New("embedding endpoint down")}
	f.embeddings.upsertErr = errors.New("unreachable")
	userID := uuid.New()

	_, err := collectEvents(t, func(events chan<- models.GenerationEvent) error {
		return f.svc.Generate(context.Background(), userID, validRequest(), events)
	})
	require.NoError(t, err)
	f.waitPostProcessing()

	// Usage accounting still ran even though embedding storage failed.
	require.Len(t, f.usage.increments, 1)
	assert.Empty(t, f.embeddings.upserts)
}

func TestGenerate_QualityWarningsDoNotFailGeneration(t *testing.T) {
	f := newGenerationFixture(t)
	noisy := strings.Replace(cleanComponent, "return (", "console.log('render');\n  return (", 1)
	f.factory.streamer = &mockStreamer{chunks: []string{noisy}}

	events, err := collectEvents(t, func(events chan<- models.GenerationEvent) error {
		return f.svc.Generate(context.Background(), uuid.New(), validRequest(), events)
	})
	require.NoError(t, err)

	report, ok := events[2].Data.(*models.QualityReport)
	require.True(t, ok)
	assert.True(t, report.Passed)
	assert.Less(t, report.Score, 1.0)

	record := f.repo.single()
	require.NotNil(t, record)
	assert.Equal(t, models.StatusCompleted, record.Status)
}

func TestValidateRequest_GatewayRequiresConfiguration(t *testing.T) {
	f := newGenerationFixture(t)
	req := validRequest()
	req.Provider = models.ProviderGateway

	err := f.svc.ValidateRequest(req)
	assert.ErrorIs(t, err, apperrors.ErrGatewayUnavailable)

	f.gateway.configured = true
	assert.NoError(t, f.svc.ValidateRequest(req))
}

func TestGetByID_DelegatesToRepository(t *testing.T) {
	f := newGenerationFixture(t)
	record := &models.GenerationRecord{ID: uuid.New(), Status: models.StatusCompleted}
	require.NoError(t, f.repo.Insert(context.Background(), record))

	got, err := f.svc.GetByID(context.Background(), record.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, record.ID, got.ID)
}
