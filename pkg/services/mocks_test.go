package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/LucasSantana-Dev/uiforge-engine/pkg/llm"
	"github.com/LucasSantana-Dev/uiforge-engine/pkg/models"
)

// ============================================================================
// Repository mocks
// ============================================================================

type mockGenerationRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*models.GenerationRecord
	updates []models.GenerationUpdate

	insertErr error
	updateErr error
}

func newMockGenerationRepo() *mockGenerationRepo {
	return &mockGenerationRepo{records: make(map[uuid.UUID]*models.GenerationRecord)}
}

func (m *mockGenerationRepo) Insert(ctx context.Context, record *models.GenerationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	clone := *record
	m.records[record.ID] = &clone
	return nil
}

func (m *mockGenerationRepo) Update(ctx context.Context, id uuid.UUID, update *models.GenerationUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updates = append(m.updates, *update)
	record, ok := m.records[id]
	if !ok {
		return nil
	}
	if update.Status != nil {
		record.Status = *update.Status
	}
	if update.Code != nil {
		record.Code = update.Code
	}
	if update.QualityScore != nil {
		record.QualityScore = update.QualityScore
	}
	if update.ErrorMessage != nil {
		record.ErrorMessage = update.ErrorMessage
	}
	return nil
}

func (m *mockGenerationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.GenerationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if record, ok := m.records[id]; ok {
		clone := *record
		return &clone, nil
	}
	return nil, nil
}

func (m *mockGenerationRepo) single() *models.GenerationRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		return r
	}
	return nil
}

type mockEmbeddingRepo struct {
	mu        sync.Mutex
	upserts   []uuid.UUID
	upsertErr error
}

func (m *mockEmbeddingRepo) UpsertGenerationEmbedding(ctx context.Context, generationID uuid.UUID, vector []float32, model string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserts = append(m.upserts, generationID)
	return nil
}

func (m *mockEmbeddingRepo) UpsertPatternEmbedding(ctx context.Context, patternID uuid.UUID, vector []float32, model string) error {
	return nil
}

type mockUsageRepo struct {
	mu           sync.Mutex
	increments   []uuid.UUID
	incrementErr error
}

func (m *mockUsageRepo) IncrementGenerationCount(ctx context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.incrementErr != nil {
		return m.incrementErr
	}
	m.increments = append(m.increments, userID)
	return nil
}

type matchGenerationsCall struct {
	Threshold  float64
	Limit      int
	MinQuality float64
}

type matchPatternsCall struct {
	Threshold float64
	Limit     int
}

type mockSimilarityRepo struct {
	mu              sync.Mutex
	generations     []models.GenerationMatch
	patterns        []models.PatternMatch
	generationsErr  error
	patternsErr     error
	generationCalls []matchGenerationsCall
	patternCalls    []matchPatternsCall
}

func (m *mockSimilarityRepo) MatchGenerations(ctx context.Context, vector []float32, threshold float64, limit int, minQuality float64) ([]models.GenerationMatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generationCalls = append(m.generationCalls, matchGenerationsCall{threshold, limit, minQuality})
	if m.generationsErr != nil {
		return nil, m.generationsErr
	}
	return m.generations, nil
}

func (m *mockSimilarityRepo) MatchPatterns(ctx context.Context, vector []float32, threshold float64, limit int) ([]models.PatternMatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patternCalls = append(m.patternCalls, matchPatternsCall{threshold, limit})
	if m.patternsErr != nil {
		return nil, m.patternsErr
	}
	return m.patterns, nil
}

// ============================================================================
// LLM mocks
// ============================================================================

type embedCall struct {
	Text string
	Mode llm.EmbedMode
}

type mockEmbedder struct {
	mu     sync.Mutex
	vector []float32
	err    error
	calls  []embedCall
}

func (m *mockEmbedder) Embed(ctx context.Context, text string, mode llm.EmbedMode) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, embedCall{Text: text, Mode: mode})
	if m.err != nil {
		return nil, m.err
	}
	if m.vector == nil {
		return []float32{0.1, 0.2, 0.3}, nil
	}
	return m.vector, nil
}

type mockStreamer struct {
	chunks []string
	err    error
	model  string
}

func (m *mockStreamer) StreamComponent(ctx context.Context, req *llm.StreamRequest, onDelta func(string)) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	var full string
	for _, chunk := range m.chunks {
		full += chunk
		if onDelta != nil {
			onDelta(chunk)
		}
	}
	return full, nil
}

func (m *mockStreamer) Model() string {
	if m.model == "" {
		return "mock-model"
	}
	return m.model
}

type mockLLMFactory struct {
	streamer    llm.ComponentStreamer
	embedder    llm.Embedder
	streamerErr error
	embedderErr error
}

func (m *mockLLMFactory) CreateGenerationClient(apiKey string) (llm.ComponentStreamer, error) {
	if m.streamerErr != nil {
		return nil, m.streamerErr
	}
	return m.streamer, nil
}

func (m *mockLLMFactory) CreateEmbeddingClient(apiKey string) (llm.Embedder, error) {
	if m.embedderErr != nil {
		return nil, m.embedderErr
	}
	return m.embedder, nil
}

// ============================================================================
// Gateway / enrichment mocks
// ============================================================================

type mockGateway struct {
	configured bool
	code       string
	err        error
	lastReq    *models.GenerationRequest
	lastCtxAdd string
}

func (m *mockGateway) IsConfigured() bool { return m.configured }

func (m *mockGateway) GenerateComponent(ctx context.Context, req *models.GenerationRequest, contextAddition string) (string, error) {
	m.lastReq = req
	m.lastCtxAdd = contextAddition
	if m.err != nil {
		return "", m.err
	}
	return m.code, nil
}

type mockEnrichment struct {
	result *EnrichmentResult
	err    error
	calls  int
}

func (m *mockEnrichment) Enrich(ctx context.Context, prompt string, opts EnrichmentOptions) (*EnrichmentResult, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &EnrichmentResult{}, nil
	}
	return m.result, nil
}
