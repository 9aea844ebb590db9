package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/LucasSantana-Dev/uiforge-engine/pkg/llm"
	"github.com/LucasSantana-Dev/uiforge-engine/pkg/models"
)

// GenerationBackend is one interchangeable code-generation backend. Generate
// streams incremental output through onChunk and returns the full code text.
type GenerationBackend interface {
	Provider() models.Provider
	Model() string
	Generate(ctx context.Context, req *models.GenerationRequest, contextBlock string, onChunk func(string)) (string, error)
}

// GatewayClient is the subset of the gateway client the orchestrator needs.
type GatewayClient interface {
	IsConfigured() bool
	GenerateComponent(ctx context.Context, req *models.GenerationRequest, contextAddition string) (string, error)
}

// ============================================================================
// Direct backend (OpenAI-compatible streaming)
// ============================================================================

type directBackend struct {
	streamer llm.ComponentStreamer
}

func (b *directBackend) Provider() models.Provider { return models.ProviderDirect }
func (b *directBackend) Model() string             { return b.streamer.Model() }

func (b *directBackend) Generate(ctx context.Context, req *models.GenerationRequest, contextBlock string, onChunk func(string)) (string, error) {
	prompt := req.Prompt
	if contextBlock != "" {
		prompt = prompt + "\n\n" + contextBlock
	}

	return b.streamer.StreamComponent(ctx, &llm.StreamRequest{
		SystemPrompt: buildSystemPrompt(req),
		Prompt:       prompt,
	}, onChunk)
}

// ============================================================================
// Gateway backend (remote tool invocation)
// ============================================================================

// The gateway produces the complete component in one tool result; it is
// forwarded to the caller as a single chunk so both backends present the same
// streaming surface.
type gatewayBackend struct {
	client GatewayClient
	model  string
}

func (b *gatewayBackend) Provider() models.Provider { return models.ProviderGateway }
func (b *gatewayBackend) Model() string             { return b.model }

func (b *gatewayBackend) Generate(ctx context.Context, req *models.GenerationRequest, contextBlock string, onChunk func(string)) (string, error) {
	code, err := b.client.GenerateComponent(ctx, req, contextBlock)
	if err != nil {
		return "", err
	}
	if onChunk != nil {
		onChunk(code)
	}
	return code, nil
}

// ============================================================================
// System prompt
// ============================================================================

var frameworkLanguage = map[models.Framework]string{
	models.FrameworkReact:   "React with JSX",
	models.FrameworkVue:     "Vue 3 with the composition API",
	models.FrameworkAngular: "Angular",
	models.FrameworkSvelte:  "Svelte",
}

var libraryInstruction = map[models.ComponentLibrary]string{
	models.LibraryTailwind: "Style with Tailwind CSS utility classes, including responsive breakpoint variants.",
	models.LibraryMUI:      "Use Material UI (MUI) components.",
	models.LibraryChakra:   "Use Chakra UI components.",
	models.LibraryShadcn:   "Use shadcn/ui components.",
	models.LibraryNone:     "Do not depend on any component library; use plain markup and CSS.",
}

func buildSystemPrompt(req *models.GenerationRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an expert UI engineer. Generate a single, production-quality %s component.\n",
		frameworkLanguage[req.Framework])

	if instruction, ok := libraryInstruction[req.EffectiveLibrary()]; ok {
		b.WriteString(instruction + "\n")
	}
	if req.Style != "" {
		fmt.Fprintf(&b, "Visual style: %s.\n", req.Style)
	}
	if req.TypeSafe {
		b.WriteString("Use TypeScript with complete type annotations; never use any.\n")
	}

	b.WriteString("The component must be accessible (alt text, labels, no positive tabIndex) and responsive.\n")
	b.WriteString("Respond with only the component source code.")

	return b.String()
}
