package models

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/LucasSantana-Dev/uiforge-engine/pkg/apperrors"
)

// ============================================================================
// Enums
// ============================================================================

// Framework is the target UI framework for generated components.
type Framework string

const (
	FrameworkReact   Framework = "react"
	FrameworkVue     Framework = "vue"
	FrameworkAngular Framework = "angular"
	FrameworkSvelte  Framework = "svelte"
)

// ComponentLibrary is the component library preference for a generation.
type ComponentLibrary string

const (
	LibraryNone     ComponentLibrary = "none"
	LibraryTailwind ComponentLibrary = "tailwind"
	LibraryMUI      ComponentLibrary = "mui"
	LibraryChakra   ComponentLibrary = "chakra"
	LibraryShadcn   ComponentLibrary = "shadcn"
)

// VisualStyle is the requested visual style for generated components.
type VisualStyle string

const (
	StyleModern    VisualStyle = "modern"
	StyleMinimal   VisualStyle = "minimal"
	StylePlayful   VisualStyle = "playful"
	StyleCorporate VisualStyle = "corporate"
	StyleBrutalist VisualStyle = "brutalist"
)

// Provider identifies a generation backend.
type Provider string

const (
	ProviderDirect  Provider = "direct"
	ProviderGateway Provider = "gateway"
)

// ============================================================================
// Generation Request
// ============================================================================

// Prompt length bounds enforced before any backend call.
const (
	MinPromptLength = 10
	MaxPromptLength = 2000
)

// MaxImageSizeBytes is the upper bound for an attached reference image.
const MaxImageSizeBytes = 5 * 1024 * 1024

// allowedImageMIMETypes is the constrained MIME set for image attachments.
var allowedImageMIMETypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/gif":  true,
}

// ImageAttachment is an optional reference image supplied with a request.
type ImageAttachment struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"` // base64-encoded
	Size     int64  `json:"size"`
}

// GenerationRequest is the inbound request for a component generation.
type GenerationRequest struct {
	Prompt           string           `json:"prompt" validate:"required,min=10,max=2000"`
	Framework        Framework        `json:"framework" validate:"required,oneof=react vue angular svelte"`
	ComponentLibrary ComponentLibrary `json:"component_library" validate:"omitempty,oneof=none tailwind mui chakra shadcn"`
	Style            VisualStyle      `json:"style" validate:"omitempty,oneof=modern minimal playful corporate brutalist"`
	TypeSafe         bool             `json:"type_safe"`
	Provider         Provider         `json:"provider" validate:"omitempty,oneof=direct gateway"`

	// APIKey is an optional caller-supplied credential (bring-your-own-key)
	// that overrides the platform default for this request only.
	APIKey string `json:"api_key,omitempty"`

	// EnableRetrieval toggles context enrichment. Nil means enabled.
	EnableRetrieval *bool `json:"enable_retrieval,omitempty"`

	Image *ImageAttachment `json:"image,omitempty"`

	// ParentGenerationID links a refinement to the generation it iterates on.
	ParentGenerationID *uuid.UUID `json:"parent_generation_id,omitempty"`
}

var validate = validator.New()

// Validate checks request shape and bounds. It must pass before any backend
// call or record creation.
func (r *GenerationRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	if r.Image != nil {
		if r.Image.Size > MaxImageSizeBytes {
			return fmt.Errorf("%w: image exceeds %d bytes", apperrors.ErrValidation, MaxImageSizeBytes)
		}
		if !allowedImageMIMETypes[r.Image.MIMEType] {
			return fmt.Errorf("%w: unsupported image MIME type %q", apperrors.ErrValidation, r.Image.MIMEType)
		}
	}
	return nil
}

// RetrievalEnabled reports whether context enrichment should run.
func (r *GenerationRequest) RetrievalEnabled() bool {
	return r.EnableRetrieval == nil || *r.EnableRetrieval
}

// EffectiveLibrary returns the component library, defaulting to none.
func (r *GenerationRequest) EffectiveLibrary() ComponentLibrary {
	if r.ComponentLibrary == "" {
		return LibraryNone
	}
	return r.ComponentLibrary
}

// ============================================================================
// Generation Record
// ============================================================================

// GenerationStatus is the lifecycle status of a generation record.
// Transitions: pending -> processing -> {completed|failed}. Terminal once
// completed or failed.
type GenerationStatus string

const (
	StatusPending    GenerationStatus = "pending"
	StatusProcessing GenerationStatus = "processing"
	StatusCompleted  GenerationStatus = "completed"
	StatusFailed     GenerationStatus = "failed"
)

// IsTerminal reports whether the status permits no further transitions.
func (s GenerationStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransitionTo reports whether the lifecycle allows moving to next.
func (s GenerationStatus) CanTransitionTo(next GenerationStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed
	default:
		return false
	}
}

// GenerationRecord is the persisted generation entity. It is created at
// request start and mutated exactly twice at most: processing -> completed or
// processing -> failed. Deletion is an external collaborator's concern.
type GenerationRecord struct {
	ID                 uuid.UUID        `json:"id"`
	UserID             uuid.UUID        `json:"user_id"`
	Prompt             string           `json:"prompt"`
	Framework          Framework        `json:"framework"`
	Status             GenerationStatus `json:"status"`
	Provider           Provider         `json:"provider"`
	Model              string           `json:"model"`
	Code               *string          `json:"code,omitempty"`
	QualityScore       *float64         `json:"quality_score,omitempty"`
	ErrorMessage       *string          `json:"error_message,omitempty"`
	ParentGenerationID *uuid.UUID       `json:"parent_generation_id,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// GenerationUpdate carries the mutable fields for a lifecycle update.
// Nil fields are left unchanged.
type GenerationUpdate struct {
	Status       *GenerationStatus
	Code         *string
	QualityScore *float64
	ErrorMessage *string
	Model        *string
}
