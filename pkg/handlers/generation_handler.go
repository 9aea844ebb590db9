package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/LucasSantana-Dev/uiforge-engine/pkg/apperrors"
	"github.com/LucasSantana-Dev/uiforge-engine/pkg/gateway"
	"github.com/LucasSantana-Dev/uiforge-engine/pkg/logging"
	"github.com/LucasSantana-Dev/uiforge-engine/pkg/models"
	"github.com/LucasSantana-Dev/uiforge-engine/pkg/services"
)

// GatewayToolLister is the subset of the gateway client the handler needs for
// the tool-discovery endpoint.
type GatewayToolLister interface {
	IsConfigured() bool
	ListTools(ctx context.Context) ([]gateway.Tool, error)
}

// GatewayToolsResponse for GET /api/gateway/tools
type GatewayToolsResponse struct {
	Tools []gateway.Tool `json:"tools"`
	Total int            `json:"total"`
}

// GenerationHandler handles component generation HTTP requests with SSE
// streaming.
type GenerationHandler struct {
	service services.GenerationService
	gateway GatewayToolLister
	logger  *zap.Logger
}

// NewGenerationHandler creates a new generation handler.
func NewGenerationHandler(service services.GenerationService, gw GatewayToolLister, logger *zap.Logger) *GenerationHandler {
	return &GenerationHandler{
		service: service,
		gateway: gw,
		logger:  logger,
	}
}

// RegisterRoutes registers the generation handler's routes on the given mux.
func (h *GenerationHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/generations", h.Create)
	mux.HandleFunc("GET /api/generations/{id}", h.Get)
	mux.HandleFunc("GET /api/gateway/tools", h.ListGatewayTools)
}

// userIDFrom extracts the authenticated user identity. Identity verification
// itself happens upstream; this handler only requires the header to carry a
// well-formed UUID.
func userIDFrom(r *http.Request) (uuid.UUID, error) {
	raw := r.Header.Get("X-User-ID")
	if raw == "" {
		return uuid.Nil, errors.New("missing X-User-ID header")
	}
	return uuid.Parse(raw)
}

// Create handles POST /api/generations.
// This endpoint uses Server-Sent Events (SSE) to stream the response.
// Validation runs before the stream opens so shape and availability errors
// surface as plain JSON status codes rather than stream events.
func (h *GenerationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFrom(r)
	if err != nil {
		if err := ErrorResponse(w, http.StatusUnauthorized, "missing_user", "A valid X-User-ID header is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	var req models.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.service.ValidateRequest(&req); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrGatewayUnavailable):
			if err := ErrorResponse(w, http.StatusServiceUnavailable, "gateway_unavailable", "The generation gateway is not configured"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		default:
			if err := ErrorResponse(w, http.StatusBadRequest, "validation_failed", logging.SanitizeError(err)); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		}
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.logger.Error("SSE not supported")
		if err := ErrorResponse(w, http.StatusInternalServerError, "sse_unsupported", "SSE not supported"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	eventChan := make(chan models.GenerationEvent, 100)

	// Start the pipeline in background; the error event here is the single
	// terminal failure signal on the stream.
	go func() {
		defer close(eventChan)
		if err := h.service.Generate(r.Context(), userID, &req, eventChan); err != nil {
			h.logger.Error("Generation error",
				zap.String("user_id", userID.String()),
				zap.String("error", logging.SanitizeError(err)))
			eventChan <- models.NewErrorEvent(logging.SanitizeError(err))
		}
	}()

	// Stream events to client
	for event := range eventChan {
		data, err := json.Marshal(event)
		if err != nil {
			h.logger.Error("Failed to marshal event", zap.Error(err))
			continue
		}

		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()

		// Stop on complete or error
		if event.IsTerminal() {
			break
		}
	}
}

// Get handles GET /api/generations/{id}
func (h *GenerationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_id", "Generation ID must be a UUID"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	record, err := h.service.GetByID(r.Context(), id)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		h.logger.Error("Failed to get generation",
			zap.String("generation_id", id.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to get generation"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if record == nil || errors.Is(err, apperrors.ErrNotFound) {
		if err := ErrorResponse(w, http.StatusNotFound, "not_found", "Generation not found"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := ApiResponse{Success: true, Data: record}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListGatewayTools handles GET /api/gateway/tools
func (h *GenerationHandler) ListGatewayTools(w http.ResponseWriter, r *http.Request) {
	if !h.gateway.IsConfigured() {
		if err := ErrorResponse(w, http.StatusServiceUnavailable, "gateway_unavailable", "The generation gateway is not configured"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	tools, err := h.gateway.ListTools(r.Context())
	if err != nil {
		h.logger.Error("Failed to list gateway tools", zap.Error(err))
		if err := ErrorResponse(w, http.StatusBadGateway, "gateway_error", "Failed to list gateway tools"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := ApiResponse{Success: true, Data: GatewayToolsResponse{Tools: tools, Total: len(tools)}}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
