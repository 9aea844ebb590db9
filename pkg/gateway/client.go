// Package gateway implements a JSON-RPC 2.0 client for the remote
// tool-invocation gateway, used as an alternative generation backend.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/LucasSantana-Dev/uiforge-engine/pkg/models"
)

// GenerateToolName is the fixed remote tool used for component generation.
const GenerateToolName = "execute_specialist_task"

// taskCategory tags generation calls for the gateway's routing.
const taskCategory = "ui_generation"

// Config holds gateway connection settings. Both fields must be set for the
// gateway backend to be available.
type Config struct {
	Endpoint    string
	AccessToken string
}

// Client is a JSON-RPC-over-HTTP client for the tool gateway.
type Client struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client
	logger      *zap.Logger
	requestID   atomic.Int64
}

// NewClient creates a gateway client. A zero-value config produces an
// unconfigured client; check IsConfigured before invoking.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	return &Client{
		endpoint:    cfg.Endpoint,
		accessToken: cfg.AccessToken,
		httpClient:  &http.Client{Timeout: 120 * time.Second},
		logger:      logger.Named("gateway"),
	}
}

// IsConfigured reports whether both an endpoint URL and an access credential
// are configured.
func (c *Client) IsConfigured() bool {
	return c.endpoint != "" && c.accessToken != ""
}

// Tool describes a remote tool exposed by the gateway.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema,omitempty"`
}

// ContentBlock is one typed content element of a tool result.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// ToolResult is the result of a tool invocation.
type ToolResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcURL builds the RPC endpoint, stripping any trailing slash from the
// configured endpoint before concatenation.
func (c *Client) rpcURL() string {
	return strings.TrimSuffix(c.endpoint, "/") + "/rpc"
}

// call issues a JSON-RPC request and returns the raw result.
func (c *Client) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("gateway returned HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	c.logger.Debug("Gateway call completed",
		zap.String("method", method),
		zap.Duration("elapsed", time.Since(start)))

	if rpcResp.Error != nil {
		return nil, fmt.Errorf("gateway error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}
	if rpcResp.Result == nil {
		return nil, errors.New("gateway returned empty result")
	}

	return rpcResp.Result, nil
}

// ListTools lists the remote tools available on the gateway.
func (c *Client) ListTools(ctx context.Context) ([]Tool, error) {
	result, err := c.call(ctx, "tools/list", nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Tools []Tool `json:"tools"`
	}
	if err := json.Unmarshal(result, &payload); err != nil {
		return nil, fmt.Errorf("decode tool list: %w", err)
	}
	return payload.Tools, nil
}

// CallTool invokes a named remote tool with the given arguments.
func (c *Client) CallTool(ctx context.Context, name string, arguments map[string]any) (*ToolResult, error) {
	result, err := c.call(ctx, "tools/call", map[string]any{
		"name":      name,
		"arguments": arguments,
	})
	if err != nil {
		return nil, err
	}

	var toolResult ToolResult
	if err := json.Unmarshal(result, &toolResult); err != nil {
		return nil, fmt.Errorf("decode tool result: %w", err)
	}
	return &toolResult, nil
}

// userPreferences is the serialized preference payload sent with a
// generation task.
type userPreferences struct {
	DesignSystem string `json:"design_system"`
	Framework    string `json:"framework"`
	TypeSafe     bool   `json:"type_safe"`
}

// designSystemFor maps a component-library preference to the gateway's
// design-system identifier.
func designSystemFor(library models.ComponentLibrary) string {
	switch library {
	case models.LibraryTailwind:
		return "tailwind_ui"
	case models.LibraryMUI:
		return "material_design"
	case models.LibraryChakra:
		return "chakra_ui"
	case models.LibraryShadcn:
		return "shadcn_ui"
	case models.LibraryNone, "":
		return "custom"
	default:
		return string(library)
	}
}

// GenerateComponent invokes the specialist generation tool and extracts the
// generated source. contextAddition, when non-empty, is appended to the task
// prompt.
func (c *Client) GenerateComponent(ctx context.Context, req *models.GenerationRequest, contextAddition string) (string, error) {
	task := req.Prompt
	if contextAddition != "" {
		task = task + "\n\n" + contextAddition
	}

	prefs, err := json.Marshal(userPreferences{
		DesignSystem: designSystemFor(req.EffectiveLibrary()),
		Framework:    string(req.Framework),
		TypeSafe:     req.TypeSafe,
	})
	if err != nil {
		return "", fmt.Errorf("marshal preferences: %w", err)
	}

	result, err := c.CallTool(ctx, GenerateToolName, map[string]any{
		"task":             task,
		"category":         taskCategory,
		"user_preferences": string(prefs),
	})
	if err != nil {
		return "", err
	}

	for _, block := range result.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", errors.New("gateway returned no text content")
}
