// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package anthropic implements the llm.Provider interface against the
// Anthropic Messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/teradata-labs/promptbench/internal/log"
	"github.com/teradata-labs/promptbench/pkg/llm"
	"github.com/teradata-labs/promptbench/pkg/types"
	"go.uber.org/zap"
)

const (
	defaultEndpoint  = "https://api.anthropic.com/v1/messages"
	defaultMaxTokens = 4096
	apiVersion       = "2023-06-01"
)

// modelPricing maps a model name prefix to per-million-token USD rates.
type modelPricing struct {
	inputPerMTok  float64
	outputPerMTok float64
}

// Published Anthropic pricing (2025-01). Matched by prefix so dated
// model identifiers (e.g. claude-3-5-haiku-20241022) resolve.
var pricingTable = []struct {
	prefix string
	rates  modelPricing
}{
	{"claude-opus", modelPricing{15.0, 75.0}},
	{"claude-sonnet", modelPricing{3.0, 15.0}},
	{"claude-3-5-sonnet", modelPricing{3.0, 15.0}},
	{"claude-3-5-haiku", modelPricing{0.80, 4.0}},
	{"claude-haiku", modelPricing{0.80, 4.0}},
}

// defaultPricing is used for unrecognized models.
var defaultPricing = modelPricing{3.0, 15.0}

// Client calls the Anthropic Messages API.
type Client struct {
	apiKey     string
	endpoint   string
	maxTokens  int
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the API endpoint (used in tests).
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithMaxTokens sets the max_tokens request parameter.
func WithMaxTokens(n int) Option {
	return func(c *Client) { c.maxTokens = n }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates an Anthropic client with the given API key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:    apiKey,
		endpoint:  defaultEndpoint,
		maxTokens: defaultMaxTokens,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements llm.Provider.
func (c *Client) Name() string { return "anthropic" }

// messagesRequest is the wire request for the Messages API.
type messagesRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse is the wire response for the Messages API.
type messagesResponse struct {
	ID         string         `json:"id"`
	Content    []contentBlock `json:"content"`
	Model      string         `json:"model"`
	StopReason string         `json:"stop_reason"`
	Usage      usage          `json:"usage"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Run implements llm.Provider. API-level failures are reported in the
// returned Response with Status set to ExecError; the latency of failed
// calls is still measured so it can be logged.
func (c *Client) Run(ctx context.Context, model, prompt string, temperature float64) (*llm.Response, error) {
	start := time.Now()

	text, use, err := c.callAPI(ctx, model, prompt, temperature)
	latency := float64(time.Since(start).Milliseconds())

	if err != nil {
		log.Warn("anthropic call failed",
			zap.String("model", model),
			zap.Float64("latency_ms", latency),
			zap.Error(err))
		return &llm.Response{
			LatencyMs: latency,
			Status:    types.ExecError,
			Err:       err.Error(),
		}, nil
	}

	inTok, outTok := use.InputTokens, use.OutputTokens
	if inTok == 0 && outTok == 0 {
		// Usage missing from the response; estimate locally.
		tc := llm.GetTokenCounter()
		inTok = tc.CountTokens(prompt)
		outTok = tc.CountTokens(text)
	}

	resp := &llm.Response{
		Text:         text,
		LatencyMs:    latency,
		InputTokens:  inTok,
		OutputTokens: outTok,
		CostUSD:      calculateCost(model, inTok, outTok),
		Status:       types.ExecSuccess,
	}
	log.Debug("anthropic call completed",
		zap.String("model", model),
		zap.Float64("latency_ms", latency),
		zap.Int("input_tokens", inTok),
		zap.Int("output_tokens", outTok))
	return resp, nil
}

// callAPI makes the HTTP request to Anthropic's API.
func (c *Client) callAPI(ctx context.Context, model, prompt string, temperature float64) (string, usage, error) {
	req := messagesRequest{
		Model:       model,
		Messages:    []message{{Role: "user", Content: prompt}},
		MaxTokens:   c.maxTokens,
		Temperature: temperature,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", usage{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", usage{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", usage{}, fmt.Errorf("request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", usage{}, fmt.Errorf("failed to read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return "", usage{}, fmt.Errorf("API error (status %d): %s", httpResp.StatusCode, string(respBody))
	}

	var apiResp messagesResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", usage{}, fmt.Errorf("failed to parse response: %w", err)
	}

	var sb strings.Builder
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), apiResp.Usage, nil
}

// calculateCost estimates the call cost in USD from token counts and
// the model's published per-million-token pricing.
func calculateCost(model string, inputTokens, outputTokens int) float64 {
	rates := defaultPricing
	for _, entry := range pricingTable {
		if strings.HasPrefix(model, entry.prefix) {
			rates = entry.rates
			break
		}
	}
	inputCost := float64(inputTokens) * rates.inputPerMTok / 1_000_000
	outputCost := float64(outputTokens) * rates.outputPerMTok / 1_000_000
	return inputCost + outputCost
}
