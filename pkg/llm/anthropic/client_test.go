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
package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teradata-labs/promptbench/pkg/types"
)

func TestClient_Run_Success(t *testing.T) {
	var gotReq messagesRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		resp := messagesResponse{
			ID:      "msg_01",
			Content: []contentBlock{{Type: "text", Text: "Hello from Claude"}},
			Usage:   usage{InputTokens: 12, OutputTokens: 4},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	client := NewClient("test-key", WithEndpoint(server.URL))
	resp, err := client.Run(context.Background(), "claude-sonnet-4", "Say hello", 0.7)
	require.NoError(t, err)

	assert.Equal(t, "Say hello", gotReq.Messages[0].Content)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
	assert.InDelta(t, 0.7, gotReq.Temperature, 1e-9)

	assert.Equal(t, types.ExecSuccess, resp.Status)
	assert.Equal(t, "Hello from Claude", resp.Text)
	assert.Equal(t, 12, resp.InputTokens)
	assert.Equal(t, 4, resp.OutputTokens)
	assert.Greater(t, resp.CostUSD, 0.0)
	assert.Empty(t, resp.Err)
}

func TestClient_Run_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error"}}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithEndpoint(server.URL))
	resp, err := client.Run(context.Background(), "claude-sonnet-4", "Say hello", 0)
	require.NoError(t, err)

	assert.Equal(t, types.ExecError, resp.Status)
	assert.Empty(t, resp.Text)
	assert.Contains(t, resp.Err, "status 429")
}

func TestClient_Run_JoinsTextBlocks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := messagesResponse{
			Content: []contentBlock{
				{Type: "text", Text: "part1 "},
				{Type: "text", Text: "part2"},
			},
			Usage: usage{InputTokens: 1, OutputTokens: 2},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	client := NewClient("test-key", WithEndpoint(server.URL))
	resp, err := client.Run(context.Background(), "claude-sonnet-4", "p", 0)
	require.NoError(t, err)
	assert.Equal(t, "part1 part2", resp.Text)
}

func TestCalculateCost(t *testing.T) {
	// 1M input + 1M output at sonnet rates: $3 + $15
	cost := calculateCost("claude-sonnet-4", 1_000_000, 1_000_000)
	assert.InDelta(t, 18.0, cost, 1e-9)

	// Unknown models fall back to sonnet-tier pricing.
	cost = calculateCost("some-future-model", 1_000_000, 0)
	assert.InDelta(t, 3.0, cost, 1e-9)

	cost = calculateCost("claude-3-5-haiku-20241022", 1_000_000, 1_000_000)
	assert.InDelta(t, 4.8, cost, 1e-9)
}
