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

// Package llm defines the provider abstraction used to execute rendered
// prompts against a model backend.
package llm

import (
	"context"

	"github.com/teradata-labs/promptbench/pkg/types"
)

// Response is the outcome of a single prompt execution.
type Response struct {
	// Text is the model's output. Empty when Status is ExecError.
	Text string

	// LatencyMs is the wall-clock duration of the call in milliseconds.
	LatencyMs float64

	// InputTokens and OutputTokens come from the provider's usage report
	// when available, otherwise from a local estimate.
	InputTokens  int
	OutputTokens int

	// CostUSD is the estimated cost of the call based on the model's
	// published per-token pricing.
	CostUSD float64

	// Status records whether the call succeeded.
	Status types.ExecStatus

	// Err holds the provider error message when Status is ExecError.
	Err string
}

// Provider executes a rendered prompt against a model backend.
//
// Implementations should return an error only for failures the caller
// cannot log as an execution result (e.g. a nil context); API-level
// failures are reported in Response with Status set to ExecError so the
// caller can record them alongside successful runs.
type Provider interface {
	// Name returns the provider identifier (e.g. "anthropic").
	Name() string

	// Run sends prompt to model with the given sampling temperature.
	Run(ctx context.Context, model, prompt string, temperature float64) (*Response, error)
}
