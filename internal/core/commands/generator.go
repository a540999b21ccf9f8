// Copyright 2025 Witt Works, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface for the scene generation
// pipelines. This file defines the text generation surface the commands
// depend on and its production implementation backed by the rate-limited
// Gemini model.
package commands

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/wittworks/movie-scene-service/internal/cloud"
	"github.com/wittworks/movie-scene-service/internal/core/model"
)

// TextGenerator turns a fully rendered prompt into model output. Commands
// depend on this interface instead of the concrete model so workflows can be
// tested with scripted generators.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ContextFinder retrieves grounding context for a movie idea. The knowledge
// search service is the production implementation.
type ContextFinder interface {
	FindContext(ctx context.Context, idea string) ([]*model.ContextMatch, error)
}

// GeminiTextGenerator is the production TextGenerator. It delegates to the
// quota-aware model wrapper and records token usage metrics per generator
// name.
type GeminiTextGenerator struct {
	model              *cloud.QuotaAwareGenerativeAIModel
	inputTokenCounter  metric.Int64Counter
	outputTokenCounter metric.Int64Counter
	retryCounter       metric.Int64Counter
}

// NewGeminiTextGenerator wraps a quota-aware model as a TextGenerator.
//
// Inputs:
//   - name: A logical name used to namespace the telemetry counters.
//   - model: The rate-limited generative model to delegate to.
func NewGeminiTextGenerator(name string, model *cloud.QuotaAwareGenerativeAIModel) *GeminiTextGenerator {
	meter := otel.Meter("github.com/wittworks/movie-scene-service")
	out := &GeminiTextGenerator{model: model}
	out.inputTokenCounter, _ = meter.Int64Counter(fmt.Sprintf("%s.gemini.token.input", name))
	out.outputTokenCounter, _ = meter.Int64Counter(fmt.Sprintf("%s.gemini.token.output", name))
	out.retryCounter, _ = meter.Int64Counter(fmt.Sprintf("%s.gemini.token.retry", name))
	return out
}

// Generate sends the prompt to the model through the retrying helper and
// returns the raw text response.
func (g *GeminiTextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	content := cloud.NewTextContent(prompt)
	return cloud.GenerateTextResponse(ctx, g.inputTokenCounter, g.outputTokenCounter, g.retryCounter, 0, g.model, content)
}
