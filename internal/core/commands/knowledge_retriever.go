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

// This file defines the command that grounds scene generation: it embeds the
// movie idea, retrieves the nearest knowledge chunks, and renders them into
// the context block the prompts embed.
//
// Logic Flow:
//  1. The movie idea is read from the command's input parameter.
//  2. The ContextFinder performs the vector search and returns ranked matches.
//  3. The matches are rendered into the bulleted context block, preserving
//     relevance order.
//  4. The block is stored under ParamKnowledgeContext and piped to the next
//     command. An empty block is not an error; generation proceeds without
//     grounding.
package commands

import (
	"fmt"

	"github.com/wittworks/movie-scene-service/internal/core/cor"
	"github.com/wittworks/movie-scene-service/internal/core/scenes"
)

// KnowledgeRetriever is a command that retrieves grounding context for a
// movie idea from the knowledge base.
type KnowledgeRetriever struct {
	cor.BaseCommand
	finder ContextFinder
}

// NewKnowledgeRetriever is the constructor for the KnowledgeRetriever command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - finder: The knowledge search surface to query.
func NewKnowledgeRetriever(name string, finder ContextFinder) *KnowledgeRetriever {
	return &KnowledgeRetriever{
		BaseCommand: *cor.NewBaseCommand(name),
		finder:      finder,
	}
}

// Execute runs the retrieval step.
func (t *KnowledgeRetriever) Execute(context cor.Context) {
	idea, ok := context.Get(t.GetInputParam()).(string)
	if !ok || idea == "" {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("missing movie idea input"))
		return
	}

	matches, err := t.finder.FindContext(context.GetContext(), idea)
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("knowledge retrieval failed: %w", err))
		return
	}

	knowledgeContext := scenes.BuildKnowledgeContext(matches)

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(ParamKnowledgeContext, knowledgeContext)
	context.Add(t.GetOutputParam(), knowledgeContext)
}
