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

// Package workflow defines the high-level business logic orchestrations,
// combining various commands into coherent pipelines. This file implements
// the initial scene generation workflow: idea in, a persisted list of
// numbered scenes out.
package workflow

import (
	goctx "context"
	"errors"
	"text/template"

	"github.com/wittworks/movie-scene-service/internal/core/commands"
	"github.com/wittworks/movie-scene-service/internal/core/cor"
	"github.com/wittworks/movie-scene-service/internal/core/model"
	"github.com/wittworks/movie-scene-service/internal/core/services"
)

// InitialScenesWorkflow orchestrates the first generation run for a movie.
// It is structured as a Chain of Responsibility (cor.Chain) executing four
// commands: retrieve grounding context, prompt the model, parse the
// numbered-list output, and persist the scenes atomically.
type InitialScenesWorkflow struct {
	cor.BaseCommand
	chain cor.Chain
}

// NewInitialScenesWorkflow builds the workflow and its underlying chain.
//
// Inputs:
//   - name: A string name for this workflow instance.
//   - finder: The knowledge search surface for the retrieval step.
//   - generator: The text generation surface for the prompting step.
//   - scenes: The scene store for the persistence step.
//   - prompt: The parsed initial-generation prompt template.
func NewInitialScenesWorkflow(
	name string,
	finder commands.ContextFinder,
	generator commands.TextGenerator,
	scenes services.SceneStore,
	prompt *template.Template,
) *InitialScenesWorkflow {
	out := &InitialScenesWorkflow{BaseCommand: *cor.NewBaseCommand(name)}

	chain := cor.NewBaseChain(name)
	// Step 1: Ground the idea with knowledge base context.
	chain.AddCommand(commands.NewKnowledgeRetriever("retrieve-knowledge-context", finder))
	// Step 2: Render the initial prompt and run the generation.
	chain.AddCommand(commands.NewSceneGenerator("generate-initial-scenes", generator, prompt))
	// Step 3: Parse the free-form numbered-list output into scene records.
	chain.AddCommand(commands.NewSceneListParser("parse-scene-list"))
	// Step 4: Persist all scenes in one atomic batch.
	chain.AddCommand(commands.NewScenePersister("persist-scenes", scenes))
	out.chain = chain

	return out
}

// Execute runs the workflow by invoking the underlying chain.
func (w *InitialScenesWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// Run executes the full pipeline for one request and returns the persisted
// scenes in order.
//
// Inputs:
//   - ctx: The request context.
//   - movieID: The movie the scenes belong to.
//   - idea: The user's movie idea.
//   - count: The number of scenes the prompt asks for. The numbered-list
//     grammar does not enforce it; the model's actual list wins.
func (w *InitialScenesWorkflow) Run(ctx goctx.Context, movieID string, idea string, count int) ([]*model.SceneRecord, error) {
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(ctx)
	chainCtx.Add(cor.CtxIn, idea)
	chainCtx.Add(commands.ParamIdea, idea)
	chainCtx.Add(commands.ParamMovieID, movieID)
	chainCtx.Add(commands.ParamSceneCount, count)

	w.Execute(chainCtx)

	if chainCtx.HasErrors() {
		errs := make([]error, 0, len(chainCtx.GetErrors()))
		for _, e := range chainCtx.GetErrors() {
			errs = append(errs, e)
		}
		return nil, errors.Join(errs...)
	}

	records, ok := chainCtx.Get(cor.CtxOut).([]*model.SceneRecord)
	if !ok {
		return nil, errors.New("scene generation produced no output")
	}
	return records, nil
}
