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

// This file implements the continuation workflow: it extends an existing
// movie with a fixed number of additional scenes, numbered to continue the
// movie's current sequence. The delimited-block grammar and its strict
// validation guarantee the movie never ends up with a gap or an unexpected
// scene count.
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

// ContinuationScenesWorkflow orchestrates an additional-scenes run. Its
// chain loads and analyzes the movie's existing scenes, grounds the idea,
// prompts for delimited blocks, validates them, and persists the new scenes.
type ContinuationScenesWorkflow struct {
	cor.BaseCommand
	chain cor.Chain
}

// NewContinuationScenesWorkflow builds the workflow and its underlying chain.
func NewContinuationScenesWorkflow(
	name string,
	finder commands.ContextFinder,
	generator commands.TextGenerator,
	scenes services.SceneStore,
	analysisPrompt *template.Template,
	prompt *template.Template,
) *ContinuationScenesWorkflow {
	out := &ContinuationScenesWorkflow{BaseCommand: *cor.NewBaseCommand(name)}

	chain := cor.NewBaseChain(name)
	// Step 1: Load the movie's existing scenes and derive the start number.
	chain.AddCommand(commands.NewExistingScenesLoader("load-existing-scenes", scenes))
	// Step 2: First model call — write the story brief the continuation
	// prompt builds on.
	chain.AddCommand(commands.NewSceneAnalyzer("analyze-existing-scenes", generator, analysisPrompt))
	// Step 3: Ground the idea with knowledge base context. The retriever
	// reads the idea from its own named parameter, not the piped output.
	retriever := commands.NewKnowledgeRetriever("retrieve-knowledge-context", finder)
	retriever.InputParamName = commands.ParamIdea
	chain.AddCommand(retriever)
	// Step 4: Second model call — render the continuation prompt (brief
	// included) and generate the new scenes.
	chain.AddCommand(commands.NewSceneGenerator("generate-continuation-scenes", generator, prompt))
	// Step 5: Parse the delimited blocks and enforce count and sequence.
	chain.AddCommand(commands.NewSceneBlockParser("parse-scene-blocks"))
	// Step 6: Persist the new scenes in one atomic batch.
	chain.AddCommand(commands.NewScenePersister("persist-scenes", scenes))
	out.chain = chain

	return out
}

// Execute runs the workflow by invoking the underlying chain.
func (w *ContinuationScenesWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// Run executes the full pipeline and returns exactly count new scenes whose
// ids continue the movie's existing sequence.
func (w *ContinuationScenesWorkflow) Run(ctx goctx.Context, movieID string, idea string, count int) ([]*model.SceneRecord, error) {
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
