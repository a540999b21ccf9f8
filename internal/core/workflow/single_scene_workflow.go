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

// This file implements the single-scene workflow: it regenerates one scene
// of a movie in place, keeping its id. The delimited-block grammar with a
// count of one guarantees the model returned exactly the requested scene.
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

// SingleSceneWorkflow orchestrates the regeneration of one scene.
type SingleSceneWorkflow struct {
	cor.BaseCommand
	chain cor.Chain
}

// NewSingleSceneWorkflow builds the workflow and its underlying chain.
func NewSingleSceneWorkflow(
	name string,
	finder commands.ContextFinder,
	generator commands.TextGenerator,
	scenes services.SceneStore,
	prompt *template.Template,
) *SingleSceneWorkflow {
	out := &SingleSceneWorkflow{BaseCommand: *cor.NewBaseCommand(name)}

	chain := cor.NewBaseChain(name)
	chain.AddCommand(commands.NewKnowledgeRetriever("retrieve-knowledge-context", finder))
	chain.AddCommand(commands.NewSceneGenerator("generate-single-scene", generator, prompt))
	chain.AddCommand(commands.NewSceneBlockParser("parse-scene-block"))
	chain.AddCommand(commands.NewScenePersister("persist-scene", scenes))
	out.chain = chain

	return out
}

// Execute runs the workflow by invoking the underlying chain.
func (w *SingleSceneWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// Run regenerates the scene with the given id and returns the stored record.
func (w *SingleSceneWorkflow) Run(ctx goctx.Context, movieID string, idea string, sceneID int) (*model.SceneRecord, error) {
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(ctx)
	chainCtx.Add(cor.CtxIn, idea)
	chainCtx.Add(commands.ParamIdea, idea)
	chainCtx.Add(commands.ParamMovieID, movieID)
	chainCtx.Add(commands.ParamStartNumber, sceneID)
	chainCtx.Add(commands.ParamSceneCount, 1)

	w.Execute(chainCtx)

	if chainCtx.HasErrors() {
		errs := make([]error, 0, len(chainCtx.GetErrors()))
		for _, e := range chainCtx.GetErrors() {
			errs = append(errs, e)
		}
		return nil, errors.Join(errs...)
	}

	records, ok := chainCtx.Get(cor.CtxOut).([]*model.SceneRecord)
	if !ok || len(records) != 1 {
		return nil, errors.New("scene regeneration produced no output")
	}
	return records[0], nil
}
