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

// This file defines the command that persists parsed scenes as the final
// step of each generation pipeline. All scenes of a run are written in one
// atomic batch so a parse that validated is never half stored.
package commands

import (
	"fmt"

	"github.com/wittworks/movie-scene-service/internal/core/cor"
	"github.com/wittworks/movie-scene-service/internal/core/model"
	"github.com/wittworks/movie-scene-service/internal/core/services"
)

// ScenePersister is a command that stores parsed scene records.
type ScenePersister struct {
	cor.BaseCommand
	scenes services.SceneStore
}

// NewScenePersister is the constructor for the ScenePersister command.
func NewScenePersister(name string, scenes services.SceneStore) *ScenePersister {
	return &ScenePersister{
		BaseCommand: *cor.NewBaseCommand(name),
		scenes:      scenes,
	}
}

// Execute writes the scenes produced by the parsing step and passes them
// through as the chain's final output.
func (t *ScenePersister) Execute(context cor.Context) {
	records, ok := context.Get(t.GetInputParam()).([]*model.SceneRecord)
	if !ok || len(records) == 0 {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("no scenes to persist"))
		return
	}
	movieID, ok := context.Get(ParamMovieID).(string)
	if !ok || movieID == "" {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("missing movie id"))
		return
	}

	if err := t.scenes.SaveScenes(context.GetContext(), movieID, records); err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("failed to persist scenes for movie %s: %w", movieID, err))
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), records)
}
