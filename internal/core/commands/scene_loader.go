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

// This file defines the command that loads a movie's existing scenes before
// a continuation run. It formats them for the analysis section of the
// continuation prompt and derives the start number the new scenes must
// continue from.
package commands

import (
	"fmt"
	"strings"

	"github.com/wittworks/movie-scene-service/internal/core/cor"
	"github.com/wittworks/movie-scene-service/internal/core/services"
)

// ExistingScenesLoader is a command that loads and formats the scenes a
// movie already has.
type ExistingScenesLoader struct {
	cor.BaseCommand
	scenes services.SceneStore
}

// NewExistingScenesLoader is the constructor for the ExistingScenesLoader command.
func NewExistingScenesLoader(name string, scenes services.SceneStore) *ExistingScenesLoader {
	return &ExistingScenesLoader{
		BaseCommand: *cor.NewBaseCommand(name),
		scenes:      scenes,
	}
}

// Execute loads the movie's scenes, renders them as "Scene N: text" lines
// for the prompt, and records the next free scene number. A movie with no
// scenes yet is a validation problem for continuation; the chain stops.
func (t *ExistingScenesLoader) Execute(context cor.Context) {
	movieID, ok := context.Get(ParamMovieID).(string)
	if !ok || movieID == "" {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("missing movie id"))
		return
	}

	existing, err := t.scenes.GetScenes(context.GetContext(), movieID)
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("failed to load scenes for movie %s: %w", movieID, err))
		return
	}
	if len(existing) == 0 {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("movie %s has no scenes to continue from", movieID))
		return
	}

	var sb strings.Builder
	for _, scene := range existing {
		sb.WriteString(fmt.Sprintf("Scene %d: %s\n", scene.ID, scene.Text))
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(ParamExistingScenes, sb.String())
	context.Add(ParamStartNumber, existing[len(existing)-1].ID+1)
	context.Add(t.GetOutputParam(), sb.String())
}
