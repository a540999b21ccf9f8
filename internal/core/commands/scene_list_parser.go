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

// This file defines the command that parses numbered-list model output into
// scene records. It is the parsing step of the initial generation pipeline.
package commands

import (
	"fmt"

	"github.com/wittworks/movie-scene-service/internal/core/cor"
	"github.com/wittworks/movie-scene-service/internal/core/scenes"
)

// SceneListParser is a command that parses the free-form numbered-list
// output of the initial generation prompt.
type SceneListParser struct {
	cor.BaseCommand
}

// NewSceneListParser is the constructor for the SceneListParser command.
func NewSceneListParser(name string) *SceneListParser {
	return &SceneListParser{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute parses the raw model output from the previous command and stamps
// each scene with the movie it belongs to.
func (t *SceneListParser) Execute(context cor.Context) {
	raw, ok := context.Get(t.GetInputParam()).(string)
	if !ok {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("missing generator output"))
		return
	}

	records, err := scenes.ParseNumberedScenes(raw)
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), err)
		return
	}

	if movieID, ok := context.Get(ParamMovieID).(string); ok {
		for _, record := range records {
			record.MovieID = movieID
		}
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), records)
}
