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

// This file defines the command that parses delimited-block model output
// into scene records. It is the parsing step of the continuation and
// single-scene pipelines, where the requested count and id sequence are
// validated strictly.
package commands

import (
	"fmt"

	"github.com/wittworks/movie-scene-service/internal/core/cor"
	"github.com/wittworks/movie-scene-service/internal/core/scenes"
)

// SceneBlockParser is a command that parses SCENE_START/SCENE_END delimited
// output and enforces the requested scene count and contiguous ids.
type SceneBlockParser struct {
	cor.BaseCommand
}

// NewSceneBlockParser is the constructor for the SceneBlockParser command.
func NewSceneBlockParser(name string) *SceneBlockParser {
	return &SceneBlockParser{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute parses the raw model output against the start number and count
// recorded in the context.
func (t *SceneBlockParser) Execute(context cor.Context) {
	raw, ok := context.Get(t.GetInputParam()).(string)
	if !ok {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("missing generator output"))
		return
	}
	startNumber, ok := context.Get(ParamStartNumber).(int)
	if !ok {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("missing start number"))
		return
	}
	count, ok := context.Get(ParamSceneCount).(int)
	if !ok {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("missing scene count"))
		return
	}

	records, err := scenes.ParseSceneBlocks(raw, startNumber, count)
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
