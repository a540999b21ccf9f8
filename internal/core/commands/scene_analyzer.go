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

// This file defines the first model call of the continuation pipeline: a
// free-text analysis of the movie's existing scenes and the requested new
// direction. The brief it produces feeds the continuation-generation prompt,
// so the second call writes scenes that actually follow from the story so
// far instead of from the raw scene list alone.
package commands

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/wittworks/movie-scene-service/internal/core/cor"
)

// SceneAnalyzer is a command that asks the generative model for a story
// brief summarizing the existing scenes and the continuation direction.
type SceneAnalyzer struct {
	cor.BaseCommand
	generator TextGenerator
	template  *template.Template
}

// NewSceneAnalyzer is the constructor for the SceneAnalyzer command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - generator: The text generation surface to prompt.
//   - template: A parsed Go template for the analysis prompt.
func NewSceneAnalyzer(name string, generator TextGenerator, template *template.Template) *SceneAnalyzer {
	return &SceneAnalyzer{
		BaseCommand: *cor.NewBaseCommand(name),
		generator:   generator,
		template:    template,
	}
}

// Execute renders the analysis prompt from the idea and the loaded scenes,
// runs the generation, and stores the brief under ParamAnalysis for the
// continuation prompt.
func (t *SceneAnalyzer) Execute(context cor.Context) {
	existing, ok := context.Get(ParamExistingScenes).(string)
	if !ok || existing == "" {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("missing existing scenes to analyze"))
		return
	}

	params := map[string]interface{}{
		"IDEA":            context.Get(ParamIdea),
		"EXISTING_SCENES": existing,
	}
	var buffer bytes.Buffer
	if err := t.template.Execute(&buffer, params); err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("failed to execute analysis template: %w", err))
		return
	}

	brief, err := t.generator.Generate(context.GetContext(), buffer.String())
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("analysis request failed: %w", err))
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(ParamAnalysis, brief)
	context.Add(t.GetOutputParam(), brief)
}
