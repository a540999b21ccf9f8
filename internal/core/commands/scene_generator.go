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

// This file defines the command that renders a prompt template and sends it
// to the text generation model. The same command type serves every pipeline;
// only the template differs between initial generation, continuation, and
// single-scene regeneration.
//
// Logic Flow:
//  1. The prompt template is executed against the named context parameters
//     (idea, knowledge context, existing scenes, start number, scene count).
//  2. The rendered prompt is sent to the TextGenerator.
//  3. The raw model output is piped to the next command, which parses it.
package commands

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/wittworks/movie-scene-service/internal/core/cor"
)

// SceneGenerator is a command that prompts the generative model for scene
// text using a configured template.
type SceneGenerator struct {
	cor.BaseCommand
	generator TextGenerator
	template  *template.Template
}

// NewSceneGenerator is the constructor for the SceneGenerator command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - generator: The text generation surface to prompt.
//   - template: A parsed Go template for the prompt.
func NewSceneGenerator(name string, generator TextGenerator, template *template.Template) *SceneGenerator {
	return &SceneGenerator{
		BaseCommand: *cor.NewBaseCommand(name),
		generator:   generator,
		template:    template,
	}
}

// GenerateParams creates the map of dynamic data to be injected into the
// prompt template. Absent parameters render as empty strings, which the
// templates tolerate.
func (t *SceneGenerator) GenerateParams(context cor.Context) map[string]interface{} {
	params := make(map[string]interface{})
	params["IDEA"] = context.Get(ParamIdea)
	params["CONTEXT"] = context.Get(ParamKnowledgeContext)
	params["EXISTING_SCENES"] = context.Get(ParamExistingScenes)
	params["ANALYSIS"] = context.Get(ParamAnalysis)
	params["START_NUMBER"] = context.Get(ParamStartNumber)
	params["SCENE_COUNT"] = context.Get(ParamSceneCount)
	return params
}

// Execute renders the prompt and runs the generation.
func (t *SceneGenerator) Execute(context cor.Context) {
	var buffer bytes.Buffer
	if err := t.template.Execute(&buffer, t.GenerateParams(context)); err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("failed to execute prompt template: %w", err))
		return
	}

	out, err := t.generator.Generate(context.GetContext(), buffer.String())
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("generation request failed: %w", err))
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), out)
}
