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

// Package workflow_test exercises the generation pipelines end to end with
// scripted fakes in place of the model, the knowledge search, and the
// document store.
package workflow_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/bridges/otelslog"

	"github.com/wittworks/movie-scene-service/internal/core/model"
	"github.com/wittworks/movie-scene-service/internal/core/workflow"
)

const tName = "github.com/wittworks/movie-scene-service/tests/workflow"

var logger = otelslog.NewLogger(tName)

func TestMain(m *testing.M) {
	logger.Info("starting workflow test suite")
	code := m.Run()
	logger.Info("workflow test suite finished")
	os.Exit(code)
}

// scriptedGenerator returns its outputs call by call and records every
// prompt it saw.
type scriptedGenerator struct {
	outputs []string
	prompts []string
}

func (s *scriptedGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.prompts) <= len(s.outputs) {
		return s.outputs[len(s.prompts)-1], nil
	}
	return "", nil
}

// lastPrompt returns the prompt of the most recent call.
func (s *scriptedGenerator) lastPrompt() string {
	if len(s.prompts) == 0 {
		return ""
	}
	return s.prompts[len(s.prompts)-1]
}

// scriptedFinder returns fixed knowledge matches.
type scriptedFinder struct {
	matches []*model.ContextMatch
}

func (s *scriptedFinder) FindContext(_ context.Context, _ string) ([]*model.ContextMatch, error) {
	return s.matches, nil
}

// memorySceneStore keeps scenes per movie in memory.
type memorySceneStore struct {
	scenes map[string][]*model.SceneRecord
}

func newMemorySceneStore() *memorySceneStore {
	return &memorySceneStore{scenes: make(map[string][]*model.SceneRecord)}
}

func (m *memorySceneStore) SaveScenes(_ context.Context, movieID string, records []*model.SceneRecord) error {
	m.scenes[movieID] = append(m.scenes[movieID], records...)
	return nil
}

func (m *memorySceneStore) GetScenes(_ context.Context, movieID string) ([]*model.SceneRecord, error) {
	return m.scenes[movieID], nil
}

func (m *memorySceneStore) SetSceneVideo(_ context.Context, _ string, _ int, _ string, _ string, _ string) error {
	return nil
}

func mustTemplate(t *testing.T, text string) *template.Template {
	t.Helper()
	tmpl, err := template.New("prompt").Parse(text)
	require.NoError(t, err)
	return tmpl
}

const initialPromptText = "Idea: {{.IDEA}}\nContext:\n{{.CONTEXT}}\nWrite {{.SCENE_COUNT}} scenes."

const analysisPromptText = "Summarize the story so far.\nIdea: {{.IDEA}}\nScenes:\n{{.EXISTING_SCENES}}"

const continuationPromptText = "Idea: {{.IDEA}}\nBrief: {{.ANALYSIS}}\nContext:\n{{.CONTEXT}}\n" +
	"Existing:\n{{.EXISTING_SCENES}}\nWrite {{.SCENE_COUNT}} scenes starting at {{.START_NUMBER}}."

const singlePromptText = "Idea: {{.IDEA}}\nContext:\n{{.CONTEXT}}\n" +
	"Rewrite scene {{.START_NUMBER}}."

// TestInitialScenesWorkflow verifies the initial pipeline end to end: the
// knowledge context lands in the prompt, the numbered list is parsed, and
// the scenes are persisted under the movie with the parser defaults.
func TestInitialScenesWorkflow(t *testing.T) {
	gen := &scriptedGenerator{outputs: []string{`1. Scene One: The heist begins.
2. Scene Two: The alarm sounds.
3. Scene Three: The getaway.`}}
	finder := &scriptedFinder{matches: []*model.ContextMatch{
		{Text: "Heist films open with the plan.", Source: "heist-structure.pdf"},
	}}
	store := newMemorySceneStore()

	wf := workflow.NewInitialScenesWorkflow("initial-scenes", finder, gen, store, mustTemplate(t, initialPromptText))
	records, err := wf.Run(context.Background(), "movie-1", "a museum heist gone wrong", 3)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// The retrieved knowledge made it into the rendered prompt.
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.lastPrompt(), "a museum heist gone wrong")
	assert.Contains(t, gen.lastPrompt(), "- Heist films open with the plan.")
	assert.Contains(t, gen.lastPrompt(), "Source: heist-structure.pdf")

	// The persisted scenes carry defaults and the movie reference.
	stored := store.scenes["movie-1"]
	require.Len(t, stored, 3)
	assert.Equal(t, 1, stored[0].ID)
	assert.Equal(t, "Scene One", stored[0].Title)
	assert.Equal(t, model.SceneStatusPending, stored[0].Status)
	assert.Equal(t, "movie-1", stored[0].MovieID)
}

// TestContinuationScenesWorkflow verifies the continuation pipeline: the
// existing scenes feed the prompt, the new scenes continue the sequence,
// and the requested count is enforced.
func TestContinuationScenesWorkflow(t *testing.T) {
	store := newMemorySceneStore()
	store.scenes["movie-1"] = []*model.SceneRecord{
		model.NewSceneRecord(1, "Scene 1", "The heist begins."),
		model.NewSceneRecord(2, "Scene 2", "The alarm sounds."),
		model.NewSceneRecord(3, "Scene 3", "The getaway."),
	}

	gen := &scriptedGenerator{outputs: []string{
		"A crew pulls a museum heist that unravels after the getaway.",
		`SCENE_START
Number: 4
Description: The crew discovers the forgery.
SCENE_END
SCENE_START
Number: 5
Description: A rival gang closes in.
SCENE_END`,
	}}
	finder := &scriptedFinder{}

	wf := workflow.NewContinuationScenesWorkflow("continuation-scenes", finder, gen, store,
		mustTemplate(t, analysisPromptText), mustTemplate(t, continuationPromptText))
	records, err := wf.Run(context.Background(), "movie-1", "a museum heist gone wrong", 2)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 4, records[0].ID)
	assert.Equal(t, 5, records[1].ID)

	// Two model calls: first the story brief, then the continuation.
	require.Len(t, gen.prompts, 2)
	assert.Contains(t, gen.prompts[0], "Summarize the story so far.")
	assert.Contains(t, gen.prompts[0], "Scene 3: The getaway.")

	// The continuation prompt carried the brief, the existing scenes, and
	// the continuation parameters.
	assert.Contains(t, gen.lastPrompt(), "Brief: A crew pulls a museum heist that unravels after the getaway.")
	assert.Contains(t, gen.lastPrompt(), "Scene 3: The getaway.")
	assert.Contains(t, gen.lastPrompt(), "Write 2 scenes starting at 4.")

	assert.Len(t, store.scenes["movie-1"], 5)
}

// TestContinuationScenesWorkflowWrongCount verifies the exact-count property:
// a model answer with the wrong number of blocks fails the whole run and
// persists nothing.
func TestContinuationScenesWorkflowWrongCount(t *testing.T) {
	store := newMemorySceneStore()
	store.scenes["movie-1"] = []*model.SceneRecord{
		model.NewSceneRecord(1, "Scene 1", "The heist begins."),
	}

	gen := &scriptedGenerator{outputs: []string{
		"A heist story with one opening scene.",
		`SCENE_START
Number: 2
Description: Only one scene came back.
SCENE_END`,
	}}

	wf := workflow.NewContinuationScenesWorkflow("continuation-scenes", &scriptedFinder{}, gen, store,
		mustTemplate(t, analysisPromptText), mustTemplate(t, continuationPromptText))
	_, err := wf.Run(context.Background(), "movie-1", "idea", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected exactly 2 scenes")

	// Nothing new was persisted.
	assert.Len(t, store.scenes["movie-1"], 1)
}

// TestContinuationScenesWorkflowEmptyMovie verifies that continuing a movie
// with no scenes stops the chain at the loading step.
func TestContinuationScenesWorkflowEmptyMovie(t *testing.T) {
	gen := &scriptedGenerator{}
	wf := workflow.NewContinuationScenesWorkflow("continuation-scenes", &scriptedFinder{}, gen, newMemorySceneStore(),
		mustTemplate(t, analysisPromptText), mustTemplate(t, continuationPromptText))
	_, err := wf.Run(context.Background(), "movie-1", "idea", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no scenes to continue from")
	assert.Empty(t, gen.prompts)
}

// TestSingleSceneWorkflow verifies that regenerating one scene keeps its id
// and stores the replacement.
func TestSingleSceneWorkflow(t *testing.T) {
	gen := &scriptedGenerator{outputs: []string{strings.Join([]string{
		"SCENE_START",
		"Number: 2",
		"Description: The alarm is silenced before it rings.",
		"SCENE_END",
	}, "\n")}}
	store := newMemorySceneStore()

	wf := workflow.NewSingleSceneWorkflow("single-scene", &scriptedFinder{}, gen, store, mustTemplate(t, singlePromptText))
	record, err := wf.Run(context.Background(), "movie-1", "a museum heist gone wrong", 2)
	require.NoError(t, err)

	assert.Equal(t, 2, record.ID)
	assert.Equal(t, "The alarm is silenced before it rings.", record.Text)
	assert.Equal(t, "movie-1", record.MovieID)
	require.Len(t, store.scenes["movie-1"], 1)
}
