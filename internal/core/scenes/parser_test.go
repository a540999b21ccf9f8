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

// Package scenes_test contains unit tests for the two scene parsing grammars
// and their validation rules.
package scenes_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wittworks/movie-scene-service/internal/core/model"
	"github.com/wittworks/movie-scene-service/internal/core/scenes"
	test "github.com/wittworks/movie-scene-service/internal/testutil"
)

// TestParseNumberedScenesWithTitles verifies the numbered-list grammar when
// every fragment opens with an explicit "Scene <label>:" header: the label
// becomes the title and the remainder becomes the scene text.
func TestParseNumberedScenesWithTitles(t *testing.T) {
	raw := `1. Scene One: A lone astronaut drifts past the wreck of her ship.
2. Scene Two: Ground control replays her final transmission.
3. Scene Three: The rescue probe finds the ship empty.`

	out, err := scenes.ParseNumberedScenes(raw)
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, 1, out[0].ID)
	assert.Equal(t, "Scene One", out[0].Title)
	assert.Equal(t, "A lone astronaut drifts past the wreck of her ship.", out[0].Text)
	assert.Equal(t, "Scene Three", out[2].Title)

	// Every parsed scene carries the parser defaults.
	for _, scene := range out {
		assert.Equal(t, model.DefaultSceneDuration, scene.Duration)
		assert.Equal(t, model.SceneType, scene.Type)
		assert.Equal(t, model.SceneStatusPending, scene.Status)
	}
}

// TestParseNumberedScenesWithoutTitles verifies that a fragment with no
// "Scene <label>:" header gets a synthesized positional title and keeps its
// full text.
func TestParseNumberedScenesWithoutTitles(t *testing.T) {
	raw := `1. The storm rolls in over the harbor.
2. Fishermen haul in the last nets before dark.`

	out, err := scenes.ParseNumberedScenes(raw)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "Scene 1", out[0].Title)
	assert.Equal(t, "The storm rolls in over the harbor.", out[0].Text)
	assert.Equal(t, "Scene 2", out[1].Title)
}

// TestParseNumberedScenesMultilineText verifies that a scene description
// spanning multiple lines stays attached to its fragment instead of being
// split into separate scenes.
func TestParseNumberedScenesMultilineText(t *testing.T) {
	raw := "1. Scene Alpha: The city wakes.\nTraffic builds on the ring road.\n2. Scene Beta: Night falls."

	out, err := scenes.ParseNumberedScenes(raw)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "Scene Alpha", out[0].Title)
	assert.Contains(t, out[0].Text, "Traffic builds on the ring road.")
}

// TestParseNumberedScenesSkipsEmptyFragments verifies that leading text
// before the first list marker and blank fragments are discarded, and ids
// stay sequential over the surviving fragments.
func TestParseNumberedScenesSkipsEmptyFragments(t *testing.T) {
	raw := "   \n1. First.\n2.   \n3. Third."

	out, err := scenes.ParseNumberedScenes(raw)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 1, out[0].ID)
	assert.Equal(t, "First.", out[0].Text)
	assert.Equal(t, 2, out[1].ID)
	assert.Equal(t, "Third.", out[1].Text)
}

// TestParseNumberedScenesEmptyInput verifies that output containing no
// usable scene at all is a parse error, not a silent empty result.
func TestParseNumberedScenesEmptyInput(t *testing.T) {
	_, err := scenes.ParseNumberedScenes("   \n\n  ")
	require.Error(t, err)

	var appErr *model.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, model.KindParse, appErr.Kind)
}

// TestParseSceneBlocks verifies the happy path of the delimited-block
// grammar: both fields extracted per block, ids taken from the Number
// field, and the requested count and sequence respected.
func TestParseSceneBlocks(t *testing.T) {
	raw := `SCENE_START
Number: 4
Description: The detective finds the hidden door.
SCENE_END
SCENE_START
Number: 5
Description: Behind it, the archive no one was meant to see.
SCENE_END`

	out, err := scenes.ParseSceneBlocks(raw, 4, 2)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, 4, out[0].ID)
	assert.Equal(t, "Scene 4", out[0].Title)
	assert.Equal(t, "The detective finds the hidden door.", out[0].Text)
	assert.Equal(t, 5, out[1].ID)
	assert.Equal(t, model.SceneStatusPending, out[1].Status)
}

// TestParseSceneBlocksMissingEndMarker verifies that the final block may
// omit SCENE_END; the description runs to the end of the text.
func TestParseSceneBlocksMissingEndMarker(t *testing.T) {
	raw := "SCENE_START\nNumber: 7\nDescription: The bridge collapses behind them."

	out, err := scenes.ParseSceneBlocks(raw, 7, 1)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "The bridge collapses behind them.", out[0].Text)
}

// TestParseSceneBlocksCountMismatch verifies that producing fewer scenes
// than requested fails the whole parse rather than returning a short list.
func TestParseSceneBlocksCountMismatch(t *testing.T) {
	raw := "SCENE_START\nNumber: 3\nDescription: Only one block.\nSCENE_END"

	_, err := scenes.ParseSceneBlocks(raw, 3, 2)
	require.Error(t, err)

	var appErr *model.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, model.KindParse, appErr.Kind)
}

// TestParseSceneBlocksNonContiguousIDs verifies that ids which do not form
// the exact requested run are rejected even when the count matches.
func TestParseSceneBlocksNonContiguousIDs(t *testing.T) {
	raw := `SCENE_START
Number: 4
Description: First.
SCENE_END
SCENE_START
Number: 6
Description: Skipped one.
SCENE_END`

	_, err := scenes.ParseSceneBlocks(raw, 4, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of sequence")
}

// TestParseNumberedScenesSampleOutput runs the shared sample of numbered
// model output through the parser.
func TestParseNumberedScenesSampleOutput(t *testing.T) {
	out, err := scenes.ParseNumberedScenes(test.GetTestNumberedScenesText())
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, "Scene One", out[0].Title)
	assert.Contains(t, out[0].Text, "message in a bottle")
	assert.Equal(t, 3, out[2].ID)
}

// TestParseSceneBlocksSampleOutput runs the shared sample of delimited-block
// model output through the parser.
func TestParseSceneBlocksSampleOutput(t *testing.T) {
	out, err := scenes.ParseSceneBlocks(test.GetTestSceneBlocksText(), 4, 2)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, 4, out[0].ID)
	assert.Contains(t, out[0].Text, "ledger of shipwrecks")
	assert.Equal(t, 5, out[1].ID)
}

// TestParseSceneBlocksMissingFields verifies that a block missing either
// required field is fatal for the whole operation.
func TestParseSceneBlocksMissingFields(t *testing.T) {
	missingNumber := "SCENE_START\nDescription: No number here.\nSCENE_END"
	_, err := scenes.ParseSceneBlocks(missingNumber, 1, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Number")

	missingDescription := "SCENE_START\nNumber: 1\nSCENE_END"
	_, err = scenes.ParseSceneBlocks(missingDescription, 1, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Description")
}
