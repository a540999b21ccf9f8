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

package scenes_test

import (
	"testing"

	"github.com/zeebo/assert"

	"github.com/wittworks/movie-scene-service/internal/core/model"
	"github.com/wittworks/movie-scene-service/internal/core/scenes"
)

// TestBuildKnowledgeContext verifies the rendered shape of the grounding
// block: one bulleted line per match, an indented source attribution when
// present, and blank lines separating entries.
func TestBuildKnowledgeContext(t *testing.T) {
	matches := []*model.ContextMatch{
		{Text: "Film noir relies on low-key lighting.", Source: "noir-handbook.pdf"},
		{Text: "A cold open starts mid-action."},
	}

	got := scenes.BuildKnowledgeContext(matches)
	want := "- Film noir relies on low-key lighting.\n" +
		"  Source: noir-handbook.pdf\n" +
		"\n" +
		"- A cold open starts mid-action."
	assert.Equal(t, want, got)
}

// TestBuildKnowledgeContextSkipsEmptyMatches verifies that nil and
// empty-text matches contribute nothing and an all-empty list renders to
// the empty string.
func TestBuildKnowledgeContextSkipsEmptyMatches(t *testing.T) {
	matches := []*model.ContextMatch{
		nil,
		{Text: "   "},
		{Text: "The only survivor.", Source: "survival-notes.txt"},
	}

	got := scenes.BuildKnowledgeContext(matches)
	assert.Equal(t, "- The only survivor.\n  Source: survival-notes.txt", got)

	assert.Equal(t, "", scenes.BuildKnowledgeContext(nil))
}
