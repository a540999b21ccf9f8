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

// Package scenes holds the pure text-processing core of scene generation:
// the two parsers that turn raw model output into ordered SceneRecord lists,
// and the knowledge-context builder.
//
// Two incompatible grammars deliberately coexist. The numbered-list grammar
// parses the free-form "1. ..." output of the initial generation prompt; the
// delimited-block grammar parses the strict SCENE_START/SCENE_END output of
// the continuation prompt and enforces an exact count and id sequence. Which
// grammar applies is determined by the calling endpoint, never by content
// inspection, so the two entry points stay separate.
package scenes

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/wittworks/movie-scene-service/internal/core/model"
)

// Markers of the delimited-block grammar. The model is instructed to emit
// them verbatim; they are matched literally, not as patterns.
const (
	SceneStartMarker = "SCENE_START"
	SceneEndMarker   = "SCENE_END"
)

var (
	// numberedSplit matches the "1. " style list prefix the numbered-list
	// grammar splits on: digits, a period, whitespace.
	numberedSplit = regexp.MustCompile(`\d+\.\s+`)

	// sceneHeader recognizes an optional leading "Scene <label>:" title in a
	// numbered-list fragment. The (?s) flag lets the remainder span lines.
	sceneHeader = regexp.MustCompile(`(?s)^(Scene \w+):\s*(.*)$`)

	// blockNumber and blockDescription extract the two required fields of a
	// delimited block. The description runs to the end marker or the end of
	// the block.
	blockNumber      = regexp.MustCompile(`Number:\s*(\d+)`)
	blockDescription = regexp.MustCompile(`(?s)Description:\s*(.*?)\s*(?:` + SceneEndMarker + `|$)`)
)

// ParseNumberedScenes parses raw generator output in the numbered-list
// grammar. The text is split on numbered-list prefixes, empty fragments are
// discarded after trimming, and each remaining fragment becomes one scene.
// A fragment opening with "Scene <label>:" contributes that label as the
// title; otherwise a "Scene N" title is synthesized from the position.
//
// Inputs:
//   - raw: the unmodified text returned by the generation model.
//
// Outputs:
//   - []*model.SceneRecord: scenes with sequential one-based ids, in input
//     order, each with the parser defaults applied.
//   - error: a ParseError when no scene could be extracted at all.
func ParseNumberedScenes(raw string) ([]*model.SceneRecord, error) {
	fragments := numberedSplit.Split(raw, -1)

	out := make([]*model.SceneRecord, 0, len(fragments))
	for _, fragment := range fragments {
		fragment = strings.TrimSpace(fragment)
		if fragment == "" {
			continue
		}

		index := len(out)
		title := fmt.Sprintf("Scene %d", index+1)
		text := fragment
		if m := sceneHeader.FindStringSubmatch(fragment); m != nil {
			title = m[1]
			text = strings.TrimSpace(m[2])
		}
		if text == "" {
			continue
		}

		out = append(out, model.NewSceneRecord(index+1, title, text))
	}

	if len(out) == 0 {
		return nil, model.NewParseError("generator output contained no scenes", nil)
	}
	return out, nil
}

// ParseSceneBlocks parses raw generator output in the delimited-block
// grammar and validates it against the caller's request. Every non-empty
// block between SCENE_START markers must carry both a "Number:" and a
// "Description:" field; a block missing either fails the whole operation.
// After parsing, the scene count must equal count exactly and the ids must
// form the contiguous run startingNumber..startingNumber+count-1 in order.
// Any deviation is fatal; the parser never truncates or renumbers.
//
// Inputs:
//   - raw: the unmodified text returned by the generation model.
//   - startingNumber: the id the first new scene must carry.
//   - count: the exact number of scenes the caller requested.
//
// Outputs:
//   - []*model.SceneRecord: exactly count scenes with the requested ids.
//   - error: a ParseError describing the first violation found.
func ParseSceneBlocks(raw string, startingNumber int, count int) ([]*model.SceneRecord, error) {
	blocks := strings.Split(raw, SceneStartMarker)

	out := make([]*model.SceneRecord, 0, count)
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		numMatch := blockNumber.FindStringSubmatch(block)
		if numMatch == nil {
			return nil, model.NewParseError("scene block missing Number field", nil)
		}
		number, err := strconv.Atoi(numMatch[1])
		if err != nil {
			return nil, model.NewParseError("scene block has unparseable Number field", err)
		}

		descMatch := blockDescription.FindStringSubmatch(block)
		if descMatch == nil || strings.TrimSpace(descMatch[1]) == "" {
			return nil, model.NewParseError(fmt.Sprintf("scene block %d missing Description field", number), nil)
		}

		scene := model.NewSceneRecord(number, fmt.Sprintf("Scene %d", number), strings.TrimSpace(descMatch[1]))
		out = append(out, scene)
	}

	if len(out) != count {
		return nil, model.NewParseError(
			fmt.Sprintf("expected exactly %d scenes, generator produced %d", count, len(out)), nil)
	}
	for i, scene := range out {
		want := startingNumber + i
		if scene.ID != want {
			return nil, model.NewParseError(
				fmt.Sprintf("scene ids out of sequence: position %d has id %d, want %d", i, scene.ID, want), nil)
		}
	}

	return out, nil
}
