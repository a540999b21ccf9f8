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

package scenes

import (
	"strings"

	"github.com/wittworks/movie-scene-service/internal/core/model"
)

// BuildKnowledgeContext renders retrieved knowledge matches into the block
// of text the generation prompts embed. Matches with empty text are skipped;
// each remaining match becomes a "- <text>" line, followed by an indented
// "Source: <source>" line when the match carries one, and a blank separator.
// Matches are rendered in the order given, which callers keep as relevance
// order. An empty or fully filtered match list yields the empty string, and
// the caller decides whether to proceed without grounding.
func BuildKnowledgeContext(matches []*model.ContextMatch) string {
	var sb strings.Builder
	for _, match := range matches {
		if match == nil || strings.TrimSpace(match.Text) == "" {
			continue
		}
		sb.WriteString("- ")
		sb.WriteString(strings.TrimSpace(match.Text))
		sb.WriteString("\n")
		if match.Source != "" {
			sb.WriteString("  Source: ")
			sb.WriteString(match.Source)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
