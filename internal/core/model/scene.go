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

// Package model defines the core data structures for the application.
// This file holds the scene-related types: the SceneRecord produced by the
// scene parsers and mutated once a video has been generated for it, the
// knowledge-context match returned by the vector search, and the tagged
// VideoSource variant used to build storage object metadata.
package model

// Scene defaults applied by both parser grammars. Every freshly parsed scene
// starts as a pending, fifteen-second beat; the duration is a product
// constant for short-form video, not a measured value.
const (
	DefaultSceneDuration = 15
	SceneType            = "scene"

	SceneStatusPending   = "pending"
	SceneStatusCompleted = "completed"

	// VideoTypeAI marks a scene whose clip was produced by the generation
	// provider, as opposed to a user upload.
	VideoTypeAI = "ai"
)

// SceneRecord is one narrative beat of a generated short-form movie. Records
// are created by the scene parsers with sequential one-based ids; ordering is
// significant and must be preserved exactly as produced. Once a video job
// finishes, the referenced record is updated in place with the video fields.
type SceneRecord struct {
	ID        int    `json:"id" firestore:"id"`                             // One-based sequential position within the movie.
	Title     string `json:"title,omitempty" firestore:"title,omitempty"`   // Optional "Scene <label>" header recognized by grammar (a).
	Text      string `json:"text" firestore:"text"`                         // The scene description. Never empty for a parsed record.
	Duration  int    `json:"duration" firestore:"duration"`                 // Seconds. Defaults to DefaultSceneDuration.
	Type      string `json:"type" firestore:"type"`                         // Always SceneType.
	Status    string `json:"status" firestore:"status"`                     // pending until a video is attached, then completed.
	MovieID   string `json:"movieId,omitempty" firestore:"movieId,omitempty"`
	VideoURL  string `json:"videoUrl,omitempty" firestore:"videoUrl,omitempty"`
	VideoID   string `json:"videoId,omitempty" firestore:"videoId,omitempty"`
	VideoType string `json:"videoType,omitempty" firestore:"videoType,omitempty"`
}

// NewSceneRecord builds a scene with the parser defaults applied. Both
// grammars funnel through this constructor so the defaults live in one place.
func NewSceneRecord(id int, title string, text string) *SceneRecord {
	return &SceneRecord{
		ID:       id,
		Title:    title,
		Text:     text,
		Duration: DefaultSceneDuration,
		Type:     SceneType,
		Status:   SceneStatusPending,
	}
}

// ContextMatch is one ranked result from the knowledge vector search. Matches
// arrive ordered by ascending distance (most similar first). A match with an
// empty Text carries no usable metadata and is skipped by the context
// builder rather than treated as an error.
type ContextMatch struct {
	Text     string  `json:"text"`
	Source   string  `json:"source,omitempty"`
	Distance float64 `json:"distance"`
}

// VideoSource is a tagged variant describing where a stored video came from.
// The AI variant carries the provider prediction id and the prompt text used
// to generate the clip; the upload variant carries neither. Object metadata is
// derived from the variant explicitly instead of merging optional fields at
// call sites.
type VideoSource struct {
	Type         string // VideoTypeAI or "upload".
	PredictionID string // Set only for the AI variant.
	Description  string // Set only for the AI variant; the scene text.
}

// AIVideoSource constructs the AI variant of VideoSource.
func AIVideoSource(predictionID string, description string) VideoSource {
	return VideoSource{Type: VideoTypeAI, PredictionID: predictionID, Description: description}
}

// UploadVideoSource constructs the upload variant of VideoSource.
func UploadVideoSource() VideoSource {
	return VideoSource{Type: "upload"}
}

// MetadataInto writes the variant-specific fields into a storage metadata
// map. The prediction id and description appear only for AI-sourced videos.
func (v VideoSource) MetadataInto(md map[string]string) {
	md["sourceType"] = v.Type
	if v.Type == VideoTypeAI {
		md["predictionId"] = v.PredictionID
		md["description"] = v.Description
	}
}
