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

// Package cloud_test exercises the hierarchical TOML configuration loading
// against the real files under configs/.
package cloud_test

import (
	"log"
	"os"
	"testing"
	"text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	test "github.com/wittworks/movie-scene-service/internal/testutil"
)

// TestMain moves the working directory to the repository root so the loader
// resolves the relative configs/ prefix the same way the server binary does.
func TestMain(m *testing.M) {
	for range [8]int{} {
		if _, err := os.Stat("configs"); err == nil {
			break
		}
		if err := os.Chdir(".."); err != nil {
			log.Fatalf("failed to locate configs directory: %v", err)
		}
	}
	os.Exit(m.Run())
}

// TestLoadConfigAppliesTestOverlay verifies that the base file supplies the
// shared values and the .env.test.toml overlay replaces the deployment ones.
func TestLoadConfigAppliesTestOverlay(t *testing.T) {
	config := test.GetConfig()

	// Base values survive the overlay.
	assert.Equal(t, "movie-scene-service", config.Application.Name)
	assert.Equal(t, "minimax/video-01", config.VideoGenerator.ModelVersion)

	// Overlay values win over the base file.
	assert.Equal(t, "wittworks-movie-gen-test", config.Application.GoogleProjectId)
	assert.Equal(t, "videoJobs_test", config.Firestore.JobsCollection)
	assert.Equal(t, "wittworks_generated_videos_test", config.Storage.VideoBucket)
	assert.Equal(t, 3, config.VideoGenerator.MaxPollAttempts)
}

// TestConfigPromptTemplatesParse verifies that every configured prompt is a
// valid Go template, so a bad edit to the TOML fails here instead of at the
// first generation request.
func TestConfigPromptTemplatesParse(t *testing.T) {
	config := test.GetConfig()

	prompts := map[string]string{
		"initial":      config.PromptTemplates.InitialPrompt,
		"analysis":     config.PromptTemplates.AnalysisPrompt,
		"continuation": config.PromptTemplates.ContinuationPrompt,
		"single":       config.PromptTemplates.SinglePrompt,
	}
	for name, text := range prompts {
		require.NotEmpty(t, text, name)
		_, err := template.New(name).Parse(text)
		test.HandleErr(err, t)
	}
}
