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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files, and the shared clients for Google Cloud and the
// video generation provider.
//
// This file centralizes all configuration-related structs, making it easy
// to understand and manage the application's configurable parameters.
//
// Structs:
//   - BigQueryDataSource: Configuration for the BigQuery knowledge dataset.
//   - Firestore: Configuration for the Firestore document collections.
//   - PromptTemplates: Holds the text templates for prompts sent to GenAI models.
//   - VertexAiEmbeddingModel: Configuration for a Vertex AI embedding model.
//   - VertexAiLLMModel: Configuration for a Vertex AI Large Language Model (LLM).
//   - VideoGenerator: Configuration for the Replicate video generation model.
//   - TopicSubscription: Configuration for a single Pub/Sub topic subscription.
//   - Storage: Configuration for Google Cloud Storage buckets.
//   - Config: The top-level struct that aggregates all other configuration structs.
//
// Functions:
//   - NewConfig: A constructor that initializes a new Config object with empty maps.
package cloud

import "google.golang.org/genai"

// DefaultSafetySettings defines the default content safety thresholds for GenAI models.
// These settings are configured to be non-restrictive, allowing all content categories
// (Dangerous Content, Harassment, Hate Speech, Sexually Explicit) to pass through without
// being blocked. This is a common setup for internal or controlled environments where
// the input data is trusted.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// BigQueryDataSource represents the configuration for the BigQuery knowledge base.
type BigQueryDataSource struct {
	DatasetName    string `toml:"dataset"`         // The name of the BigQuery dataset.
	KnowledgeTable string `toml:"knowledge_table"` // The table holding knowledge chunks and their embedding vectors.
	TopK           int    `toml:"top_k"`           // The number of nearest neighbors to retrieve per query.
}

// Firestore represents the configuration for the Firestore document store.
type Firestore struct {
	MoviesCollection string `toml:"movies_collection"` // The collection holding movie documents with their scenes.
	JobsCollection   string `toml:"jobs_collection"`   // The collection holding video generation job documents.
	UsersCollection  string `toml:"users_collection"`  // The collection holding user profile documents.
}

// PromptTemplates holds the templates for different types of prompts.
type PromptTemplates struct {
	InitialPrompt      string `toml:"initial"`      // The template for generating the initial scene list from an idea.
	AnalysisPrompt     string `toml:"analysis"`     // The template for the story brief written before a continuation run.
	ContinuationPrompt string `toml:"continuation"` // The template for generating additional delimited scene blocks.
	SinglePrompt       string `toml:"single"`       // The template for regenerating one scene in place.
}

// VertexAiEmbeddingModel represents the configuration for a Vertex AI embedding model.
type VertexAiEmbeddingModel struct {
	Model                string `toml:"model"`                   // The name of the Vertex AI embedding model.
	MaxRequestsPerMinute int    `toml:"max_requests_per_minute"` // The maximum number of requests allowed per minute.
}

// VertexAiLLMModel represents the configuration for a Vertex AI large language model (LLM).
type VertexAiLLMModel struct {
	Model              string  `toml:"model"`               // The name of the Vertex AI LLM.
	SystemInstructions string  `toml:"system_instructions"` // The system instructions for the LLM.
	Temperature        float32 `toml:"temperature"`         // The temperature parameter for the LLM.
	TopP               float32 `toml:"top_p"`               // The top_p parameter for the LLM.
	TopK               float32 `toml:"top_k"`               // The top_k parameter for the LLM.
	MaxTokens          int32   `toml:"max_tokens"`          // The maximum number of tokens for the LLM output.
	OutputFormat       string  `toml:"output_format"`       // The desired output format for the LLM.
	RateLimit          int     `toml:"rate_limit"`          // The rate limit for the LLM in requests per second.
}

// VideoGenerator represents the configuration for the Replicate video model
// and the bounded polling loop of the synchronous generation endpoint.
type VideoGenerator struct {
	ModelVersion        string `toml:"model_version"`         // The Replicate model version id used for predictions.
	PollIntervalSeconds int    `toml:"poll_interval_seconds"` // Seconds to wait between status polls in synchronous mode.
	MaxPollAttempts     int    `toml:"max_poll_attempts"`     // Maximum number of polls before synchronous generation times out.
}

// TopicSubscription represents the configuration for a Pub/Sub topic subscription.
type TopicSubscription struct {
	Name             string `toml:"name"`               // The name of the Pub/Sub subscription.
	DeadLetterTopic  string `toml:"dead_letter_topic"`  // The name of the dead-letter topic for the subscription.
	TimeoutInSeconds int    `toml:"timeout_in_seconds"` // The timeout for the subscription in seconds.
}

// Storage represents the configuration for storage buckets.
type Storage struct {
	VideoBucket string `toml:"video_bucket"` // The bucket that holds finalized generated video clips.
}

// Config represents the overall configuration for the application, loaded from TOML files.
// It acts as the root container for all other configuration structs.
type Config struct {
	// Application holds general application settings.
	Application struct {
		Name            string `toml:"name"`              // The name of the application.
		GoogleProjectId string `toml:"google_project_id"` // The Google Cloud project ID.
		GoogleLocation  string `toml:"location"`          // The Google Cloud location.
	} `toml:"application"`
	Storage            Storage                           `toml:"storage"`               // Storage configuration.
	BigQueryDataSource BigQueryDataSource                `toml:"big_query_data_source"` // BigQuery knowledge base configuration.
	Firestore          Firestore                         `toml:"firestore"`             // Firestore collection configuration.
	PromptTemplates    PromptTemplates                   `toml:"prompt_templates"`      // Prompt templates configuration.
	VideoGenerator     VideoGenerator                    `toml:"video_generator"`       // Video generation provider configuration.
	TopicSubscriptions map[string]TopicSubscription      `toml:"topic_subscriptions"`   // A map of Pub/Sub topic subscriptions, keyed by a logical name (e.g., "UserCreated").
	EmbeddingModels    map[string]VertexAiEmbeddingModel `toml:"embedding_models"`      // A map of Vertex AI embedding models, keyed by a logical name (e.g., "knowledge").
	AgentModels        map[string]VertexAiLLMModel       `toml:"agent_models"`          // A map of Vertex AI LLM models, keyed by a logical name (e.g., "creative").
}

// NewConfig is a constructor function that creates a new, initialized Config instance.
// It's important to initialize the maps within the struct to avoid nil pointer panics
// when the configuration loader tries to populate them.
//
// Outputs:
//   - *Config: A pointer to a new Config struct with its map fields initialized.
func NewConfig() *Config {
	return &Config{
		TopicSubscriptions: make(map[string]TopicSubscription),
		EmbeddingModels:    make(map[string]VertexAiEmbeddingModel),
		AgentModels:        make(map[string]VertexAiLLMModel),
	}
}
