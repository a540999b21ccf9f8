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

// Package main contains the setup and initialization logic for the application's state.
// This file is responsible for creating and managing a centralized state manager
// that holds all shared dependencies: configuration, service clients, the scene
// generation workflows, and the video job service.
//
// It ensures that the application is configured correctly based on the environment,
// initializes all necessary clients (Storage, Firestore, BigQuery, GenAI, Replicate),
// and starts background processes like the Pub/Sub listeners.
//
// Functions:
//   - SetupOS: Configures necessary environment variables for the application,
//     pointing to the correct configuration files.
//   - GetConfig: A singleton function that loads the application's configuration
//     from TOML files. It ensures the configuration is loaded only once.
//   - InitState: The core initialization function that creates all service clients,
//     wires the workflows and the video job service, and starts the listeners.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"text/template"
	"time"

	"github.com/wittworks/movie-scene-service/internal/cloud"
	"github.com/wittworks/movie-scene-service/internal/core/commands"
	"github.com/wittworks/movie-scene-service/internal/core/services"
	"github.com/wittworks/movie-scene-service/internal/core/workflow"
)

// Logical model names looked up in the configuration maps.
const (
	embeddingModelKey = "knowledge"
	agentModelKey     = "creative"
)

// StateManager holds all the shared dependencies for the application, acting as a
// centralized container for service clients and configurations. This avoids the
// need for global variables and makes dependency management cleaner.
type StateManager struct {
	config               *cloud.Config
	cloud                *cloud.ServiceClients
	store                *services.FirestoreStore
	searchService        *services.KnowledgeSearchService
	jobService           *services.VideoJobService
	initialWorkflow      *workflow.InitialScenesWorkflow
	continuationWorkflow *workflow.ContinuationScenesWorkflow
	singleSceneWorkflow  *workflow.SingleSceneWorkflow
}

// state is a package-level variable that holds the single instance of StateManager.
var state = &StateManager{}

// SetupOS sets the necessary environment variables that the configuration loader
// uses to find the correct TOML files.
//
// Outputs:
//   - error: An error if setting any of the environment variables fails.
func SetupOS() (err error) {
	// Set the directory where configuration files are located.
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	// Set the current runtime environment to "local". The config loader will
	// look for a ".env.local.toml" file to override base settings.
	err = os.Setenv(cloud.EnvConfigRuntime, "local")
	return err
}

// GetConfig provides a singleton instance of the application configuration.
// It ensures that the configuration is loaded from the file system only once.
//
// Outputs:
//   - *cloud.Config: A pointer to the loaded application configuration struct.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup os environment: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}

// mustParsePrompt parses a prompt template from the configuration. A template
// that fails to parse is a startup error, not a per-request one.
func mustParsePrompt(name string, text string) *template.Template {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		log.Fatalf("failed to parse %s prompt template: %v\n", name, err)
	}
	return tmpl
}

// InitState initializes the entire application state.
// It orchestrates the creation of all necessary services and clients based on the
// application configuration and wires them together.
//
// This function performs the following steps:
//  1. Loads the application configuration.
//  2. Initializes all service clients (Storage, Firestore, Pub/Sub, GenAI,
//     BigQuery, Replicate).
//  3. Instantiates the knowledge search service, the three generation
//     workflows, and the video job service.
//  4. Sets up and starts the Pub/Sub listener for user onboarding.
func InitState(ctx context.Context) {
	config := GetConfig()

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		panic(err)
	}
	state.cloud = cloudClients

	// The Firestore-backed store serves scenes, jobs, and user profiles.
	state.store = services.NewFirestoreStore(
		cloudClients.FirestoreClient,
		config.Firestore.MoviesCollection,
		config.Firestore.JobsCollection,
		config.Firestore.UsersCollection,
	)

	// The knowledge search service grounds every generation run.
	state.searchService = &services.KnowledgeSearchService{
		BigQueryClient: cloudClients.BigQueryClient,
		EmbeddingModel: cloudClients.EmbeddingModels[embeddingModelKey],
		ModelName:      config.EmbeddingModels[embeddingModelKey].Model,
		DatasetName:    config.BigQueryDataSource.DatasetName,
		KnowledgeTable: config.BigQueryDataSource.KnowledgeTable,
		TopK:           config.BigQueryDataSource.TopK,
	}

	// One rate-limited text generator is shared by all three workflows.
	generator := commands.NewGeminiTextGenerator("scene-generation", cloudClients.AgentModels[agentModelKey])

	state.initialWorkflow = workflow.NewInitialScenesWorkflow(
		"initial-scenes",
		state.searchService,
		generator,
		state.store,
		mustParsePrompt("initial", config.PromptTemplates.InitialPrompt),
	)
	state.continuationWorkflow = workflow.NewContinuationScenesWorkflow(
		"continuation-scenes",
		state.searchService,
		generator,
		state.store,
		mustParsePrompt("analysis", config.PromptTemplates.AnalysisPrompt),
		mustParsePrompt("continuation", config.PromptTemplates.ContinuationPrompt),
	)
	state.singleSceneWorkflow = workflow.NewSingleSceneWorkflow(
		"single-scene",
		state.searchService,
		generator,
		state.store,
		mustParsePrompt("single", config.PromptTemplates.SinglePrompt),
	)

	// The video job service drives the asynchronous generation state machine.
	videoGenerator := cloud.NewReplicateVideoGenerator(cloudClients.ReplicateClient, config.VideoGenerator.ModelVersion)
	objects := services.NewGCSObjectStore(cloudClients.StorageClient, config.Storage.VideoBucket)
	state.jobService = services.NewVideoJobService(
		videoGenerator,
		state.store,
		state.store,
		objects,
		http.DefaultClient,
		time.Duration(config.VideoGenerator.PollIntervalSeconds)*time.Second,
		config.VideoGenerator.MaxPollAttempts,
	)

	// Configure and start the Pub/Sub listeners.
	SetupListeners(cloudClients, state.store, ctx)
}
