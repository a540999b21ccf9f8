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

// Package test provides utility functions and mock data to support the
// application's test suite. It helps in setting up a consistent test
// environment, loading test-specific configurations, and providing sample
// generator output and trigger payloads.
package test

import (
	"log"
	"os"
	"testing"

	"github.com/wittworks/movie-scene-service/internal/cloud"
)

// StateManager acts as a simple in-memory cache for the application
// configuration during test runs, so the TOML files are read once per run.
type StateManager struct {
	config *cloud.Config
}

// state holds the singleton StateManager for the test run.
var state = &StateManager{}

// HandleErr fails the test if err is not nil. A convenience to reduce
// boilerplate error checking in tests.
//
// Inputs:
//   - err: The error to check.
//   - t: The *testing.T object from the current test.
func HandleErr(err error, t *testing.T) {
	if err != nil {
		t.Errorf("Error reading config file: %v", err)
	}
}

// GetTestUserCreatedMessageText returns a JSON payload simulating the
// Pub/Sub message published when a new user account is created. Used to
// test the user onboarding listener.
func GetTestUserCreatedMessageText() string {
	return `{
  "uid": "test-user-001",
  "email": "test-user-001@example.com",
  "displayName": "Test User"
}`
}

// GetTestNumberedScenesText returns raw model output in the numbered-list
// grammar produced by the initial generation prompt.
func GetTestNumberedScenesText() string {
	return `1. Scene One: A lighthouse keeper discovers a message in a bottle on the rocks below the tower.
2. Scene Two: She deciphers the message by lamplight and realizes it was written by her own grandmother.
3. Scene Three: At dawn she rows out past the breakwater to the island named in the letter.`
}

// GetTestSceneBlocksText returns raw model output in the delimited-block
// grammar produced by the continuation prompt, starting at scene 4.
func GetTestSceneBlocksText() string {
	return `SCENE_START
Number: 4
Description: The island's chapel is empty except for a ledger of shipwrecks, each entry signed with her family name.
SCENE_END
SCENE_START
Number: 5
Description: A storm rolls in as she copies the final entry, and the lighthouse beam goes dark behind her.
SCENE_END`
}

// SetupOS configures the environment variables the configuration loader
// depends on, directing it to the test configuration overlay
// (configs/.env.test.toml).
//
// Outputs:
//   - error: An error if setting any environment variable fails.
func SetupOS() (err error) {
	// Set the directory where the configuration files are located.
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	// The loader applies ".env.test.toml" on top of the base file.
	err = os.Setenv(cloud.EnvConfigRuntime, "test")
	return err
}

// GetConfig is a singleton accessor for the test configuration. The
// configuration is loaded from the TOML files once and cached for
// subsequent calls.
//
// Outputs:
//   - *cloud.Config: A pointer to the loaded and cached configuration.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}
