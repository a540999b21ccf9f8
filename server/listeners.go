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

package main

import (
	"context"
	"log/slog"

	"github.com/wittworks/movie-scene-service/internal/cloud"
	"github.com/wittworks/movie-scene-service/internal/core/commands"
	"github.com/wittworks/movie-scene-service/internal/core/services"
)

// Logical subscription names as they appear in the configuration file.
const (
	UserCreatedTopic = "UserCreated"
)

// SetupListeners attaches a command to each configured Pub/Sub listener and
// starts them. The user-created listener provisions a Firestore profile for
// every new account.
//
// Inputs:
//   - cloudClients: the initialized service clients holding the listeners.
//   - users: the store that persists user profiles.
//   - ctx: the context controlling the lifetime of the listeners.
func SetupListeners(cloudClients *cloud.ServiceClients, users services.UserStore, ctx context.Context) {
	if listener, ok := cloudClients.PubSubListeners[UserCreatedTopic]; ok {
		listener.SetCommand(commands.NewUserOnboarding("user-onboarding", users))
		listener.Listen(ctx)
	} else {
		slog.Warn("no subscription configured for user onboarding", "topic", UserCreatedTopic)
	}
}
