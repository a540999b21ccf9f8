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

// This file defines the command attached to the user-created Pub/Sub
// subscription. It decodes the account creation event and stamps the default
// profile document for the new user. Redelivered events are harmless: the
// profile write is create-only.
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/wittworks/movie-scene-service/internal/core/cor"
	"github.com/wittworks/movie-scene-service/internal/core/model"
	"github.com/wittworks/movie-scene-service/internal/core/services"
)

// UserOnboarding is a command that provisions the default profile for a
// newly created user account.
type UserOnboarding struct {
	cor.BaseCommand
	users services.UserStore
}

// NewUserOnboarding is the constructor for the UserOnboarding command.
func NewUserOnboarding(name string, users services.UserStore) *UserOnboarding {
	return &UserOnboarding{
		BaseCommand: *cor.NewBaseCommand(name),
		users:       users,
	}
}

// Execute decodes the raw Pub/Sub payload and writes the default profile.
func (t *UserOnboarding) Execute(context cor.Context) {
	payload, ok := context.Get(t.GetInputParam()).(string)
	if !ok || payload == "" {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("missing event payload"))
		return
	}

	var event model.UserCreatedEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("failed to decode user created event: %w", err))
		return
	}
	if event.UID == "" {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("user created event missing uid"))
		return
	}

	profile := model.NewUserProfile(&event)
	if err := t.users.CreateProfile(context.GetContext(), event.UID, profile); err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("failed to create profile for user %s: %w", event.UID, err))
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), profile)
}
