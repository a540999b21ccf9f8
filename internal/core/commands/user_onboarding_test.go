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

package commands_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wittworks/movie-scene-service/internal/core/commands"
	"github.com/wittworks/movie-scene-service/internal/core/cor"
	"github.com/wittworks/movie-scene-service/internal/core/model"
	test "github.com/wittworks/movie-scene-service/internal/testutil"
)

// fakeUserStore records profile creations in memory.
type fakeUserStore struct {
	profiles map[string]*model.UserProfile
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{profiles: make(map[string]*model.UserProfile)}
}

func (f *fakeUserStore) CreateProfile(_ context.Context, uid string, profile *model.UserProfile) error {
	// Create-only, matching the Firestore implementation.
	if _, ok := f.profiles[uid]; ok {
		return nil
	}
	f.profiles[uid] = profile
	return nil
}

func newTriggerContext(payload string) cor.Context {
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(cor.CtxIn, payload)
	return chainCtx
}

func TestUserOnboardingCreatesDefaultProfile(t *testing.T) {
	users := newFakeUserStore()
	cmd := commands.NewUserOnboarding("user-onboarding", users)

	chainCtx := newTriggerContext(test.GetTestUserCreatedMessageText())
	cmd.Execute(chainCtx)

	require.False(t, chainCtx.HasErrors())
	profile, ok := users.profiles["test-user-001"]
	require.True(t, ok)
	assert.Equal(t, "test-user-001@example.com", profile.Email)
	assert.Equal(t, "Test User", profile.DisplayName)
	assert.Equal(t, model.DefaultUserRole, profile.Role)
	assert.Zero(t, profile.Tokens)
	assert.Zero(t, profile.ProfileCompletion)
	assert.False(t, profile.HasCompletedOnboarding)
	assert.False(t, profile.EmailVerified)
}

// TestUserOnboardingDocumentFields pins the exact keys of the profile
// document so a rename never slips past the client application reading them.
func TestUserOnboardingDocumentFields(t *testing.T) {
	profile := model.NewUserProfile(&model.UserCreatedEvent{UID: "u1", Email: "u@example.com"})

	raw, err := json.Marshal(profile)
	require.NoError(t, err)
	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))

	assert.Equal(t, "user", fields["role"])
	assert.Equal(t, float64(0), fields["tokens"])
	assert.Equal(t, float64(0), fields["profileCompletion"])
	assert.Equal(t, false, fields["hasCompletedOnboarding"])
	assert.Equal(t, false, fields["emailVerified"])
	assert.Contains(t, fields, "createdAt")
	assert.Contains(t, fields, "lastLogin")
}

func TestUserOnboardingRejectsMalformedPayload(t *testing.T) {
	users := newFakeUserStore()
	cmd := commands.NewUserOnboarding("user-onboarding", users)

	chainCtx := newTriggerContext("not json")
	cmd.Execute(chainCtx)

	assert.True(t, chainCtx.HasErrors())
	assert.Empty(t, users.profiles)
}

func TestUserOnboardingRequiresUID(t *testing.T) {
	users := newFakeUserStore()
	cmd := commands.NewUserOnboarding("user-onboarding", users)

	chainCtx := newTriggerContext(`{"email": "nobody@example.com"}`)
	cmd.Execute(chainCtx)

	assert.True(t, chainCtx.HasErrors())
	assert.Empty(t, users.profiles)
}
