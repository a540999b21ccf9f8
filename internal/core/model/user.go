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

package model

import "time"

// DefaultUserRole is the role stamped onto every newly created account.
const DefaultUserRole = "user"

// UserCreatedEvent is the payload of the user-created Pub/Sub message,
// published when a new account is registered.
type UserCreatedEvent struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// UserProfile is the document written for a new user. The onboarding fields
// start at their defaults and are advanced by the client application; the
// two timestamps are stamped server-side on the create.
type UserProfile struct {
	Email                  string    `json:"email" firestore:"email"`
	DisplayName            string    `json:"displayName,omitempty" firestore:"displayName,omitempty"`
	Role                   string    `json:"role" firestore:"role"`
	Tokens                 int       `json:"tokens" firestore:"tokens"`
	ProfileCompletion      int       `json:"profileCompletion" firestore:"profileCompletion"`
	HasCompletedOnboarding bool      `json:"hasCompletedOnboarding" firestore:"hasCompletedOnboarding"`
	EmailVerified          bool      `json:"emailVerified" firestore:"emailVerified"`
	CreatedAt              time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	LastLogin              time.Time `json:"lastLogin" firestore:"lastLogin,serverTimestamp"`
}

// NewUserProfile builds the default profile document for a freshly created
// account: role "user", zero tokens, zero profile completion, onboarding and
// email verification not yet done.
func NewUserProfile(event *UserCreatedEvent) *UserProfile {
	return &UserProfile{
		Email:                  event.Email,
		DisplayName:            event.DisplayName,
		Role:                   DefaultUserRole,
		Tokens:                 0,
		ProfileCompletion:      0,
		HasCompletedOnboarding: false,
		EmailVerified:          false,
	}
}
