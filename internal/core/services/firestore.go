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

// This file implements the Firestore-backed document stores. Movie scenes
// live in a "scenes" subcollection under their movie document, keyed by the
// scene id; video jobs and user profiles are flat collections keyed by job
// id and user id respectively.
package services

import (
	"context"
	"errors"
	"strconv"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/wittworks/movie-scene-service/internal/core/model"
)

// ErrJobNotFound is returned by job lookups when no document exists for the
// given job id. Handlers translate it to a validation error.
var ErrJobNotFound = errors.New("video job not found")

// JobStore is the persistence surface of the video job state machine.
type JobStore interface {
	// Get returns the job document for the given id, or ErrJobNotFound.
	Get(ctx context.Context, jobID string) (*model.VideoJob, error)
	// Save writes the full job document, creating or overwriting it.
	Save(ctx context.Context, job *model.VideoJob) error
}

// SceneStore is the persistence surface for movie scene documents.
type SceneStore interface {
	// SaveScenes persists all scenes of a movie in a single atomic write.
	// Either every scene is stored or none are.
	SaveScenes(ctx context.Context, movieID string, scenes []*model.SceneRecord) error
	// GetScenes returns all scenes of a movie in ascending id order.
	GetScenes(ctx context.Context, movieID string) ([]*model.SceneRecord, error)
	// SetSceneVideo attaches a finalized video to a scene and marks it completed.
	SetSceneVideo(ctx context.Context, movieID string, sceneID int, videoURL string, videoID string, videoType string) error
}

// UserStore is the persistence surface for user profile documents.
type UserStore interface {
	// CreateProfile writes the default profile document for a new user.
	CreateProfile(ctx context.Context, uid string, profile *model.UserProfile) error
}

// FirestoreStore implements JobStore, SceneStore, and UserStore on top of a
// shared Firestore client.
type FirestoreStore struct {
	Client           *firestore.Client
	MoviesCollection string
	JobsCollection   string
	UsersCollection  string
}

// NewFirestoreStore creates a store bound to the configured collections.
func NewFirestoreStore(client *firestore.Client, movies string, jobs string, users string) *FirestoreStore {
	return &FirestoreStore{
		Client:           client,
		MoviesCollection: movies,
		JobsCollection:   jobs,
		UsersCollection:  users,
	}
}

// scenes returns the scenes subcollection of a movie document.
func (s *FirestoreStore) scenes(movieID string) *firestore.CollectionRef {
	return s.Client.Collection(s.MoviesCollection).Doc(movieID).Collection("scenes")
}

// Get returns the job document for the given id. A missing document maps to
// ErrJobNotFound so callers can distinguish unknown ids from transport
// failures.
func (s *FirestoreStore) Get(ctx context.Context, jobID string) (*model.VideoJob, error) {
	snap, err := s.Client.Collection(s.JobsCollection).Doc(jobID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	var job model.VideoJob
	if err := snap.DataTo(&job); err != nil {
		return nil, err
	}
	return &job, nil
}

// Save writes the full job document keyed by its job id.
func (s *FirestoreStore) Save(ctx context.Context, job *model.VideoJob) error {
	_, err := s.Client.Collection(s.JobsCollection).Doc(job.JobID).Set(ctx, job)
	return err
}

// SaveScenes persists all scenes of a movie in one atomic batch. The batch
// guarantees the all-or-nothing property: a partial scene list is never
// observable.
func (s *FirestoreStore) SaveScenes(ctx context.Context, movieID string, scenes []*model.SceneRecord) error {
	batch := s.Client.Batch()
	col := s.scenes(movieID)
	for _, scene := range scenes {
		batch.Set(col.Doc(strconv.Itoa(scene.ID)), scene)
	}
	_, err := batch.Commit(ctx)
	return err
}

// GetScenes returns all scenes of a movie in ascending id order.
func (s *FirestoreStore) GetScenes(ctx context.Context, movieID string) ([]*model.SceneRecord, error) {
	docs, err := s.scenes(movieID).OrderBy("id", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	out := make([]*model.SceneRecord, 0, len(docs))
	for _, doc := range docs {
		var scene model.SceneRecord
		if err := doc.DataTo(&scene); err != nil {
			return nil, err
		}
		out = append(out, &scene)
	}
	return out, nil
}

// SetSceneVideo attaches a finalized video to a scene and marks the scene
// completed. Only the video fields and status are touched so concurrent
// edits to the scene text are preserved.
func (s *FirestoreStore) SetSceneVideo(ctx context.Context, movieID string, sceneID int, videoURL string, videoID string, videoType string) error {
	_, err := s.scenes(movieID).Doc(strconv.Itoa(sceneID)).Update(ctx, []firestore.Update{
		{Path: "videoUrl", Value: videoURL},
		{Path: "videoId", Value: videoID},
		{Path: "videoType", Value: videoType},
		{Path: "status", Value: model.SceneStatusCompleted},
	})
	return err
}

// CreateProfile writes the default profile document for a new user. Create
// is used instead of Set so a redelivered creation event cannot clobber a
// profile the user has already started editing.
func (s *FirestoreStore) CreateProfile(ctx context.Context, uid string, profile *model.UserProfile) error {
	_, err := s.Client.Collection(s.UsersCollection).Doc(uid).Create(ctx, profile)
	if err != nil && status.Code(err) == codes.AlreadyExists {
		return nil
	}
	return err
}
