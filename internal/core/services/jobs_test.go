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

// Package services_test contains unit tests for the video job state machine.
// The provider, stores, and object storage are replaced with in-memory fakes
// so the transition logic can be exercised without live services.
package services_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wittworks/movie-scene-service/internal/core/model"
	"github.com/wittworks/movie-scene-service/internal/core/services"
)

// fakeGenerator is a scriptable VideoGenerator. Get returns the queued
// predictions in order, repeating the last one when the queue runs dry.
type fakeGenerator struct {
	created     *model.VideoPrediction
	createErr   error
	createCalls int

	queue    []*model.VideoPrediction
	getErr   error
	getCalls int
}

func (f *fakeGenerator) Create(_ context.Context, _ string) (*model.VideoPrediction, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.created, nil
}

func (f *fakeGenerator) Get(_ context.Context, _ string) (*model.VideoPrediction, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	next := f.queue[0]
	if len(f.queue) > 1 {
		f.queue = f.queue[1:]
	}
	return next, nil
}

// fakeJobStore keeps jobs in a map and counts writes. Get returns a copy so
// the service mutates only what it explicitly saves.
type fakeJobStore struct {
	jobs  map[string]*model.VideoJob
	saves int
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{jobs: make(map[string]*model.VideoJob)}
}

func (f *fakeJobStore) Get(_ context.Context, jobID string) (*model.VideoJob, error) {
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, services.ErrJobNotFound
	}
	clone := *job
	return &clone, nil
}

func (f *fakeJobStore) Save(_ context.Context, job *model.VideoJob) error {
	f.saves++
	clone := *job
	f.jobs[job.JobID] = &clone
	return nil
}

// fakeSceneStore records video propagation calls.
type fakeSceneStore struct {
	videoCalls []string
}

func (f *fakeSceneStore) SaveScenes(_ context.Context, _ string, _ []*model.SceneRecord) error {
	return nil
}

func (f *fakeSceneStore) GetScenes(_ context.Context, _ string) ([]*model.SceneRecord, error) {
	return nil, nil
}

func (f *fakeSceneStore) SetSceneVideo(_ context.Context, movieID string, sceneID int, videoURL string, _ string, videoType string) error {
	f.videoCalls = append(f.videoCalls, fmt.Sprintf("%s/%d/%s/%s", movieID, sceneID, videoURL, videoType))
	return nil
}

// fakeObjectStore records uploads and returns a deterministic URL.
type fakeObjectStore struct {
	writes      int
	lastName    string
	lastType    string
	lastUser    string
	lastSource  model.VideoSource
	lastPayload []byte
	err         error
}

func (f *fakeObjectStore) Write(_ context.Context, objectName string, contentType string, userID string, source model.VideoSource, r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.writes++
	f.lastName = objectName
	f.lastType = contentType
	f.lastUser = userID
	f.lastSource = source
	f.lastPayload, _ = io.ReadAll(r)
	return "https://storage.googleapis.com/test-bucket/" + objectName, nil
}

func newService(gen *fakeGenerator, jobs *fakeJobStore, scenes *fakeSceneStore, objects services.ObjectStore) *services.VideoJobService {
	return services.NewVideoJobService(gen, jobs, scenes, objects, http.DefaultClient, time.Millisecond, 3)
}

// seedJob puts a job in the store in the given state with its canonical
// progress, mirroring what Start would have produced.
func seedJob(jobs *fakeJobStore, id string, status model.JobStatus) *model.VideoJob {
	progress, _ := status.Progress()
	job := &model.VideoJob{
		JobID:        id,
		Status:       status,
		Progress:     progress,
		UserID:       "user-1",
		SceneText:    "A storm over the harbor.",
		PredictionID: id,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	jobs.jobs[id] = job
	return job
}

// TestStartCreatesJobFromPrediction verifies that a new job adopts the
// provider's prediction id and starts in the analyzing state with canonical
// progress.
func TestStartCreatesJobFromPrediction(t *testing.T) {
	gen := &fakeGenerator{created: &model.VideoPrediction{ID: "pred-1", Status: model.PredictionStarting}}
	jobs := newFakeJobStore()
	svc := newService(gen, jobs, &fakeSceneStore{}, &fakeObjectStore{})

	job, err := svc.Start(context.Background(), services.StartVideoRequest{
		MovieID:   "movie-1",
		SceneID:   "2",
		UserID:    "user-1",
		SceneText: "A storm over the harbor.",
	})
	require.NoError(t, err)

	assert.Equal(t, "pred-1", job.JobID)
	assert.Equal(t, "pred-1", job.PredictionID)
	assert.Equal(t, model.JobStatusAnalyzing, job.Status)
	assert.Equal(t, 0.10, job.Progress)
	require.Contains(t, jobs.jobs, "pred-1")
}

// TestStartProviderFailureLeavesNoJob verifies that a rejected prediction
// creates no job record at all.
func TestStartProviderFailureLeavesNoJob(t *testing.T) {
	gen := &fakeGenerator{createErr: model.NewProviderError("quota exceeded", nil)}
	jobs := newFakeJobStore()
	svc := newService(gen, jobs, &fakeSceneStore{}, &fakeObjectStore{})

	_, err := svc.Start(context.Background(), services.StartVideoRequest{UserID: "u", SceneText: "text"})
	require.Error(t, err)
	assert.Empty(t, jobs.jobs)
	assert.Zero(t, jobs.saves)
}

// TestStartRejectsEmptySceneText verifies the validation guard before any
// provider call is made.
func TestStartRejectsEmptySceneText(t *testing.T) {
	gen := &fakeGenerator{}
	svc := newService(gen, newFakeJobStore(), &fakeSceneStore{}, &fakeObjectStore{})

	_, err := svc.Start(context.Background(), services.StartVideoRequest{UserID: "u", SceneText: "   "})
	require.Error(t, err)

	var appErr *model.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, model.KindValidation, appErr.Kind)
	assert.Zero(t, gen.createCalls)
}

// TestCheckCompletedFastPath verifies the idempotent fast path: a finalized
// job is returned untouched with zero provider calls.
func TestCheckCompletedFastPath(t *testing.T) {
	gen := &fakeGenerator{}
	jobs := newFakeJobStore()
	job := seedJob(jobs, "pred-1", model.JobStatusCompleted)
	job.VideoURL = "https://storage.googleapis.com/test-bucket/clip.mp4"
	svc := newService(gen, jobs, &fakeSceneStore{}, &fakeObjectStore{})

	snap, err := svc.Check(context.Background(), "pred-1")
	require.NoError(t, err)

	assert.Equal(t, model.JobStatusCompleted, snap.Status)
	assert.Equal(t, 1.0, snap.Progress)
	assert.Equal(t, job.VideoURL, snap.VideoURL)
	assert.Zero(t, gen.getCalls)
	assert.Zero(t, jobs.saves)
}

// TestCheckUnknownJob verifies that polling an unknown id is a validation
// error, not a provider one.
func TestCheckUnknownJob(t *testing.T) {
	svc := newService(&fakeGenerator{}, newFakeJobStore(), &fakeSceneStore{}, &fakeObjectStore{})

	_, err := svc.Check(context.Background(), "missing")
	require.Error(t, err)

	var appErr *model.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, model.KindValidation, appErr.Kind)
}

// TestCheckMapsProviderStatuses verifies the starting and processing
// mappings onto the analyzing and generating states.
func TestCheckMapsProviderStatuses(t *testing.T) {
	gen := &fakeGenerator{queue: []*model.VideoPrediction{
		{ID: "pred-1", Status: model.PredictionProcessing},
	}}
	jobs := newFakeJobStore()
	seedJob(jobs, "pred-1", model.JobStatusAnalyzing)
	svc := newService(gen, jobs, &fakeSceneStore{}, &fakeObjectStore{})

	snap, err := svc.Check(context.Background(), "pred-1")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusGenerating, snap.Status)
	assert.Equal(t, 0.30, snap.Progress)
}

// TestCheckRegressionGuard verifies that a stale provider status never moves
// a job backwards: a job already uploading stays uploading when the provider
// reports starting or processing.
func TestCheckRegressionGuard(t *testing.T) {
	for _, stale := range []string{model.PredictionStarting, model.PredictionProcessing} {
		gen := &fakeGenerator{queue: []*model.VideoPrediction{{ID: "pred-1", Status: stale}}}
		jobs := newFakeJobStore()
		seedJob(jobs, "pred-1", model.JobStatusUploading)
		svc := newService(gen, jobs, &fakeSceneStore{}, &fakeObjectStore{})

		snap, err := svc.Check(context.Background(), "pred-1")
		require.NoError(t, err)
		assert.Equal(t, model.JobStatusUploading, snap.Status, "stale status %q must not regress the job", stale)
		assert.Equal(t, 0.90, snap.Progress)
		assert.Zero(t, jobs.saves, "a dropped transition must not rewrite the record")
	}
}

// TestCheckFailedPrediction verifies that a failed or canceled prediction
// moves the job to the absorbing failed state with the provider's reason.
func TestCheckFailedPrediction(t *testing.T) {
	gen := &fakeGenerator{queue: []*model.VideoPrediction{
		{ID: "pred-1", Status: model.PredictionFailed, Error: "NSFW content detected"},
	}}
	jobs := newFakeJobStore()
	seedJob(jobs, "pred-1", model.JobStatusGenerating)
	svc := newService(gen, jobs, &fakeSceneStore{}, &fakeObjectStore{})

	snap, err := svc.Check(context.Background(), "pred-1")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, snap.Status)
	assert.Equal(t, "NSFW content detected", snap.Error)
	// Failed keeps the progress it had reached.
	assert.Equal(t, 0.30, snap.Progress)

	// A second poll takes the terminal fast path.
	gen.getCalls = 0
	snap, err = svc.Check(context.Background(), "pred-1")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, snap.Status)
	assert.Zero(t, gen.getCalls)
}

// TestCheckFinalizesSucceededPrediction verifies the full finalization path:
// the clip is downloaded from the provider URL, uploaded to the object store
// with AI-source metadata, the job completes with the durable URL, and the
// video is propagated onto the owning scene.
func TestCheckFinalizesSucceededPrediction(t *testing.T) {
	payload := []byte("fake-video-bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	gen := &fakeGenerator{queue: []*model.VideoPrediction{
		{ID: "pred-1", Status: model.PredictionSucceeded, OutputURL: server.URL + "/out.mp4"},
	}}
	jobs := newFakeJobStore()
	job := seedJob(jobs, "pred-1", model.JobStatusGenerating)
	job.MovieID = "movie-1"
	job.SceneID = "3"
	scenes := &fakeSceneStore{}
	objects := &fakeObjectStore{}
	svc := newService(gen, jobs, scenes, objects)

	snap, err := svc.Check(context.Background(), "pred-1")
	require.NoError(t, err)

	assert.Equal(t, model.JobStatusCompleted, snap.Status)
	assert.Equal(t, 1.0, snap.Progress)
	assert.NotEmpty(t, snap.VideoID)
	assert.Equal(t, "https://storage.googleapis.com/test-bucket/"+objects.lastName, snap.VideoURL)

	// Exactly one upload, carrying the full payload and the AI provenance.
	assert.Equal(t, 1, objects.writes)
	assert.Equal(t, payload, objects.lastPayload)
	assert.Equal(t, "user-1", objects.lastUser)
	assert.Equal(t, model.VideoTypeAI, objects.lastSource.Type)
	assert.Equal(t, "pred-1", objects.lastSource.PredictionID)

	// The scene received the durable URL.
	require.Len(t, scenes.videoCalls, 1)
	assert.Equal(t, fmt.Sprintf("movie-1/3/%s/ai", snap.VideoURL), scenes.videoCalls[0])

	// A repeated poll is a no-op: no second upload, no provider call.
	gen.getCalls = 0
	snap2, err := svc.Check(context.Background(), "pred-1")
	require.NoError(t, err)
	assert.Equal(t, snap.VideoURL, snap2.VideoURL)
	assert.Zero(t, gen.getCalls)
	assert.Equal(t, 1, objects.writes)
}

// TestCheckFinalizationUploadFailure verifies that a failure during upload
// marks the job failed instead of leaving it stuck mid-pipeline.
func TestCheckFinalizationUploadFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("bytes"))
	}))
	defer server.Close()

	gen := &fakeGenerator{queue: []*model.VideoPrediction{
		{ID: "pred-1", Status: model.PredictionSucceeded, OutputURL: server.URL},
	}}
	jobs := newFakeJobStore()
	seedJob(jobs, "pred-1", model.JobStatusGenerating)
	objects := &fakeObjectStore{err: errors.New("bucket unavailable")}
	svc := newService(gen, jobs, &fakeSceneStore{}, objects)

	snap, err := svc.Check(context.Background(), "pred-1")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, snap.Status)
	assert.Contains(t, snap.Error, "upload failed")
}

// TestCheckFinalizationDownloadFailure verifies that an unreachable output
// URL fails the job with a download error.
func TestCheckFinalizationDownloadFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	gen := &fakeGenerator{queue: []*model.VideoPrediction{
		{ID: "pred-1", Status: model.PredictionSucceeded, OutputURL: server.URL},
	}}
	jobs := newFakeJobStore()
	seedJob(jobs, "pred-1", model.JobStatusGenerating)
	svc := newService(gen, jobs, &fakeSceneStore{}, &fakeObjectStore{})

	snap, err := svc.Check(context.Background(), "pred-1")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, snap.Status)
	assert.Contains(t, snap.Error, "download failed")
}

// TestCheckPollErrorLeavesJobUntouched verifies that a transient provider
// poll failure surfaces as an error without rewriting the job.
func TestCheckPollErrorLeavesJobUntouched(t *testing.T) {
	gen := &fakeGenerator{getErr: model.NewProviderError("rate limited", nil)}
	jobs := newFakeJobStore()
	seedJob(jobs, "pred-1", model.JobStatusGenerating)
	svc := newService(gen, jobs, &fakeSceneStore{}, &fakeObjectStore{})

	_, err := svc.Check(context.Background(), "pred-1")
	require.Error(t, err)
	assert.Zero(t, jobs.saves)
	assert.Equal(t, model.JobStatusGenerating, jobs.jobs["pred-1"].Status)
}

// TestGenerateSyncCompletes verifies the synchronous variant polls the
// provider until the prediction succeeds and hands back its output URL
// without touching the job store or the object store.
func TestGenerateSyncCompletes(t *testing.T) {
	gen := &fakeGenerator{
		created: &model.VideoPrediction{ID: "pred-1", Status: model.PredictionStarting},
		queue: []*model.VideoPrediction{
			{ID: "pred-1", Status: model.PredictionProcessing},
			{ID: "pred-1", Status: model.PredictionSucceeded, OutputURL: "https://replicate.delivery/pred-1.mp4"},
		},
	}
	jobs := newFakeJobStore()
	objects := &fakeObjectStore{}
	svc := newService(gen, jobs, &fakeSceneStore{}, objects)

	prediction, err := svc.GenerateSync(context.Background(), services.StartVideoRequest{
		UserID:    "user-1",
		SceneText: "A storm over the harbor.",
	})
	require.NoError(t, err)
	assert.Equal(t, model.PredictionSucceeded, prediction.Status)
	assert.Equal(t, "https://replicate.delivery/pred-1.mp4", prediction.OutputURL)

	// The synchronous path persists nothing.
	assert.Zero(t, jobs.saves)
	assert.Empty(t, jobs.jobs)
	assert.Empty(t, objects.lastName)
}

// TestGenerateSyncTimesOut verifies that a prediction still running after
// the attempt budget yields a timeout error with no job record left behind.
func TestGenerateSyncTimesOut(t *testing.T) {
	gen := &fakeGenerator{
		created: &model.VideoPrediction{ID: "pred-1", Status: model.PredictionStarting},
		queue:   []*model.VideoPrediction{{ID: "pred-1", Status: model.PredictionProcessing}},
	}
	jobs := newFakeJobStore()
	svc := newService(gen, jobs, &fakeSceneStore{}, &fakeObjectStore{})

	prediction, err := svc.GenerateSync(context.Background(), services.StartVideoRequest{
		UserID:    "user-1",
		SceneText: "A storm over the harbor.",
	})
	require.Error(t, err)

	var appErr *model.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, model.KindTimeout, appErr.Kind)

	assert.Equal(t, model.PredictionProcessing, prediction.Status)
	assert.Zero(t, jobs.saves)
	assert.Empty(t, jobs.jobs)
}

// TestGenerateSyncProviderFailure verifies a failed prediction surfaces the
// provider's reason as a provider error.
func TestGenerateSyncProviderFailure(t *testing.T) {
	gen := &fakeGenerator{
		created: &model.VideoPrediction{ID: "pred-1", Status: model.PredictionStarting},
		queue:   []*model.VideoPrediction{{ID: "pred-1", Status: model.PredictionFailed, Error: "NSFW content detected"}},
	}
	jobs := newFakeJobStore()
	svc := newService(gen, jobs, &fakeSceneStore{}, &fakeObjectStore{})

	_, err := svc.GenerateSync(context.Background(), services.StartVideoRequest{
		UserID:    "user-1",
		SceneText: "A storm over the harbor.",
	})
	require.Error(t, err)
	assert.Equal(t, model.KindProvider, model.KindOf(err))
	assert.Contains(t, err.Error(), "NSFW content detected")
	assert.Empty(t, jobs.jobs)
}
