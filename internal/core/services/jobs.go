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

// This file implements the video job state machine. A job is created when
// the provider accepts a prediction, adopts the prediction id as its own id,
// and is advanced exclusively by the polling operation: provider statuses
// map onto job states, a rank guard rejects backwards transitions, and a
// successful prediction is finalized exactly once into durable storage.
package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/wittworks/movie-scene-service/internal/core/model"
)

// Client-facing status messages, one per job state.
const (
	msgAnalyzing   = "Analyzing your scene"
	msgGenerating  = "Generating video"
	msgDownloading = "Downloading generated video"
	msgUploading   = "Uploading video to storage"
	msgCompleted   = "Video ready"
)

// VideoGenerator is the provider surface the state machine drives. The
// Replicate adapter in the cloud package is the production implementation.
type VideoGenerator interface {
	// Create starts a new prediction from a scene description.
	Create(ctx context.Context, prompt string) (*model.VideoPrediction, error)
	// Get fetches the current state of a prediction by its provider id.
	Get(ctx context.Context, id string) (*model.VideoPrediction, error)
}

// StartVideoRequest carries the inputs of a new video generation job.
type StartVideoRequest struct {
	MovieID   string // Optional; links the finished clip back to a movie scene.
	SceneID   string // Optional; the scene the clip belongs to, as a string id.
	UserID    string // The requesting user, recorded on the job and the stored object.
	SceneText string // The scene description driving the generation. Required.
}

// VideoJobService owns the video job state machine. All dependencies are
// interfaces so the transition logic is testable without live providers.
type VideoJobService struct {
	Generator  VideoGenerator
	Jobs       JobStore
	Scenes     SceneStore
	Objects    ObjectStore
	HTTPClient *http.Client // Used to download finished clips from the provider's URL.

	// Bounded polling parameters of the synchronous generation endpoint.
	PollInterval    time.Duration
	MaxPollAttempts int
}

// NewVideoJobService wires the state machine with its dependencies.
func NewVideoJobService(
	generator VideoGenerator,
	jobs JobStore,
	scenes SceneStore,
	objects ObjectStore,
	httpClient *http.Client,
	pollInterval time.Duration,
	maxPollAttempts int,
) *VideoJobService {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &VideoJobService{
		Generator:       generator,
		Jobs:            jobs,
		Scenes:          scenes,
		Objects:         objects,
		HTTPClient:      httpClient,
		PollInterval:    pollInterval,
		MaxPollAttempts: maxPollAttempts,
	}
}

// Start creates a new prediction at the provider and persists the job record
// in the analyzing state. The provider-assigned prediction id becomes the job
// id, so a job record exists only for predictions the provider accepted: a
// creation failure leaves no job behind.
//
// Outputs:
//   - *model.VideoJob: The persisted job in its initial state.
//   - error: A validation error for empty scene text, or a provider error.
func (s *VideoJobService) Start(ctx context.Context, req StartVideoRequest) (*model.VideoJob, error) {
	if strings.TrimSpace(req.SceneText) == "" {
		return nil, model.NewValidationError("scene text is required", nil)
	}

	prediction, err := s.Generator.Create(ctx, req.SceneText)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	progress, _ := model.JobStatusAnalyzing.Progress()
	job := &model.VideoJob{
		JobID:        prediction.ID,
		Status:       model.JobStatusAnalyzing,
		Progress:     progress,
		Message:      msgAnalyzing,
		MovieID:      req.MovieID,
		SceneID:      req.SceneID,
		UserID:       req.UserID,
		SceneText:    req.SceneText,
		PredictionID: prediction.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Jobs.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to persist job %s: %w", job.JobID, err)
	}
	return job, nil
}

// Check polls one round of the state machine for the given job and returns
// its client-facing snapshot.
//
// Terminal jobs take the fast path: a finalized or failed job is returned
// as-is with zero provider calls, which makes the operation idempotent and
// keeps completed jobs immutable. Otherwise the provider is polled once and
// its status is mapped onto the job through the forward-only rank guard. A
// succeeded prediction triggers finalization: download, sniff, upload, mark
// completed, propagate to the scene.
//
// Outputs:
//   - *model.JobSnapshot: The job's state after this round.
//   - error: A validation error for unknown job ids, or a provider error if
//     the poll itself failed. A poll failure leaves the job untouched.
func (s *VideoJobService) Check(ctx context.Context, jobID string) (*model.JobSnapshot, error) {
	job, err := s.Jobs.Get(ctx, jobID)
	if err != nil {
		if err == ErrJobNotFound {
			return nil, model.NewValidationError(fmt.Sprintf("unknown job id %q", jobID), err)
		}
		return nil, err
	}

	// Fast path: terminal jobs are immutable.
	if job.Finalized() || job.Status == model.JobStatusFailed {
		return job.Snapshot(), nil
	}

	prediction, err := s.Generator.Get(ctx, job.PredictionID)
	if err != nil {
		return nil, err
	}

	switch prediction.Status {
	case model.PredictionStarting:
		if err := s.advance(ctx, job, model.JobStatusAnalyzing, msgAnalyzing); err != nil {
			return nil, err
		}
	case model.PredictionProcessing:
		if err := s.advance(ctx, job, model.JobStatusGenerating, msgGenerating); err != nil {
			return nil, err
		}
	case model.PredictionSucceeded:
		if err := s.finalize(ctx, job, prediction); err != nil {
			return nil, err
		}
	case model.PredictionFailed, model.PredictionCanceled:
		reason := prediction.Error
		if reason == "" {
			reason = fmt.Sprintf("video generation %s", prediction.Status)
		}
		if err := s.fail(ctx, job, reason); err != nil {
			return nil, err
		}
	default:
		// An unrecognized provider status is treated as still in flight;
		// the job keeps its current state until the next poll.
		slog.Warn("unrecognized prediction status", "job", job.JobID, "status", prediction.Status)
	}

	return job.Snapshot(), nil
}

// GenerateSync runs a full generation synchronously against the provider,
// with no job record involved: it creates a prediction and polls it on a
// fixed interval until the provider reports a terminal state or the attempt
// budget is exhausted. The caller gets the provider-hosted output URL
// directly; nothing is written to the job store or the object store.
func (s *VideoJobService) GenerateSync(ctx context.Context, req StartVideoRequest) (*model.VideoPrediction, error) {
	if strings.TrimSpace(req.SceneText) == "" {
		return nil, model.NewValidationError("scene text is required", nil)
	}

	prediction, err := s.Generator.Create(ctx, req.SceneText)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < s.MaxPollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return prediction, model.NewTimeoutError("generation canceled", ctx.Err())
		case <-time.After(s.PollInterval):
		}

		prediction, err = s.Generator.Get(ctx, prediction.ID)
		if err != nil {
			return prediction, err
		}
		if prediction.Succeeded() {
			if prediction.OutputURL == "" {
				return prediction, model.NewProviderError("provider reported success without an output", nil)
			}
			return prediction, nil
		}
		if prediction.Terminal() {
			reason := prediction.Error
			if reason == "" {
				reason = fmt.Sprintf("prediction ended with status %q", prediction.Status)
			}
			return prediction, model.NewProviderError(reason, nil)
		}
	}

	return prediction, model.NewTimeoutError(
		fmt.Sprintf("video generation did not finish within %d polls", s.MaxPollAttempts), nil)
}

// advance moves the job to the target state if and only if the target is not
// behind the job's current position. Stale provider statuses observed after
// the job has progressed locally (e.g. "starting" while the job is already
// uploading) are dropped on the floor.
func (s *VideoJobService) advance(ctx context.Context, job *model.VideoJob, target model.JobStatus, message string) error {
	if job.Status.AtOrPast(target) {
		return nil
	}
	job.Status = target
	if p, ok := target.Progress(); ok {
		job.Progress = p
	}
	job.Message = message
	job.UpdatedAt = time.Now().UTC()
	return s.Jobs.Save(ctx, job)
}

// fail moves the job to the absorbing failed state. The progress value is
// left at whatever the job had reached; failed has no canonical progress.
func (s *VideoJobService) fail(ctx context.Context, job *model.VideoJob, reason string) error {
	job.Status = model.JobStatusFailed
	job.Error = reason
	job.Message = "Video generation failed"
	job.UpdatedAt = time.Now().UTC()
	return s.Jobs.Save(ctx, job)
}

// finalize turns a succeeded prediction into a durable video: download the
// provider-hosted clip, sniff its content type, upload it to the object
// store under a fresh UUID name, mark the job completed, and propagate the
// video onto the owning scene. Any failure before the completed write marks
// the job failed; the guard in Check ensures a job that already completed is
// never finalized twice.
func (s *VideoJobService) finalize(ctx context.Context, job *model.VideoJob, prediction *model.VideoPrediction) error {
	if prediction.OutputURL == "" {
		return s.fail(ctx, job, "provider reported success without an output")
	}

	if err := s.advance(ctx, job, model.JobStatusDownloading, msgDownloading); err != nil {
		return err
	}

	body, header, err := s.download(ctx, prediction.OutputURL)
	if err != nil {
		return s.fail(ctx, job, fmt.Sprintf("download failed: %v", err))
	}
	defer body.Close()

	// Best-effort sniff of the clip's real type from its leading bytes.
	contentType, extension := "video/mp4", "mp4"
	if kind, err := filetype.Match(header); err == nil && kind != filetype.Unknown {
		contentType = kind.MIME.Value
		extension = kind.Extension
	}

	if err := s.advance(ctx, job, model.JobStatusUploading, msgUploading); err != nil {
		return err
	}

	videoID := uuid.NewString()
	objectName := fmt.Sprintf("videos/%s/%s.%s", job.UserID, videoID, extension)
	reader := io.MultiReader(bytes.NewReader(header), body)
	source := model.AIVideoSource(job.PredictionID, job.SceneText)
	videoURL, err := s.Objects.Write(ctx, objectName, contentType, job.UserID, source, reader)
	if err != nil {
		return s.fail(ctx, job, fmt.Sprintf("upload failed: %v", err))
	}

	now := time.Now().UTC()
	progress, _ := model.JobStatusCompleted.Progress()
	job.Status = model.JobStatusCompleted
	job.Progress = progress
	job.Message = msgCompleted
	job.VideoURL = videoURL
	job.VideoID = videoID
	job.UpdatedAt = now
	job.CompletedAt = now
	if err := s.Jobs.Save(ctx, job); err != nil {
		return fmt.Errorf("failed to persist completed job %s: %w", job.JobID, err)
	}

	// The completion is durable; scene propagation failure is logged rather
	// than unwinding the finished job.
	s.propagate(ctx, job)
	return nil
}

// propagate attaches the finished video to the owning scene, when the job
// carries a movie and scene reference.
func (s *VideoJobService) propagate(ctx context.Context, job *model.VideoJob) {
	if job.MovieID == "" || job.SceneID == "" {
		return
	}
	sceneID, err := strconv.Atoi(job.SceneID)
	if err != nil {
		slog.Warn("job carries non-numeric scene id", "job", job.JobID, "sceneId", job.SceneID)
		return
	}
	if err := s.Scenes.SetSceneVideo(ctx, job.MovieID, sceneID, job.VideoURL, job.VideoID, model.VideoTypeAI); err != nil {
		slog.Error("failed to attach video to scene", "job", job.JobID, "movie", job.MovieID, "scene", sceneID, "error", err)
	}
}

// download fetches the provider-hosted clip and returns its body along with
// the first bytes for type sniffing.
func (s *VideoJobService) download(ctx context.Context, url string) (io.ReadCloser, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, err
	}
	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, nil, fmt.Errorf("unexpected status %d fetching video", resp.StatusCode)
	}

	// filetype needs at most the first 261 bytes to classify a file.
	header := make([]byte, 261)
	n, err := io.ReadFull(resp.Body, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		_ = resp.Body.Close()
		return nil, nil, err
	}
	return resp.Body, header[:n], nil
}
