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

// Package model defines the core data structures for the application.
// This file holds the video-generation job record and its state machine
// vocabulary. A VideoJob tracks one asynchronous text-to-video request from
// prediction creation through finalization, keyed by the provider-assigned
// prediction id. The job moves forward only: each status has a canonical
// progress value, statuses are totally ordered, and the terminal completed
// state is immutable once a video URL has been recorded.
package model

import "time"

// JobStatus is a state of the video job state machine.
type JobStatus string

// Job states in forward order. JobStatusProcessing sits between generating
// and downloading; it is reserved for providers that report a distinct
// post-generation processing phase and is not entered on the normal path.
// JobStatusFailed is the absorbing failure state reachable from any
// non-terminal state.
const (
	JobStatusAnalyzing   JobStatus = "analyzing"
	JobStatusGenerating  JobStatus = "generating"
	JobStatusProcessing  JobStatus = "processing"
	JobStatusDownloading JobStatus = "downloading"
	JobStatusUploading   JobStatus = "uploading"
	JobStatusCompleted   JobStatus = "completed"
	JobStatusFailed      JobStatus = "failed"
)

// jobStatusRank fixes the forward ordering used by the state machine's
// regression guard. A stale provider status may never move a job to a state
// with a lower rank than its current one.
var jobStatusRank = map[JobStatus]int{
	JobStatusAnalyzing:   1,
	JobStatusGenerating:  2,
	JobStatusProcessing:  3,
	JobStatusDownloading: 4,
	JobStatusUploading:   5,
	JobStatusCompleted:   6,
}

// jobStatusProgress is the canonical progress table. Clients must observe
// only these values; progress is derived from status, never set out of band.
var jobStatusProgress = map[JobStatus]float64{
	JobStatusAnalyzing:   0.10,
	JobStatusGenerating:  0.30,
	JobStatusProcessing:  0.60,
	JobStatusDownloading: 0.80,
	JobStatusUploading:   0.90,
	JobStatusCompleted:   1.00,
}

// Progress returns the canonical progress value for the status. The failed
// state has no canonical progress; a failed job keeps the progress it had
// when the failure was recorded.
func (s JobStatus) Progress() (float64, bool) {
	p, ok := jobStatusProgress[s]
	return p, ok
}

// Rank returns the forward-order position of the status. Failed has no rank;
// it is reachable from anywhere and compared by Terminal instead.
func (s JobStatus) Rank() int {
	return jobStatusRank[s]
}

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// AtOrPast reports whether the status is at least as far along as other.
// Used to reject out-of-order provider status responses.
func (s JobStatus) AtOrPast(other JobStatus) bool {
	return jobStatusRank[s] >= jobStatusRank[other]
}

// VideoJob is the persisted record of one video-generation request. JobID
// equals the external prediction id; that identifier is the join key between
// this system and the provider, not a freshly minted one. The record is
// created only after the provider accepts the prediction, is mutated
// exclusively by the state machine's polling operation, and is never deleted
// by this system.
type VideoJob struct {
	JobID        string    `json:"jobId" firestore:"jobId"`
	Status       JobStatus `json:"status" firestore:"status"`
	Progress     float64   `json:"progress" firestore:"progress"` // Monotonically non-decreasing; always the canonical value for Status.
	Message      string    `json:"message" firestore:"message"`
	MovieID      string    `json:"movieId,omitempty" firestore:"movieId,omitempty"`
	SceneID      string    `json:"sceneId,omitempty" firestore:"sceneId,omitempty"`
	UserID       string    `json:"userId" firestore:"userId"`
	SceneText    string    `json:"sceneText" firestore:"sceneText"`
	PredictionID string    `json:"predictionId" firestore:"predictionId"`
	VideoURL     string    `json:"videoUrl,omitempty" firestore:"videoUrl,omitempty"` // Absent until terminal success.
	VideoID      string    `json:"videoId,omitempty" firestore:"videoId,omitempty"`   // Absent until terminal success.
	Error        string    `json:"error,omitempty" firestore:"error,omitempty"`       // Absent unless failed.
	CreatedAt    time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" firestore:"updatedAt"`
	CompletedAt  time.Time `json:"completedAt,omitempty" firestore:"completedAt,omitempty"`
}

// Finalized reports whether the job has reached the immutable happy-path
// terminal state: completed with a recorded video URL. A finalized job must
// never be mutated by further polling.
func (j *VideoJob) Finalized() bool {
	return j.Status == JobStatusCompleted && j.VideoURL != ""
}

// JobSnapshot is the client-facing view of a job returned by the status
// endpoint: the current state plus the terminal fields when present.
type JobSnapshot struct {
	JobID    string    `json:"jobId"`
	Status   JobStatus `json:"status"`
	Progress float64   `json:"progress"`
	Message  string    `json:"message"`
	VideoURL string    `json:"videoUrl,omitempty"`
	VideoID  string    `json:"videoId,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Snapshot projects the job onto its client-facing view.
func (j *VideoJob) Snapshot() *JobSnapshot {
	return &JobSnapshot{
		JobID:    j.JobID,
		Status:   j.Status,
		Progress: j.Progress,
		Message:  j.Message,
		VideoURL: j.VideoURL,
		VideoID:  j.VideoID,
		Error:    j.Error,
	}
}
