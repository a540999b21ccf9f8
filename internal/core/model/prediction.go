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

// Provider-side prediction statuses. These are the raw states reported by
// the video generation provider; the job state machine maps them onto
// JobStatus values and never stores them directly.
const (
	PredictionStarting   = "starting"
	PredictionProcessing = "processing"
	PredictionSucceeded  = "succeeded"
	PredictionFailed     = "failed"
	PredictionCanceled   = "canceled"
)

// VideoPrediction is the provider-neutral view of a video generation
// prediction. OutputURL is set only once the provider reports success, and
// Error only when it reports failure.
type VideoPrediction struct {
	ID        string // The provider's prediction id, also used as the job id.
	Status    string // One of the Prediction* constants.
	OutputURL string // The provider-hosted URL of the finished clip.
	Error     string // The provider's failure description, when failed.
}

// Succeeded reports whether the provider finished the prediction and
// produced an output.
func (p *VideoPrediction) Succeeded() bool {
	return p.Status == PredictionSucceeded
}

// Terminal reports whether the provider will make no further progress on
// this prediction.
func (p *VideoPrediction) Terminal() bool {
	switch p.Status {
	case PredictionSucceeded, PredictionFailed, PredictionCanceled:
		return true
	}
	return false
}
