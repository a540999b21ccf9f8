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

// This file adapts the Replicate prediction API to the provider-neutral
// video generation surface the job state machine consumes. The adapter owns
// the model version and translates Replicate's prediction objects into
// model.VideoPrediction values, including the loosely typed Output and
// Error fields.
//
// Structs:
//   - ReplicateVideoGenerator: Wraps the Replicate client with a fixed model version.
//
// Functions:
//   - NewReplicateVideoGenerator: Constructor for the adapter.
//   - Create: Starts a new prediction from a scene description.
//   - Get: Fetches the current state of a prediction by id.
package cloud

import (
	"context"
	"fmt"

	"github.com/replicate/replicate-go"

	"github.com/wittworks/movie-scene-service/internal/core/model"
)

// ReplicateVideoGenerator adapts the Replicate client to the provider-neutral
// prediction surface. The model version is fixed at construction from
// configuration.
type ReplicateVideoGenerator struct {
	client  *replicate.Client
	version string
}

// NewReplicateVideoGenerator creates a new adapter around an authenticated
// Replicate client.
//
// Inputs:
//   - client: The authenticated *replicate.Client from ServiceClients.
//   - modelVersion: The Replicate model version id used for every prediction.
//
// Outputs:
//   - *ReplicateVideoGenerator: A pointer to the newly created adapter.
func NewReplicateVideoGenerator(client *replicate.Client, modelVersion string) *ReplicateVideoGenerator {
	return &ReplicateVideoGenerator{client: client, version: modelVersion}
}

// Create starts a new video prediction from a scene description. The
// provider assigns the prediction id, which the caller adopts as the job id.
//
// Inputs:
//   - ctx: The context for the request.
//   - prompt: The scene description text driving the generation.
//
// Outputs:
//   - *model.VideoPrediction: The freshly created prediction, typically in
//     the "starting" state.
//   - error: A provider error if the prediction could not be created.
func (g *ReplicateVideoGenerator) Create(ctx context.Context, prompt string) (*model.VideoPrediction, error) {
	input := replicate.PredictionInput{"prompt": prompt}
	prediction, err := g.client.CreatePrediction(ctx, g.version, input, nil, false)
	if err != nil {
		return nil, model.NewProviderError("failed to create video prediction", err)
	}
	return toVideoPrediction(prediction), nil
}

// Get fetches the current state of a prediction by its provider id.
//
// Inputs:
//   - ctx: The context for the request.
//   - id: The provider's prediction id.
//
// Outputs:
//   - *model.VideoPrediction: The current provider-side state.
//   - error: A provider error if the lookup failed.
func (g *ReplicateVideoGenerator) Get(ctx context.Context, id string) (*model.VideoPrediction, error) {
	prediction, err := g.client.GetPrediction(ctx, id)
	if err != nil {
		return nil, model.NewProviderError("failed to fetch video prediction", err)
	}
	return toVideoPrediction(prediction), nil
}

// toVideoPrediction converts a Replicate prediction into the
// provider-neutral model. The Output field is loosely typed on the wire; a
// plain string and a list of strings are both accepted, and the first entry
// of a list wins.
func toVideoPrediction(p *replicate.Prediction) *model.VideoPrediction {
	out := &model.VideoPrediction{
		ID:     p.ID,
		Status: string(p.Status),
	}
	switch output := p.Output.(type) {
	case string:
		out.OutputURL = output
	case []interface{}:
		if len(output) > 0 {
			out.OutputURL = fmt.Sprint(output[0])
		}
	}
	if p.Error != nil {
		out.Error = fmt.Sprint(p.Error)
	}
	return out
}
