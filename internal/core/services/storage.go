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

// This file implements the object store that holds finalized video clips.
// Clips are written to a GCS bucket under fresh UUID object names and
// referenced afterwards by their durable public URL.
package services

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"

	"github.com/wittworks/movie-scene-service/internal/core/model"
)

// ObjectStore is the storage surface used by video job finalization.
type ObjectStore interface {
	// Write streams an object into storage under the given name and returns
	// its durable URL. Metadata from the video source is attached to the
	// object so ownership and provenance survive outside the database.
	Write(ctx context.Context, objectName string, contentType string, userID string, source model.VideoSource, r io.Reader) (string, error)
}

// GCSObjectStore implements ObjectStore on a Google Cloud Storage bucket.
type GCSObjectStore struct {
	Client *storage.Client
	Bucket string
}

// NewGCSObjectStore creates an object store bound to the configured bucket.
func NewGCSObjectStore(client *storage.Client, bucket string) *GCSObjectStore {
	return &GCSObjectStore{Client: client, Bucket: bucket}
}

// Write streams the reader into the bucket and returns the object's public
// URL. The writer is aborted on copy failure so a truncated clip is never
// left behind under the final name.
func (s *GCSObjectStore) Write(ctx context.Context, objectName string, contentType string, userID string, source model.VideoSource, r io.Reader) (string, error) {
	obj := s.Client.Bucket(s.Bucket).Object(objectName)
	w := obj.NewWriter(ctx)
	w.ContentType = contentType

	metadata := map[string]string{
		"userId": userID,
	}
	source.MetadataInto(metadata)
	w.Metadata = metadata

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write object %s: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object %s: %w", objectName, err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.Bucket, objectName), nil
}
