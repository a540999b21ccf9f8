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

// This file defines the KnowledgeSearchService, which is responsible for the
// retrieval step of scene generation. It takes a movie idea, converts it into
// a vector embedding using a generative AI model, and then uses that vector
// to find the most similar knowledge chunks in a BigQuery table.
package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
	"google.golang.org/genai"

	"github.com/wittworks/movie-scene-service/internal/core/model"
)

// knowledgeRow is the row shape returned by the KNN query. Source is nullable
// because older knowledge chunks were ingested without attribution.
type knowledgeRow struct {
	Text     bigquery.NullString `bigquery:"text"`
	Source   bigquery.NullString `bigquery:"source"`
	Distance float64             `bigquery:"distance"`
}

// KnowledgeSearchService encapsulates the clients and configuration needed to
// retrieve grounding context. It holds references to the BigQuery client for
// database interaction and a GenAI embedding model for converting text to vectors.
type KnowledgeSearchService struct {
	BigQueryClient *bigquery.Client // Client for interacting with Google BigQuery.
	EmbeddingModel *genai.Models    // The generative AI model used to create vector embeddings from text.
	ModelName      string           // The name of the embedding model.
	DatasetName    string           // The name of the BigQuery dataset.
	KnowledgeTable string           // The table holding knowledge chunks and their embedding vectors.
	TopK           int              // The number of nearest neighbors to retrieve.
}

// FindContext takes a movie idea, generates a vector embedding for it, and
// then performs a vector search (k-nearest neighbor) in BigQuery to find the
// most semantically similar knowledge chunks.
//
// Rows with empty text are skipped rather than rendered as empty bullets;
// the result can therefore be shorter than TopK, or empty, and the caller
// proceeds without grounding in that case.
//
// Inputs:
//   - ctx: The context for the request, used for cancellation, deadlines, and tracing.
//   - idea: The natural language movie idea from the user.
//
// Outputs:
//   - []*model.ContextMatch: Matching knowledge chunks in ascending distance order.
//   - error: An error if the embedding, query, or row scanning fails.
func (s *KnowledgeSearchService) FindContext(ctx context.Context, idea string) (out []*model.ContextMatch, err error) {
	out = make([]*model.ContextMatch, 0, s.TopK)

	// --- Step 1: Generate Embedding for the Idea ---
	contents := []*genai.Content{
		genai.NewContentFromText(idea, genai.RoleUser),
	}
	embeddings, err := s.EmbeddingModel.EmbedContent(ctx, s.ModelName, contents, nil)
	if err != nil {
		return nil, model.NewProviderError("failed to embed movie idea", err)
	}
	if len(embeddings.Embeddings) == 0 {
		return nil, model.NewProviderError("embedding model returned no vectors", nil)
	}

	// --- Step 2: Prepare the Query for BigQuery ---
	// Get the fully qualified name of the knowledge table (e.g., `project.dataset.table`).
	fqKnowledgeTable := strings.Replace(s.BigQueryClient.Dataset(s.DatasetName).Table(s.KnowledgeTable).FullyQualifiedName(), ":", ".", -1)

	// The BigQuery VECTOR_SEARCH function expects the query vector as a
	// comma-separated string of float values.
	var stringArray []string
	for _, f := range embeddings.Embeddings[0].Values {
		stringArray = append(stringArray, strconv.FormatFloat(float64(f), 'f', -1, 64))
	}

	queryText := fmt.Sprintf(QryKnowledgeKnn, fqKnowledgeTable, strings.Join(stringArray, ","), s.TopK)

	// --- Step 3: Execute the Query and Process Results ---
	q := s.BigQueryClient.Query(queryText)
	itr, err := q.Read(ctx)
	if err != nil {
		return out, fmt.Errorf("failed to read from BigQuery: %w", err)
	}

	for {
		var row knowledgeRow
		err := itr.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return out, fmt.Errorf("failed to iterate results: %w", err)
		}
		// Skip chunks with no usable text.
		if !row.Text.Valid || strings.TrimSpace(row.Text.StringVal) == "" {
			continue
		}
		match := &model.ContextMatch{
			Text:     row.Text.StringVal,
			Distance: row.Distance,
		}
		if row.Source.Valid {
			match.Source = row.Source.StringVal
		}
		out = append(out, match)
	}

	return out, nil
}
