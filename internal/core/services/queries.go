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

// Package services contains the business logic for interacting with data
// sources and external providers. This file centralizes the BigQuery SQL
// query strings used by the services. Storing queries as constants in a
// dedicated file improves maintainability, readability, and reusability. The
// queries use `fmt.Sprintf` format verbs (e.g., %s, %d) as placeholders for
// dynamic values that will be injected at runtime.
package services

const (
	// QryKnowledgeKnn defines the BigQuery query for performing a k-nearest
	// neighbor (KNN) vector search over the knowledge base. This is the core
	// query of the retrieval step that grounds scene generation.
	//
	// How it works:
	// - `VECTOR_SEARCH`: A BigQuery native function that efficiently finds the
	//   most similar vectors in a table to a given query vector.
	// - `TABLE %s`: The first placeholder is for the fully qualified name of
	//   the knowledge table.
	// - `'embedding'`: The column in the table that stores the embedding vectors.
	// - `(SELECT [ %s ] as embed)`: The second placeholder is for the query
	//   vector itself, injected as a comma-separated list of floats generated
	//   from the user's movie idea.
	// - `top_k => %d`: The third placeholder is the 'k' in KNN, the number of
	//   closest knowledge chunks to return.
	// - `distance_type => 'EUCLIDEAN'`: The distance metric used to compare vectors.
	// - `ORDER BY distance asc`: Sorts results so the most similar chunks come
	//   first, which is the order the prompt context preserves.
	//
	// The query returns the `text` and `source` of each matching knowledge
	// chunk along with its distance.
	QryKnowledgeKnn = "SELECT base.text, base.source, distance FROM VECTOR_SEARCH(TABLE `%s`, 'embedding', (SELECT [ %s ] as embed), top_k => %d, distance_type => 'EUCLIDEAN') ORDER BY distance asc"
)
