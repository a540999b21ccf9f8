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

package commands

// Named context parameters shared between the pipeline commands. The chain
// pipes each command's primary output into the next command's input; these
// keys carry the side data that more than one command needs.
const (
	ParamIdea             = "idea"              // The user's movie idea.
	ParamMovieID          = "movie_id"          // The movie the scenes belong to.
	ParamKnowledgeContext = "knowledge_context" // The rendered grounding block from the vector search.
	ParamExistingScenes   = "existing_scenes"   // The formatted summary of scenes already in the movie.
	ParamAnalysis         = "analysis"          // The model-written brief of the existing story and its direction.
	ParamStartNumber      = "start_number"      // The id the first newly generated scene must carry.
	ParamSceneCount       = "scene_count"       // The number of scenes to generate.
)
