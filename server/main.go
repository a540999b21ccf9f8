// Copyright 2025 Witt Works, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
// *****************************************************************************************************//
// Package main is the entry point for the movie scene generation server.
//
// This application sets up and runs a web server using the Gin framework. It
// provides a REST API that turns a short movie idea into narrative scenes and,
// on request, AI-generated video clips per scene. The server is instrumented
// with OpenTelemetry for logging, tracing, and metrics.
//
// The main function initializes the application's configuration, sets up
// logging and telemetry, and initializes the application state, including
// clients for Google Cloud services and the video generation provider. It
// defines API routes for generating scene lists, continuing an existing movie,
// and driving the asynchronous video generation job state machine.
//
// The server also starts a background Pub/Sub listener that provisions a
// profile document for every newly created user account.
//
// Functions:
//   - main: The main entry point of the application. It sets up the server,
//     configures routes, initializes services, and handles graceful shutdown.
//   - SceneRouter: Sets up the routes that generate scene text: the initial
//     scene list, continuation scenes, and single-scene regeneration.
//   - VideoRouter: Sets up the routes that drive video generation: the async
//     job start, the status poll, and the blocking single-call variant.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/wittworks/movie-scene-service/internal/core/model"
	"github.com/wittworks/movie-scene-service/internal/core/services"
	"github.com/wittworks/movie-scene-service/internal/telemetry"
)

// defaultSceneCount is the number of scenes generated for a new movie when the
// caller does not ask for a specific count.
const defaultSceneCount = 5

// main is the primary entry point for the application.
// It orchestrates the setup of logging, telemetry, configuration, cloud
// services, the web server, API routes, and background listeners. It also
// handles graceful shutdown of the server upon receiving an interrupt signal.
func main() {
	// Initialize structured logging for the application.
	telemetry.SetupLogging()
	slog.Info("Logging initialized")

	// Root context for the application; cancelled on exit so the Pub/Sub
	// listeners stop with the server.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load application configuration from TOML files.
	config := GetConfig()

	// Initialize OpenTelemetry for distributed tracing and metrics.
	_, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("Failed to setup OpenTelemetry", "error", err)
		log.Fatal(err)
	}
	slog.Info("Tracing initialized")

	// Initialize the application's state, including all service clients.
	InitState(ctx)
	slog.Info("Initialized State")

	// Set up the Gin web server with default middleware.
	r := gin.Default()

	// Trace every incoming request.
	r.Use(otelgin.Middleware("movie-scene-server"))

	// Permissive CORS: the endpoints are called directly from browsers.
	r.Use(cors.Default())

	SceneRouter(r)
	VideoRouter(r)

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      r,
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 20 * time.Second,
	}

	// Start the HTTP server in a separate goroutine so it doesn't block the
	// main thread.
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to listen: ", "error", err)
		}
	}()
	slog.Info("Server Ready on port 8080")

	// Block until an interrupt signal is received.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutdown Server ...")

	// Give active requests 5 seconds to complete.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server Shutdown Failed:", "error", err)
	}

	log.Println("Server exiting")
}

// sceneRequest is the body accepted by the generateSingleScene and
// generateSceneVideo endpoints: the scene being turned into a clip plus the
// requesting user.
type sceneRequest struct {
	Scene struct {
		Text       string `json:"text"`
		DocumentID string `json:"documentId"`
		MovieID    string `json:"movieId"`
	} `json:"scene"`
	UserID string `json:"userId"`
}

// toStartRequest maps the HTTP body onto the job service's input.
func (r *sceneRequest) toStartRequest() services.StartVideoRequest {
	return services.StartVideoRequest{
		MovieID:   r.Scene.MovieID,
		SceneID:   r.Scene.DocumentID,
		UserID:    r.UserID,
		SceneText: r.Scene.Text,
	}
}

// respondError maps an error from the service layer onto an HTTP response.
// Validation errors are the caller's fault (400), an unknown job id is a 404,
// and everything else (provider, configuration, parse, timeout) is a 500 with
// the human-readable message plus the underlying cause as detail.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrJobNotFound):
		status = http.StatusNotFound
	case model.KindOf(err) == model.KindValidation:
		status = http.StatusBadRequest
	}

	body := gin.H{"success": false, "error": err.Error()}
	var svcErr *model.Error
	if errors.As(err, &svcErr) {
		body["error"] = svcErr.Message
		if svcErr.Err != nil {
			body["detail"] = svcErr.Err.Error()
		}
	}
	c.JSON(status, body)
}

// SceneRouter sets up the routes that generate scene text.
//
// Inputs:
//   - r: The gin engine the routes are added to. The endpoints live at the
//     root path so the service can be fronted by a function-style trigger.
//
// This function defines the following endpoints:
//   - POST /generateMovieScenes: Generates the opening scene list for a new
//     movie idea.
//   - POST /generateAdditionalScenes: Continues an existing movie with a fixed
//     number of new scenes.
//   - POST /regenerateScene: Regenerates the text of one existing scene slot.
func SceneRouter(r *gin.Engine) {
	// Handler for POST /generateMovieScenes
	r.POST("/generateMovieScenes", func(c *gin.Context) {
		var req struct {
			MovieIdea string `json:"movieIdea"`
			MovieID   string `json:"movieId"`
			NumScenes int    `json:"numScenes"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
			return
		}
		if strings.TrimSpace(req.MovieIdea) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "movieIdea is required"})
			return
		}
		// A fresh movie gets a minted id; a retry may pass its own.
		if req.MovieID == "" {
			req.MovieID = uuid.NewString()
		}
		if req.NumScenes <= 0 {
			req.NumScenes = defaultSceneCount
		}

		scenes, err := state.initialWorkflow.Run(c.Request.Context(), req.MovieID, req.MovieIdea, req.NumScenes)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"scenes": scenes,
			"metadata": gin.H{
				"totalScenes": len(scenes),
				"movieIdea":   req.MovieIdea,
				"movieId":     req.MovieID,
				"generatedAt": time.Now().UTC().Format(time.RFC3339),
			},
		})
	})

	// Handler for POST /generateAdditionalScenes
	r.POST("/generateAdditionalScenes", func(c *gin.Context) {
		var req struct {
			MovieID          string `json:"movieId"`
			ContinuationIdea string `json:"continuationIdea"`
			NumNewScenes     int    `json:"numNewScenes"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
			return
		}
		if req.MovieID == "" || strings.TrimSpace(req.ContinuationIdea) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "movieId and continuationIdea are required"})
			return
		}
		if req.NumNewScenes <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "numNewScenes must be a positive integer"})
			return
		}

		scenes, err := state.continuationWorkflow.Run(c.Request.Context(), req.MovieID, req.ContinuationIdea, req.NumNewScenes)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"scenes": scenes,
			"metadata": gin.H{
				"totalNewScenes":   len(scenes),
				"continuationIdea": req.ContinuationIdea,
				"movieId":          req.MovieID,
				"generatedAt":      time.Now().UTC().Format(time.RFC3339),
			},
		})
	})

	// Handler for POST /regenerateScene
	r.POST("/regenerateScene", func(c *gin.Context) {
		var req struct {
			MovieID string `json:"movieId"`
			Idea    string `json:"idea"`
			SceneID int    `json:"sceneId"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
			return
		}
		if req.MovieID == "" || strings.TrimSpace(req.Idea) == "" || req.SceneID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "movieId, idea, and a positive sceneId are required"})
			return
		}

		scene, err := state.singleSceneWorkflow.Run(c.Request.Context(), req.MovieID, req.Idea, req.SceneID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"scene": scene})
	})
}

// VideoRouter sets up the routes that drive video generation for a scene.
//
// Inputs:
//   - r: The gin engine the routes are added to.
//
// This function defines the following endpoints:
//   - POST /generateSingleScene: Starts an asynchronous video generation job
//     for one scene and returns the job handle immediately.
//   - POST /getGenerationStatus: Polls one round of the job state machine and
//     returns the current snapshot.
//   - POST /generateSceneVideo: The blocking single-call variant; creates the
//     prediction, polls in-process until it finishes or times out, and
//     returns the provider-hosted URL without recording a job.
func VideoRouter(r *gin.Engine) {
	// Handler for POST /generateSingleScene
	r.POST("/generateSingleScene", func(c *gin.Context) {
		var req sceneRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
			return
		}
		if strings.TrimSpace(req.Scene.Text) == "" || req.UserID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "scene.text and userId are required"})
			return
		}

		job, err := state.jobService.Start(c.Request.Context(), req.toStartRequest())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"jobId":    job.JobID,
			"status":   job.Status,
			"progress": job.Progress,
		})
	})

	// Handler for POST /getGenerationStatus
	r.POST("/getGenerationStatus", func(c *gin.Context) {
		var req struct {
			JobID string `json:"jobId"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
			return
		}
		if req.JobID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "jobId is required"})
			return
		}

		snapshot, err := state.jobService.Check(c.Request.Context(), req.JobID)
		if err != nil {
			respondError(c, err)
			return
		}
		// A provider-reported failure is a server-side error: the snapshot
		// carries status "failed" plus the provider's reason.
		if snapshot.Status == model.JobStatusFailed {
			c.JSON(http.StatusInternalServerError, snapshot)
			return
		}
		c.JSON(http.StatusOK, snapshot)
	})

	// Handler for POST /generateSceneVideo
	r.POST("/generateSceneVideo", func(c *gin.Context) {
		var req sceneRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
			return
		}
		if strings.TrimSpace(req.Scene.Text) == "" || req.UserID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "scene.text and userId are required"})
			return
		}

		prediction, err := state.jobService.GenerateSync(c.Request.Context(), req.toStartRequest())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":      true,
			"videoUrl":     prediction.OutputURL,
			"predictionId": prediction.ID,
		})
	})
}
