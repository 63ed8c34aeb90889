package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadpilot/impressum-cli/internal/model"
	"github.com/leadpilot/impressum-cli/internal/pipeline"
	"github.com/leadpilot/impressum-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the job API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		jobs, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer jobs.Close()

		p, err := newPipeline(jobs)
		if err != nil {
			return err
		}

		api := &apiServer{pipeline: p, jobs: jobs}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           api.routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

type apiServer struct {
	pipeline *pipeline.Pipeline
	jobs     store.JobStore
}

func (s *apiServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/jobs", func(r chi.Router) {
		r.Post("/", s.handleCreateJob)
		r.Get("/", s.handleListJobs)
		r.Get("/{jobID}", s.handleGetJob)
		r.Post("/{jobID}/cancel", s.handleCancelJob)
		r.Get("/{jobID}/events", s.handleJobEvents)
	})
	return r
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *apiServer) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URLs []string `json:"urls"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.URLs) == 0 {
		writeError(w, http.StatusBadRequest, "urls is required")
		return
	}

	job, err := s.jobs.CreateJob(r.Context(), req.URLs)
	if err != nil {
		zap.L().Error("create job failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "create job failed")
		return
	}

	// The batch outlives the request; it stops through job cancellation
	// or server shutdown, not client disconnect.
	go func() {
		if err := s.pipeline.Process(context.Background(), job.ID, job.URLs); err != nil {
			zap.L().Error("job failed",
				zap.String("job_id", job.ID), zap.Error(err))
		}
	}()

	writeJSON(w, http.StatusAccepted, job)
}

func (s *apiServer) handleListJobs(w http.ResponseWriter, r *http.Request) {
	filter := store.JobFilter{
		Status: model.JobStatus(r.URL.Query().Get("status")),
	}
	list, err := s.jobs.ListJobs(r.Context(), filter)
	if err != nil {
		zap.L().Error("list jobs failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list jobs failed")
		return
	}
	if list == nil {
		list = []model.ExtractionJob{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *apiServer) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.jobs.GetJob(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *apiServer) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job, err := s.jobs.GetJob(r.Context(), jobID)
	if err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if job.Status.Terminal() {
		writeError(w, http.StatusConflict, fmt.Sprintf("job already %s", job.Status))
		return
	}
	if err := s.jobs.UpdateJobStatus(r.Context(), jobID, model.JobCancelled, ""); err != nil {
		zap.L().Error("cancel job failed", zap.String("job_id", jobID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "cancel failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(model.JobCancelled)})
}

// handleJobEvents streams job progress as server-sent events. The stream
// opens with a snapshot event and closes once the job reaches a terminal
// status.
func (s *apiServer) handleJobEvents(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job, err := s.jobs.GetJob(r.Context(), jobID)
	if err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	events, cancel := s.jobs.Subscribe(jobID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	writeSSE(w, "snapshot", job)
	flusher.Flush()
	if job.Status.Terminal() {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-events:
			if !open {
				return
			}
			writeSSE(w, string(ev.Type), ev)
			flusher.Flush()
			if ev.Type == model.EventStatusChanged && ev.Status.Terminal() {
				return
			}
		}
	}
}

func writeSSE(w http.ResponseWriter, event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
