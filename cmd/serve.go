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

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for async contact searches",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(env *pipelineEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/searches", func(r chi.Router) {
		r.Post("/", handleCreateSearch(env))
		r.Get("/{id}", handleGetSearch(env))
		r.Post("/{id}/more", handleMoreContacts(env))
	})

	return r
}

// handleCreateSearch accepts a search request, creates a run, and kicks
// off the pipeline in the background. Responds 202 with the run ID.
func handleCreateSearch(env *pipelineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Company == "" {
			writeJSONError(w, http.StatusBadRequest, "company is required")
			return
		}
		if req.Role == "" {
			req.Role = "software engineer"
		}

		newRun, err := env.Store.CreateRun(r.Context(), req)
		if err != nil {
			zap.L().Error("create run failed", zap.Error(err))
			writeJSONError(w, http.StatusInternalServerError, "failed to create search")
			return
		}

		// Detached from the request context so the pipeline survives the
		// client disconnecting.
		go func() {
			if err := env.Orchestrator.Execute(context.Background(), newRun); err != nil {
				zap.L().Error("search failed",
					zap.String("run_id", newRun.ID),
					zap.String("company", req.Company),
					zap.Error(err))
			}
		}()

		writeJSON(w, http.StatusAccepted, map[string]string{
			"id":     newRun.ID,
			"status": string(newRun.Status),
		})
	}
}

func handleGetSearch(env *pipelineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		found, err := env.Store.GetRun(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			if eris.Is(err, store.ErrNotFound) {
				writeJSONError(w, http.StatusNotFound, "search not found")
				return
			}
			zap.L().Error("get run failed", zap.Error(err))
			writeJSONError(w, http.StatusInternalServerError, "failed to load search")
			return
		}
		writeJSON(w, http.StatusOK, found)
	}
}

// handleMoreContacts re-runs the search for a completed run, excluding
// every contact already surfaced.
func handleMoreContacts(env *pipelineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		found, err := env.Store.GetRun(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			if eris.Is(err, store.ErrNotFound) {
				writeJSONError(w, http.StatusNotFound, "search not found")
				return
			}
			zap.L().Error("get run failed", zap.Error(err))
			writeJSONError(w, http.StatusInternalServerError, "failed to load search")
			return
		}
		if found.Status != model.RunStatusCompleted {
			writeJSONError(w, http.StatusConflict, "search is not completed")
			return
		}

		go func() {
			if err := env.Orchestrator.FindMoreContacts(context.Background(), found); err != nil {
				zap.L().Error("more-contacts search failed",
					zap.String("run_id", found.ID),
					zap.Error(err))
			}
		}()

		writeJSON(w, http.StatusAccepted, map[string]string{
			"id":     found.ID,
			"status": string(model.RunStatusFindingPeople),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
