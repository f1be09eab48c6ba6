package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"chalktalk/internal/config"
	"chalktalk/internal/logging"
	"chalktalk/internal/pipeline"
	"chalktalk/internal/services"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

type videoRequest struct {
	Problem         string `json:"problem"`
	Personalization string `json:"personalization"`
}

type dependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	InstallHint string `json:"install_hint,omitempty"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

type statusResponse struct {
	Running           bool               `json:"running"`
	PID               int                `json:"pid"`
	Address           string             `json:"address"`
	LockFilePath      string             `json:"lock_file"`
	PlannerConfigured bool               `json:"planner_configured"`
	TTSConfigured     bool               `json:"tts_configured"`
	Dependencies      []dependencyStatus `json:"dependencies"`
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:   strings.TrimSpace(cfg.Paths.APIBind),
		logger: logger,
		daemon: d,
	}

	token := strings.TrimSpace(cfg.Paths.APIToken)
	if cfg.AuthDisabled {
		token = ""
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Get("/api/health", srv.handleHealth)
	router.Group(func(r chi.Router) {
		r.Use(authMiddleware(token))
		r.Get("/api/status", srv.handleStatus)
		r.Post("/api/videos", srv.handleCreateVideo)
	})

	srv.server = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", slog.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) address() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.bind
}

// handler exposes the router for in-process tests.
func (s *apiServer) handler() http.Handler {
	return s.server.Handler
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.daemon.Status()
	payload := statusResponse{
		Running:           status.Running,
		PID:               status.PID,
		Address:           status.Address,
		LockFilePath:      status.LockFilePath,
		PlannerConfigured: status.PlannerConfigured,
		TTSConfigured:     status.TTSConfigured,
		Dependencies:      make([]dependencyStatus, len(status.Dependencies)),
	}
	for i, dep := range status.Dependencies {
		payload.Dependencies[i] = dependencyStatus{
			Name:        dep.Name,
			Command:     dep.Command,
			Description: dep.Description,
			InstallHint: dep.InstallHint,
			Available:   dep.Available,
			Detail:      dep.Detail,
		}
	}
	s.writeJSON(w, http.StatusOK, payload)
}

// handleCreateVideo runs the full pipeline for the posted problem statement
// and streams the finished video back on the same response. Errors before
// the first byte of video produce a JSON error body; once streaming has
// begun a failure can only be logged and the connection dropped.
func (s *apiServer) handleCreateVideo(w http.ResponseWriter, r *http.Request) {
	var req videoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Problem) == "" {
		s.writeError(w, http.StatusBadRequest, "problem is required")
		return
	}

	if msg := s.missingToolsMessage(); msg != "" {
		s.writeError(w, http.StatusServiceUnavailable, msg)
		return
	}

	ctx := r.Context()
	if id := chimiddleware.GetReqID(ctx); id != "" {
		ctx = services.WithRequestID(ctx, id)
	}

	result, err := s.daemon.generator.Run(ctx, pipeline.Request{
		Problem:         req.Problem,
		Personalization: req.Personalization,
	})
	if err != nil {
		s.writeError(w, services.HTTPStatus(err), err.Error())
		return
	}
	defer func() {
		if err := result.Job.Cleanup(); err != nil {
			s.logger.Warn("job cleanup failed",
				slog.String(logging.FieldJobID, result.Job.ID),
				logging.Error(err))
		}
	}()

	file, err := os.Open(result.VideoPath)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "artifact unavailable")
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "artifact unavailable")
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.Header().Set("Content-Disposition", `inline; filename="lesson.mp4"`)
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, file); err != nil {
		// Headers are already written; the client sees a truncated body.
		s.logger.Warn("video stream interrupted",
			slog.String(logging.FieldJobID, result.Job.ID),
			logging.Error(err))
	}
}

// missingToolsMessage reports required external tools that cannot be
// resolved, with install hints, so callers fail fast instead of burning a
// render timeout.
func (s *apiServer) missingToolsMessage() string {
	var missing []string
	for _, dep := range s.daemon.generator.CheckTools() {
		if dep.Available {
			continue
		}
		entry := dep.Command
		if dep.InstallHint != "" {
			entry += " (" + dep.InstallHint + ")"
		}
		missing = append(missing, entry)
	}
	if len(missing) == 0 {
		return ""
	}
	return "missing required tools: " + strings.Join(missing, ", ")
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("failed to encode api response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
