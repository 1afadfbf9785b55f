package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"bridge/internal/api"
	"bridge/internal/config"
	"bridge/internal/logging"
	"bridge/internal/pod"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon
	podSvc *api.PodService

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
		podSvc: api.NewPodService(d.engine, d.store),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/pods", srv.handlePods)
	mux.HandleFunc("/api/pods/", srv.handlePod)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
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

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status(r.Context())
	payload := api.StatusResponse{
		Running:      status.Running,
		PID:          status.PID,
		DatabasePath: status.DatabasePath,
		LockFilePath: status.LockFilePath,
		Pods:         api.MergeHealth(status.Pods),
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *apiServer) handlePods(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listPods(w, r)
	case http.MethodPost:
		s.createPod(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) listPods(w http.ResponseWriter, r *http.Request) {
	var statuses []pod.Status
	for _, value := range r.URL.Query()["status"] {
		parsed, ok := pod.ParseStatus(value)
		if !ok {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", value))
			return
		}
		statuses = append(statuses, parsed)
	}

	pods, err := s.podSvc.List(r.Context(), statuses...)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.PodListResponse{Pods: pods})
}

func (s *apiServer) createPod(w http.ResponseWriter, r *http.Request) {
	var req api.CreatePodRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.podSvc.Create(r.Context(), req)
	if err != nil {
		if errors.Is(err, pod.ErrInvalidStageSequence) {
			s.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, api.PodResponse{Pod: *created})
}

func (s *apiServer) handlePod(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/pods/")
	if id == "" || strings.Contains(id, "/") {
		s.writeError(w, http.StatusNotFound, "pod not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.describePod(w, r, id)
	case http.MethodPut:
		s.updatePod(w, r, id)
	case http.MethodDelete:
		s.deletePod(w, r, id)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) describePod(w http.ResponseWriter, r *http.Request, id string) {
	dto, err := s.podSvc.Describe(r.Context(), id)
	if err != nil {
		if errors.Is(err, pod.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "pod not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.PodResponse{Pod: *dto})
}

func (s *apiServer) updatePod(w http.ResponseWriter, r *http.Request, id string) {
	var dto api.Pod
	if err := decodeBody(r, &dto); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	dto.ID = id

	updated, err := s.podSvc.Update(r.Context(), dto)
	if err != nil {
		if errors.Is(err, pod.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "pod not found")
			return
		}
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.PodResponse{Pod: *updated})
}

func (s *apiServer) deletePod(w http.ResponseWriter, r *http.Request, id string) {
	removed, err := s.podSvc.Remove(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

func decodeBody(r *http.Request, dest any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Warn("encode api response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logging.NewNop()
}
