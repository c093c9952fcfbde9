package control

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/cybre/mrsteam-homekit/internal/errors"
	"github.com/cybre/mrsteam-homekit/internal/platform"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type switchState struct {
	Name string `json:"name"`
	On   bool   `json:"on"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server is the local HTTP control channel. It lets scripts and other
// automation drive the switches without going through HomeKit.
type Server struct {
	p   platform.Platform
	srv *http.Server
}

func New(addr string, p platform.Platform) *Server {
	s := &Server{p: p}
	s.srv = &http.Server{
		Addr:         addr,
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      s.Router(),
	}

	return s
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", homeHandler).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/accessories", s.listHandler).Methods(http.MethodGet)
	r.HandleFunc("/accessories/{name}", s.getHandler).Methods(http.MethodGet)
	r.HandleFunc("/accessories/{name}/{cmd}", s.setHandler).Methods(http.MethodPost)

	return r
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting HTTP control channel", slog.String("addr", s.srv.Addr))
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrapf(err, "control channel")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrapf(err, "shut down control channel")
	}

	return nil
}

func homeHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *Server) listHandler(w http.ResponseWriter, r *http.Request) {
	switches := s.p.Switches()
	states := make([]switchState, 0, len(switches))
	for _, sw := range switches {
		states = append(states, switchState{Name: sw.Name(), On: sw.State()})
	}

	writeJSON(w, http.StatusOK, states)
}

func (s *Server) getHandler(w http.ResponseWriter, r *http.Request) {
	sw, ok := s.p.Switch(mux.Vars(r)["name"])
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown accessory"})
		return
	}

	writeJSON(w, http.StatusOK, switchState{Name: sw.Name(), On: sw.State()})
}

func (s *Server) setHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	sw, ok := s.p.Switch(vars["name"])
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown accessory"})
		return
	}

	var on bool
	switch vars["cmd"] {
	case "on":
		on = true
	case "off":
		on = false
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "command must be on or off"})
		return
	}

	if err := sw.Toggle(r.Context(), on); err != nil {
		slog.Error("failed to set steam state via control channel", slog.String("device", sw.Name()), slog.Bool("on", on), slog.Any("error", err))
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, switchState{Name: sw.Name(), On: sw.State()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", slog.Any("error", err))
	}
}
