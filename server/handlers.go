package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/starcalypse/torrentdeck/config"
	"github.com/starcalypse/torrentdeck/downloader"
	"github.com/starcalypse/torrentdeck/rules"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type healthzResponse struct {
	Status string `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// decodeConnection reads a ConnectionConfig body and resolves it
func decodeConnection(w http.ResponseWriter, r *http.Request) (downloader.Descriptor, bool) {
	var conn config.ConnectionConfig
	if err := decodeBody(w, r, &conn); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return downloader.Descriptor{}, false
	}

	desc, err := conn.Descriptor()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return downloader.Descriptor{}, false
	}
	return desc, true
}

// decodeAppConfig reads and validates an AppConfig body
func decodeAppConfig(w http.ResponseWriter, r *http.Request) (*config.AppConfig, bool) {
	var cfg config.AppConfig
	if err := decodeBody(w, r, &cfg); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}

	if err := config.Validate(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	return &cfg, true
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthzResponse{Status: "ok"})
}

func (s *Server) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	desc, ok := decodeConnection(w, r)
	if !ok {
		return
	}

	version, err := s.ops.TestConnection(r.Context(), desc)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: version})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	cfg, ok := decodeAppConfig(w, r)
	if !ok {
		return
	}

	req, err := cfg.Request()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.ops.Scan(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	cfg, ok := decodeAppConfig(w, r)
	if !ok {
		return
	}

	req, err := cfg.Request()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	outcomes, err := s.ops.Execute(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, outcomes)
}

func (s *Server) handleTrackers(w http.ResponseWriter, r *http.Request) {
	desc, ok := decodeConnection(w, r)
	if !ok {
		return
	}

	domains, err := s.ops.ListTrackerDomains(r.Context(), desc)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, domains)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.store.Read()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read config")
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	var cfg config.AppConfig
	if err := decodeBody(w, r, &cfg); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if cfg.Rules == nil {
		cfg.Rules = []rules.Rule{}
	}

	if err := s.store.Save(&cfg); err != nil {
		var cfgErr *config.ConfigError
		if errors.As(err, &cfgErr) && cfgErr.Op == config.OpValidate {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		s.logger.Error().Err(err).Msg("Failed to save config")
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
