package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"DCFSuite/internal/credit"
	"DCFSuite/internal/model"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "dcfsuite",
	})
}

func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := map[string]interface{}{
		"status":         "running",
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
		"goroutines":     runtime.NumGoroutine(),
		"memory": map[string]interface{}{
			"alloc_mb": m.Alloc / 1024 / 1024,
			"sys_mb":   m.Sys / 1024 / 1024,
			"num_gc":   m.NumGC,
		},
	}

	// Host stats are best effort; some sandboxes hide /proc.
	if pct, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(pct) > 0 {
		response["cpu_percent"] = pct[0]
	} else if err != nil {
		s.log.Debug().Err(err).Msg("cpu stats unavailable")
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		response["host_memory_percent"] = vm.UsedPercent
	} else {
		s.log.Debug().Err(err).Msg("memory stats unavailable")
	}

	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleCreditSpreads(w http.ResponseWriter, r *http.Request) {
	bands := s.bands
	if len(bands) == 0 {
		bands = credit.DefaultTable
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"default_rating": credit.DefaultRating,
		"bands":          bands,
	})
}

// handleWACC estimates the cost of capital. Body fields override the configured defaults.
func (s *Server) handleWACC(w http.ResponseWriter, r *http.Request) {
	base, err := s.requests("")
	if err != nil {
		s.writeModelError(w, err)
		return
	}
	req := base.CapitalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	report, err := s.valuer.CostOfCapital(r.Context(), req)
	if err != nil {
		s.writeModelError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// handleValuation runs the full pipeline. Body fields override the configured defaults.
func (s *Server) handleValuation(w http.ResponseWriter, r *http.Request) {
	req, err := s.requests("")
	if err != nil {
		s.writeModelError(w, err)
		return
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	report, err := s.valuer.Run(r.Context(), req)
	if err != nil {
		s.writeModelError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// statusFor maps a pipeline error to an HTTP status. Errors without a kind
// come from the market data provider.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrDataUnavailable), errors.Is(err, model.ErrMathDomain):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) writeModelError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	body := map[string]interface{}{"error": err.Error()}

	var me *model.Error
	if errors.As(err, &me) {
		body["kind"] = me.Kind
		if me.Field != "" {
			body["field"] = me.Field
		}
		if me.Expected != "" {
			body["expected"] = me.Expected
			body["actual"] = me.Actual
		}
	}
	if status == http.StatusBadGateway {
		s.log.Error().Err(err).Msg("valuation failed")
	}
	s.writeJSON(w, status, body)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
