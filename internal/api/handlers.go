package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/san-kum/collapse/internal/collapse"
	"github.com/san-kum/collapse/internal/horizon"
	"github.com/san-kum/collapse/internal/metrics"
	"github.com/san-kum/collapse/internal/units"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// SimulateResponse is the body of a successful simulate call. The series
// arrays are inlined at the top level.
type SimulateResponse struct {
	Params  collapse.Params `json:"params"`
	Steps   int             `json:"steps"`
	Elapsed float64         `json:"elapsed_s"`
	Valid   bool            `json:"valid"`
	*collapse.Series
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.log.Error("encode response", "error", err)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Error: "result contains values that cannot be encoded"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
	_, _ = w.Write([]byte("\n"))
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	resp := errorResponse{Error: err.Error()}
	var verr *collapse.ValidationError
	if errors.As(err, &verr) {
		resp.Field = verr.Field
	}
	s.writeJSON(w, status, resp)
}

// decodeBody decodes r's body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// checkWork enforces the per-run budget on top of Params.Validate.
func (s *Server) checkWork(p collapse.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	// float64 so huge step counts cannot wrap the product
	work := math.Floor(p.TMax/p.Dt) * float64(p.Shells)
	if work > float64(s.cfg.MaxWork) {
		return &collapse.ValidationError{
			Field:  "N",
			Value:  float64(p.Shells),
			Reason: fmt.Sprintf("steps*N=%g exceeds the limit of %d", work, s.cfg.MaxWork),
		}
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "collapse",
		"version": Version,
	})
}

func (s *Server) handleConstants(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"si":  units.SI,
		"cgs": units.CGS,
	})
}

func (s *Server) handleBlackHole(w http.ResponseWriter, r *http.Request) {
	req := struct {
		MassSolar float64 `json:"mass_solar"`
	}{MassSolar: 10}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	props, err := horizon.Calculate(req.MassSolar)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeJSON(w, http.StatusOK, props)
}

func (s *Server) handleSpawnRate(w http.ResponseWriter, r *http.Request) {
	req := struct {
		MassSolar float64 `json:"mass_solar"`
		PairRate  float64 `json:"pair_rate_ui"`
	}{MassSolar: 10, PairRate: 0.45}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	rate, err := horizon.ParticleSpawnRate(req.MassSolar, req.PairRate)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rate)
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	p := collapse.DefaultParams()
	if err := decodeBody(r, &p); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.checkWork(p); err != nil {
		s.log.Warn("rejected simulation", "error", err)
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	sim, err := collapse.New(p)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	for _, m := range metrics.Default(sim.InitialMass()) {
		sim.AddMetric(m)
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Timeout)
	defer cancel()

	s.log.Info("simulation started", "shells", p.Shells, "steps", p.Steps())
	start := time.Now()
	series, err := sim.Run(ctx)
	elapsed := time.Since(start)

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		s.log.Warn("simulation timed out", "step", sim.StepIndex(), "elapsed", elapsed)
		s.writeError(w, http.StatusGatewayTimeout, fmt.Errorf("simulation exceeded %s at step %d of %d", s.cfg.Timeout, sim.StepIndex(), sim.Steps()))
		return
	case errors.Is(err, context.Canceled):
		s.log.Info("client went away", "step", sim.StepIndex())
		return
	case err != nil:
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	for _, ev := range series.Events {
		s.log.Debug("horizon trapped shells", "step", ev.Step, "index", ev.Index, "mass", ev.Mass)
	}
	s.log.Info("simulation finished", "steps", series.Len(), "elapsed", elapsed, "M_bh_Msun", sim.RemnantMass()/units.CGS.Msun)

	s.writeJSON(w, http.StatusOK, SimulateResponse{
		Params:  p,
		Steps:   series.Len(),
		Elapsed: elapsed.Seconds(),
		Valid:   sim.Mesh().IsValid(),
		Series:  series,
	})
}
