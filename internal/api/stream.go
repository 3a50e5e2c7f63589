package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/san-kum/collapse/internal/collapse"
	"github.com/san-kum/collapse/internal/metrics"
)

const (
	MessageSnapshot = "snapshot"
	MessageEvent    = "event"
	MessageDone     = "done"
	MessageError    = "error"
)

// StreamMessage is one websocket frame of /api/collapse/stream.
type StreamMessage struct {
	Type     string              `json:"type"`
	Snapshot *collapse.Snapshot  `json:"snapshot,omitempty"`
	Event    *collapse.Trapping  `json:"event,omitempty"`
	Steps    int                 `json:"steps,omitempty"`
	Events   []collapse.Trapping `json:"events,omitempty"`
	Metrics  map[string]float64  `json:"metrics,omitempty"`
	Error    string              `json:"error,omitempty"`
}

// ParamsFromQuery overlays query parameters, named as in the simulate body,
// on the defaults.
func ParamsFromQuery(q url.Values) (collapse.Params, error) {
	p := collapse.DefaultParams()
	floats := map[string]*float64{
		"M_star_Msun": &p.MassMsun,
		"R_star_cm":   &p.RadiusCm,
		"t_max":       &p.TMax,
		"dt":          &p.Dt,
		"K":           &p.K,
		"rho_break":   &p.RhoBreak,
		"g_core":      &p.GammaCore,
		"g_soft":      &p.GammaSoft,
		"alpha":       &p.Alpha,
	}
	for name, dst := range floats {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return p, fmt.Errorf("invalid %s: %w", name, err)
		}
		*dst = v
	}
	if raw := q.Get("N"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return p, fmt.Errorf("invalid N: %w", err)
		}
		p.Shells = n
	}
	return p, nil
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, err := ParamsFromQuery(q)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.checkWork(p); err != nil {
		s.log.Warn("rejected stream", "error", err)
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	every := s.cfg.StreamEvery
	if raw := q.Get("every"); raw != "" {
		every, err = strconv.Atoi(raw)
		if err != nil || every < 1 {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid every %q: need a positive integer", raw))
			return
		}
	}

	sim, err := collapse.New(p)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	for _, m := range metrics.Default(sim.InitialMass()) {
		sim.AddMetric(m)
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.cfg.OriginPatterns,
	})
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.CloseNow()

	// Client frames are ignored; CloseRead cancels ctx when the peer goes away.
	ctx := conn.CloseRead(r.Context())
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	s.log.Info("stream started", "shells", p.Shells, "steps", p.Steps(), "every", every)
	if err := s.stream(ctx, conn, sim, every); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			_ = wsjson.Write(context.Background(), conn, StreamMessage{Type: MessageError, Error: "stream timed out"})
			conn.Close(websocket.StatusTryAgainLater, "timeout")
			return
		}
		s.log.Info("stream ended early", "step", sim.StepIndex(), "error", err)
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

func (s *Server) stream(ctx context.Context, conn *websocket.Conn, sim *collapse.Simulator, every int) error {
	seen := 0
	for sim.Phase() != collapse.PhaseDone {
		if err := ctx.Err(); err != nil {
			return err
		}

		snap, err := sim.Step()
		if err != nil {
			return err
		}

		events := sim.Events()
		for ; seen < len(events); seen++ {
			ev := events[seen]
			s.log.Debug("horizon trapped shells", "step", ev.Step, "index", ev.Index)
			if err := wsjson.Write(ctx, conn, StreamMessage{Type: MessageEvent, Event: &ev}); err != nil {
				return err
			}
		}

		if snap.Step%every == 0 || sim.Phase() == collapse.PhaseDone {
			if err := wsjson.Write(ctx, conn, StreamMessage{Type: MessageSnapshot, Snapshot: &snap}); err != nil {
				return err
			}
		}
	}

	series := collapse.NewSeries(0)
	sim.Summarize(series)
	return wsjson.Write(ctx, conn, StreamMessage{
		Type:    MessageDone,
		Steps:   sim.StepIndex(),
		Events:  series.Events,
		Metrics: series.Metrics,
	})
}
