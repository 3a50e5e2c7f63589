// Package sweep runs a collapse for every point of a parameter grid on a
// bounded worker pool.
package sweep

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/collapse/internal/collapse"
	"github.com/san-kum/collapse/internal/metrics"
)

// Parameter names accepted by Apply. They match the CLI flag names.
var Names = []string{
	"mass", "radius", "shells", "time", "dt",
	"k", "rho-break", "gamma-core", "gamma-soft", "alpha",
}

// Apply returns p with the named parameter set to v.
func Apply(p collapse.Params, name string, v float64) (collapse.Params, error) {
	switch name {
	case "mass":
		p.MassMsun = v
	case "radius":
		p.RadiusCm = v
	case "shells":
		if v != math.Trunc(v) {
			return p, fmt.Errorf("shells must be an integer, got %g", v)
		}
		p.Shells = int(v)
	case "time":
		p.TMax = v
	case "dt":
		p.Dt = v
	case "k":
		p.K = v
	case "rho-break":
		p.RhoBreak = v
	case "gamma-core":
		p.GammaCore = v
	case "gamma-soft":
		p.GammaSoft = v
	case "alpha":
		p.Alpha = v
	default:
		return p, fmt.Errorf("unknown parameter %q (available: %v)", name, Names)
	}
	return p, nil
}

type Axis struct {
	Name   string
	Values []float64
}

// ParseAxis reads "name=v1,v2,...".
func ParseAxis(s string) (Axis, error) {
	name, list, ok := strings.Cut(s, "=")
	if !ok || name == "" || list == "" {
		return Axis{}, fmt.Errorf("invalid axis %q: want name=v1,v2", s)
	}
	if _, err := Apply(collapse.Params{}, name, 0); err != nil {
		return Axis{}, err
	}

	var values []float64
	for _, raw := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return Axis{}, fmt.Errorf("axis %s: %w", name, err)
		}
		values = append(values, v)
	}
	return Axis{Name: name, Values: values}, nil
}

type Point map[string]float64

func (p Point) String() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, p[k])
	}
	return strings.Join(parts, " ")
}

type Grid struct {
	axes []Axis
}

func NewGrid(axes ...Axis) *Grid {
	return &Grid{axes: axes}
}

// Points enumerates the cartesian product, last axis varying fastest.
func (g *Grid) Points() []Point {
	var out []Point
	g.collect(0, Point{}, &out)
	return out
}

func (g *Grid) collect(depth int, current Point, out *[]Point) {
	if depth == len(g.axes) {
		if len(current) > 0 {
			*out = append(*out, current)
		}
		return
	}

	axis := g.axes[depth]
	for _, v := range axis.Values {
		next := make(Point, len(current)+1)
		for k, val := range current {
			next[k] = val
		}
		next[axis.Name] = v
		g.collect(depth+1, next, out)
	}
}

// Result summarises one grid point. Err is set when the point could not be
// run, e.g. because its parameters are out of bounds.
type Result struct {
	Point         Point              `json:"point"`
	Params        collapse.Params    `json:"params"`
	FormationTime float64            `json:"formation_time"`
	FinalMassMsun float64            `json:"final_M_bh_Msun"`
	Metrics       map[string]float64 `json:"metrics,omitempty"`
	Err           error              `json:"-"`
	Error         string             `json:"error,omitempty"`
}

func (r *Result) fail(err error) {
	r.Err = err
	r.Error = err.Error()
}

type Runner struct {
	Base    collapse.Params
	Workers int
}

// Run simulates every point. Results come back in Points order. Only a
// cancelled context fails the whole sweep.
func (r Runner) Run(ctx context.Context, g *Grid) ([]Result, error) {
	points := g.Points()
	results := make([]Result, len(points))

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, pt := range points {
		eg.Go(func() error {
			res, err := r.runPoint(ctx, pt)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r Runner) runPoint(ctx context.Context, pt Point) (Result, error) {
	res := Result{Point: pt, FormationTime: -1}

	p := r.Base
	for name, v := range pt {
		var err error
		if p, err = Apply(p, name, v); err != nil {
			res.fail(err)
			return res, nil
		}
	}
	res.Params = p

	sim, err := collapse.New(p)
	if err != nil {
		res.fail(err)
		return res, nil
	}
	for _, m := range metrics.Default(sim.InitialMass()) {
		sim.AddMetric(m)
	}

	series, err := sim.Run(ctx)
	if err != nil {
		return res, err
	}

	res.Metrics = series.Metrics
	res.FormationTime = series.Metrics[metrics.NewFormationTime().Name()]
	if final, ok := series.Final(); ok {
		res.FinalMassMsun = final.RemnantMassMsun
	}
	return res, nil
}

// Best returns the successful result with the smallest (or largest) value of
// metric.
func Best(results []Result, metric string, minimize bool) (Result, bool) {
	var (
		best  Result
		found bool
	)
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		v, ok := r.Metrics[metric]
		if !ok {
			continue
		}
		if !found || (minimize && v < best.Metrics[metric]) || (!minimize && v > best.Metrics[metric]) {
			best, found = r, true
		}
	}
	return best, found
}
