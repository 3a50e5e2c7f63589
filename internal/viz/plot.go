package viz

import (
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/collapse/internal/collapse"
)

type PlotOptions struct {
	Height int
	Width  int
}

func DefaultPlotOptions() PlotOptions {
	return PlotOptions{Height: 10, Width: 80}
}

// Chart is one captioned time series.
type Chart struct {
	Caption string
	Data    []float64
}

// Charts builds the standard chart set for a run: log10 of the minimum
// radius, the remnant mass in solar masses and the accretion rate.
func Charts(series *collapse.Series) []Chart {
	if series == nil || series.Len() == 0 {
		return nil
	}

	logR := make([]float64, series.Len())
	for i, r := range series.RMin {
		logR[i] = logRadius(r)
	}
	return []Chart{
		{Caption: "log10 r_min [cm]", Data: logR},
		{Caption: "M_bh [Msun]", Data: series.MBHMsun},
		{Caption: "mdot_bh [g/s]", Data: series.Mdot},
	}
}

// PlotChart renders a single chart. Non-finite samples carry the previous
// finite value forward so a blown-up run still draws.
func PlotChart(c Chart, opts PlotOptions) string {
	data := finite(c.Data)
	if len(data) == 0 {
		return ""
	}
	if opts.Height <= 0 || opts.Width <= 0 {
		opts = DefaultPlotOptions()
	}
	return asciigraph.Plot(data,
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Caption(c.Caption),
	)
}

// Plot renders every chart of series separated by blank lines.
func Plot(series *collapse.Series, opts PlotOptions) string {
	var b strings.Builder
	for _, c := range Charts(series) {
		graph := PlotChart(c, opts)
		if graph == "" {
			continue
		}
		b.WriteString(graph)
		b.WriteString("\n\n")
	}
	return b.String()
}

func logRadius(r float64) float64 { return math.Log10(math.Max(r, 1)) }

func finite(data []float64) []float64 {
	out := make([]float64, 0, len(data))
	last, seen := 0.0, false
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			if !seen {
				continue
			}
			v = last
		}
		out = append(out, v)
		last, seen = v, true
	}
	return out
}
