package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/collapse/internal/collapse"
)

// Summary renders the run parameters and final observables as a panel.
func Summary(name string, p collapse.Params, series *collapse.Series) string {
	var s strings.Builder
	s.WriteString(Title.Render(strings.ToUpper(name)) + "\n\n")

	s.WriteString(metricLine("mass", fmt.Sprintf("%.3g Msun", p.MassMsun)))
	s.WriteString(metricLine("radius", fmt.Sprintf("%.3g cm", p.RadiusCm)))
	s.WriteString(metricLine("shells", fmt.Sprintf("%d", p.Shells)))
	s.WriteString(metricLine("dt", fmt.Sprintf("%g s", p.Dt)))
	s.WriteString(metricLine("steps", fmt.Sprintf("%d", p.Steps())))

	if series != nil {
		if final, ok := series.Final(); ok {
			s.WriteString("\n")
			s.WriteString(metricLine("t", fmt.Sprintf("%.4g s", final.Time)))
			s.WriteString(metricLine("r_min", fmt.Sprintf("%.4g cm", final.MinRadius)))
			s.WriteString(metricLine("M_bh", fmt.Sprintf("%.4g Msun", final.RemnantMassMsun)))
			s.WriteString(metricLine("mdot_bh", fmt.Sprintf("%.4g g/s", final.AccretionRate)))
		}

		if len(series.Events) > 0 {
			first := series.Events[0]
			s.WriteString(metricLine("horizon", fmt.Sprintf("step %d (t=%.4g s)", first.Step, first.Time)))
		} else {
			s.WriteString(metricLine("horizon", Subtle.Render("none")))
		}

		if len(series.Metrics) > 0 {
			names := make([]string, 0, len(series.Metrics))
			for k := range series.Metrics {
				names = append(names, k)
			}
			sort.Strings(names)
			s.WriteString("\n")
			for _, k := range names {
				s.WriteString(metricLine(k, fmt.Sprintf("%.6g", series.Metrics[k])))
			}
		}
	}

	return Panel.Render(strings.TrimRight(s.String(), "\n"))
}
