// Package metrics provides run summaries observed step by step by a
// [collapse.Simulator].
package metrics

import "github.com/san-kum/collapse/internal/collapse"

// Default returns the standard metric set for a star of initialMass grams.
func Default(initialMass float64) []collapse.Metric {
	return []collapse.Metric{
		NewMassDrift(initialMass),
		NewPeakAccretion(),
		NewFormationTime(),
		NewAbsorbedFraction(),
	}
}
