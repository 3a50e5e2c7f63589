// Package units holds the physical constants used across collapse.
//
// The hydrodynamics core works exclusively in CGS. The closed-form black hole
// endpoints work in SI. The two systems are separate types so a value from one
// can never be passed where the other is expected.
package units

// CGSConstants are centimetre-gram-second constants.
type CGSConstants struct {
	G    float64 `json:"G"`     // cm^3 g^-1 s^-2
	C    float64 `json:"c"`     // cm/s
	Msun float64 `json:"M_sun"` // g
}

// SIConstants are metre-kilogram-second constants.
type SIConstants struct {
	G    float64 `json:"G"`     // m^3 kg^-1 s^-2
	C    float64 `json:"c"`     // m/s
	Hbar float64 `json:"hbar"`  // J s
	KB   float64 `json:"kB"`    // J/K
	Msun float64 `json:"M_sun"` // kg
	H    float64 `json:"h"`     // J s
}

var (
	CGS = CGSConstants{
		G:    6.67430e-8,
		C:    2.99792458e10,
		Msun: 1.98847e33,
	}

	SI = SIConstants{
		G:    6.67430e-11,
		C:    299792458,
		Hbar: 1.054571817e-34,
		KB:   1.380649e-23,
		Msun: 1.98847e30,
		H:    6.62607015e-34,
	}
)

// SchwarzschildRadius returns 2GM/c^2 in cm for a mass in grams.
func (u CGSConstants) SchwarzschildRadius(mass float64) float64 {
	return 2 * u.G * mass / (u.C * u.C)
}

// SchwarzschildRadius returns 2GM/c^2 in metres for a mass in kilograms.
func (u SIConstants) SchwarzschildRadius(mass float64) float64 {
	return 2 * u.G * mass / (u.C * u.C)
}
