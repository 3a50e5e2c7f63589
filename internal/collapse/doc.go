// Package collapse simulates the gravitational collapse of a massive star
// into a black hole with one-dimensional Lagrangian shell hydrodynamics.
//
// A step runs a fixed pipeline over the shared shell mesh:
//
//   - [Stepper]: gravity, pressure-gradient and linear drag accelerations,
//     explicit velocity then radius update, radius floor, density refresh
//   - [HorizonTracker]: trapping-surface test r <= 2GM/c^2 and absorption of
//     every shell from the centre through the outermost trapped one
//   - [Accretor]: once the remnant exists, capture of any shell inside 1.2x
//     its current capture radius
//
// [Simulator] owns the mesh and the [Remnant], runs floor(t_max/dt) steps and
// records a [Snapshot] per step into a [Series].
//
// # Example
//
//	p := collapse.DefaultParams()
//	series, err := collapse.Simulate(ctx, p)
//
// # Time Step
//
// Integration is explicit and first order with no CFL check and no adaptive
// step. Stability depends entirely on the caller choosing a small enough dt.
//
// # Units
//
// Everything in this package is CGS ([units.CGS]).
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. Run independent simulations on
// independent Simulator values.
package collapse
