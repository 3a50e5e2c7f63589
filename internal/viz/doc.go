// Package viz renders collapse runs in the terminal.
//
//   - [Plot]: asciigraph charts of the minimum radius, remnant mass and
//     accretion rate
//   - [Summary]: a lipgloss panel with run parameters and final observables
//   - [LiveModel]: a Bubble Tea program that steps a simulator and redraws
//     the charts as the run progresses
//
// # Key Bindings
//
//	Space - Pause/Resume stepping
//	+/-   - Change steps per frame
//	Q     - Quit
package viz
