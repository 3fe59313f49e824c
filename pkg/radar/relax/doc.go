// Package relax spreads overlapping blips apart while keeping each inside its
// segment.
//
// # Model
//
// Every body is a disc of fixed radius. A [Simulation] follows the classic
// velocity Verlet scheme of d3-force with a single collision force:
//
//   - alpha starts at 1 and decays geometrically towards 0; the simulation
//     is settled once alpha drops below AlphaMin (about 300 ticks with the
//     defaults)
//   - each tick, overlapping pairs exchange velocity proportional to their
//     overlap and Strength, using predicted positions (position + velocity)
//   - velocities are damped by VelocityDecay and integrated
//   - every body is constrained through its segment before the position is
//     written back
//
// Coincident bodies are separated by a tiny seeded jiggle.
//
// # Running
//
// [Simulation.Run] settles synchronously, for headless rendering. A [Runner]
// drives a simulation on a schedule.Scheduler, one tick per frame, and can be
// stopped and restarted at any time. Runners bound every pass defensively:
// a pass stops after Budget of scheduler time or after QuietTicks consecutive
// ticks that moved nothing by more than Epsilon.
package relax
