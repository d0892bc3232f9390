// Package residual extracts per-timestep final residuals from solver logs.
//
// A log is a stream of lines. Two kinds of lines matter:
//
//   - time markers, e.g. "Time = 0.300024", which open a new timestep;
//   - solver summaries, e.g.
//     "GAMG:  Solving for p_rgh, Initial residual = 1e-05, Final residual = 2e-11, No Iterations 3",
//     which report the final residual of one field.
//
// Everything else is ignored.
//
// # Reading
//
// The log is read in chunks of Config.ChunkSize bytes. Lines that straddle two
// reads are joined through a carry buffer, so the chunk size never changes the
// output. An unterminated last line is still matched.
//
// # Record boundaries
//
// When a time marker arrives and the previous timestep has a time label and a
// value for every tracked field, that timestep is emitted as a Record. The
// time label is then replaced; field values are kept and carry forward until
// overwritten. A timestep replaced before all fields were observed is counted
// in Stats.DroppedSteps and not emitted.
//
// At end of input the pending timestep is always emitted (when at least one
// time marker was seen), even if some fields were never observed. Those fields
// have Observed == false.
//
// # Errors
//
//	ErrInputUnavailable : the log could not be opened or a read failed
//	ErrBadPattern       : a matcher failed to compile or lacks capture groups
//
// A line that matches neither pattern is not an error.
package residual
