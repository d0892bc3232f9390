package residual

import (
	"fmt"
	"regexp"
)

// number matches a signed decimal with optional fraction and exponent,
// e.g. 111, 0.300024, 1e-05, -2.0084695e-11.
const number = `[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`

const (
	// DefaultTimePattern matches "Time = 0.300024" and captures the label.
	DefaultTimePattern = `^Time = (` + number + `)$`

	// DefaultSolverPattern matches a linear solver summary line and captures
	// the field name and the final residual. The leading solver name
	// ("DILUPBiCG:  ", "GAMG:  ") is left unanchored.
	DefaultSolverPattern = `Solving for (\w+), Initial residual = ` + number +
		`, Final residual = (` + number + `), No Iterations \d+$`
)

// Patterns holds the two line matchers. Time must capture the time label in
// group 1; Solver must capture the field name in group 1 and the final
// residual in group 2.
type Patterns struct {
	Time   *regexp.Regexp
	Solver *regexp.Regexp
}

// DefaultPatterns returns the matchers for standard solver output.
func DefaultPatterns() Patterns {
	return Patterns{
		Time:   regexp.MustCompile(DefaultTimePattern),
		Solver: regexp.MustCompile(DefaultSolverPattern),
	}
}

// CompilePatterns compiles user supplied matchers. Empty strings select the
// defaults.
func CompilePatterns(timeExpr, solverExpr string) (Patterns, error) {
	if timeExpr == "" {
		timeExpr = DefaultTimePattern
	}
	if solverExpr == "" {
		solverExpr = DefaultSolverPattern
	}

	tp, err := regexp.Compile(timeExpr)
	if err != nil {
		return Patterns{}, fmt.Errorf("%w: time: %v", ErrBadPattern, err)
	}
	sp, err := regexp.Compile(solverExpr)
	if err != nil {
		return Patterns{}, fmt.Errorf("%w: solver: %v", ErrBadPattern, err)
	}

	p := Patterns{Time: tp, Solver: sp}
	if err := p.validate(); err != nil {
		return Patterns{}, err
	}
	return p, nil
}

func (p Patterns) validate() error {
	if p.Time == nil || p.Solver == nil {
		return fmt.Errorf("%w: missing matcher", ErrBadPattern)
	}
	if n := p.Time.NumSubexp(); n < 1 {
		return fmt.Errorf("%w: time pattern %q has %d capture groups, want 1", ErrBadPattern, p.Time, n)
	}
	if n := p.Solver.NumSubexp(); n < 2 {
		return fmt.Errorf("%w: solver pattern %q has %d capture groups, want 2", ErrBadPattern, p.Solver, n)
	}
	return nil
}
