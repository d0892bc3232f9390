package residual

import (
	"math"
	"strconv"

	"github.com/ja7ad/foamcheck/pkg/types"
)

// DefaultChunkSize is the number of bytes requested per read call.
const DefaultChunkSize types.Bytes = 1024

// MaxChunkSize bounds the read buffer; larger sizes are clamped.
const MaxChunkSize types.Bytes = 1 << 30

// DefaultFields are the residuals tracked when Config.Fields is empty.
var DefaultFields = []string{"p_rgh", "omega", "k"}

// Config controls one extraction run.
//   - Fields: solver field names to track, in output column order.
//   - ChunkSize: bytes per read call, at most MaxChunkSize; only affects
//     performance.
//   - Patterns: line matchers; zero value selects DefaultPatterns.
type Config struct {
	Fields    []string
	ChunkSize types.Bytes
	Patterns  Patterns
}

func (c Config) withDefaults() Config {
	out := c
	if len(out.Fields) == 0 {
		out.Fields = DefaultFields
	}
	out.Fields = append([]string(nil), out.Fields...)
	switch {
	case out.ChunkSize == 0:
		out.ChunkSize = DefaultChunkSize
	case out.ChunkSize > MaxChunkSize:
		out.ChunkSize = MaxChunkSize
	}
	if out.Patterns.Time == nil || out.Patterns.Solver == nil {
		def := DefaultPatterns()
		if out.Patterns.Time == nil {
			out.Patterns.Time = def.Time
		}
		if out.Patterns.Solver == nil {
			out.Patterns.Solver = def.Solver
		}
	}
	return out
}

// Residual is the last observed final residual of one field.
// Text is the token exactly as it appeared in the log; Value is NaN when a
// custom pattern captured something that is not a number.
type Residual struct {
	Text     string
	Value    float64
	Observed bool
}

func newResidual(text string) Residual {
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		v = math.NaN()
	}
	return Residual{Text: text, Value: v, Observed: true}
}

// Record is one completed timestep. Residuals follow the extractor's field order.
type Record struct {
	Time      string
	Residuals []Residual
}

// TimeValue parses the time label.
func (r Record) TimeValue() (float64, error) { return strconv.ParseFloat(r.Time, 64) }

// Get returns the residual of field i, or an unobserved zero value when i is
// out of range.
func (r Record) Get(i int) Residual {
	if i < 0 || i >= len(r.Residuals) {
		return Residual{}
	}
	return r.Residuals[i]
}

// Complete reports whether every tracked field has been observed.
func (r Record) Complete() bool {
	for _, v := range r.Residuals {
		if !v.Observed {
			return false
		}
	}
	return true
}

// Stats counts what the extractor saw.
type Stats struct {
	BytesRead    types.Bytes
	Reads        int
	Lines        int
	TimeMarkers  int
	SolverLines  int
	Records      int
	DroppedSteps int // time markers replaced before all fields were observed
}
