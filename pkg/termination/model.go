package termination

// Config holds the stabilization criteria.
//   - LevelThreshold: a row is a candidate when Value < LevelThreshold.
//   - SpreadThreshold: a candidate is stable when max-min over its window
//     is strictly below this.
//   - WindowSize: number of rows before the candidate included in the window
//     (the window holds WindowSize+1 rows, the candidate included).
type Config struct {
	LevelThreshold  float64
	SpreadThreshold float64
	WindowSize      int
}

func _defaultConfig() *Config {
	return &Config{
		LevelThreshold:  0.5,
		SpreadThreshold: 0.1,
		WindowSize:      20000,
	}
}

// Candidate is a level-crossing row with enough history to be judged.
type Candidate struct {
	Index  int
	Time   float64
	Value  float64
	Min    float64
	Max    float64
	Spread float64
	Stable bool
}

// Result describes the stabilization point and the window that qualified it.
type Result struct {
	Index  int
	Time   float64
	Spread float64
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
	Rows   int // rows in the window
}
