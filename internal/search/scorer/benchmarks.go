// internal/search/scorer/benchmarks.go
package scorer

// Benchmark is the expected season output for a position. A zero expectation
// means the stat is irrelevant for that role and always earns full credit; a
// goalkeeper is never penalized for the absence of attacking output.
type Benchmark struct {
	Goals       float64
	Assists     float64
	Appearances float64
}

// positionBenchmarks holds per-position season expectations.
var positionBenchmarks = map[string]Benchmark{
	"GK":  {Goals: 0, Assists: 0, Appearances: 30},
	"CB":  {Goals: 2, Assists: 1, Appearances: 30},
	"LB":  {Goals: 2, Assists: 4, Appearances: 30},
	"RB":  {Goals: 2, Assists: 4, Appearances: 30},
	"LWB": {Goals: 2, Assists: 5, Appearances: 28},
	"RWB": {Goals: 2, Assists: 5, Appearances: 28},
	"CDM": {Goals: 2, Assists: 3, Appearances: 30},
	"CM":  {Goals: 4, Assists: 5, Appearances: 30},
	"CAM": {Goals: 8, Assists: 8, Appearances: 28},
	"LM":  {Goals: 6, Assists: 7, Appearances: 28},
	"RM":  {Goals: 6, Assists: 7, Appearances: 28},
	"LW":  {Goals: 10, Assists: 8, Appearances: 28},
	"RW":  {Goals: 10, Assists: 8, Appearances: 28},
	"ST":  {Goals: 15, Assists: 5, Appearances: 28},
	"CF":  {Goals: 14, Assists: 6, Appearances: 28},
}

// genericBenchmark is the midfield default for unrecognized positions.
var genericBenchmark = Benchmark{Goals: 4, Assists: 5, Appearances: 30}

// BenchmarkFor returns the benchmark for a position code, defaulting to the
// generic midfield benchmark.
func BenchmarkFor(position string) Benchmark {
	if b, ok := positionBenchmarks[position]; ok {
		return b
	}
	return genericBenchmark
}
