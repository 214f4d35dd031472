package complexity

// StrategyClass partitions queries into execution strategies.
type StrategyClass string

const (
	StrategySimple  StrategyClass = "simple"
	StrategyMedium  StrategyClass = "medium"
	StrategyComplex StrategyClass = "complex"
)

// Score thresholds partitioning the complexity scale. A score below
// mediumThreshold is simple, below complexThreshold is medium, anything
// else is complex.
const (
	mediumThreshold  = 3.0
	complexThreshold = 6.0
)

// Parallelism budgets per strategy class.
const (
	simpleParallelSteps  = 1
	mediumParallelSteps  = 3
	complexParallelSteps = 8
)

// ExecutionStrategy is the concurrency and refinement budget derived from a
// complexity score.
type ExecutionStrategy struct {
	Strategy         StrategyClass `json:"strategy"`
	MaxParallelSteps int           `json:"maxParallelSteps"`
	// ExtraRefinements is added to the configured refinement bound for
	// complex queries, which tend to need more correction rounds.
	ExtraRefinements int `json:"extraRefinements"`
}

// StrategyFor maps a complexity score onto an execution strategy via the
// fixed thresholds. Like the analyzer itself it is pure and total.
func StrategyFor(score Score) ExecutionStrategy {
	switch {
	case score.Value < mediumThreshold:
		return ExecutionStrategy{Strategy: StrategySimple, MaxParallelSteps: simpleParallelSteps}
	case score.Value < complexThreshold:
		return ExecutionStrategy{Strategy: StrategyMedium, MaxParallelSteps: mediumParallelSteps}
	default:
		return ExecutionStrategy{Strategy: StrategyComplex, MaxParallelSteps: complexParallelSteps, ExtraRefinements: 1}
	}
}
