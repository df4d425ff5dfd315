package domain

import "fmt"

// Stage is one state of a sentinel run
type Stage string

// run stages, in their only possible order
const (
	StageTransaction Stage = "transaction"
	StageRegulatory  Stage = "regulatory"
	StageAlert       Stage = "alert"
	StageDone        Stage = "done"
)

// DefaultThreshold is the score at which the regulatory stage runs
const DefaultThreshold = 0.65

// edge is one transition; a nil guard always holds
type edge struct {
	to    Stage
	guard func(score, threshold float64) bool
}

func escalates(score, threshold float64) bool { return score >= threshold }

// transitions is the run's state machine; edges are tried in order
var transitions = map[Stage][]edge{
	StageTransaction: {{to: StageRegulatory, guard: escalates}, {to: StageAlert}},
	StageRegulatory:  {{to: StageAlert}},
	StageAlert:       {{to: StageDone}},
}

// Next returns the first successor of from whose guard holds for score.
// Stages without successors lead to done
func Next(from Stage, score, threshold float64) Stage {
	for _, e := range transitions[from] {
		if e.guard == nil || e.guard(score, threshold) {
			return e.to
		}
	}
	return StageDone
}

// CanTransition reports whether to is a legal successor of from
func CanTransition(from, to Stage) bool {
	for _, e := range transitions[from] {
		if e.to == to {
			return true
		}
	}
	return false
}

// Validate checks a path against the transition table
func Validate(path []Stage) error {
	if len(path) == 0 || path[0] != StageTransaction {
		return fmt.Errorf("sentinel: path must start at %s", StageTransaction)
	}
	for i := 1; i < len(path); i++ {
		if !CanTransition(path[i-1], path[i]) {
			return fmt.Errorf("sentinel: illegal transition %s -> %s", path[i-1], path[i])
		}
	}
	return nil
}
