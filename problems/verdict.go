package problems

import "fmt"

// State is the tri-state outcome of verifying one (plugin, host) pair.
type State int

const (
	// StateNice: no problems survived filtering.
	StateNice State = iota

	// StateProblems: the plugin is structurally incompatible with the host.
	StateProblems

	// StateFailed: the tool could not verify the plugin. This says nothing
	// about the plugin's compatibility.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNice:
		return "nice"
	case StateProblems:
		return "problems"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Verdict is the final outcome for one (plugin, host) pair. Exactly one
// verdict exists per requested pair; immutable after creation.
type Verdict struct {
	Plugin string
	Host   string
	State  State

	// Problems is set only for StateProblems: sorted and deduplicated.
	Problems []Problem

	// FailureReason is set only for StateFailed.
	FailureReason string
}

// Nice builds a clean verdict.
func Nice(plugin, host string) Verdict {
	return Verdict{Plugin: plugin, Host: host, State: StateNice}
}

// WithProblems builds a verdict from a non-empty problem set. An empty set
// degrades to Nice so callers can compute the verdict in one place.
func WithProblems(plugin, host string, set *Set) Verdict {
	if set.Len() == 0 {
		return Nice(plugin, host)
	}
	return Verdict{
		Plugin:   plugin,
		Host:     host,
		State:    StateProblems,
		Problems: set.Slice(),
	}
}

// Failed builds a failed-to-verify verdict.
func Failed(plugin, host, reason string) Verdict {
	return Verdict{Plugin: plugin, Host: host, State: StateFailed, FailureReason: reason}
}

func (v Verdict) String() string {
	switch v.State {
	case StateProblems:
		return fmt.Sprintf("%s against %s: %d problems", v.Plugin, v.Host, len(v.Problems))
	case StateFailed:
		return fmt.Sprintf("%s against %s: failed to verify: %s", v.Plugin, v.Host, v.FailureReason)
	default:
		return fmt.Sprintf("%s against %s: nice", v.Plugin, v.Host)
	}
}
