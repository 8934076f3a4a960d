// Package report renders and persists verification results.
package report

import (
	"fmt"
	"io"

	"pluginverify/problems"
)

// Render writes a human-readable summary of the verdicts: one block per
// plugin, problems grouped by kind.
func Render(w io.Writer, verdicts []problems.Verdict) error {
	for i, v := range verdicts {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := renderVerdict(w, v); err != nil {
			return err
		}
	}
	return nil
}

func renderVerdict(w io.Writer, v problems.Verdict) error {
	switch v.State {
	case problems.StateNice:
		_, err := fmt.Fprintf(w, "%s against %s: compatible\n", v.Plugin, v.Host)
		return err

	case problems.StateFailed:
		_, err := fmt.Fprintf(w, "%s against %s: failed to verify\n  %s\n", v.Plugin, v.Host, v.FailureReason)
		return err

	default:
		if _, err := fmt.Fprintf(w, "%s against %s: %d problems\n", v.Plugin, v.Host, len(v.Problems)); err != nil {
			return err
		}
		// Verdict problems are sorted by kind, then description.
		var lastKind problems.Kind
		for _, p := range v.Problems {
			if p.Kind() != lastKind {
				lastKind = p.Kind()
				if _, err := fmt.Fprintf(w, "  %s:\n", lastKind); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w, "    %s\n", p.Description()); err != nil {
				return err
			}
		}
		return nil
	}
}

// Summarize returns a one-line tally of the run.
func Summarize(verdicts []problems.Verdict) string {
	var nice, broken, failed int
	for _, v := range verdicts {
		switch v.State {
		case problems.StateNice:
			nice++
		case problems.StateProblems:
			broken++
		case problems.StateFailed:
			failed++
		}
	}
	return fmt.Sprintf("%d compatible, %d with problems, %d failed to verify", nice, broken, failed)
}
