package verify

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"pluginverify/problems"
	"pluginverify/resolver"
)

// Filter inspects one candidate problem and may veto its inclusion. Filters
// are pure predicates: they never add problems, and running a chain twice
// over an already-filtered set yields the same set.
type Filter interface {
	Keep(p problems.Problem, ctx *ResolutionContext) bool
}

// ApplyFilters runs the configured filter chains in order over a raw
// problem set and returns the surviving set. A veto by any filter in any
// chain removes the problem.
func ApplyFilters(raw *problems.Set, ctx *ResolutionContext, chains ...[]Filter) *problems.Set {
	out := problems.NewSet()
	for _, p := range raw.Slice() {
		keep := true
		for _, chain := range chains {
			for _, f := range chain {
				if !f.Keep(p, ctx) {
					keep = false
					break
				}
			}
			if !keep {
				break
			}
		}
		if keep {
			out.Add(p)
		}
	}
	return out
}

// IgnoreRule suppresses problems by plugin id, problem kind, and/or a
// description substring. Empty fields match anything.
type IgnoreRule struct {
	Plugin   string `yaml:"plugin"`
	Kind     string `yaml:"kind"`
	Contains string `yaml:"contains"`
}

func (r IgnoreRule) matches(pluginID string, p problems.Problem) bool {
	if r.Plugin != "" && r.Plugin != pluginID {
		return false
	}
	if r.Kind != "" && r.Kind != string(p.Kind()) {
		return false
	}
	if r.Contains != "" && !strings.Contains(p.Description(), r.Contains) {
		return false
	}
	return true
}

// IgnoredProblems vetoes problems matched by any rule.
type IgnoredProblems struct {
	Rules []IgnoreRule
}

func (f IgnoredProblems) Keep(p problems.Problem, ctx *ResolutionContext) bool {
	for _, r := range f.Rules {
		if r.matches(ctx.PluginID, p) {
			return false
		}
	}
	return true
}

// LoadIgnoreRules reads an ignore-rules YAML file: a list of rule mappings.
func LoadIgnoreRules(path string) ([]IgnoreRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ignore rules: %w", err)
	}
	var rules []IgnoreRule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	return rules, nil
}

// AllowExternal vetoes problems whose target falls under the external
// allow-list. Resolution already skips external references; this covers
// problems constructed before the prefix configuration applied.
type AllowExternal struct{}

func (AllowExternal) Keep(p problems.Problem, ctx *ResolutionContext) bool {
	return !ctx.IsExternal(p.TargetClass())
}

// AllowExperimental vetoes problems whose target class is marked
// experimental: usage of such APIs is accepted by policy.
type AllowExperimental struct{}

func (AllowExperimental) Keep(p problems.Problem, ctx *ResolutionContext) bool {
	cf, err := ctx.Resolve(p.TargetClass())
	if err != nil {
		if !errors.Is(err, resolver.ErrNotFound) {
			log.Debugf("filter: resolving %s: %v", p.TargetClass(), err)
		}
		return true
	}
	return !cf.Experimental
}
