// Package nlu is the boundary to the natural-language-understanding
// collaborator: the intent result shape and the query client.
package nlu

import "strings"

// Result is the structured output of the NLU service for one utterance.
// Created per inbound event and consumed once.
type Result struct {
	// ActionPath is the hierarchical action, e.g. ["skill","role","set"].
	ActionPath []string
	// Parameters are the extracted slot values.
	Parameters map[string]string
	// Incomplete means the NLU expects further user input before the
	// action is finalized.
	Incomplete bool
	// Contexts are free-form dialog tags, e.g. "ignore".
	Contexts []string
	// FallbackText is the human-readable reply when no structured
	// action applies.
	FallbackText string
}

// ActionAt returns the action path element at depth, or "".
func (r *Result) ActionAt(depth int) string {
	if depth < 0 || depth >= len(r.ActionPath) {
		return ""
	}
	return r.ActionPath[depth]
}

// ActionRoot returns the top-level action.
func (r *Result) ActionRoot() string { return r.ActionAt(0) }

// SkillKey derives the registry lookup key from the action path: the
// elements from depth 1 onward joined with ".". Pure in the path.
func (r *Result) SkillKey() string {
	if len(r.ActionPath) < 2 {
		return ""
	}
	return strings.Join(r.ActionPath[1:], ".")
}

// HasContext reports whether the tag is present in the result contexts.
func (r *Result) HasContext(name string) bool {
	for _, c := range r.Contexts {
		if c == name {
			return true
		}
	}
	return false
}

// Param returns a parameter value, or "".
func (r *Result) Param(name string) string {
	if r.Parameters == nil {
		return ""
	}
	return r.Parameters[name]
}
