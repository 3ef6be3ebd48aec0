package queryir

import (
	"fmt"

	"github.com/roach88/rqlstore/internal/filter"
)

// ValidationResult contains portability analysis of a filter document.
//
// A portable document serializes to a query string and compiles to SQL.
// Non-portable documents still evaluate in memory.
type ValidationResult struct {
	// IsPortable indicates the document has no in-memory-only leaves and
	// no suspicious connective placement.
	IsPortable bool

	// Warnings lists every finding, with its location.
	Warnings []string
}

// Validate checks a group for features outside the portable fragment:
//  1. matches and custom leaves have no query string form
//  2. a leading, trailing or doubled connective is ignored or makes an
//     empty segment that always holds
//  3. an empty group never matches
//
// Validate is a pure function with no side effects.
func Validate(g Group) ValidationResult {
	v := &validator{
		warnings: []string{},
	}
	v.validateGroup(g, "filter")

	return ValidationResult{
		IsPortable: len(v.warnings) == 0,
		Warnings:   v.warnings,
	}
}

// validator accumulates warnings during traversal.
type validator struct {
	warnings []string
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validateGroup(g Group, at string) {
	if len(g.Nodes) == 0 {
		if at != "filter" {
			v.addWarning("%s: empty group never matches", at)
		}
		return
	}

	prevConnective := true // a connective in first position is leading
	for i, n := range g.Nodes {
		loc := fmt.Sprintf("%s[%d]", at, i)

		switch node := n.(type) {
		case Leaf:
			v.validateLeaf(node, loc)
			prevConnective = false
		case Group:
			v.validateGroup(node, loc)
			prevConnective = false
		case Connective:
			switch {
			case i == 0:
				v.addWarning("%s: leading %s has no left operand", loc, node.Op)
			case prevConnective:
				v.addWarning("%s: doubled connective %s makes an empty segment", loc, node.Op)
			case i == len(g.Nodes)-1:
				v.addWarning("%s: trailing %s is ignored", loc, node.Op)
			}
			prevConnective = true
		case nil:
			v.addWarning("%s: nil node - portability cannot be verified", loc)
		default:
			v.addWarning("%s: unknown node type %T - portability cannot be verified", loc, n)
		}
	}
}

func (v *validator) validateLeaf(leaf Leaf, at string) {
	switch leaf.Type {
	case filter.Matches, filter.Custom:
		v.addWarning("%s: %s on '%s' has no query string form", at, leaf.Type, leaf.Path)
	case filter.Compound:
		v.addWarning("%s: %s is not a leaf type", at, leaf.Type)
	}
}
