package queryir

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/roach88/rqlstore/internal/filter"
	"github.com/roach88/rqlstore/internal/value"
)

// typeNames maps normalized type names to filter types. Both query-string
// tags (lt, eq, ...) and full names (lessThan, deepEqualTo, ...) are
// accepted.
var typeNames = map[string]filter.FilterType{
	"lt":                   filter.LessThan,
	"lessthan":             filter.LessThan,
	"lte":                  filter.LessThanOrEqualTo,
	"lessthanorequalto":    filter.LessThanOrEqualTo,
	"gt":                   filter.GreaterThan,
	"greaterthan":          filter.GreaterThan,
	"gte":                  filter.GreaterThanOrEqualTo,
	"greaterthanorequalto": filter.GreaterThanOrEqualTo,
	"eq":                   filter.EqualTo,
	"equalto":              filter.EqualTo,
	"ne":                   filter.NotEqualTo,
	"notequalto":           filter.NotEqualTo,
	"deepeq":               filter.DeepEqualTo,
	"deepequalto":          filter.DeepEqualTo,
	"deepne":               filter.NotDeepEqualTo,
	"notdeepequalto":       filter.NotDeepEqualTo,
	"in":                   filter.In,
	"contains":             filter.Contains,
	"matches":              filter.Matches,
	"custom":               filter.Custom,
}

var nameNormalizer = strings.NewReplacer("_", "", "-", "", " ", "")

// ParseType resolves a leaf type name.
func ParseType(name string) (filter.FilterType, bool) {
	t, ok := typeNames[strings.ToLower(nameNormalizer.Replace(name))]
	return t, ok
}

// leafFields is the shape of a leaf map.
type leafFields struct {
	Type  string `mapstructure:"type"`
	Path  string `mapstructure:"path"`
	Value any    `mapstructure:"value"`
	Expr  string `mapstructure:"expr"`
}

// Decode converts generic decoded data (the output of encoding/json,
// yaml.v3 or cue.Value.Decode into an any) into a filter group.
//
// raw may be a list of nodes, a single leaf map, or nil for an empty
// filter.
func Decode(raw any) (Group, error) {
	switch r := raw.(type) {
	case nil:
		return Group{}, nil
	case []any:
		return decodeGroup(r, "filter")
	case map[string]any:
		leaf, err := decodeLeaf(r, "filter")
		if err != nil {
			return Group{}, err
		}
		return Group{Nodes: []Node{leaf}}, nil
	default:
		return Group{}, &DecodeError{
			Code:    CodeInvalidNode,
			Path:    "filter",
			Message: fmt.Sprintf("expected a list or a leaf object, got %T", raw),
		}
	}
}

func decodeGroup(items []any, at string) (Group, error) {
	g := Group{Nodes: make([]Node, 0, len(items))}
	for i, item := range items {
		n, err := decodeNode(item, fmt.Sprintf("%s[%d]", at, i))
		if err != nil {
			return Group{}, err
		}
		g.Nodes = append(g.Nodes, n)
	}
	return g, nil
}

func decodeNode(item any, at string) (Node, error) {
	switch it := item.(type) {
	case string:
		op, ok := parseConnective(it)
		if !ok {
			return nil, &DecodeError{
				Code:    CodeInvalidNode,
				Path:    at,
				Message: fmt.Sprintf("unknown connective %q (want and, or, & or |)", it),
			}
		}
		return Connective{Op: op}, nil
	case []any:
		return decodeGroup(it, at)
	case map[string]any:
		return decodeLeaf(it, at)
	default:
		return nil, &DecodeError{
			Code:    CodeInvalidNode,
			Path:    at,
			Message: fmt.Sprintf("expected a leaf object, a connective or a list, got %T", item),
		}
	}
}

func parseConnective(s string) (filter.BooleanOp, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "and", "&":
		return filter.And, true
	case "or", "|":
		return filter.Or, true
	default:
		return 0, false
	}
}

func decodeLeaf(m map[string]any, at string) (Leaf, error) {
	var fields leafFields
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      &fields,
	})
	if err != nil {
		return Leaf{}, err
	}
	if err := dec.Decode(m); err != nil {
		return Leaf{}, &DecodeError{Code: CodeInvalidField, Path: at, Message: err.Error()}
	}

	if fields.Type == "" {
		return Leaf{}, &DecodeError{Code: CodeMissingField, Path: at + ".type", Message: "leaf has no type"}
	}
	t, ok := ParseType(fields.Type)
	if !ok {
		return Leaf{}, &DecodeError{
			Code:    CodeUnknownType,
			Path:    at + ".type",
			Message: fmt.Sprintf("unknown filter type %q", fields.Type),
		}
	}

	leaf := Leaf{Type: t, Path: fields.Path, Value: fields.Value, Expr: fields.Expr}
	if err := checkLeaf(leaf, m, at); err != nil {
		return Leaf{}, err
	}
	return leaf, nil
}

// checkLeaf verifies operand shapes so that Build only fails on leaves
// constructed by hand.
func checkLeaf(leaf Leaf, m map[string]any, at string) error {
	if leaf.Type == filter.Custom {
		if leaf.Expr == "" {
			return &DecodeError{Code: CodeMissingField, Path: at + ".expr", Message: "custom leaf has no expr"}
		}
		if _, err := compileExpr(leaf.Expr); err != nil {
			return &DecodeError{Code: CodeInvalidExpr, Path: at + ".expr", Message: err.Error()}
		}
		return nil
	}

	if leaf.Expr != "" {
		return &DecodeError{
			Code:    CodeInvalidField,
			Path:    at + ".expr",
			Message: fmt.Sprintf("expr is only valid on custom leaves, not %s", leaf.Type),
		}
	}
	if _, ok := m["value"]; !ok {
		return &DecodeError{Code: CodeMissingField, Path: at + ".value", Message: "leaf has no value"}
	}

	switch leaf.Type {
	case filter.In:
		if _, ok := value.AsSlice(leaf.Value); !ok {
			return &DecodeError{
				Code:    CodeInvalidField,
				Path:    at + ".value",
				Message: fmt.Sprintf("in needs a list, got %T", leaf.Value),
			}
		}
	case filter.Matches:
		pattern, ok := leaf.Value.(string)
		if !ok {
			return &DecodeError{
				Code:    CodeInvalidField,
				Path:    at + ".value",
				Message: fmt.Sprintf("matches needs a pattern string, got %T", leaf.Value),
			}
		}
		if _, err := regexp.Compile(pattern); err != nil {
			return &DecodeError{Code: CodeInvalidField, Path: at + ".value", Message: err.Error()}
		}
	}
	return nil
}
