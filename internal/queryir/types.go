package queryir

import (
	"fmt"

	"github.com/roach88/rqlstore/internal/filter"
)

// Node is one entry of a filter document.
//
// This is a sealed interface - only Leaf, Connective and Group implement it.
type Node interface {
	node() // Marker method - seals interface to this package
}

// Leaf is a single comparison.
//
// Example:
//
//	Leaf{Type: filter.GreaterThan, Path: "/age", Value: 21}
//
// Custom leaves carry an Expr instead of a Value. The expression sees the
// navigated property as value and, when the property is an object, its
// keys as variables:
//
//	Leaf{Type: filter.Custom, Path: "/owner", Expr: `value.name == "bob" || admin`}
type Leaf struct {
	Type  filter.FilterType
	Path  string
	Value any
	Expr  string
}

func (Leaf) node() {}

// Connective joins the nodes around it.
type Connective struct {
	Op filter.BooleanOp
}

func (Connective) node() {}

// Group is an ordered list of nodes. Adjacent non-connective nodes are
// joined with an implicit And. Nested groups keep their own precedence.
type Group struct {
	Nodes []Node
}

func (Group) node() {}

// Document is a decoded filter file.
type Document struct {
	Filter Group
	Source string // file the document was loaded from, if any
}

// Error codes for decode failures.
const (
	CodeInvalidNode  = "E_INVALID_NODE"
	CodeUnknownType  = "E_UNKNOWN_TYPE"
	CodeInvalidField = "E_INVALID_FIELD"
	CodeInvalidExpr  = "E_INVALID_EXPR"
	CodeMissingField = "E_MISSING_FIELD"
)

// DecodeError reports where a document could not be decoded.
type DecodeError struct {
	Code    string
	Path    string // location within the document, e.g. filter[2].type
	Message string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s at %s: %s", e.Code, e.Path, e.Message)
}
