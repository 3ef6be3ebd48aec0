package filter

import "errors"

var (
	// ErrUnserializable is returned when a filter holds a comparator with no
	// query-string form (Matches, Custom). Callers that need a query string
	// must avoid those or supply a Serializer that handles them.
	ErrUnserializable = errors.New("cannot serialize filter to a query string")

	// ErrMalformedOperand is returned when an operand cannot take the shape
	// its filter type requires.
	ErrMalformedOperand = errors.New("malformed operand")
)
