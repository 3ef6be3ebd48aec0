package filter

import (
	"fmt"
	"strings"
)

// Serializer renders a filter as a query string.
type Serializer[T any] func(Filter[T]) (string, error)

// DefaultSerializer renders the RQL-like dialect:
//
//	eq(/name, "bob")&gt(/age, 21)|(lt(/age, 3)&ne(/name, null))
//
// Members are joined by & or |, whichever connective came last (& before
// any). There is never a leading or trailing join. Nested filters are
// wrapped in parentheses; empty nested filters are skipped.
func DefaultSerializer[T any](f Filter[T]) (string, error) {
	var b strings.Builder
	operator := "&"
	for i, m := range f.chain {
		var part string
		switch m.kind {
		case MemberConnective:
			if m.op == Or {
				operator = "|"
			} else {
				operator = "&"
			}
			continue
		case MemberPredicate:
			s, err := m.leaf.Serialize()
			if err != nil {
				return "", fmt.Errorf("member %d: %w", i, err)
			}
			part = s
		case MemberSubChain:
			s, err := m.sub.Serialize()
			if err != nil {
				return "", fmt.Errorf("member %d: %w", i, err)
			}
			if s == "" {
				continue
			}
			part = "(" + s + ")"
		}

		if b.Len() > 0 {
			b.WriteString(operator)
		}
		b.WriteString(part)
	}
	return b.String(), nil
}

// Serialize renders f with the first override if given, else the
// serializer f was created with, else DefaultSerializer.
func (f Filter[T]) Serialize(override ...Serializer[T]) (string, error) {
	s := f.serializer
	if len(override) > 0 && override[0] != nil {
		s = override[0]
	}
	if s == nil {
		return DefaultSerializer(f)
	}
	return s(f)
}

// String implements fmt.Stringer. Unserializable filters render the error
// text.
func (f Filter[T]) String() string {
	s, err := f.Serialize()
	if err != nil {
		return "!(" + err.Error() + ")"
	}
	return s
}
