package filter

import (
	"fmt"
	"regexp"
	"slices"
)

// Filter is an immutable compound filter over records of type T.
//
// A Filter holds a flat chain of comparators, connectives and nested
// filters. Builder methods never modify the receiver; each returns a new
// Filter with its own chain, so any Filter value can be shared freely.
//
// The zero value is the empty filter, which matches nothing.
type Filter[T any] struct {
	chain      []Member[T]
	serializer Serializer[T]
}

// Option configures a Filter at creation.
type Option[T any] func(*Filter[T])

// WithSerializer replaces DefaultSerializer for the created filter and
// every filter chained from it.
func WithSerializer[T any](s Serializer[T]) Option[T] {
	return func(f *Filter[T]) {
		f.serializer = s
	}
}

// New creates an empty filter.
func New[T any](opts ...Option[T]) Filter[T] {
	var f Filter[T]
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// FromDescriptor creates a filter holding a single comparator.
func FromDescriptor[T any](d Descriptor, opts ...Option[T]) (Filter[T], error) {
	c, err := comparatorFor[T](d)
	if err != nil {
		return Filter[T]{}, err
	}
	f := New(opts...)
	f.chain = []Member[T]{predicateMember[T](c)}
	return f, nil
}

// FromEntries creates a filter from a descriptor array. Nested arrays
// become nested sub-chains; adjacent predicates are joined by an implicit
// And, as with the builder methods.
func FromEntries[T any](entries DescriptorArray, opts ...Option[T]) (Filter[T], error) {
	chain, err := chainFromEntries[T](entries, "")
	if err != nil {
		return Filter[T]{}, err
	}
	f := New(opts...)
	f.chain = chain
	return f, nil
}

func chainFromEntries[T any](entries DescriptorArray, at string) ([]Member[T], error) {
	chain := make([]Member[T], 0, len(entries))
	for i, entry := range entries {
		loc := fmt.Sprintf("%s[%d]", at, i)

		var m Member[T]
		switch e := entry.(type) {
		case BooleanOp:
			if e != And && e != Or {
				return nil, fmt.Errorf("entry %s: unknown connective %d", loc, int(e))
			}
			chain = append(chain, connectiveMember[T](e))
			continue
		case Descriptor:
			c, err := comparatorFor[T](e)
			if err != nil {
				return nil, fmt.Errorf("entry %s: %w", loc, err)
			}
			m = predicateMember[T](c)
		case *Descriptor:
			if e == nil {
				return nil, fmt.Errorf("entry %s: nil descriptor", loc)
			}
			c, err := comparatorFor[T](*e)
			if err != nil {
				return nil, fmt.Errorf("entry %s: %w", loc, err)
			}
			m = predicateMember[T](c)
		case DescriptorArray:
			sub, err := chainFromEntries[T](e, loc)
			if err != nil {
				return nil, err
			}
			m = subChainMember(Filter[T]{chain: sub})
		default:
			return nil, fmt.Errorf("entry %s: unsupported descriptor entry %T", loc, entry)
		}

		if needsConnective(chain) {
			chain = append(chain, connectiveMember[T](And))
		}
		chain = append(chain, m)
	}
	return chain, nil
}

// comparatorFor adapts typed Custom predicates before delegating to
// CreateComparator.
func comparatorFor[T any](d Descriptor) (Comparator, error) {
	if d.FilterType == Custom {
		if fn, ok := d.Value.(func(T) bool); ok {
			return CreateComparator(Custom, typedPredicate(fn), d.Path)
		}
	}
	return CreateComparator(d.FilterType, d.Value, d.Path)
}

func typedPredicate[T any](fn func(T) bool) func(any) bool {
	if fn == nil {
		return nil
	}
	return func(v any) bool {
		item, ok := v.(T)
		return ok && fn(item)
	}
}

func needsConnective[T any](chain []Member[T]) bool {
	return len(chain) > 0 && chain[len(chain)-1].kind != MemberConnective
}

// FilterType is always Compound.
func (f Filter[T]) FilterType() FilterType {
	return Compound
}

// Len returns the number of chain members, connectives included.
func (f Filter[T]) Len() int {
	return len(f.chain)
}

// IsEmpty reports whether the chain has no members.
func (f Filter[T]) IsEmpty() bool {
	return len(f.chain) == 0
}

// Chain returns a copy of the chain.
func (f Filter[T]) Chain() []Member[T] {
	return slices.Clone(f.chain)
}

func (f Filter[T]) with(chain []Member[T]) Filter[T] {
	return Filter[T]{chain: chain, serializer: f.serializer}
}

// appendComparator adds c, inserting an implicit And unless the chain
// is empty or already ends in a connective.
func (f Filter[T]) appendComparator(c Comparator) Filter[T] {
	chain := make([]Member[T], 0, len(f.chain)+2)
	chain = append(chain, f.chain...)
	if needsConnective(chain) {
		chain = append(chain, connectiveMember[T](And))
	}
	chain = append(chain, predicateMember[T](c))
	return f.with(chain)
}

// And joins with And.
//
// Without arguments it appends an And connective so the next comparator
// call is ANDed; on an empty chain it returns an empty filter. With other
// filters it returns [f, And, other, ...] with every side nested.
func (f Filter[T]) And(others ...Filter[T]) Filter[T] {
	return f.join(And, others)
}

// Or joins with Or. See And.
func (f Filter[T]) Or(others ...Filter[T]) Filter[T] {
	return f.join(Or, others)
}

func (f Filter[T]) join(op BooleanOp, others []Filter[T]) Filter[T] {
	if len(others) == 0 {
		if len(f.chain) == 0 {
			return f.with(nil)
		}
		chain := make([]Member[T], 0, len(f.chain)+1)
		chain = append(chain, f.chain...)
		chain = append(chain, connectiveMember[T](op))
		return f.with(chain)
	}

	chain := make([]Member[T], 0, 2*len(others)+1)
	chain = append(chain, subChainMember(f))
	for _, other := range others {
		chain = append(chain, connectiveMember[T](op), subChainMember(other))
	}
	return f.with(chain)
}

// EqualTo matches when the property is strictly equal to v: numbers by
// value, maps and slices by identity.
func (f Filter[T]) EqualTo(path string, v any) Filter[T] {
	return f.appendComparator(newComparator(EqualTo, path, sameOperand{v: v}))
}

// NotEqualTo negates EqualTo.
func (f Filter[T]) NotEqualTo(path string, v any) Filter[T] {
	return f.appendComparator(newComparator(NotEqualTo, path, sameOperand{v: v, negate: true}))
}

// DeepEqualTo matches structurally equal properties.
func (f Filter[T]) DeepEqualTo(path string, v any) Filter[T] {
	return f.appendComparator(newComparator(DeepEqualTo, path, deepOperand{v: v}))
}

// NotDeepEqualTo negates DeepEqualTo.
func (f Filter[T]) NotDeepEqualTo(path string, v any) Filter[T] {
	return f.appendComparator(newComparator(NotDeepEqualTo, path, deepOperand{v: v, negate: true}))
}

func (f Filter[T]) LessThan(path string, v any) Filter[T] {
	return f.appendComparator(newComparator(LessThan, path, ordered(LessThan, v)))
}

func (f Filter[T]) LessThanOrEqualTo(path string, v any) Filter[T] {
	return f.appendComparator(newComparator(LessThanOrEqualTo, path, ordered(LessThanOrEqualTo, v)))
}

func (f Filter[T]) GreaterThan(path string, v any) Filter[T] {
	return f.appendComparator(newComparator(GreaterThan, path, ordered(GreaterThan, v)))
}

func (f Filter[T]) GreaterThanOrEqualTo(path string, v any) Filter[T] {
	return f.appendComparator(newComparator(GreaterThanOrEqualTo, path, ordered(GreaterThanOrEqualTo, v)))
}

// Contains matches a sequence property holding v, or a mapping property
// whose entry under key v is truthy.
func (f Filter[T]) Contains(path string, v any) Filter[T] {
	return f.appendComparator(newComparator(Contains, path, containsOperand{v: v}))
}

// In matches when the property is one of values.
func (f Filter[T]) In(path string, values []any) Filter[T] {
	return f.appendComparator(newComparator(In, path, inOperand{values: values, v: values}))
}

// Matches matches string properties against re. Matches filters cannot
// be serialized.
func (f Filter[T]) Matches(path string, re *regexp.Regexp) Filter[T] {
	return f.appendComparator(newComparator(Matches, path, matchOperand{re: re}))
}

// Custom matches records for which test returns true. Custom filters
// cannot be serialized.
func (f Filter[T]) Custom(test func(T) bool) Filter[T] {
	return f.appendComparator(newComparator(Custom, "", customOperand{fn: typedPredicate(test)}))
}
