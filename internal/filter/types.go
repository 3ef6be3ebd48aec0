package filter

import "fmt"

// FilterType identifies the kind of a filter node.
type FilterType int

const (
	LessThan FilterType = iota
	GreaterThan
	EqualTo
	DeepEqualTo
	In
	Contains
	NotEqualTo
	NotDeepEqualTo
	LessThanOrEqualTo
	GreaterThanOrEqualTo
	Matches
	Custom
	Compound
)

var filterTypeNames = [...]string{
	LessThan:             "LessThan",
	GreaterThan:          "GreaterThan",
	EqualTo:              "EqualTo",
	DeepEqualTo:          "DeepEqualTo",
	In:                   "In",
	Contains:             "Contains",
	NotEqualTo:           "NotEqualTo",
	NotDeepEqualTo:       "NotDeepEqualTo",
	LessThanOrEqualTo:    "LessThanOrEqualTo",
	GreaterThanOrEqualTo: "GreaterThanOrEqualTo",
	Matches:              "Matches",
	Custom:               "Custom",
	Compound:             "Compound",
}

func (t FilterType) String() string {
	if t >= 0 && int(t) < len(filterTypeNames) {
		return filterTypeNames[t]
	}
	return fmt.Sprintf("FilterType(%d)", int(t))
}

// Tag returns the query-string operator for t. Matches, Custom and
// Compound have none.
func (t FilterType) Tag() (string, bool) {
	switch t {
	case LessThan:
		return "lt", true
	case LessThanOrEqualTo:
		return "lte", true
	case GreaterThan:
		return "gt", true
	case GreaterThanOrEqualTo:
		return "gte", true
	case EqualTo, DeepEqualTo:
		return "eq", true
	case NotEqualTo, NotDeepEqualTo:
		return "ne", true
	case Contains:
		return "contains", true
	case In:
		return "in", true
	default:
		return "", false
	}
}

// BooleanOp joins sibling chain members.
type BooleanOp int

const (
	And BooleanOp = iota
	Or
)

func (op BooleanOp) String() string {
	switch op {
	case And:
		return "And"
	case Or:
		return "Or"
	default:
		return fmt.Sprintf("BooleanOp(%d)", int(op))
	}
}

// Descriptor declares a single comparator.
//
// Path is "" for the record itself, a field name ("age"), or RFC 6901
// text ("/address/city"). Value is the operand: a []any for In, a
// *regexp.Regexp or pattern string for Matches, a func(any) bool or
// func(T) bool for Custom.
type Descriptor struct {
	FilterType FilterType
	Path       string
	Value      any
}

// DescriptorEntry is a member of a DescriptorArray.
//
// This is a sealed interface: only Descriptor, BooleanOp and
// DescriptorArray implement it.
type DescriptorEntry interface {
	descriptorEntry()
}

// DescriptorArray declares a chain. Nested arrays become nested
// sub-chains.
type DescriptorArray []DescriptorEntry

func (Descriptor) descriptorEntry()      {}
func (BooleanOp) descriptorEntry()       {}
func (DescriptorArray) descriptorEntry() {}

// MemberKind tags a chain member.
type MemberKind uint8

const (
	MemberPredicate MemberKind = iota
	MemberConnective
	MemberSubChain
)

// Member is one entry of a filter chain: a comparator, a connective or a
// nested filter. Exactly one of the payloads is set, selected by Kind.
type Member[T any] struct {
	kind MemberKind
	leaf Comparator
	op   BooleanOp
	sub  *Filter[T]
}

func predicateMember[T any](c Comparator) Member[T] {
	return Member[T]{kind: MemberPredicate, leaf: c}
}

func connectiveMember[T any](op BooleanOp) Member[T] {
	return Member[T]{kind: MemberConnective, op: op}
}

func subChainMember[T any](f Filter[T]) Member[T] {
	return Member[T]{kind: MemberSubChain, sub: &f}
}

// Kind reports which payload the member carries.
func (m Member[T]) Kind() MemberKind {
	return m.kind
}

// Comparator returns the leaf of a predicate member.
func (m Member[T]) Comparator() (Comparator, bool) {
	return m.leaf, m.kind == MemberPredicate
}

// Op returns the connective of a connective member.
func (m Member[T]) Op() (BooleanOp, bool) {
	return m.op, m.kind == MemberConnective
}

// Sub returns the nested filter of a sub-chain member.
func (m Member[T]) Sub() (Filter[T], bool) {
	if m.kind != MemberSubChain || m.sub == nil {
		return Filter[T]{}, false
	}
	return *m.sub, true
}

func (m Member[T]) test(item T) bool {
	switch m.kind {
	case MemberPredicate:
		return m.leaf.Test(item)
	case MemberSubChain:
		return m.sub.Test(item)
	default:
		return true
	}
}
