package filter

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/roach88/rqlstore/internal/pointer"
	"github.com/roach88/rqlstore/internal/value"
)

// Comparator is a leaf predicate: one operator applied to the property a
// pointer addresses. Comparators are immutable and safe to share.
type Comparator struct {
	filterType FilterType
	path       pointer.Pointer
	operand    operand
}

// operand is the typed payload of a comparator. Each filter type owns one
// implementation holding exactly the operand shape it needs.
type operand interface {
	test(property any) bool
	raw() any
}

// ordered builds the operand for the four ordering operators.
func ordered(op FilterType, v any) orderedOperand {
	var accept func(c int) bool
	switch op {
	case LessThan:
		accept = func(c int) bool { return c < 0 }
	case LessThanOrEqualTo:
		accept = func(c int) bool { return c <= 0 }
	case GreaterThan:
		accept = func(c int) bool { return c > 0 }
	default:
		accept = func(c int) bool { return c >= 0 }
	}
	return orderedOperand{accept: accept, v: v}
}

type orderedOperand struct {
	accept func(c int) bool
	v      any
}

func (o orderedOperand) test(property any) bool {
	c, ok := value.Compare(property, o.v)
	return ok && o.accept(c)
}

func (o orderedOperand) raw() any { return o.v }

type sameOperand struct {
	v      any
	negate bool
}

func (o sameOperand) test(property any) bool {
	return value.Same(property, o.v) != o.negate
}

func (o sameOperand) raw() any { return o.v }

type deepOperand struct {
	v      any
	negate bool
}

func (o deepOperand) test(property any) bool {
	return value.Equal(property, o.v) != o.negate
}

func (o deepOperand) raw() any { return o.v }

// containsOperand tests sequence membership, or the truthiness of
// property[key] for mappings and structs.
type containsOperand struct {
	v any
}

func (o containsOperand) test(property any) bool {
	if elems, ok := value.AsSlice(property); ok {
		for _, e := range elems {
			if value.Same(e, o.v) {
				return true
			}
		}
		return false
	}
	if property == nil {
		return false
	}
	key, ok := keySegment(o.v)
	if !ok {
		return false
	}
	v, ok := pointer.Navigate(pointer.New(key), property)
	return ok && value.Truthy(v)
}

func (o containsOperand) raw() any { return o.v }

func keySegment(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	if _, ok := value.Compare(v, 0); ok {
		return value.MustString(v), true
	}
	return "", false
}

type inOperand struct {
	values []any
	v      any
}

func (o inOperand) test(property any) bool {
	for _, e := range o.values {
		if value.Same(property, e) {
			return true
		}
	}
	return false
}

func (o inOperand) raw() any { return o.v }

type matchOperand struct {
	re *regexp.Regexp
}

func (o matchOperand) test(property any) bool {
	if o.re == nil || property == nil {
		return false
	}
	if s, ok := property.(string); ok {
		return o.re.MatchString(s)
	}
	return o.re.MatchString(fmt.Sprint(property))
}

func (o matchOperand) raw() any { return o.re }

type customOperand struct {
	fn func(any) bool
}

func (o customOperand) test(property any) bool {
	return o.fn != nil && o.fn(property)
}

func (o customOperand) raw() any { return o.fn }

// CreateComparator builds a leaf predicate.
//
// path may be a pointer.Pointer, a string (see pointer.From) or nil for the
// record itself; it is resolved once here, not per evaluation.
//
// Operand shapes are checked: In needs a slice or array, Matches a
// *regexp.Regexp or a pattern string, Custom a func(any) bool. Anything
// else yields ErrMalformedOperand.
func CreateComparator(op FilterType, operandValue any, path any) (Comparator, error) {
	p, err := resolvePath(path)
	if err != nil {
		return Comparator{}, err
	}

	var o operand
	switch op {
	case LessThan, LessThanOrEqualTo, GreaterThan, GreaterThanOrEqualTo:
		o = ordered(op, operandValue)
	case EqualTo:
		o = sameOperand{v: operandValue}
	case NotEqualTo:
		o = sameOperand{v: operandValue, negate: true}
	case DeepEqualTo:
		o = deepOperand{v: operandValue}
	case NotDeepEqualTo:
		o = deepOperand{v: operandValue, negate: true}
	case Contains:
		o = containsOperand{v: operandValue}
	case In:
		values, ok := value.AsSlice(operandValue)
		if !ok {
			return Comparator{}, fmt.Errorf("%w: %s needs a sequence, got %T", ErrMalformedOperand, op, operandValue)
		}
		o = inOperand{values: values, v: operandValue}
	case Matches:
		re, err := asPattern(operandValue)
		if err != nil {
			return Comparator{}, err
		}
		o = matchOperand{re: re}
	case Custom:
		fn, ok := operandValue.(func(any) bool)
		if !ok {
			return Comparator{}, fmt.Errorf("%w: %s needs a func(any) bool, got %T", ErrMalformedOperand, op, operandValue)
		}
		o = customOperand{fn: fn}
	default:
		return Comparator{}, fmt.Errorf("%w: %s is not a comparator type", ErrMalformedOperand, op)
	}

	return Comparator{filterType: op, path: p, operand: o}, nil
}

func resolvePath(path any) (pointer.Pointer, error) {
	switch p := path.(type) {
	case nil:
		return pointer.Pointer{}, nil
	case pointer.Pointer:
		return p, nil
	case string:
		return pointer.From(p), nil
	default:
		rv := reflect.ValueOf(path)
		if rv.Kind() == reflect.String {
			return pointer.From(rv.String()), nil
		}
		return pointer.Pointer{}, fmt.Errorf("unsupported path type %T", path)
	}
}

func asPattern(v any) (*regexp.Regexp, error) {
	switch p := v.(type) {
	case *regexp.Regexp:
		if p == nil {
			return nil, fmt.Errorf("%w: %s needs a pattern, got nil", ErrMalformedOperand, Matches)
		}
		return p, nil
	case string:
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %s pattern %q: %v", ErrMalformedOperand, Matches, p, err)
		}
		return re, nil
	default:
		return nil, fmt.Errorf("%w: %s needs a pattern, got %T", ErrMalformedOperand, Matches, v)
	}
}

// newComparator is CreateComparator for operands the typed builder
// methods already guarantee.
func newComparator(op FilterType, path string, o operand) Comparator {
	return Comparator{filterType: op, path: pointer.From(path), operand: o}
}

// FilterType returns the comparator's operator.
func (c Comparator) FilterType() FilterType {
	return c.filterType
}

// Path returns the pointer to the tested property.
func (c Comparator) Path() pointer.Pointer {
	return c.path
}

// Value returns the operand as supplied: the comparison value, the
// compiled pattern for Matches, the predicate for Custom.
func (c Comparator) Value() any {
	if c.operand == nil {
		return nil
	}
	return c.operand.raw()
}

// Test navigates to the property and applies the operator. Missing
// properties are tested as nil.
func (c Comparator) Test(item any) bool {
	if c.operand == nil {
		return false
	}
	property, _ := pointer.Navigate(c.path, item)
	return c.operand.test(property)
}

// Apply returns the items that pass Test, in order.
func (c Comparator) Apply(items []any) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		if c.Test(item) {
			out = append(out, item)
		}
	}
	return out
}

// Serialize renders the comparator as tag(pointer, json-value).
func (c Comparator) Serialize() (string, error) {
	tag, ok := c.filterType.Tag()
	if !ok {
		return "", fmt.Errorf("%w: %s comparator has no query form", ErrUnserializable, c.filterType)
	}
	operandJSON, err := value.Marshal(c.Value())
	if err != nil {
		return "", fmt.Errorf("serialize %s operand: %w", c.filterType, err)
	}
	return fmt.Sprintf("%s(%s, %s)", tag, c.path.String(), operandJSON), nil
}

// String implements fmt.Stringer. Unserializable comparators render the
// error text.
func (c Comparator) String() string {
	s, err := c.Serialize()
	if err != nil {
		return "!(" + err.Error() + ")"
	}
	return s
}
