package value

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

var timeType = reflect.TypeOf(time.Time{})

// number is a numeric value lifted out of its Go kind.
type number struct {
	kind numberKind
	i    int64
	u    uint64
	f    float64
}

type numberKind uint8

const (
	numInt numberKind = iota
	numUint
	numFloat
)

func (n number) float() float64 {
	switch n.kind {
	case numInt:
		return float64(n.i)
	case numUint:
		return float64(n.u)
	default:
		return n.f
	}
}

// asNumber recognizes every Go numeric kind plus json.Number.
func asNumber(v any) (number, bool) {
	switch n := v.(type) {
	case int:
		return number{kind: numInt, i: int64(n)}, true
	case int64:
		return number{kind: numInt, i: n}, true
	case float64:
		return number{kind: numFloat, f: n}, true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return number{kind: numInt, i: i}, true
		}
		f, err := strconv.ParseFloat(string(n), 64)
		if err != nil {
			return number{}, false
		}
		return number{kind: numFloat, f: f}, true
	case nil:
		return number{}, false
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return number{kind: numInt, i: rv.Int()}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return number{kind: numUint, u: rv.Uint()}, true
	case reflect.Float32, reflect.Float64:
		return number{kind: numFloat, f: rv.Float()}, true
	default:
		return number{}, false
	}
}

func compareNumbers(a, b number) (int, bool) {
	switch {
	case a.kind == numInt && b.kind == numInt:
		return cmpOrdered(a.i, b.i), true
	case a.kind == numUint && b.kind == numUint:
		return cmpOrdered(a.u, b.u), true
	case a.kind == numInt && b.kind == numUint:
		if a.i < 0 {
			return -1, true
		}
		return cmpOrdered(uint64(a.i), b.u), true
	case a.kind == numUint && b.kind == numInt:
		if b.i < 0 {
			return 1, true
		}
		return cmpOrdered(a.u, uint64(b.i)), true
	}
	af, bf := a.float(), b.float()
	if math.IsNaN(af) || math.IsNaN(bf) {
		return 0, false
	}
	return cmpOrdered(af, bf), true
}

func cmpOrdered[T int64 | uint64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func asString(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	if _, ok := v.(json.Number); ok {
		return "", false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

func asBool(v any) (bool, bool) {
	if b, ok := v.(bool); ok {
		return b, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Bool {
		return rv.Bool(), true
	}
	return false, false
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	}
	return time.Time{}, false
}

// isNil reports untyped nil and nil pointers, maps, slices and interfaces.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// NFC returns s in Unicode normalization form C. Strings compare, and
// appear in query strings, in this form.
func NFC(s string) string {
	return norm.NFC.String(s)
}

// Compare orders two values. ok is false when they have no common order
// (different kinds, composites, NaN, nil).
func Compare(a, b any) (int, bool) {
	if an, ok := asNumber(a); ok {
		bn, ok := asNumber(b)
		if !ok {
			return 0, false
		}
		return compareNumbers(an, bn)
	}
	if as, ok := asString(a); ok {
		bs, ok := asString(b)
		if !ok {
			return 0, false
		}
		return strings.Compare(NFC(as), NFC(bs)), true
	}
	if ab, ok := asBool(a); ok {
		bb, ok := asBool(b)
		if !ok {
			return 0, false
		}
		return cmpOrdered(boolInt(ab), boolInt(bb)), true
	}
	if at, ok := asTime(a); ok {
		bt, ok := asTime(b)
		if !ok {
			return 0, false
		}
		return at.Compare(bt), true
	}
	return 0, false
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// Same is strict equality. Scalars compare by value (numbers numerically),
// composites by identity: two distinct maps or slices with equal contents
// are not Same.
func Same(a, b any) bool {
	if isNil(a) || isNil(b) {
		return isNil(a) && isNil(b)
	}
	if at, ok := asTime(a); ok {
		bt, ok := asTime(b)
		return ok && at.Equal(bt)
	}
	if c, ok := Compare(a, b); ok {
		return c == 0
	}

	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	switch av.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return av.Type() == bv.Type() && av.Pointer() == bv.Pointer()
	case reflect.Slice:
		return av.Type() == bv.Type() && av.Len() == bv.Len() && av.Pointer() == bv.Pointer()
	}
	if av.Type() != bv.Type() || !av.Type().Comparable() {
		return false
	}
	return safeEqual(a, b)
}

// safeEqual compares comparable types whose fields may still hold
// incomparable dynamic values.
func safeEqual(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}

// Equal is structural equality.
func Equal(a, b any) bool {
	if isNil(a) || isNil(b) {
		return isNil(a) && isNil(b)
	}

	if as, ok := AsSlice(a); ok {
		bs, ok := AsSlice(b)
		if !ok || len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !Equal(as[i], bs[i]) {
				return false
			}
		}
		return true
	}

	if am, ok := asMapping(a); ok {
		bm, ok := asMapping(b)
		if !ok || len(am) != len(bm) {
			return false
		}
		for k, av := range am {
			bv, ok := bm[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	}

	if _, ok := asTime(a); ok {
		return Same(a, b)
	}
	if _, ok := Compare(a, b); ok {
		return Same(a, b)
	}
	return reflect.DeepEqual(a, b)
}

// AsSlice returns the elements of a slice or array value. Strings are not
// sequences.
func AsSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// asMapping returns map contents keyed by their string form.
func asMapping(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[keyString(iter.Key())] = iter.Value().Interface()
	}
	return out, true
}

func keyString(k reflect.Value) string {
	switch k.Kind() {
	case reflect.String:
		return k.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(k.Uint(), 10)
	default:
		b, err := json.Marshal(k.Interface())
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Truthy reports whether v counts as present: false, zero, NaN, the empty
// string and nil values do not.
func Truthy(v any) bool {
	if isNil(v) {
		return false
	}
	if n, ok := asNumber(v); ok {
		f := n.float()
		return f != 0 && !math.IsNaN(f)
	}
	if s, ok := asString(v); ok {
		return s != ""
	}
	if b, ok := asBool(v); ok {
		return b
	}
	return true
}
