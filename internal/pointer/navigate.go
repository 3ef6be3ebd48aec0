package pointer

import (
	"reflect"
	"strconv"
	"strings"
)

// Navigate walks item along p and returns the addressed value.
//
// Maps are indexed by key (string keys, or integer keys parsed from the
// segment), slices and arrays by decimal index, structs by `json` tag name
// and then by exported field name. Pointers and interfaces are followed.
// A missing key, an out-of-range index or a nil intermediate returns
// (nil, false).
func Navigate(p Pointer, item any) (any, bool) {
	current := item
	for _, seg := range p.segments {
		next, ok := step(current, seg)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// Lookup is Navigate without the presence flag. Missing values are nil.
func Lookup(p Pointer, item any) any {
	v, _ := Navigate(p, item)
	return v
}

func step(current any, seg string) (any, bool) {
	switch c := current.(type) {
	case nil:
		return nil, false
	case map[string]any:
		v, ok := c[seg]
		return v, ok
	case []any:
		i, ok := index(seg, len(c))
		if !ok {
			return nil, false
		}
		return c[i], true
	}
	return stepReflect(reflect.ValueOf(current), seg)
}

func stepReflect(v reflect.Value, seg string) (any, bool) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Map:
		key, ok := mapKey(v.Type().Key(), seg)
		if !ok {
			return nil, false
		}
		elem := v.MapIndex(key)
		if !elem.IsValid() {
			return nil, false
		}
		return elem.Interface(), true
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return nil, false
		}
		i, ok := index(seg, v.Len())
		if !ok {
			return nil, false
		}
		return v.Index(i).Interface(), true
	case reflect.Struct:
		field, ok := structField(v, seg)
		if !ok {
			return nil, false
		}
		return field.Interface(), true
	default:
		return nil, false
	}
}

func mapKey(keyType reflect.Type, seg string) (reflect.Value, bool) {
	switch keyType.Kind() {
	case reflect.String:
		return reflect.ValueOf(seg).Convert(keyType), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(seg, 10, keyType.Bits())
		if err != nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(n).Convert(keyType), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(seg, 10, keyType.Bits())
		if err != nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(n).Convert(keyType), true
	case reflect.Interface:
		if reflect.TypeOf(seg).Implements(keyType) {
			return reflect.ValueOf(seg), true
		}
	}
	return reflect.Value{}, false
}

func structField(v reflect.Value, seg string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name != "" && name == seg {
			return v.Field(i), true
		}
	}
	f, ok := t.FieldByName(seg)
	if !ok || !f.IsExported() {
		return reflect.Value{}, false
	}
	fv, err := v.FieldByIndexErr(f.Index)
	if err != nil {
		return reflect.Value{}, false
	}
	return fv, true
}

// index parses an RFC 6901 array index: decimal, no leading zeros.
func index(seg string, length int) (int, bool) {
	if seg == "" || (len(seg) > 1 && seg[0] == '0') {
		return 0, false
	}
	i, err := strconv.Atoi(seg)
	if err != nil || i < 0 || i >= length {
		return 0, false
	}
	return i, true
}
