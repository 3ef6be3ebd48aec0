// Package value defines how filter operands and record properties relate.
//
// Records are arbitrary Go values: decoded JSON (map[string]any, []any,
// float64), typed maps and slices, structs. This package gives them the
// loose value semantics the query dialect expects:
//
//   - Same: strict equality. Numbers compare numerically across Go numeric
//     kinds, strings and bools by value, maps/slices/pointers by identity.
//   - Equal: structural equality. Sequences element-wise, mappings key-wise.
//   - Compare: ordering for numbers, strings, bools and time.Time.
//   - Truthy: the truthiness test used by key-presence checks.
//   - Marshal: JSON text of an operand for query strings, with object keys in
//     RFC 8785 order, NFC-normalized strings and no HTML escaping.
//
// Values that do not fit a relation (a string against a number, a struct
// against a map) are simply unrelated: Same and Equal report false and
// Compare reports ok=false. Nothing here panics on mismatched input.
package value
