// Package queryir provides a declarative representation of record filters.
//
// A filter document is a tree of nodes decoded from JSON, YAML or CUE:
//
//	filter:
//	  - {type: gte, path: /age, value: 18}
//	  - {type: lt, path: /age, value: 65}
//	  - or
//	  - - {type: eq, path: /role, value: admin}
//	    - {type: custom, path: /tags, expr: "len(value) > 2"}
//
// Leaves are maps with a type, a path and a value (or expr for custom
// leaves). Connectives are the strings "and" and "or" ("&" and "|" are
// accepted). A nested list is a group and becomes a nested filter.
//
// SEALED INTERFACES:
//
// Node is a sealed interface using the marker method pattern. Only Leaf,
// Connective and Group implement it, so backends can switch exhaustively:
//
//	switch n := node.(type) {
//	case Leaf:
//	case Connective:
//	case Group:
//	}
//
// PORTABILITY:
//
// Validate reports features that evaluate in memory but have no query
// string or SQL form (matches, custom) and connective placement that
// evaluates surprisingly (leading, trailing or doubled connectives).
// Non-portable documents still Build and evaluate correctly.
package queryir
