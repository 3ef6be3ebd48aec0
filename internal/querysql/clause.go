package querysql

import "strings"

// clause is a SQL boolean expression with its positional parameters.
type clause struct {
	sql    string
	params []any
}

var (
	alwaysTrue  = clause{sql: "1"}
	alwaysFalse = clause{sql: "0"}
)

// allOf joins clauses with AND. No clauses is true.
func allOf(cs ...clause) clause {
	return join(cs, " AND ", alwaysTrue)
}

// anyOf joins clauses with OR. No clauses is false.
func anyOf(cs ...clause) clause {
	return join(cs, " OR ", alwaysFalse)
}

func join(cs []clause, sep string, empty clause) clause {
	switch len(cs) {
	case 0:
		return empty
	case 1:
		return cs[0]
	}
	parts := make([]string, 0, len(cs))
	var params []any
	for _, c := range cs {
		parts = append(parts, c.sql)
		params = append(params, c.params...)
	}
	return clause{sql: "(" + strings.Join(parts, sep) + ")", params: params}
}

func not(c clause) clause {
	return clause{sql: "(NOT " + c.sql + ")", params: c.params}
}

// ref addresses a JSON value: a path into the document column, or the
// current row of json_each.
type ref struct {
	typ  string // SQL expression yielding the json_type
	val  string // SQL expression yielding the SQL value
	args []any  // parameters of typ and val, each
}

func docRef(column, jsonPath string) ref {
	return ref{
		typ:  "json_type(" + column + ", ?)",
		val:  "json_extract(" + column + ", ?)",
		args: []any{jsonPath},
	}
}

var eachRef = ref{typ: "je.type", val: "je.value"}

// typeIn tests the JSON type. Missing values count as null.
func (r ref) typeIn(types ...string) clause {
	params := append([]any{}, r.args...)
	marks := make([]string, len(types))
	for i, t := range types {
		marks[i] = "?"
		params = append(params, t)
	}
	return clause{
		sql:    "COALESCE(" + r.typ + ", 'null') IN (" + strings.Join(marks, ", ") + ")",
		params: params,
	}
}

func (r ref) cmp(op string, v any) clause {
	params := append(append([]any{}, r.args...), v)
	return clause{sql: r.val + " " + op + " ?", params: params}
}
