package querysql

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/roach88/rqlstore/internal/filter"
	"github.com/roach88/rqlstore/internal/pointer"
	"github.com/roach88/rqlstore/internal/value"
)

// ErrUnsupported reports a filter member with no SQL form.
var ErrUnsupported = errors.New("no SQL form")

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLCompiler compiles filters to parameterized SQLite over a table of
// JSON documents.
//
// CRITICAL: All operand values are parameterized, never interpolated.
// Only the configured identifiers appear in the SQL text.
type SQLCompiler struct {
	Table     string // defaults to "records"
	IDColumn  string // defaults to "id"
	DocColumn string // defaults to "doc", TEXT holding one JSON object
}

// NewSQLCompiler creates a compiler with the default table layout.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{
		Table:     "records",
		IDColumn:  "id",
		DocColumn: "doc",
	}
}

func (c *SQLCompiler) check() error {
	for _, name := range []string{c.Table, c.IDColumn, c.DocColumn} {
		if !identifier.MatchString(name) {
			return fmt.Errorf("invalid SQL identifier %q", name)
		}
	}
	return nil
}

// CreateTable returns the DDL for the table the compiler targets.
func (c *SQLCompiler) CreateTable() (string, error) {
	if err := c.check(); err != nil {
		return "", err
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s TEXT PRIMARY KEY, %s TEXT NOT NULL CHECK (json_valid(%s)))",
		c.Table, c.IDColumn, c.DocColumn, c.DocColumn), nil
}

// Where compiles f to a WHERE clause fragment.
// Returns (sql, params, error).
//
// The fragment selects exactly the documents f.Apply keeps when the
// records are the decoded documents. An empty filter compiles to "0".
func Where[T any](c *SQLCompiler, f filter.Filter[T]) (string, []any, error) {
	if err := c.check(); err != nil {
		return "", nil, err
	}
	cl, err := c.compileChain(filterMembers(f))
	if err != nil {
		return "", nil, err
	}
	return cl.sql, cl.params, nil
}

// Select compiles f to a full query returning id and document.
//
// MANDATORY: Includes ORDER BY on the id for deterministic results.
func Select[T any](c *SQLCompiler, f filter.Filter[T]) (string, []any, error) {
	where, params, err := Where(c, f)
	if err != nil {
		return "", nil, err
	}
	sql := fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s ORDER BY %s COLLATE BINARY ASC",
		c.IDColumn, c.DocColumn, c.Table, where, c.IDColumn)
	return sql, params, nil
}

// member is a chain member with the item type erased.
type member struct {
	kind filter.MemberKind
	leaf filter.Comparator
	op   filter.BooleanOp
	sub  []member
}

func filterMembers[T any](f filter.Filter[T]) []member {
	chain := f.Chain()
	out := make([]member, 0, len(chain))
	for _, m := range chain {
		em := member{kind: m.Kind()}
		switch m.Kind() {
		case filter.MemberPredicate:
			em.leaf, _ = m.Comparator()
		case filter.MemberConnective:
			em.op, _ = m.Op()
		case filter.MemberSubChain:
			sub, _ := m.Sub()
			em.sub = filterMembers(sub)
		}
		out = append(out, em)
	}
	return out
}

// compileChain mirrors the in-memory evaluator: segments split on Or,
// members within a segment ANDed, an empty chain false.
func (c *SQLCompiler) compileChain(chain []member) (clause, error) {
	var segments []clause
	start := 0
	for i, m := range chain {
		if m.kind == filter.MemberConnective && m.op == filter.Or {
			seg, err := c.compileSegment(chain[start:i])
			if err != nil {
				return clause{}, err
			}
			segments = append(segments, seg)
			start = i + 1
		}
	}
	if start < len(chain) {
		seg, err := c.compileSegment(chain[start:])
		if err != nil {
			return clause{}, err
		}
		segments = append(segments, seg)
	}
	return anyOf(segments...), nil
}

func (c *SQLCompiler) compileSegment(segment []member) (clause, error) {
	var parts []clause
	for i, m := range segment {
		switch m.kind {
		case filter.MemberConnective:
			continue
		case filter.MemberPredicate:
			cl, err := c.compileComparator(m.leaf)
			if err != nil {
				return clause{}, fmt.Errorf("member %d: %w", i, err)
			}
			parts = append(parts, cl)
		case filter.MemberSubChain:
			cl, err := c.compileChain(m.sub)
			if err != nil {
				return clause{}, fmt.Errorf("member %d: %w", i, err)
			}
			parts = append(parts, cl)
		}
	}
	return allOf(parts...), nil
}

func (c *SQLCompiler) compileComparator(cmp filter.Comparator) (clause, error) {
	path, err := jsonPath(cmp.Path())
	if err != nil {
		return clause{}, err
	}
	r := docRef(c.DocColumn, path)
	v := cmp.Value()

	switch t := cmp.FilterType(); t {
	case filter.LessThan:
		return ordered(r, "<", v)
	case filter.LessThanOrEqualTo:
		return ordered(r, "<=", v)
	case filter.GreaterThan:
		return ordered(r, ">", v)
	case filter.GreaterThanOrEqualTo:
		return ordered(r, ">=", v)
	case filter.EqualTo, filter.DeepEqualTo:
		return same(r, v)
	case filter.NotEqualTo, filter.NotDeepEqualTo:
		cl, err := same(r, v)
		if err != nil {
			return clause{}, err
		}
		return not(cl), nil
	case filter.In:
		values, _ := value.AsSlice(v)
		alts := make([]clause, 0, len(values))
		for _, e := range values {
			cl, err := same(r, e)
			if err != nil {
				return clause{}, err
			}
			alts = append(alts, cl)
		}
		return anyOf(alts...), nil
	case filter.Contains:
		return c.contains(cmp.Path(), r, v)
	default:
		return clause{}, fmt.Errorf("%w: %s comparator", ErrUnsupported, t)
	}
}

// same is strict equality against a scalar operand. Every branch also
// checks the JSON type, since SQLite reads true as 1.
func same(r ref, v any) (clause, error) {
	kind, s := value.Scalar(v)
	switch kind {
	case value.KindNull:
		return r.typeIn("null"), nil
	case value.KindBool:
		return r.typeIn(strconv.FormatBool(s.(bool))), nil
	case value.KindNumber:
		n, ok := numberParam(s)
		if !ok {
			return alwaysFalse, nil
		}
		return allOf(r.typeIn("integer", "real"), r.cmp("=", n)), nil
	case value.KindString:
		return allOf(r.typeIn("text"), r.cmp("=", s)), nil
	default:
		return clause{}, fmt.Errorf("%w: equality on %s operand", ErrUnsupported, kind)
	}
}

func ordered(r ref, op string, v any) (clause, error) {
	kind, s := value.Scalar(v)
	switch kind {
	case value.KindNull:
		return alwaysFalse, nil
	case value.KindBool:
		b := 0
		if s.(bool) {
			b = 1
		}
		return allOf(r.typeIn("true", "false"), r.cmp(op, b)), nil
	case value.KindNumber:
		n, ok := numberParam(s)
		if !ok {
			return alwaysFalse, nil
		}
		return allOf(r.typeIn("integer", "real"), r.cmp(op, n)), nil
	case value.KindString:
		return allOf(r.typeIn("text"), r.cmp(op, s)), nil
	default:
		return clause{}, fmt.Errorf("%w: ordering on %s operand", ErrUnsupported, kind)
	}
}

// contains tests array membership, or the truthiness of an object member.
func (c *SQLCompiler) contains(p pointer.Pointer, r ref, v any) (clause, error) {
	elem, err := same(eachRef, v)
	if err != nil {
		return clause{}, err
	}
	path, _ := jsonPath(p)
	inArray := allOf(
		r.typeIn("array"),
		clause{
			sql:    "EXISTS (SELECT 1 FROM json_each(" + c.DocColumn + ", ?) AS je WHERE " + elem.sql + ")",
			params: append([]any{path}, elem.params...),
		},
	)

	key, ok := keySegment(v)
	if !ok {
		return inArray, nil
	}
	childPath, err := jsonPath(p.Append(key))
	if err != nil {
		return inArray, nil
	}
	inObject := allOf(r.typeIn("object"), truthy(docRef(c.DocColumn, childPath)))
	return anyOf(inArray, inObject), nil
}

func keySegment(v any) (string, bool) {
	kind, s := value.Scalar(v)
	switch kind {
	case value.KindString:
		return s.(string), true
	case value.KindNumber:
		return value.MustString(v), true
	default:
		return "", false
	}
}

// truthy is the SQL form of value.Truthy for JSON values.
func truthy(r ref) clause {
	return allOf(
		not(r.typeIn("null", "false")),
		not(allOf(r.typeIn("integer", "real"), r.cmp("=", 0))),
		not(allOf(r.typeIn("text"), r.cmp("=", ""))),
	)
}

func numberParam(n any) (any, bool) {
	switch x := n.(type) {
	case int64:
		return x, true
	case uint64:
		if x <= math.MaxInt64 {
			return int64(x), true
		}
		return float64(x), true
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, false
		}
		return x, true
	}
	return nil, false
}

// jsonPath renders a pointer as a SQLite JSON path. Decimal segments are
// array indexes; every other segment is a quoted object label.
func jsonPath(p pointer.Pointer) (string, error) {
	var b strings.Builder
	b.WriteString("$")
	for _, seg := range p.Segments() {
		if isIndex(seg) {
			b.WriteString("[" + seg + "]")
			continue
		}
		if strings.Contains(seg, `"`) {
			return "", fmt.Errorf("%w: path segment %q", ErrUnsupported, seg)
		}
		b.WriteString(`."` + seg + `"`)
	}
	return b.String(), nil
}

func isIndex(seg string) bool {
	if seg == "" || (len(seg) > 1 && seg[0] == '0') {
		return false
	}
	for _, r := range seg {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
