package filter

import (
	"fmt"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record = map[string]any

func kinds[T any](f Filter[T]) []MemberKind {
	out := make([]MemberKind, 0, f.Len())
	for _, m := range f.Chain() {
		out = append(out, m.Kind())
	}
	return out
}

func TestNew_Empty(t *testing.T) {
	f := New[record]()

	assert.True(t, f.IsEmpty())
	assert.Equal(t, Compound, f.FilterType())
	assert.False(t, f.Test(record{}))
	assert.False(t, f.Test(nil))

	var zero Filter[record]
	assert.False(t, zero.Test(record{"a": 1}), "zero value is the empty filter")
}

func TestBuilder_ImplicitAnd(t *testing.T) {
	f := New[record]().EqualTo("a", 1).EqualTo("b", 2)

	assert.Equal(t, []MemberKind{MemberPredicate, MemberConnective, MemberPredicate}, kinds(f))
	op, ok := f.Chain()[1].Op()
	require.True(t, ok)
	assert.Equal(t, And, op)
}

func TestBuilder_ExplicitConnectiveNotDoubled(t *testing.T) {
	f := New[record]().EqualTo("a", 1).Or().EqualTo("b", 2)

	assert.Equal(t, []MemberKind{MemberPredicate, MemberConnective, MemberPredicate}, kinds(f))
	op, _ := f.Chain()[1].Op()
	assert.Equal(t, Or, op)

	g := New[record]().EqualTo("a", 1).And().EqualTo("b", 2)
	assert.Equal(t, 3, g.Len())
}

func TestBuilder_Immutable(t *testing.T) {
	base := New[record]().EqualTo("n", 1)
	left := base.EqualTo("m", 2)
	right := base.Or().EqualTo("n", 3)

	assert.Equal(t, 1, base.Len(), "base keeps its chain")
	assert.Equal(t, 3, left.Len())
	assert.Equal(t, 3, right.Len())

	item := record{"n": 3, "m": 0}
	assert.False(t, base.Test(item))
	assert.False(t, left.Test(item))
	assert.True(t, right.Test(item))

	// Mutating the copy returned by Chain does not reach the filter.
	chain := base.Chain()
	chain[0] = connectiveMember[record](Or)
	assert.Equal(t, MemberPredicate, base.Chain()[0].Kind())
}

func TestBuilder_SharedPrefixDoesNotAlias(t *testing.T) {
	// Two extensions of the same prefix must not overwrite each other even
	// when the prefix slice has spare capacity.
	prefix := New[record]().EqualTo("a", 1).And()
	x := prefix.EqualTo("b", 1)
	y := prefix.EqualTo("c", 1)

	cx, _ := x.Chain()[2].Comparator()
	cy, _ := y.Chain()[2].Comparator()
	assert.Equal(t, "/b", cx.Path().String())
	assert.Equal(t, "/c", cy.Path().String())
}

func TestAndOr_NoArgsOnEmptyChain(t *testing.T) {
	f := New[record]().And()
	assert.True(t, f.IsEmpty())

	g := New[record]().Or().EqualTo("n", 1)
	assert.Equal(t, []MemberKind{MemberPredicate}, kinds(g))
	assert.True(t, g.Test(record{"n": 1}))
}

func TestAndOr_WithFilterNests(t *testing.T) {
	p := New[record]().EqualTo("a", 1).Or().EqualTo("a", 2)
	q := New[record]().EqualTo("b", 1)

	f := p.And(q)
	assert.Equal(t, []MemberKind{MemberSubChain, MemberConnective, MemberSubChain}, kinds(f))

	sub, ok := f.Chain()[0].Sub()
	require.True(t, ok)
	assert.Equal(t, p.Len(), sub.Len(), "left side nested whole, not spliced")

	// (a==1 OR a==2) AND b==1
	assert.True(t, f.Test(record{"a": 2, "b": 1}))
	assert.False(t, f.Test(record{"a": 2, "b": 0}))
	assert.False(t, f.Test(record{"a": 3, "b": 1}))
}

func TestAndOr_Variadic(t *testing.T) {
	a := New[record]().EqualTo("n", 1)
	b := New[record]().EqualTo("n", 2)
	c := New[record]().EqualTo("n", 3)

	f := a.Or(b, c)
	assert.Equal(t, 5, f.Len())
	for _, n := range []int{1, 2, 3} {
		assert.True(t, f.Test(record{"n": n}))
	}
	assert.False(t, f.Test(record{"n": 4}))
}

func TestAndOr_Properties(t *testing.T) {
	preds := map[string]Filter[record]{
		"gt10":    New[record]().GreaterThan("n", 10),
		"even":    New[record]().In("n", []any{2, 4, 12, 14}),
		"tagged":  New[record]().Contains("tags", "x"),
		"flagged": New[record]().Contains("flags", "on"),
		"empty":   New[record](),
	}
	items := []record{
		{"n": 2, "tags": []any{"x"}},
		{"n": 12, "flags": map[string]any{"on": true}},
		{"n": 13, "tags": []any{}},
		{},
	}

	for pn, p := range preds {
		for qn, q := range preds {
			for _, item := range items {
				assert.Equal(t, p.Test(item) && q.Test(item), p.And(q).Test(item), "%s and %s on %v", pn, qn, item)
				assert.Equal(t, p.Test(item) || q.Test(item), p.Or(q).Test(item), "%s or %s on %v", pn, qn, item)
			}
		}
	}
}

func TestPrecedence_AndBindsTighter(t *testing.T) {
	// a AND b OR c == (a AND b) OR c
	f := New[record]().EqualTo("a", 1).EqualTo("b", 1).Or().EqualTo("c", 1)

	assert.True(t, f.Test(record{"a": 1, "b": 1}))
	assert.True(t, f.Test(record{"c": 1}))
	assert.False(t, f.Test(record{"a": 1}))
	assert.False(t, f.Test(record{"b": 1}))

	// a OR b AND c == a OR (b AND c)
	g := New[record]().EqualTo("a", 1).Or().EqualTo("b", 1).And().EqualTo("c", 1)
	assert.True(t, g.Test(record{"a": 1}))
	assert.True(t, g.Test(record{"b": 1, "c": 1}))
	assert.False(t, g.Test(record{"b": 1}))
}

func TestScenario_AgeRange(t *testing.T) {
	type person struct {
		Age int `json:"age"`
	}
	f := New[person]().GreaterThan("age", 18).LessThan("age", 65)

	got := f.Apply([]person{{10}, {30}, {70}})
	assert.Equal(t, []person{{30}}, got)
}

func TestScenario_Or(t *testing.T) {
	f := New[record]().EqualTo("n", 1).Or().EqualTo("n", 2)

	assert.True(t, f.Test(record{"n": 2}))
	assert.False(t, f.Test(record{"n": 3}))
}

func TestApply_EmptyFilterReturnsEmpty(t *testing.T) {
	items := []record{{"a": 1}, {"a": 2}}
	got := New[record]().Apply(items)

	require.NotNil(t, got)
	assert.Empty(t, got)
	assert.Len(t, items, 2)
}

func TestApply_PreservesOrder(t *testing.T) {
	items := []record{{"n": 5}, {"n": 1}, {"n": 4}, {"n": 2}}
	got := New[record]().GreaterThan("n", 1).Apply(items)
	assert.Equal(t, []record{{"n": 5}, {"n": 4}, {"n": 2}}, got)
}

func TestDeepEqualTo_VersusEqualTo(t *testing.T) {
	item := record{"tags": []any{"a", "b"}, "n": 1}

	assert.True(t, New[record]().DeepEqualTo("tags", []any{"a", "b"}).Test(item))
	assert.False(t, New[record]().EqualTo("tags", []any{"a", "b"}).Test(item))
	assert.True(t, New[record]().EqualTo("n", 1).Test(item), "primitives are equal either way")
	assert.True(t, New[record]().NotDeepEqualTo("tags", []any{"b"}).Test(item))
	assert.True(t, New[record]().NotEqualTo("tags", []any{"a", "b"}).Test(item))
}

func TestContains_Scenarios(t *testing.T) {
	f := New[record]().Contains("/tags", "x")
	assert.True(t, f.Test(record{"tags": []any{"x", "y"}}))

	g := New[record]().Contains("/flags", "x")
	assert.True(t, g.Test(record{"flags": record{"x": true}}))
	assert.False(t, g.Test(record{"flags": record{"x": false}}))
}

func TestMatchesAndCustom(t *testing.T) {
	type user struct {
		Name  string
		Admin bool
	}

	f := New[user]().Matches("Name", regexp.MustCompile(`^a`)).Custom(func(u user) bool { return u.Admin })

	assert.True(t, f.Test(user{Name: "ann", Admin: true}))
	assert.False(t, f.Test(user{Name: "ann"}))
	assert.False(t, f.Test(user{Name: "bob", Admin: true}))

	assert.False(t, New[user]().Custom(nil).Test(user{}), "nil predicate never matches")
	assert.False(t, New[user]().Matches("Name", nil).Test(user{Name: "x"}))
}

func TestChainedDoubleOr_EmptySegmentHolds(t *testing.T) {
	// An empty segment between two Or members holds vacuously.
	f := New[record]().EqualTo("n", 1).Or().Or().EqualTo("n", 2)
	assert.True(t, f.Test(record{"n": 9}))
}

func TestTrailingConnective(t *testing.T) {
	f := New[record]().EqualTo("n", 1).Or()
	assert.True(t, f.Test(record{"n": 1}))
	assert.False(t, f.Test(record{"n": 2}))
}

func TestFromDescriptor(t *testing.T) {
	f, err := FromDescriptor[record](Descriptor{FilterType: GreaterThan, Path: "age", Value: 21})
	require.NoError(t, err)
	assert.True(t, f.Test(record{"age": 22}))
	assert.Equal(t, 1, f.Len())

	typed, err := FromDescriptor[record](Descriptor{
		FilterType: Custom,
		Value:      func(r record) bool { return r["ok"] == true },
	})
	require.NoError(t, err)
	assert.True(t, typed.Test(record{"ok": true}))

	_, err = FromDescriptor[record](Descriptor{FilterType: In, Path: "a", Value: 3})
	assert.ErrorIs(t, err, ErrMalformedOperand)
}

func TestFromEntries(t *testing.T) {
	f, err := FromEntries[record](DescriptorArray{
		Descriptor{FilterType: EqualTo, Path: "a", Value: 1},
		Descriptor{FilterType: EqualTo, Path: "b", Value: 1},
		Or,
		DescriptorArray{
			Descriptor{FilterType: EqualTo, Path: "c", Value: 1},
			Or,
			&Descriptor{FilterType: EqualTo, Path: "d", Value: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t,
		[]MemberKind{MemberPredicate, MemberConnective, MemberPredicate, MemberConnective, MemberSubChain},
		kinds(f), "implicit And between adjacent descriptors")

	assert.True(t, f.Test(record{"a": 1, "b": 1}))
	assert.True(t, f.Test(record{"d": 1}))
	assert.False(t, f.Test(record{"a": 1}))
}

func TestFromEntries_Errors(t *testing.T) {
	_, err := FromEntries[record](DescriptorArray{
		Descriptor{FilterType: EqualTo, Path: "a", Value: 1},
		DescriptorArray{Descriptor{FilterType: Matches, Path: "b", Value: 7}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedOperand)
	assert.Contains(t, err.Error(), "[1][0]")

	_, err = FromEntries[record](DescriptorArray{BooleanOp(7)})
	assert.Error(t, err)

	_, err = FromEntries[record](DescriptorArray{nil})
	assert.Error(t, err)

	var nilDesc *Descriptor
	_, err = FromEntries[record](DescriptorArray{nilDesc})
	assert.Error(t, err)
}

func TestFromEntries_Empty(t *testing.T) {
	f, err := FromEntries[record](nil)
	require.NoError(t, err)
	assert.True(t, f.IsEmpty())
}

func TestMember_Accessors(t *testing.T) {
	f := New[record]().EqualTo("a", 1).And(New[record]().EqualTo("b", 2))
	chain := f.Chain()

	_, ok := chain[0].Comparator()
	assert.False(t, ok)
	_, ok = chain[0].Op()
	assert.False(t, ok)
	sub, ok := chain[0].Sub()
	assert.True(t, ok)
	c, ok := sub.Chain()[0].Comparator()
	assert.True(t, ok)
	assert.Equal(t, EqualTo, c.FilterType())

	_, ok = chain[1].Sub()
	assert.False(t, ok)
}

func TestFilterType_String(t *testing.T) {
	assert.Equal(t, "GreaterThanOrEqualTo", GreaterThanOrEqualTo.String())
	assert.Equal(t, "Compound", Compound.String())
	assert.Equal(t, "FilterType(99)", FilterType(99).String())
	assert.Equal(t, "Or", Or.String())

	tag, ok := DeepEqualTo.Tag()
	assert.True(t, ok)
	assert.Equal(t, "eq", tag)
	_, ok = Custom.Tag()
	assert.False(t, ok)
}

func TestFilter_SharedAcrossGoroutines(t *testing.T) {
	base := New[record]().EqualTo("n", 0).GreaterThan("age", 18)

	var wg sync.WaitGroup
	results := make([]string, 50)
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			derived := base.Or().EqualTo("n", i)
			if !derived.Test(record{"n": i, "age": 1}) {
				return
			}
			s, err := derived.Serialize()
			if err != nil {
				return
			}
			results[i] = s
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		assert.Equal(t, fmt.Sprintf(`eq(/n, 0)&gt(/age, 18)|eq(/n, %d)`, i), got)
	}
	assert.Equal(t, 3, base.Len(), "base is never modified")
	assert.True(t, base.Test(record{"n": 0, "age": 30}))
}
