package filter

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialize_Scenario(t *testing.T) {
	f := New[record]().EqualTo("name", "bob").GreaterThan("age", 21)

	got, err := f.Serialize()
	require.NoError(t, err)
	assert.Equal(t, `eq(/name, "bob")&gt(/age, 21)`, got)
	assert.Equal(t, got, f.String())
}

func TestSerialize_Empty(t *testing.T) {
	got, err := New[record]().Serialize()
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestSerialize_OrJoin(t *testing.T) {
	f := New[record]().EqualTo("n", 1).Or().EqualTo("n", 2).EqualTo("m", 3)

	got, err := f.Serialize()
	require.NoError(t, err)
	assert.Equal(t, `eq(/n, 1)|eq(/n, 2)&eq(/m, 3)`, got)
}

func TestSerialize_NoDanglingOperators(t *testing.T) {
	f := New[record]().EqualTo("n", 1).Or()

	got, err := f.Serialize()
	require.NoError(t, err)
	assert.Equal(t, `eq(/n, 1)`, got)
}

func TestSerialize_NestedFirstIsWrapped(t *testing.T) {
	p := New[record]().EqualTo("a", 1).Or().EqualTo("a", 2)
	q := New[record]().EqualTo("b", 1)

	got, err := p.And(q).Serialize()
	require.NoError(t, err)
	assert.Equal(t, `(eq(/a, 1)|eq(/a, 2))&(eq(/b, 1))`, got)
}

func TestSerialize_SkipsEmptyNested(t *testing.T) {
	p := New[record]().EqualTo("a", 1)

	got, err := p.Or(New[record]()).Serialize()
	require.NoError(t, err)
	assert.Equal(t, `(eq(/a, 1))`, got)

	got, err = New[record]().And(p).Serialize()
	require.NoError(t, err)
	assert.Equal(t, `(eq(/a, 1))`, got)
}

func TestSerialize_ComparatorChainsNeverFail(t *testing.T) {
	f := New[record]().
		EqualTo("a", 1).
		NotEqualTo("b", "x").
		DeepEqualTo("c", []any{1}).
		NotDeepEqualTo("d", record{"k": "v"}).
		LessThan("e", 1).
		LessThanOrEqualTo("f", 2).
		GreaterThan("g", 3).
		GreaterThanOrEqualTo("h", 4).
		Contains("i", "j").
		In("k", []any{"l"})

	got, err := f.Serialize()
	require.NoError(t, err)
	assert.NotEmpty(t, got)
	assert.Equal(t, 9, strings.Count(got, "&"))
	assert.False(t, strings.HasPrefix(got, "&"))
	assert.False(t, strings.HasSuffix(got, "&"))
}

func TestSerialize_Unserializable(t *testing.T) {
	custom := New[record]().EqualTo("a", 1).Custom(func(record) bool { return true })
	_, err := custom.Serialize()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnserializable)
	assert.True(t, strings.HasPrefix(custom.String(), "!("))

	matches := New[record]().Matches("name", regexp.MustCompile(`^b`))
	_, err = matches.Serialize()
	assert.ErrorIs(t, err, ErrUnserializable)

	nested := New[record]().EqualTo("a", 1).Or(matches)
	_, err = nested.Serialize()
	assert.ErrorIs(t, err, ErrUnserializable, "errors propagate from nested filters")
}

func TestSerialize_NormalizedOperandMatchesTest(t *testing.T) {
	decomposed, composed := "e\u0301", "\u00e9"
	f := New[record]().EqualTo("name", decomposed)

	got, err := f.Serialize()
	require.NoError(t, err)
	assert.Equal(t, `eq(/name, "`+composed+`")`, got)

	assert.True(t, f.Test(record{"name": decomposed}))
	assert.True(t, f.Test(record{"name": composed}), "the serialized operand selects the same records")
	assert.True(t, New[record]().In("name", []any{composed}).Test(record{"name": decomposed}))
}

// countingSerializer renders only the number of comparators, including
// the ones the default serializer rejects.
func countingSerializer(f Filter[record]) (string, error) {
	n := 0
	for _, m := range f.Chain() {
		if _, ok := m.Comparator(); ok {
			n++
		}
	}
	return fmt.Sprintf("count=%d", n), nil
}

func TestSerialize_CustomSerializer(t *testing.T) {
	f := New[record](WithSerializer(countingSerializer)).
		EqualTo("a", 1).
		Custom(func(record) bool { return true })

	got, err := f.Serialize()
	require.NoError(t, err)
	assert.Equal(t, "count=2", got, "creation-time serializer survives chaining")

	got, err = f.Or().EqualTo("b", 2).Serialize()
	require.NoError(t, err)
	assert.Equal(t, "count=3", got)

	plain := New[record]().EqualTo("a", 1)
	got, err = plain.Serialize(countingSerializer)
	require.NoError(t, err)
	assert.Equal(t, "count=1", got, "per-call override")

	got, err = f.Serialize(DefaultSerializer[record])
	assert.ErrorIs(t, err, ErrUnserializable)
	assert.Empty(t, got)
}

func TestSerialize_Golden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	tests := []struct {
		name   string
		filter Filter[record]
	}{
		{
			name: "nested_groups",
			filter: New[record]().EqualTo("n", 1).Or().EqualTo("n", 2).
				And(New[record]().LessThan("age", 3)),
		},
		{
			name: "membership",
			filter: New[record]().
				In("status", []any{"open", "closed"}).
				Contains("/tags", "x"),
		},
		{
			name: "escaping",
			filter: New[record]().
				DeepEqualTo("/meta/a~1b", record{"k": []any{1, true}}).
				NotEqualTo("note", "<b>&"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.filter.Serialize()
			require.NoError(t, err)
			g.Assert(t, tt.name, []byte(got))
		})
	}
}
