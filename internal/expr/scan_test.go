package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindCall(t *testing.T) {
	match := func(name string) bool { return name == "f" || name == "g" }

	t.Run("simple", func(t *testing.T) {
		site, ok := findCall("1 + f(2, 3)", match)
		require.True(t, ok)
		assert.Equal(t, "f", site.name)
		assert.Equal(t, []string{"2", "3"}, site.args)
		assert.Equal(t, "f(2, 3)", "1 + f(2, 3)"[site.start:site.end])
	})

	t.Run("nested parentheses in arguments", func(t *testing.T) {
		site, ok := findCall("f(g(1, 2), (3 + 4))", match)
		require.True(t, ok)
		assert.Equal(t, "f", site.name)
		assert.Equal(t, []string{"g(1, 2)", "(3 + 4)"}, site.args)
	})

	t.Run("commas inside brackets are not splits", func(t *testing.T) {
		site, ok := findCall("f([1, 2], 3)", match)
		require.True(t, ok)
		assert.Equal(t, []string{"[1, 2]", "3"}, site.args)
	})

	t.Run("quoted call text is ignored", func(t *testing.T) {
		_, ok := findCall(`"f(1)" + 2`, match)
		assert.False(t, ok)
	})

	t.Run("identifier suffix does not match", func(t *testing.T) {
		_, ok := findCall("shelf(1)", match)
		assert.False(t, ok)
	})

	t.Run("no args", func(t *testing.T) {
		site, ok := findCall("f()", match)
		require.True(t, ok)
		assert.Empty(t, site.args)
	})

	t.Run("unbalanced", func(t *testing.T) {
		_, ok := findCall("f(1, 2", match)
		assert.False(t, ok)
	})
}

func TestSubstituteVars(t *testing.T) {
	lookup := func(name string) (any, bool) {
		if name == "x" {
			return 4.0, true
		}
		return nil, false
	}

	var missing []string
	onMissing := func(name string) { missing = append(missing, name) }

	assert.Equal(t, "4 + 1", substituteVars("$x + 1", lookup, onMissing))
	assert.Equal(t, "0 * 2", substituteVars("$gone * 2", lookup, onMissing))
	assert.Equal(t, []string{"gone"}, missing)

	// Quoted text is never substituted.
	assert.Equal(t, `"$x" + 4`, substituteVars(`"$x" + $x`, lookup, onMissing))
}

func TestRewriteConditionals(t *testing.T) {
	out := rewriteConditionals("if(1, 2, 3)", 8)
	assert.Equal(t, "(truthy(1) ? (2) : (3))", out)

	out = rewriteConditionals("if(if(1, 0, 1), 2, 3)", 8)
	assert.NotContains(t, out, "if(")

	// Malformed arity is left for the evaluator to reject.
	out = rewriteConditionals("if(1, 2)", 8)
	assert.Equal(t, "if(1, 2)", out)

	// Bounded passes terminate even with many conditionals.
	input := ""
	for i := 0; i < 50; i++ {
		input += "if(1, 2, 3) + "
	}
	input += "0"
	out = rewriteConditionals(input, 8)
	assert.Contains(t, out, "if(", "pass cap leaves the remainder unrewritten")
}

func TestFormatValue(t *testing.T) {
	for _, tc := range []struct {
		in   any
		want string
	}{
		{1.5, "1.5"},
		{3, "3"},
		{true, "true"},
		{"hi", `"hi"`},
		{[]any{1.0, 2.0}, "[1, 2]"},
		{[3]float64{1, 2, 3}, "[1, 2, 3]"},
	} {
		got, err := formatValue(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	_, err := formatValue(struct{}{})
	require.Error(t, err)
}
