package bootseq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormula(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		formula  string
		expected string
		names    []string
		deps     map[string][]string
	}{
		{
			"base case",
			"one",
			"one",
			[]string{"one"},
			map[string][]string{},
		},
		{
			"serial case",
			"one > two > three",
			"(one>two>three)",
			[]string{"one", "two", "three"},
			map[string][]string{"two": {"one"}, "three": {"two"}},
		},
		{
			"parallel case",
			"one : two : three",
			"(one:two:three)",
			[]string{"one", "two", "three"},
			map[string][]string{},
		},
		{
			"grouped case",
			"(db : cache) > api > (web : worker)",
			"((db:cache)>api>(web:worker))",
			[]string{"db", "cache", "api", "web", "worker"},
			map[string][]string{
				"api":    {"db", "cache"},
				"web":    {"api"},
				"worker": {"api"},
			},
		},
		{
			"nested case",
			"a : (b > c)",
			"(a:(b>c))",
			[]string{"a", "b", "c"},
			map[string][]string{"c": {"b"}},
		},
		{
			"chained groups case",
			"(a > b) : (c > d) > e",
			"",
			nil,
			nil,
		},
		{
			"group to group case",
			"((a > b) : c) > (d : (e > f))",
			"(((a>b):c)>(d:(e>f)))",
			[]string{"a", "b", "c", "d", "e", "f"},
			map[string][]string{
				"b": {"a"},
				"d": {"b", "c"},
				"e": {"b", "c"},
				"f": {"e"},
			},
		},
		{
			"redundant parentheses case",
			"((one)) > two",
			"(one>two)",
			[]string{"one", "two"},
			map[string][]string{"two": {"one"}},
		},
		{
			"names with dashes and underscores",
			"first_service > second-service",
			"(first_service>second-service)",
			[]string{"first_service", "second-service"},
			map[string][]string{"second-service": {"first_service"}},
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, err := ParseFormula(tt.formula)
			if tt.names == nil {
				var pErr *ParseError
				require.ErrorAs(t, err, &pErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f.String())
			assert.Equal(t, tt.names, f.Names())
			assert.Equal(t, tt.deps, f.Dependencies())
		})
	}
}

func TestParseFormulaErrors(t *testing.T) {
	t.Parallel()

	t.Run("returns an error for an empty sequence", func(t *testing.T) {
		t.Parallel()

		_, err := ParseFormula("  \t ")
		assert.Equal(t, EmptySequenceError(""), err)
	})

	cases := []struct {
		name    string
		formula string
		details string
	}{
		{"invalid characters", "one > tw*o", "invalid character(s) in service name"},
		{"leading invalid character", "$one", "invalid character(s) in service name"},
		{"unmatched opening parenthesis", "(one > two", "unmatched parenthesis"},
		{"unmatched closing parenthesis", "one > two)", "unmatched parenthesis"},
		{"dangling operator", "one >", "unexpected end of sequence"},
		{"double operator", "one >> two", "missing service name"},
		{"empty group", "one > ()", "missing service name"},
		{"mixed operators", "one > two : three", "mixed operators in group, use parentheses"},
		{"duplicate names", "one > (two : one)", "duplicate service name: \"one\""},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseFormula(tt.formula)
			var pErr *ParseError
			require.ErrorAs(t, err, &pErr)
			assert.Equal(t, parseErrMsg+": "+tt.details, pErr.Error())
		})
	}
}
