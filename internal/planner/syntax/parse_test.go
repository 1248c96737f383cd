package syntax_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/checkers/internal/planner/syntax"
)

const moveDomain = `# one room to the next
predicates: At(x)
constants: A B
Move x
pre: At(x)
preneg:
del: At(x)
add: At(B)
initial: At(A)
goal: At(B)
`

func TestParse_MoveDomain(t *testing.T) {
	tree, err := syntax.Parse(moveDomain)
	require.NoError(t, err)

	require.Len(t, tree.Comments, 1)
	assert.Equal(t, 1, tree.Comments[0].Line)
	assert.Equal(t, []string{"A", "B"}, tree.Constants)
	require.Len(t, tree.Predicates, 1)
	assert.Equal(t, "At(x)", tree.Predicates[0].String())

	require.Len(t, tree.Actions, 1)
	act := tree.Actions[0]
	assert.Equal(t, "Move", act.Name)
	assert.Equal(t, []string{"x"}, act.Params)
	assert.Equal(t, 4, act.Line)
	require.Len(t, act.Pre, 1)
	assert.Empty(t, act.PreNeg)
	require.Len(t, act.Del, 1)
	require.Len(t, act.Add, 1)
	assert.Equal(t, []syntax.Term{{Name: "B", Constant: true}}, act.Add[0].Terms)
	assert.Equal(t, []syntax.Term{{Name: "x", Constant: false}}, act.Del[0].Terms)

	require.Len(t, tree.Initial, 1)
	assert.Equal(t, "At(A)", tree.Initial[0].String())
	require.Len(t, tree.Goal, 1)
	assert.Equal(t, "At(B)", tree.Goal[0].String())
}

func TestParse_MultiArgumentPredicates(t *testing.T) {
	tree, err := syntax.Parse("initial: Link(A, B) Link(B, C) On(x, Y)\n")
	require.NoError(t, err)
	require.Len(t, tree.Initial, 3)
	assert.Equal(t, "Link(B, C)", tree.Initial[1].String())
	assert.Equal(t, []syntax.Term{{Name: "x"}, {Name: "Y", Constant: true}}, tree.Initial[2].Terms)
}

func TestParse_RepeatedDirectivesAccumulate(t *testing.T) {
	tree, err := syntax.Parse("constants: A\nconstants: B C\ngoal: P(A)\ngoal: P(B)\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, tree.Constants)
	assert.Len(t, tree.Goal, 2)
}

func TestParse_CRLFAndBlankLines(t *testing.T) {
	tree, err := syntax.Parse("constants: A\r\n\r\n\r\ninitial: P(A)\r\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, tree.Constants)
	assert.Len(t, tree.Initial, 1)
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name string
		text string
		line int
	}{
		{"unknown directive", "constants: A\nbogus: thing\n", 2},
		{"short block", "Move x\npre: At(x)\npreneg:", 1},
		{"block out of order", "Move x\npre: At(x)\ndel: At(x)\npreneg:\nadd: At(B)\n", 3},
		{"blank inside block", "Move x\npre: At(x)\n\ndel: At(x)\nadd: At(B)\n", 3},
		{"stray block line", "pre: At(x)\n", 1},
		{"unterminated predicate", "initial: At(A\n", 1},
		{"missing parens", "initial: At\n", 1},
		{"empty term", "initial: Link(A, )\n", 1},
		{"glued predicates", "initial: At(A)At(B)\n", 1},
		{"lowercase constant", "constants: A b\n", 1},
		{"uppercase parameter", "Move X\npre:\npreneg:\ndel:\nadd:\n", 1},
		{"duplicate parameter", "Move x x\npre:\npreneg:\ndel:\nadd:\n", 1},
		{"duplicate action", "Move x\npre:\npreneg:\ndel:\nadd:\nMove y\npre:\npreneg:\ndel:\nadd:\n", 6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := syntax.Parse(tc.text)
			require.Error(t, err)
			var perr *syntax.ParseError
			require.True(t, errors.As(err, &perr), "expected *ParseError, got %T", err)
			assert.Equal(t, tc.line, perr.Line)
			assert.Contains(t, err.Error(), fmt.Sprintf("line %d", tc.line))
		})
	}
}

func TestClassify(t *testing.T) {
	cases := map[string]syntax.Kind{
		"":                  syntax.KindBlank,
		"   ":               syntax.KindBlank,
		"# hi":              syntax.KindComment,
		"predicates: At(x)": syntax.KindPredicates,
		"constants: A":      syntax.KindConstants,
		"Move x":            syntax.KindAction,
		"pre: At(x)":        syntax.KindPre,
		"preneg: At(x)":     syntax.KindPreNeg,
		"preneg:":           syntax.KindPreNeg,
		"del:":              syntax.KindDel,
		"add: At(B)":        syntax.KindAdd,
		"initial: At(A)":    syntax.KindInitial,
		"goal: At(B)":       syntax.KindGoal,
		"something else":    syntax.KindUnknown,
	}
	for line, want := range cases {
		got, _ := syntax.Classify(line)
		assert.Equal(t, want, got, "line %q", line)
	}
}

func TestProperty_TermCaseDecidesConstant(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		names := rapid.SliceOfN(rapid.StringMatching(`[A-Za-z][a-z0-9]{0,4}`), 1, 5).Draw(rt, "names")
		tree, err := syntax.Parse("initial: P(" + strings.Join(names, ", ") + ")\n")
		if err != nil {
			rt.Fatalf("parse: %v", err)
		}
		terms := tree.Initial[0].Terms
		if len(terms) != len(names) {
			rt.Fatalf("got %d terms, want %d", len(terms), len(names))
		}
		for i, term := range terms {
			wantConst := names[i][0] >= 'A' && names[i][0] <= 'Z'
			if term.Constant != wantConst {
				rt.Fatalf("term %q: Constant=%v, want %v", term.Name, term.Constant, wantConst)
			}
		}
	})
}
