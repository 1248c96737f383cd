package command

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/checkers/internal/game/checkers"
)

func TestParse_Empty(t *testing.T) {
	result := Parse("")
	assert.Equal(t, "", result.Command)
	assert.Nil(t, result.Args)
}

func TestParse_SingleWord(t *testing.T) {
	result := Parse("board")
	assert.Equal(t, "board", result.Command)
	assert.Nil(t, result.Args)
	assert.Equal(t, "", result.RawArgs)
}

func TestParse_Lowercase(t *testing.T) {
	result := Parse("HINT")
	assert.Equal(t, "hint", result.Command)
}

func TestParse_WithArgs(t *testing.T) {
	result := Parse("move 1 0 fl")
	assert.Equal(t, "move", result.Command)
	assert.Equal(t, []string{"1", "0", "fl"}, result.Args)
	assert.Equal(t, "1 0 fl", result.RawArgs)
}

func TestParse_ExtraWhitespace(t *testing.T) {
	result := Parse("  m\t 2   0  FR  ")
	assert.Equal(t, "m", result.Command)
	assert.Equal(t, []string{"2", "0", "FR"}, result.Args)
	assert.Equal(t, "2   0  FR", result.RawArgs)
}

func TestParseMove(t *testing.T) {
	mv, err := ParseMove([]string{"2", "0", "CFR"})
	require.NoError(t, err)
	assert.Equal(t, checkers.Move{From: checkers.Square{X: 2, Y: 0}, Dir: checkers.CaptureForwardRight}, mv)
}

func TestParseMove_Errors(t *testing.T) {
	_, err := ParseMove([]string{"1", "0"})
	assert.ErrorContains(t, err, "got 2 arguments")
	_, err = ParseMove([]string{"a", "0", "fl"})
	assert.ErrorContains(t, err, `x "a"`)
	_, err = ParseMove([]string{"1", "b", "fl"})
	assert.ErrorContains(t, err, `y "b"`)
	_, err = ParseMove([]string{"1", "0", "up"})
	assert.True(t, errors.Is(err, checkers.ErrIllegalDirection))
}

func TestPropertyParseAlwaysLowercasesCommand(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		word := rapid.StringMatching(`[A-Za-z]{1,20}`).Draw(t, "word")
		result := Parse(word)
		for _, c := range result.Command {
			if c >= 'A' && c <= 'Z' {
				t.Fatalf("command %q contains uppercase char in Parse result %q", word, result.Command)
			}
		}
	})
}

func TestPropertyParseMoveRoundTripsCoordinates(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		x := rapid.IntRange(0, 99).Draw(t, "x")
		y := rapid.IntRange(0, 99).Draw(t, "y")
		dir := rapid.SampledFrom(checkers.Directions).Draw(t, "dir")
		want := checkers.Move{From: checkers.Square{X: x, Y: y}, Dir: dir}
		result := Parse("move " + want.String())
		got, err := ParseMove(result.Args)
		if err != nil {
			t.Fatalf("ParseMove(%v): %v", result.Args, err)
		}
		if got != want {
			t.Fatalf("got %v, want %v", got, want)
		}
	})
}
