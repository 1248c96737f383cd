// Package checkers is the board-game adapter around the planner: the board
// and its move rules, the generator that describes a position as planning
// domain text, the translator from plans back to moves, and the AI player.
package checkers

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Move errors returned by Board.Move.
var (
	ErrNoPiece          = errors.New("checkers: no piece on that square")
	ErrIllegalDirection = errors.New("checkers: illegal direction for piece")
	ErrOutOfBounds      = errors.New("checkers: destination is off the board")
	ErrOccupied         = errors.New("checkers: destination is occupied")
	ErrNothingToCapture = errors.New("checkers: nothing to capture")
	ErrOwnPiece         = errors.New("checkers: cannot capture own piece")
)

// Color identifies a side.
type Color byte

const (
	Black Color = 'B'
	White Color = 'W'
)

// ParseColor accepts "B" or "W" in either case.
func ParseColor(s string) (Color, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "B":
		return Black, nil
	case "W":
		return White, nil
	}
	return 0, fmt.Errorf("checkers: unknown color %q", s)
}

func (c Color) String() string { return string(c) }

// Opponent returns the other side.
func (c Color) Opponent() Color {
	if c == Black {
		return White
	}
	return Black
}

// Name returns "Black" or "White".
func (c Color) Name() string {
	if c == Black {
		return "Black"
	}
	return "White"
}

// forward is the y step of a forward move: black moves toward higher rows.
func (c Color) forward() int {
	if c == Black {
		return 1
	}
	return -1
}

// Square is a board coordinate; X is the column and Y the row.
type Square struct {
	X, Y int
}

func (s Square) String() string { return fmt.Sprintf("(%d, %d)", s.X, s.Y) }

// Piece is one checker.
type Piece struct {
	Color Color
	King  bool
}

// String renders a piece as two characters: " B", "KB", " W" or "KW".
func (p Piece) String() string {
	if p.King {
		return "K" + p.Color.String()
	}
	return " " + p.Color.String()
}

// Direction is one of the eight move words.
type Direction string

const (
	ForwardLeft         Direction = "fl"
	ForwardRight        Direction = "fr"
	BackLeft            Direction = "bl"
	BackRight           Direction = "br"
	CaptureForwardLeft  Direction = "cfl"
	CaptureForwardRight Direction = "cfr"
	CaptureBackLeft     Direction = "cbl"
	CaptureBackRight    Direction = "cbr"
)

// Directions lists every direction in a fixed order.
var Directions = []Direction{
	ForwardLeft, ForwardRight, BackLeft, BackRight,
	CaptureForwardLeft, CaptureForwardRight, CaptureBackLeft, CaptureBackRight,
}

// ParseDirection validates a move word.
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Directions {
		if d == known {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrIllegalDirection, s)
}

// Capture reports whether d jumps over a piece.
func (d Direction) Capture() bool { return strings.HasPrefix(string(d), "c") }

// Backward reports whether d moves away from the opponent's side.
func (d Direction) Backward() bool { return strings.HasSuffix(string(d), "bl") || strings.HasSuffix(string(d), "br") }

// delta returns the unit column and row step of d for color c.
func (d Direction) delta(c Color) (dx, dy int) {
	dx = -1
	if strings.HasSuffix(string(d), "r") {
		dx = 1
	}
	dy = c.forward()
	if d.Backward() {
		dy = -dy
	}
	return dx, dy
}

// Move is a piece selection plus a direction.
type Move struct {
	From Square
	Dir  Direction
}

func (m Move) String() string { return fmt.Sprintf("%d %d %s", m.From.X, m.From.Y, m.Dir) }

// Target returns the destination square of m for a piece of color c.
func (m Move) Target(c Color) Square {
	dx, dy := m.Dir.delta(c)
	if m.Dir.Capture() {
		dx, dy = 2*dx, 2*dy
	}
	return Square{X: m.From.X + dx, Y: m.From.Y + dy}
}

// directionFor returns the direction that moves a c piece from one square to
// another, or false when the squares are not a step or jump apart.
func directionFor(c Color, from, to Square) (Direction, bool) {
	for _, d := range Directions {
		if (Move{From: from, Dir: d}).Target(c) == to {
			return d, true
		}
	}
	return "", false
}

// Board is a square board of Size×Size squares.
type Board struct {
	Size   int
	Pieces map[Square]Piece
}

// NewBoard places rows full rows of pieces per side: black on rows
// 0..rows-1 and white on the last rows.
//
// Precondition: size >= 3; rows >= 1; 2*rows < size.
// Postcondition: each side has size*rows pieces.
func NewBoard(size, rows int) *Board {
	if size < 3 || rows < 1 || 2*rows >= size {
		panic(fmt.Sprintf("checkers.NewBoard: invalid size %d with %d rows", size, rows))
	}
	b := &Board{Size: size, Pieces: make(map[Square]Piece, 2*size*rows)}
	for i := 0; i < size; i++ {
		for j := 0; j < rows; j++ {
			b.Pieces[Square{X: i, Y: j}] = Piece{Color: Black}
			b.Pieces[Square{X: i, Y: size - 1 - j}] = Piece{Color: White}
		}
	}
	return b
}

// Clone returns an independent copy of b.
func (b *Board) Clone() *Board {
	out := &Board{Size: b.Size, Pieces: make(map[Square]Piece, len(b.Pieces))}
	for sq, p := range b.Pieces {
		out.Pieces[sq] = p
	}
	return out
}

// InBounds reports whether sq lies on the board.
func (b *Board) InBounds(sq Square) bool {
	return sq.X >= 0 && sq.X < b.Size && sq.Y >= 0 && sq.Y < b.Size
}

// At returns the piece on sq.
func (b *Board) At(sq Square) (Piece, bool) {
	p, ok := b.Pieces[sq]
	return p, ok
}

// Count returns the number of pieces of color c.
func (b *Board) Count(c Color) int {
	n := 0
	for _, p := range b.Pieces {
		if p.Color == c {
			n++
		}
	}
	return n
}

// Squares returns every square in row-major order.
func (b *Board) Squares() []Square {
	out := make([]Square, 0, b.Size*b.Size)
	for y := 0; y < b.Size; y++ {
		for x := 0; x < b.Size; x++ {
			out = append(out, Square{X: x, Y: y})
		}
	}
	return out
}

// check validates m without changing the board and returns the moving piece,
// its destination and the captured square (if any).
func (b *Board) check(m Move) (Piece, Square, *Square, error) {
	p, ok := b.Pieces[m.From]
	if !ok {
		return Piece{}, Square{}, nil, ErrNoPiece
	}
	if m.Dir.Backward() && !p.King {
		return Piece{}, Square{}, nil, fmt.Errorf("%w: %s needs a king", ErrIllegalDirection, m.Dir)
	}
	to := m.Target(p.Color)
	if !b.InBounds(to) {
		return Piece{}, Square{}, nil, ErrOutOfBounds
	}
	if _, taken := b.Pieces[to]; taken {
		return Piece{}, Square{}, nil, ErrOccupied
	}
	if !m.Dir.Capture() {
		return p, to, nil, nil
	}
	dx, dy := m.Dir.delta(p.Color)
	over := Square{X: m.From.X + dx, Y: m.From.Y + dy}
	victim, ok := b.Pieces[over]
	if !ok {
		return Piece{}, Square{}, nil, ErrNothingToCapture
	}
	if victim.Color == p.Color {
		return Piece{}, Square{}, nil, ErrOwnPiece
	}
	return p, to, &over, nil
}

// Legal reports whether m can be played.
func (b *Board) Legal(m Move) bool {
	_, _, _, err := b.check(m)
	return err == nil
}

// Move plays m. A piece reaching the far row becomes a king.
//
// Postcondition: on error the board is unchanged.
func (b *Board) Move(from Square, dir Direction) error {
	m := Move{From: from, Dir: dir}
	p, to, captured, err := b.check(m)
	if err != nil {
		return err
	}
	if captured != nil {
		delete(b.Pieces, *captured)
	}
	delete(b.Pieces, from)
	if (p.Color == Black && to.Y == b.Size-1) || (p.Color == White && to.Y == 0) {
		p.King = true
	}
	b.Pieces[to] = p
	return nil
}

// LegalMoves returns every legal move for c, ordered by square (row-major)
// and then by Directions.
func (b *Board) LegalMoves(c Color) []Move {
	var froms []Square
	for sq, p := range b.Pieces {
		if p.Color == c {
			froms = append(froms, sq)
		}
	}
	sort.Slice(froms, func(i, j int) bool {
		if froms[i].Y != froms[j].Y {
			return froms[i].Y < froms[j].Y
		}
		return froms[i].X < froms[j].X
	})
	var moves []Move
	for _, from := range froms {
		for _, d := range Directions {
			m := Move{From: from, Dir: d}
			if b.Legal(m) {
				moves = append(moves, m)
			}
		}
	}
	return moves
}

// Winner reports the winning side, if any, with toMove to play next. A side
// loses when it has no pieces, or when it is to move and has no legal move.
func (b *Board) Winner(toMove Color) (Color, bool) {
	switch {
	case b.Count(Black) == 0:
		return White, true
	case b.Count(White) == 0:
		return Black, true
	case len(b.LegalMoves(toMove)) == 0:
		return toMove.Opponent(), true
	}
	return 0, false
}

// Render writes the board as a grid with column numbers across the top and
// row numbers down the side.
func (b *Board) Render(w io.Writer) error {
	var sb strings.Builder
	sb.WriteString("   ")
	for x := 0; x < b.Size; x++ {
		fmt.Fprintf(&sb, " %d ", x)
	}
	sb.WriteString(" \n")
	rule := "  " + strings.Repeat("-", b.Size*3) + "-\n"
	sb.WriteString(rule)
	for y := 0; y < b.Size; y++ {
		cells := make([]string, b.Size)
		for x := 0; x < b.Size; x++ {
			if p, ok := b.Pieces[Square{X: x, Y: y}]; ok {
				cells[x] = p.String()
			} else {
				cells[x] = "  "
			}
		}
		fmt.Fprintf(&sb, "%d |%s|\n", y, strings.Join(cells, "|"))
	}
	sb.WriteString(rule)
	_, err := io.WriteString(w, sb.String())
	return err
}
