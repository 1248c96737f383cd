package checkers

import "strconv"

// Namer mints planning constant names for squares ("S1", "S2", ...) and
// remembers the mapping in both directions. A Namer is owned by one adapter;
// names are stable for the Namer's lifetime.
type Namer struct {
	next    int
	names   map[Square]string
	squares map[string]Square
}

// NewNamer returns an empty Namer.
func NewNamer() *Namer {
	return &Namer{
		names:   make(map[Square]string),
		squares: make(map[string]Square),
	}
}

// Name returns the constant for sq, minting a new one on first use.
func (n *Namer) Name(sq Square) string {
	if name, ok := n.names[sq]; ok {
		return name
	}
	n.next++
	name := "S" + strconv.Itoa(n.next)
	n.names[sq] = name
	n.squares[name] = sq
	return name
}

// Square resolves a minted constant.
func (n *Namer) Square(name string) (Square, bool) {
	sq, ok := n.squares[name]
	return sq, ok
}

// Len returns how many names have been minted.
func (n *Namer) Len() int { return n.next }
