package engine

import "github.com/hailam/chessplay/internal/board"

// Search constants shared by the worker pool, transposition table, and
// move ordering: the mate-distance encoding and ply ceiling below them
// determine how far a PVTable or undo stack needs to reach.
const (
	Infinity  = 30000
	MateScore = 29000
	MaxPly    = 128
)

// PVTable stores, for each ply, the line of moves a search believes is
// best from that point on. Index 0 is the principal variation from the
// root.
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}
