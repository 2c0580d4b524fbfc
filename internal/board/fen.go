package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a FEN string and returns a Position.
func ParseFEN(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return nil, fmt.Errorf("invalid FEN: need at least 4 fields, got %d", len(parts))
	}

	pos := &Position{
		EnPassant:      NoSquare,
		FullMoveNumber: 1,
	}
	pos.KingSquare[White] = NoSquare
	pos.KingSquare[Black] = NoSquare

	// Parse piece placement (field 0)
	if err := parsePiecePlacement(pos, parts[0]); err != nil {
		return nil, err
	}

	// Parse side to move (field 1)
	switch parts[1] {
	case "w":
		pos.SideToMove = White
	case "b":
		pos.SideToMove = Black
	default:
		return nil, fmt.Errorf("invalid side to move: %s", parts[1])
	}

	// Parse castling rights (field 2)
	if err := parseCastlingRights(pos, parts[2]); err != nil {
		return nil, err
	}

	// Parse en passant square (field 3)
	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil {
			return nil, fmt.Errorf("invalid en passant square: %s", parts[3])
		}
		pos.EnPassant = sq
	}

	// Parse half-move clock (field 4, optional)
	if len(parts) > 4 {
		hmc, err := strconv.Atoi(parts[4])
		if err != nil {
			return nil, fmt.Errorf("invalid half-move clock: %s", parts[4])
		}
		pos.HalfMoveClock = hmc
	}

	// Parse full-move number (field 5, optional)
	if len(parts) > 5 {
		fmn, err := strconv.Atoi(parts[5])
		if err != nil {
			return nil, fmt.Errorf("invalid full-move number: %s", parts[5])
		}
		pos.FullMoveNumber = fmn
	}

	// Update derived state
	pos.updateOccupied()
	pos.rebuildPieceBoard()
	pos.findKings()
	pos.Hash = pos.ComputeHash()
	pos.PawnKey = pos.ComputePawnKey()
	pos.Ply = 2*(pos.FullMoveNumber-1) + int(pos.SideToMove)

	return pos, nil
}

// parsePiecePlacement parses the piece placement section of a FEN string.
func parsePiecePlacement(pos *Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("invalid piece placement: need 8 ranks, got %d", len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i // FEN starts from rank 8
		file := 0

		for _, c := range rankStr {
			if file > 7 {
				return fmt.Errorf("too many squares in rank %d", rank+1)
			}

			if c >= '1' && c <= '8' {
				// Skip empty squares
				file += int(c - '0')
			} else {
				// Place a piece
				piece := PieceFromChar(byte(c))
				if piece == NoPiece {
					return fmt.Errorf("invalid piece character: %c", c)
				}
				sq := NewSquare(file, rank)
				pos.setPiece(piece, sq)
				file++
			}
		}

		if file != 8 {
			return fmt.Errorf("invalid number of squares in rank %d: got %d", rank+1, file)
		}
	}

	return nil
}

// parseCastlingRights parses the castling rights section of a FEN
// string. Accepts both standard KQkq notation and Shredder-FEN/Chess960
// notation (a file letter, upper for white, lower for black, naming the
// rook's starting file directly) — both forms resolve to a rook-origin
// square recorded in Position.CastleRookFrom, so downstream castling
// logic never special-cases which notation produced it.
func parseCastlingRights(pos *Position, castling string) error {
	pos.CastleRookFrom[White][0] = NoSquare
	pos.CastleRookFrom[White][1] = NoSquare
	pos.CastleRookFrom[Black][0] = NoSquare
	pos.CastleRookFrom[Black][1] = NoSquare

	if castling == "-" {
		pos.CastlingRights = NoCastling
		return nil
	}

	grant := func(c Color, rookFile int) {
		kingFile := pos.KingSquare[c].File()
		rank := 0
		right := WhiteQueenSideCastle
		idx := 1
		if c == Black {
			rank = 7
		}
		if rookFile > kingFile {
			if c == White {
				right = WhiteKingSideCastle
			} else {
				right = BlackKingSideCastle
			}
			idx = 0
		} else if c == Black {
			right = BlackQueenSideCastle
		}
		pos.CastlingRights |= right
		pos.CastleRookFrom[c][idx] = NewSquare(rookFile, rank)
	}

	for _, c := range castling {
		switch {
		case c == 'K':
			grant(White, findRookFile(pos, White, true))
		case c == 'Q':
			grant(White, findRookFile(pos, White, false))
		case c == 'k':
			grant(Black, findRookFile(pos, Black, true))
		case c == 'q':
			grant(Black, findRookFile(pos, Black, false))
		case c >= 'A' && c <= 'H':
			grant(White, int(c-'A'))
		case c >= 'a' && c <= 'h':
			grant(Black, int(c-'a'))
		default:
			return fmt.Errorf("invalid castling character: %c", c)
		}
	}

	return nil
}

// findRookFile locates the outermost rook on color c's back rank on the
// king side (kingSide=true) or queen side, for the standard KQkq
// notation where the rook's file must be inferred from the board.
func findRookFile(pos *Position, c Color, kingSide bool) int {
	rank := 0
	if c == Black {
		rank = 7
	}
	kingFile := pos.KingSquare[c].File()
	rooks := pos.Pieces[c][Rook] & RankMask[rank]

	best := -1
	for f := 0; f < 8; f++ {
		if rooks&SquareBB(NewSquare(f, rank)) == 0 {
			continue
		}
		if kingSide && f > kingFile {
			best = f
		}
		if !kingSide && f < kingFile && best == -1 {
			best = f
		}
	}
	if best == -1 {
		if kingSide {
			return 7
		}
		return 0
	}
	return best
}

// ToFEN returns the FEN representation of the position.
func (p *Position) ToFEN() string {
	var sb strings.Builder

	// Piece placement
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			sq := NewSquare(file, rank)
			piece := p.PieceAt(sq)
			if piece == NoPiece {
				empty++
			} else {
				if empty > 0 {
					sb.WriteString(strconv.Itoa(empty))
					empty = 0
				}
				sb.WriteString(piece.String())
			}
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	// Side to move
	sb.WriteByte(' ')
	if p.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	// Castling rights
	sb.WriteByte(' ')
	sb.WriteString(p.CastlingRights.String())

	// En passant
	sb.WriteByte(' ')
	sb.WriteString(p.EnPassant.String())

	// Half-move clock and full-move number
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.HalfMoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.FullMoveNumber))

	return sb.String()
}

// ComputeHash computes the Zobrist hash for the position from scratch,
// using the key tables initialized in zobrist.go.
func (p *Position) ComputeHash() uint64 {
	var hash uint64

	// Hash pieces
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			bb := p.Pieces[c][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				hash ^= zobristPiece[c][pt][sq]
			}
		}
	}

	// Hash side to move
	if p.SideToMove == Black {
		hash ^= zobristSideToMove
	}

	// Hash castling rights
	hash ^= zobristCastling[p.CastlingRights]

	// Hash en passant
	if p.EnPassant != NoSquare {
		hash ^= zobristEnPassant[p.EnPassant.File()]
	}

	return hash
}

// ComputePawnKey computes the pawn hash key from scratch.
// Only includes pawn positions for pawn structure caching.
func (p *Position) ComputePawnKey() uint64 {
	var key uint64

	for c := White; c <= Black; c++ {
		bb := p.Pieces[c][Pawn]
		for bb != 0 {
			sq := bb.PopLSB()
			key ^= zobristPiece[c][Pawn][sq]
		}
	}

	return key
}
