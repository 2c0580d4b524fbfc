package board

import "fmt"

// Move encodes a chess move in 32 bits:
//
//	bits 0-5:   from square (0-63)
//	bits 6-11:  to square (0-63)
//	bits 12-15: promotion piece type (NoPieceType when not a promotion)
//	bits 16-31: flags (capture, en-passant, promotion, king/queen castle, null-move)
//
// Castling is recorded Chess960-style: from is the king's origin square,
// to is the *rook's* origin square, not the king's landing square. The
// rook's origin is data (Position.CastleRookFrom), never a hard-coded
// file, so standard-chess and Chess960 castling share one encoding.
type Move uint32

// Move flag bits.
const (
	FlagCapture      uint32 = 1 << 16
	FlagEnPassant    uint32 = 1 << 17
	FlagPromotion    uint32 = 1 << 18
	FlagKingCastle   uint32 = 1 << 19
	FlagQueenCastle  uint32 = 1 << 20
	FlagNull         uint32 = 1 << 21
	FlagDoublePush   uint32 = 1 << 22
)

const (
	fromMask  Move = 0x3F
	toMask    Move = 0x3F << 6
	promoMask Move = 0xF << 12
)

// NoMove represents an invalid or absent move.
const NoMove Move = 0

// NullMove is the distinguished null-move value used by null-move pruning.
// It is never equal to NoMove or to any real move because its flag bit
// cannot be produced by the from/to/promo encoding of a real square pair.
var NullMove = Move(uint32(NewMove(A1, A1)) | FlagNull)

// NewMove creates a plain, non-capturing, non-special move.
func NewMove(from, to Square) Move {
	return Move(from) | Move(to)<<6 | Move(NoPieceType)<<12
}

// NewCapture creates a normal capture move.
func NewCapture(from, to Square) Move {
	return Move(uint32(NewMove(from, to)) | FlagCapture)
}

// NewPromotion creates a (non-capturing) promotion move.
func NewPromotion(from, to Square, promo PieceType) Move {
	m := Move(from) | Move(to)<<6 | Move(promo)<<12
	return Move(uint32(m) | FlagPromotion)
}

// NewPromotionCapture creates a capturing promotion move.
func NewPromotionCapture(from, to Square, promo PieceType) Move {
	return Move(uint32(NewPromotion(from, to, promo)) | FlagCapture)
}

// NewEnPassant creates an en-passant capture move.
func NewEnPassant(from, to Square) Move {
	return Move(uint32(NewMove(from, to)) | FlagEnPassant | FlagCapture)
}

// NewCastling creates a castling move. from is the king's origin square,
// rookFrom is the rook's origin square (Chess960-style encoding).
func NewCastling(from, rookFrom Square, kingSide bool) Move {
	m := Move(from) | Move(rookFrom)<<6 | Move(NoPieceType)<<12
	if kingSide {
		return Move(uint32(m) | FlagKingCastle)
	}
	return Move(uint32(m) | FlagQueenCastle)
}

// From returns the origin square (the king's square, for castling moves).
func (m Move) From() Square {
	return Square(m & fromMask)
}

// To returns the destination square. For castling moves this is the
// rook's origin square, not the king's landing square; use
// Position.CastleKingTo/CastleRookTo to resolve the landing squares.
func (m Move) To() Square {
	return Square((m & toMask) >> 6)
}

// Promotion returns the promotion piece type, or NoPieceType if this is
// not a promotion.
func (m Move) Promotion() PieceType {
	return PieceType((m & promoMask) >> 12)
}

// IsPromotion returns true if this move promotes a pawn.
func (m Move) IsPromotion() bool {
	return uint32(m)&FlagPromotion != 0
}

// IsCastling returns true if this move is a castle (either side).
func (m Move) IsCastling() bool {
	return uint32(m)&(FlagKingCastle|FlagQueenCastle) != 0
}

// IsKingSideCastle returns true if this is a king-side castle.
func (m Move) IsKingSideCastle() bool {
	return uint32(m)&FlagKingCastle != 0
}

// IsQueenSideCastle returns true if this is a queen-side castle.
func (m Move) IsQueenSideCastle() bool {
	return uint32(m)&FlagQueenCastle != 0
}

// IsEnPassant returns true if this move is an en-passant capture.
func (m Move) IsEnPassant() bool {
	return uint32(m)&FlagEnPassant != 0
}

// IsDoublePush returns true if this move is a two-square pawn push.
func (m Move) IsDoublePush() bool {
	return uint32(m)&FlagDoublePush != 0
}

// IsNull returns true if this is the distinguished null move.
func (m Move) IsNull() bool {
	return uint32(m)&FlagNull != 0
}

// IsCapture returns true if the move's flags mark it a capture. Flags are
// set at generation time, so this never needs to consult a Position.
func (m Move) IsCapture() bool {
	return uint32(m)&FlagCapture != 0
}

// IsTactical returns true for captures and promotions: the subset the
// move selector and quiescence search treat as "noisy".
func (m Move) IsTactical() bool {
	return m.IsCapture() || m.IsPromotion()
}

// IsQuiet returns true if this move is neither a capture nor a promotion.
func (m Move) IsQuiet() bool {
	return !m.IsTactical()
}

// withDoublePush marks a move as a two-square pawn push, as reported by
// IsDoublePush. MakeMove sets the en-passant square from the distance
// the pawn moved, not from this flag.
func withDoublePush(m Move) Move {
	return Move(uint32(m) | FlagDoublePush)
}

// withCapture marks a move as a capture after the fact (used when
// generating quiet-looking moves that turn out to land on an occupied
// square, e.g. castling legality does not need this, but some callers
// build moves before knowing occupancy).
func withCapture(m Move) Move {
	return Move(uint32(m) | FlagCapture)
}

// promoChar maps a promotion PieceType to its lowercase UCI letter.
var promoChar = [6]byte{0, 'n', 'b', 'r', 'q', 0}

// String returns the UCI text form of the move (e.g. "e2e4", "e7e8q").
// Castling is rendered king-to-G/C (standard form), matching the output
// convention described in the external-interface contract; king-to-rook
// Chess960 input is still accepted by ParseMove.
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	if m.IsCastling() {
		from := m.From()
		rank := from.Rank()
		if m.IsKingSideCastle() {
			return from.String() + NewSquare(6, rank).String()
		}
		return from.String() + NewSquare(2, rank).String()
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string(promoChar[m.Promotion()])
	}
	return s
}

// MoveList is a fixed-size list of moves that avoids heap allocation
// during move generation.
type MoveList struct {
	moves [256]Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add appends a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Set sets the move at index i.
func (ml *MoveList) Set(i int, m Move) {
	ml.moves[i] = m
}

// Swap swaps two moves in the list.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Clear empties the list without releasing its backing array.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains returns true if the list already holds the move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice backed by the list's own array.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

// HistoryEntry is one frame of a Position's history stack, pushed by
// make_move/make_null_move and popped by the matching unmake. It is a
// plain value (no owning pointers) so a Position containing a bounded
// array of these is bit-copyable, per the Chess960/worker-pool design
// notes: cloning a Position for a new worker is just a struct copy.
type HistoryEntry struct {
	Move           Move
	Captured       Piece
	CastlingRights CastlingRights
	EnPassant      Square
	HalfMoveClock  int
	Signature      uint64
	Null           bool
}

// UndoInfo is returned by MakeMove; Valid is false if the move could not
// be applied at all (missing piece at from) and the position was left
// untouched. Any move that was applied but revealed the mover's own king
// to check is also reported as invalid by MakeMove, with the position
// fully rolled back, matching the "pseudo-legal generator + make_move
// reports illegal" contract.
type UndoInfo struct {
	Valid bool
}

// ParseMove parses a UCI move string against pos, which must be the
// position the move is to be played from. Accepts both king-to-G/C
// (standard) and king-to-rook (Chess960) castling notation on input.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) < 4 {
		return NoMove, fmt.Errorf("invalid move string: %q", s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	piece := pos.PieceAt(from)
	if piece == NoPiece || piece.Color() != pos.SideToMove {
		return NoMove, fmt.Errorf("no %s piece at %s", pos.SideToMove, from)
	}
	pt := piece.Type()

	if len(s) >= 5 {
		var promo PieceType
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("invalid promotion piece: %c", s[4])
		}
		if pos.IsEmpty(to) {
			return NewPromotion(from, to, promo), nil
		}
		return NewPromotionCapture(from, to, promo), nil
	}

	if pt == King {
		us := pos.SideToMove
		rookFrom := pos.CastleRookFrom[us][0]
		if to == rookFrom || to == NewSquare(6, from.Rank()) {
			if rf, ok := pos.castleRights(us, true); ok {
				return NewCastling(from, rf, true), nil
			}
		}
		rookFrom = pos.CastleRookFrom[us][1]
		if to == rookFrom || to == NewSquare(2, from.Rank()) {
			if rf, ok := pos.castleRights(us, false); ok {
				return NewCastling(from, rf, false), nil
			}
		}
	}

	if pt == Pawn && to == pos.EnPassant && pos.EnPassant != NoSquare {
		return NewEnPassant(from, to), nil
	}

	if pt == Pawn && abs(int(to)-int(from)) == 16 {
		if pos.IsEmpty(to) {
			return withDoublePush(NewMove(from, to)), nil
		}
	}

	if pos.IsEmpty(to) {
		return NewMove(from, to), nil
	}
	return NewCapture(from, to), nil
}
