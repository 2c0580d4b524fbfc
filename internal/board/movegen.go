package board

// GenerateLegalMoves generates all legal moves for the position.
func (p *Position) GenerateLegalMoves() *MoveList {
	ml := NewMoveList()
	if p.InCheck() {
		p.GenerateCheckEvasions(ml)
	} else {
		p.generateQuietMoves(ml)
		p.generateCaptureMoves(ml)
		p.generatePromotionMoves(ml)
	}
	return p.filterLegalMoves(ml)
}

// GeneratePseudoLegalMoves generates all pseudo-legal moves (may leave
// the king in check; callers filter with IsLegal).
func (p *Position) GeneratePseudoLegalMoves() *MoveList {
	ml := NewMoveList()
	if p.InCheck() {
		p.GenerateCheckEvasions(ml)
		return ml
	}
	p.generateQuietMoves(ml)
	p.generateCaptureMoves(ml)
	p.generatePromotionMoves(ml)
	return ml
}

// GenerateCaptures generates capturing moves (including en passant) and
// all promotions, capturing or not, filtered for legality. Used by
// quiescence.
func (p *Position) GenerateCaptures() *MoveList {
	ml := NewMoveList()
	if p.InCheck() {
		p.GenerateCheckEvasions(ml)
		captures := NewMoveList()
		for i := 0; i < ml.Len(); i++ {
			if m := ml.Get(i); m.IsTactical() {
				captures.Add(m)
			}
		}
		return p.filterLegalMoves(captures)
	}
	p.generateCaptureMoves(ml)
	p.generatePromotionMoves(ml)
	return p.filterLegalMoves(ml)
}

// generateQuietMoves generates gen_quiet: every pseudo-legal,
// non-capturing, non-promoting move when the side to move is not in
// check. Castling is included here since it never captures.
func (p *Position) generateQuietMoves(ml *MoveList) {
	us := p.SideToMove
	occupied := p.AllOccupied
	empty := ^occupied

	pawns := p.Pieces[us][Pawn]
	var push1, push2 Bitboard
	var promotionRank Bitboard
	var pushDir int
	if us == White {
		push1 = pawns.North() & empty
		push2 = (push1 & Rank3).North() & empty
		promotionRank = Rank8
		pushDir = 8
	} else {
		push1 = pawns.South() & empty
		push2 = (push1 & Rank6).South() & empty
		promotionRank = Rank1
		pushDir = -8
	}

	nonPromo := push1 & ^promotionRank
	for nonPromo != 0 {
		to := nonPromo.PopLSB()
		from := Square(int(to) - pushDir)
		ml.Add(NewMove(from, to))
	}
	for push2 != 0 {
		to := push2.PopLSB()
		from := Square(int(to) - 2*pushDir)
		ml.Add(withDoublePush(NewMove(from, to)))
	}

	knights := p.Pieces[us][Knight]
	for knights != 0 {
		from := knights.PopLSB()
		attacks := KnightAttacks(from) & empty
		for attacks != 0 {
			ml.Add(NewMove(from, attacks.PopLSB()))
		}
	}
	bishops := p.Pieces[us][Bishop]
	for bishops != 0 {
		from := bishops.PopLSB()
		attacks := BishopAttacks(from, occupied) & empty
		for attacks != 0 {
			ml.Add(NewMove(from, attacks.PopLSB()))
		}
	}
	rooks := p.Pieces[us][Rook]
	for rooks != 0 {
		from := rooks.PopLSB()
		attacks := RookAttacks(from, occupied) & empty
		for attacks != 0 {
			ml.Add(NewMove(from, attacks.PopLSB()))
		}
	}
	queens := p.Pieces[us][Queen]
	for queens != 0 {
		from := queens.PopLSB()
		attacks := QueenAttacks(from, occupied) & empty
		for attacks != 0 {
			ml.Add(NewMove(from, attacks.PopLSB()))
		}
	}

	from := p.KingSquare[us]
	attacks := KingAttacks(from) & empty
	for attacks != 0 {
		ml.Add(NewMove(from, attacks.PopLSB()))
	}

	p.generateCastlingMoves(ml, us)
}

// generateCaptureMoves generates gen_captures: every pseudo-legal
// capture, including en passant, excluding capturing promotions (those
// belong to gen_promotions so the two sets stay disjoint).
func (p *Position) generateCaptureMoves(ml *MoveList) {
	us := p.SideToMove
	them := us.Other()
	enemies := p.Occupied[them]
	occupied := p.AllOccupied

	pawns := p.Pieces[us][Pawn]
	var attackL, attackR Bitboard
	var promotionRank Bitboard
	var pushDir int
	if us == White {
		attackL = pawns.NorthWest() & enemies
		attackR = pawns.NorthEast() & enemies
		promotionRank = Rank8
		pushDir = 8
	} else {
		attackL = pawns.SouthWest() & enemies
		attackR = pawns.SouthEast() & enemies
		promotionRank = Rank1
		pushDir = -8
	}

	nonPromoL := attackL & ^promotionRank
	for nonPromoL != 0 {
		to := nonPromoL.PopLSB()
		ml.Add(NewCapture(Square(int(to)-pushDir+1), to))
	}
	nonPromoR := attackR & ^promotionRank
	for nonPromoR != 0 {
		to := nonPromoR.PopLSB()
		ml.Add(NewCapture(Square(int(to)-pushDir-1), to))
	}

	if p.EnPassant != NoSquare {
		epBB := SquareBB(p.EnPassant)
		var epAttackers Bitboard
		if us == White {
			epAttackers = (epBB.SouthWest() | epBB.SouthEast()) & pawns
		} else {
			epAttackers = (epBB.NorthWest() | epBB.NorthEast()) & pawns
		}
		for epAttackers != 0 {
			ml.Add(NewEnPassant(epAttackers.PopLSB(), p.EnPassant))
		}
	}

	knights := p.Pieces[us][Knight]
	for knights != 0 {
		from := knights.PopLSB()
		attacks := KnightAttacks(from) & enemies
		for attacks != 0 {
			ml.Add(NewCapture(from, attacks.PopLSB()))
		}
	}
	bishops := p.Pieces[us][Bishop]
	for bishops != 0 {
		from := bishops.PopLSB()
		attacks := BishopAttacks(from, occupied) & enemies
		for attacks != 0 {
			ml.Add(NewCapture(from, attacks.PopLSB()))
		}
	}
	rooks := p.Pieces[us][Rook]
	for rooks != 0 {
		from := rooks.PopLSB()
		attacks := RookAttacks(from, occupied) & enemies
		for attacks != 0 {
			ml.Add(NewCapture(from, attacks.PopLSB()))
		}
	}
	queens := p.Pieces[us][Queen]
	for queens != 0 {
		from := queens.PopLSB()
		attacks := QueenAttacks(from, occupied) & enemies
		for attacks != 0 {
			ml.Add(NewCapture(from, attacks.PopLSB()))
		}
	}

	from := p.KingSquare[us]
	attacks := KingAttacks(from) & enemies
	for attacks != 0 {
		ml.Add(NewCapture(from, attacks.PopLSB()))
	}
}

// generatePromotionMoves generates gen_promotions: every pawn move onto
// the last rank, quiet or capturing, expanded into the four promotion
// pieces each.
func (p *Position) generatePromotionMoves(ml *MoveList) {
	us := p.SideToMove
	them := us.Other()
	enemies := p.Occupied[them]
	occupied := p.AllOccupied
	empty := ^occupied
	pawns := p.Pieces[us][Pawn]

	var push1, attackL, attackR Bitboard
	var promotionRank Bitboard
	var pushDir int
	if us == White {
		push1 = pawns.North() & empty & Rank8
		attackL = pawns.NorthWest() & enemies & Rank8
		attackR = pawns.NorthEast() & enemies & Rank8
		promotionRank = Rank8
		pushDir = 8
	} else {
		push1 = pawns.South() & empty & Rank1
		attackL = pawns.SouthWest() & enemies & Rank1
		attackR = pawns.SouthEast() & enemies & Rank1
		promotionRank = Rank1
		pushDir = -8
	}
	_ = promotionRank

	for push1 != 0 {
		to := push1.PopLSB()
		addPromotions(ml, Square(int(to)-pushDir), to)
	}
	for attackL != 0 {
		to := attackL.PopLSB()
		addPromotionCaptures(ml, Square(int(to)-pushDir+1), to)
	}
	for attackR != 0 {
		to := attackR.PopLSB()
		addPromotionCaptures(ml, Square(int(to)-pushDir-1), to)
	}
}

// addPromotions adds the four non-capturing promotion moves.
func addPromotions(ml *MoveList, from, to Square) {
	ml.Add(NewPromotion(from, to, Queen))
	ml.Add(NewPromotion(from, to, Rook))
	ml.Add(NewPromotion(from, to, Bishop))
	ml.Add(NewPromotion(from, to, Knight))
}

// addPromotionCaptures adds the four capturing promotion moves.
func addPromotionCaptures(ml *MoveList, from, to Square) {
	ml.Add(NewPromotionCapture(from, to, Queen))
	ml.Add(NewPromotionCapture(from, to, Rook))
	ml.Add(NewPromotionCapture(from, to, Bishop))
	ml.Add(NewPromotionCapture(from, to, Knight))
}

// GenerateCheckEvasions generates gen_check_evasions per the in-check
// algorithm: king moves with the king lifted off the board (so sliding
// checkers' x-rays are respected), and, against a single checker only,
// captures of the checker or blocks of the line between checker and
// king (including en passant capture of a checking pawn). Against a
// double check only king moves are legal.
func (p *Position) GenerateCheckEvasions(ml *MoveList) {
	us := p.SideToMove
	them := us.Other()
	ksq := p.KingSquare[us]

	occWithoutKing := p.AllOccupied &^ SquareBB(ksq)
	kingTargets := KingAttacks(ksq) & ^p.Occupied[us]
	for kingTargets != 0 {
		to := kingTargets.PopLSB()
		if p.AttackersByColor(to, them, occWithoutKing) != 0 {
			continue
		}
		if p.Occupied[them]&SquareBB(to) != 0 {
			ml.Add(NewCapture(ksq, to))
		} else {
			ml.Add(NewMove(ksq, to))
		}
	}

	if p.Checkers.PopCount() >= 2 {
		return
	}

	checkerSq := p.Checkers.LSB()
	checkerPt := p.PieceAt(checkerSq).Type()
	targets := SquareBB(checkerSq)
	if checkerPt == Bishop || checkerPt == Rook || checkerPt == Queen {
		targets |= Between(checkerSq, ksq)
	}

	p.genNonKingMovesTo(ml, us, targets)

	// En passant capture of a checking pawn: the captured pawn sits on
	// checkerSq, but the move's destination is the en passant square.
	if p.EnPassant != NoSquare && checkerPt == Pawn {
		var capturedByEP Square
		if us == White {
			capturedByEP = p.EnPassant - 8
		} else {
			capturedByEP = p.EnPassant + 8
		}
		if capturedByEP == checkerSq {
			epBB := SquareBB(p.EnPassant)
			pawns := p.Pieces[us][Pawn]
			var attackers Bitboard
			if us == White {
				attackers = (epBB.SouthWest() | epBB.SouthEast()) & pawns
			} else {
				attackers = (epBB.NorthWest() | epBB.NorthEast()) & pawns
			}
			for attackers != 0 {
				ml.Add(NewEnPassant(attackers.PopLSB(), p.EnPassant))
			}
		}
	}
}

// genNonKingMovesTo adds every pseudo-legal non-king move (pawn pushes,
// pawn captures, promotions, and piece moves) whose destination lies in
// targets. Used by check-evasion generation to restrict everything but
// the king to capturing the checker or blocking its line of attack.
func (p *Position) genNonKingMovesTo(ml *MoveList, us Color, targets Bitboard) {
	them := us.Other()
	occupied := p.AllOccupied
	empty := ^occupied
	enemies := p.Occupied[them]
	pawns := p.Pieces[us][Pawn]

	var push1, push2, attackL, attackR Bitboard
	var promotionRank Bitboard
	var pushDir int
	if us == White {
		push1 = pawns.North() & empty
		push2 = (push1 & Rank3).North() & empty
		attackL = pawns.NorthWest() & enemies
		attackR = pawns.NorthEast() & enemies
		promotionRank = Rank8
		pushDir = 8
	} else {
		push1 = pawns.South() & empty
		push2 = (push1 & Rank6).South() & empty
		attackL = pawns.SouthWest() & enemies
		attackR = pawns.SouthEast() & enemies
		promotionRank = Rank1
		pushDir = -8
	}

	push1 &= targets
	push2 &= targets
	attackL &= targets
	attackR &= targets

	nonPromoPush := push1 & ^promotionRank
	for nonPromoPush != 0 {
		to := nonPromoPush.PopLSB()
		ml.Add(NewMove(Square(int(to)-pushDir), to))
	}
	for push2 != 0 {
		to := push2.PopLSB()
		ml.Add(withDoublePush(NewMove(Square(int(to)-2*pushDir), to)))
	}
	nonPromoL := attackL & ^promotionRank
	for nonPromoL != 0 {
		to := nonPromoL.PopLSB()
		ml.Add(NewCapture(Square(int(to)-pushDir+1), to))
	}
	nonPromoR := attackR & ^promotionRank
	for nonPromoR != 0 {
		to := nonPromoR.PopLSB()
		ml.Add(NewCapture(Square(int(to)-pushDir-1), to))
	}
	promoPush := push1 & promotionRank
	for promoPush != 0 {
		to := promoPush.PopLSB()
		addPromotions(ml, Square(int(to)-pushDir), to)
	}
	promoL := attackL & promotionRank
	for promoL != 0 {
		to := promoL.PopLSB()
		addPromotionCaptures(ml, Square(int(to)-pushDir+1), to)
	}
	promoR := attackR & promotionRank
	for promoR != 0 {
		to := promoR.PopLSB()
		addPromotionCaptures(ml, Square(int(to)-pushDir-1), to)
	}

	addPieceMovesTo := func(from Square, attacks Bitboard) {
		attacks &= targets
		for attacks != 0 {
			to := attacks.PopLSB()
			if enemies&SquareBB(to) != 0 {
				ml.Add(NewCapture(from, to))
			} else {
				ml.Add(NewMove(from, to))
			}
		}
	}
	knights := p.Pieces[us][Knight]
	for knights != 0 {
		from := knights.PopLSB()
		addPieceMovesTo(from, KnightAttacks(from))
	}
	bishops := p.Pieces[us][Bishop]
	for bishops != 0 {
		from := bishops.PopLSB()
		addPieceMovesTo(from, BishopAttacks(from, occupied))
	}
	rooks := p.Pieces[us][Rook]
	for rooks != 0 {
		from := rooks.PopLSB()
		addPieceMovesTo(from, RookAttacks(from, occupied))
	}
	queens := p.Pieces[us][Queen]
	for queens != 0 {
		from := queens.PopLSB()
		addPieceMovesTo(from, QueenAttacks(from, occupied))
	}
}

// generateCastlingMoves generates castling moves, Chess960-aware: the
// rook's origin square comes from Position.CastleRookFrom rather than a
// hard-coded file, so the same code serves standard chess and Chess960.
func (p *Position) generateCastlingMoves(ml *MoveList, us Color) {
	if rookFrom, ok := p.castleRights(us, true); ok && p.canCastle(us, rookFrom, true) {
		ml.Add(NewCastling(p.KingSquare[us], rookFrom, true))
	}
	if rookFrom, ok := p.castleRights(us, false); ok && p.canCastle(us, rookFrom, false) {
		ml.Add(NewCastling(p.KingSquare[us], rookFrom, false))
	}
}

// canCastle checks occupancy and attacked-square requirements for one
// castling direction, generalized over arbitrary king/rook origin
// squares so it applies unchanged to Chess960 starting setups.
func (p *Position) canCastle(us Color, rookFrom Square, kingSide bool) bool {
	from := p.KingSquare[us]
	rank := from.Rank()
	var kingTo, rookTo Square
	if kingSide {
		kingTo = NewSquare(6, rank)
		rookTo = NewSquare(5, rank)
	} else {
		kingTo = NewSquare(2, rank)
		rookTo = NewSquare(3, rank)
	}

	mustBeEmpty := (Between(from, kingTo) | SquareBB(kingTo)) | (Between(rookFrom, rookTo) | SquareBB(rookTo))
	mustBeEmpty &^= SquareBB(from) | SquareBB(rookFrom)
	if p.AllOccupied&mustBeEmpty != 0 {
		return false
	}

	them := us.Other()
	transit := Between(from, kingTo) | SquareBB(from) | SquareBB(kingTo)
	for transit != 0 {
		if p.IsSquareAttacked(transit.PopLSB(), them) {
			return false
		}
	}
	return true
}

// filterLegalMoves filters out illegal moves (those that leave king in check).
func (p *Position) filterLegalMoves(ml *MoveList) *MoveList {
	result := NewMoveList()
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		if p.IsLegal(m) {
			result.Add(m)
		}
	}
	return result
}

// IsLegal returns true if the move is legal (doesn't leave the mover's
// king in check). King moves (including castling) are checked directly
// against the attacker set; everything else is verified with a real
// make/unmake, which is the only fully general way to account for
// pins, discovered checks, and en passant's double-capture edge case.
func (p *Position) IsLegal(m Move) bool {
	us := p.SideToMove
	them := us.Other()
	from := m.From()
	ksq := p.KingSquare[us]

	if from == ksq {
		if m.IsCastling() {
			return true // generation already checked occupancy and transit squares
		}
		occ := p.AllOccupied &^ SquareBB(from)
		return p.AttackersByColor(m.To(), them, occ) == 0
	}

	undo := p.MakeMove(m)
	if !undo.Valid {
		return false
	}
	attacked := p.IsSquareAttacked(ksq, them)
	p.UnmakeMove(m, undo)
	return !attacked
}

// IsPseudoLegal reports whether m could plausibly have been generated
// in the current position, without running full move generation. Used
// to validate a transposition-table move before trying it: false
// positives are acceptable (IsLegal / make_move still catch them), but
// false negatives would reject a genuinely legal move.
func (p *Position) IsPseudoLegal(m Move) bool {
	if m == NoMove || m.IsNull() {
		return false
	}
	us := p.SideToMove
	from, to := m.From(), m.To()
	piece := p.PieceAt(from)
	if piece == NoPiece || piece.Color() != us {
		return false
	}
	pt := piece.Type()

	if m.IsCastling() {
		rookFrom := to
		kingSide := m.IsKingSideCastle()
		want, ok := p.castleRights(us, kingSide)
		return pt == King && ok && want == rookFrom && p.canCastle(us, rookFrom, kingSide)
	}

	if m.IsEnPassant() {
		return pt == Pawn && to == p.EnPassant && p.EnPassant != NoSquare
	}

	target := p.PieceAt(to)
	if target != NoPiece && target.Color() == us {
		return false
	}
	if m.IsCapture() != (target != NoPiece) {
		return false
	}
	switch pt {
	case Pawn:
		return p.isPseudoLegalPawnMove(us, from, to, m)
	case Knight:
		return KnightAttacks(from)&SquareBB(to) != 0
	case Bishop:
		return BishopAttacks(from, p.AllOccupied)&SquareBB(to) != 0
	case Rook:
		return RookAttacks(from, p.AllOccupied)&SquareBB(to) != 0
	case Queen:
		return QueenAttacks(from, p.AllOccupied)&SquareBB(to) != 0
	case King:
		return KingAttacks(from)&SquareBB(to) != 0
	}
	return false
}

func (p *Position) isPseudoLegalPawnMove(us Color, from, to Square, m Move) bool {
	promotionRank := Rank8
	pushDir := 8
	if us == Black {
		promotionRank = Rank1
		pushDir = -8
	}
	isPromoSquare := SquareBB(to)&promotionRank != 0
	if m.IsPromotion() != isPromoSquare {
		return false
	}
	if m.IsCapture() {
		return PawnAttacks(from, us)&SquareBB(to) != 0 && p.Occupied[us.Other()]&SquareBB(to) != 0
	}
	if int(to)-int(from) == pushDir {
		return p.IsEmpty(to)
	}
	if int(to)-int(from) == 2*pushDir {
		mid := Square(int(from) + pushDir)
		startRank := Rank2
		if us == Black {
			startRank = Rank7
		}
		return SquareBB(from)&startRank != 0 && p.IsEmpty(mid) && p.IsEmpty(to)
	}
	return false
}

// MakeMove applies a move to the position, pushing a history entry so
// UnmakeMove can restore exactly this state. Returns Valid=false,
// leaving the position untouched, if from holds no piece, or if the
// move leaves the mover's own king attacked (the move is applied, then
// rolled back). Castling is not re-checked here: its legality is
// settled when the move is generated.
func (p *Position) MakeMove(m Move) UndoInfo {
	us := p.SideToMove
	them := us.Other()
	from := m.From()
	to := m.To()
	piece := p.PieceAt(from)
	if piece == NoPiece {
		return UndoInfo{Valid: false}
	}
	pt := piece.Type()

	entry := HistoryEntry{
		Move:           m,
		Captured:       NoPiece,
		CastlingRights: p.CastlingRights,
		EnPassant:      p.EnPassant,
		HalfMoveClock:  p.HalfMoveClock,
		Signature:      p.Hash,
	}

	p.Hash ^= zobristSideToMove
	p.Hash ^= zobristCastling[p.CastlingRights]
	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
	}
	p.EnPassant = NoSquare

	if m.IsCastling() {
		rookFrom := to
		rank := from.Rank()
		var kingTo, rookTo Square
		if m.IsKingSideCastle() {
			kingTo = NewSquare(6, rank)
			rookTo = NewSquare(5, rank)
		} else {
			kingTo = NewSquare(2, rank)
			rookTo = NewSquare(3, rank)
		}
		p.removePiece(from)
		p.removePiece(rookFrom)
		p.setPiece(piece, kingTo)
		p.setPiece(NewPiece(Rook, us), rookTo)
		p.Hash ^= zobristPiece[us][King][from]
		p.Hash ^= zobristPiece[us][King][kingTo]
		p.Hash ^= zobristPiece[us][Rook][rookFrom]
		p.Hash ^= zobristPiece[us][Rook][rookTo]

		p.clearCastlingRights(us)
		p.Hash ^= zobristCastling[p.CastlingRights]
		p.HalfMoveClock++
		if us == Black {
			p.FullMoveNumber++
		}
		p.SideToMove = them
		p.UpdateCheckers()
		p.pushHistory(entry)
		p.Ply++
		p.Height++
		return UndoInfo{Valid: true}
	}

	if m.IsEnPassant() {
		var capturedSq Square
		if us == White {
			capturedSq = to - 8
		} else {
			capturedSq = to + 8
		}
		entry.Captured = p.removePiece(capturedSq)
		p.Hash ^= zobristPiece[them][Pawn][capturedSq]
	} else if captured := p.PieceAt(to); captured != NoPiece {
		entry.Captured = captured
		p.removePiece(to)
		p.Hash ^= zobristPiece[them][captured.Type()][to]
	}

	p.movePiece(from, to)
	p.Hash ^= zobristPiece[us][pt][from]
	p.Hash ^= zobristPiece[us][pt][to]

	if m.IsPromotion() {
		promoPt := m.Promotion()
		p.Pieces[us][Pawn] &^= SquareBB(to)
		p.Pieces[us][promoPt] |= SquareBB(to)
		p.PieceBoard[to] = NewPiece(promoPt, us)
		p.Hash ^= zobristPiece[us][Pawn][to]
		p.Hash ^= zobristPiece[us][promoPt][to]
	}

	if pt == King {
		p.clearCastlingRights(us)
	}
	p.clearCastlingRightsOnSquare(from)
	p.clearCastlingRightsOnSquare(to)
	p.Hash ^= zobristCastling[p.CastlingRights]

	if pt == Pawn && abs(int(to)-int(from)) == 16 {
		epSquare := Square((int(from) + int(to)) / 2)
		p.EnPassant = epSquare
		p.Hash ^= zobristEnPassant[epSquare.File()]
	}

	if pt == Pawn || entry.Captured != NoPiece {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}
	if us == Black {
		p.FullMoveNumber++
	}

	if pt == Pawn || entry.Captured.Type() == Pawn {
		p.PawnKey = p.ComputePawnKey()
	}

	p.SideToMove = them
	p.UpdateCheckers()
	p.pushHistory(entry)
	p.Ply++
	p.Height++

	if p.IsSquareAttacked(p.KingSquare[us], them) {
		p.UnmakeMove(m, UndoInfo{Valid: true})
		return UndoInfo{Valid: false}
	}

	return UndoInfo{Valid: true}
}

// clearCastlingRights drops both castling rights for color c (a king move).
func (p *Position) clearCastlingRights(c Color) {
	if c == White {
		p.CastlingRights &^= WhiteKingSideCastle | WhiteQueenSideCastle
	} else {
		p.CastlingRights &^= BlackKingSideCastle | BlackQueenSideCastle
	}
}

// clearCastlingRightsOnSquare drops whichever castling right is tied to
// a rook starting on sq, when sq is vacated or captured into. Driven by
// CastleRookFrom data rather than hard-coded files, so it generalizes
// to Chess960 starting setups.
func (p *Position) clearCastlingRightsOnSquare(sq Square) {
	if p.CastleRookFrom[White][0] == sq {
		p.CastlingRights &^= WhiteKingSideCastle
	}
	if p.CastleRookFrom[White][1] == sq {
		p.CastlingRights &^= WhiteQueenSideCastle
	}
	if p.CastleRookFrom[Black][0] == sq {
		p.CastlingRights &^= BlackKingSideCastle
	}
	if p.CastleRookFrom[Black][1] == sq {
		p.CastlingRights &^= BlackQueenSideCastle
	}
}

// UnmakeMove undoes a move, restoring state from the position's own
// history stack rather than from a caller-supplied snapshot.
func (p *Position) UnmakeMove(m Move, undo UndoInfo) {
	if !undo.Valid {
		return
	}
	p.Ply--
	p.Height--
	entry := p.History[p.Ply%maxHistory]

	them := p.SideToMove
	us := them.Other()
	from := m.From()
	to := m.To()

	p.CastlingRights = entry.CastlingRights
	p.EnPassant = entry.EnPassant
	p.HalfMoveClock = entry.HalfMoveClock
	p.Hash = entry.Signature
	p.SideToMove = us

	if us == Black {
		p.FullMoveNumber--
	}

	if m.IsCastling() {
		rookFrom := to
		rank := from.Rank()
		var kingTo, rookTo Square
		if m.IsKingSideCastle() {
			kingTo = NewSquare(6, rank)
			rookTo = NewSquare(5, rank)
		} else {
			kingTo = NewSquare(2, rank)
			rookTo = NewSquare(3, rank)
		}
		p.removePiece(kingTo)
		p.removePiece(rookTo)
		p.setPiece(NewPiece(King, us), from)
		p.setPiece(NewPiece(Rook, us), rookFrom)
		p.UpdateCheckers()
		return
	}

	if m.IsPromotion() {
		promoPt := m.Promotion()
		p.Pieces[us][promoPt] &^= SquareBB(to)
		p.Pieces[us][Pawn] |= SquareBB(to)
		p.PieceBoard[to] = NewPiece(Pawn, us)
	}

	p.movePiece(to, from)

	if entry.Captured != NoPiece {
		if m.IsEnPassant() {
			var capturedSq Square
			if us == White {
				capturedSq = to - 8
			} else {
				capturedSq = to + 8
			}
			p.setPiece(entry.Captured, capturedSq)
		} else {
			p.setPiece(entry.Captured, to)
		}
	}

	if p.PieceBoard[from].Type() == Pawn || entry.Captured.Type() == Pawn {
		p.PawnKey = p.ComputePawnKey()
	}

	p.UpdateCheckers()
}

// HasLegalMoves returns true if the side to move has any legal moves.
func (p *Position) HasLegalMoves() bool {
	ml := p.GeneratePseudoLegalMoves()
	for i := 0; i < ml.Len(); i++ {
		if p.IsLegal(ml.Get(i)) {
			return true
		}
	}
	return false
}

// IsCheckmate returns true if the position is checkmate.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate returns true if the position is stalemate.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}
