package board

// seeValues mirrors the standard SEE convention of treating knights and
// bishops as equal: a minor-piece trade is never assumed to favor
// either side, which keeps the swap algorithm from being fooled by the
// arbitrary 10-point split a full evaluator might use between them.
var seeValues = [7]int{100, 300, 300, 500, 900, 20000, 0}

// SEEGe implements see_ge: true if the static exchange evaluation of
// playing m is at least threshold. This is the form the move selector
// and quiescence search actually want — a yes/no pruning decision,
// computed without ever calling MakeMove.
func (p *Position) SEEGe(m Move, threshold int) bool {
	from := m.From()
	to := m.To()

	if m.IsCastling() {
		return 0 >= threshold
	}

	attacker := p.PieceAt(from)
	if attacker == NoPiece {
		return 0 >= threshold
	}

	var gain int
	if m.IsEnPassant() {
		gain = seeValues[Pawn]
	} else if victim := p.PieceAt(to); victim != NoPiece {
		gain = seeValues[victim.Type()]
	}
	if m.IsPromotion() {
		gain += seeValues[m.Promotion()] - seeValues[Pawn]
	}

	// gain is what we win outright; if even that falls short there is
	// no point simulating the recapture sequence.
	balance := gain - threshold
	if balance < 0 {
		return false
	}

	nextVictim := attacker.Type()
	if m.IsPromotion() {
		nextVictim = m.Promotion()
	}
	balance -= seeValues[nextVictim]
	if balance >= 0 {
		// Even losing the moved piece outright still meets the threshold.
		return true
	}

	occupied := p.AllOccupied &^ SquareBB(from)
	if m.IsEnPassant() {
		var capSq Square
		if attacker.Color() == White {
			capSq = to - 8
		} else {
			capSq = to + 8
		}
		occupied &^= SquareBB(capSq)
	}

	us := attacker.Color()
	them := us.Other()
	side := them

	attackersToSq := func() Bitboard {
		return p.AttackersTo(to, occupied) & occupied
	}

	for {
		attackers := attackersToSq() & p.colorOccupancy(side, occupied)
		if attackers == 0 {
			break
		}

		sq, piece, ok := leastValuableAttacker(p, attackers, side)
		if !ok {
			break
		}
		occupied &^= SquareBB(sq)

		balance = -balance - 1 - seeValues[piece.Type()]
		side = side.Other()

		if balance >= 0 {
			// A king may not capture onto a square the other side still
			// attacks, so such a capture counts as not made.
			if piece.Type() == King && attackersToSq()&p.colorOccupancy(side, occupied) != 0 {
				side = side.Other()
			}
			break
		}
	}

	return side != us
}

// colorOccupancy returns occupied squares belonging to c, restricted to
// the swap algorithm's shrinking occupied set.
func (p *Position) colorOccupancy(c Color, occupied Bitboard) Bitboard {
	return p.Occupied[c] & occupied
}

// leastValuableAttacker picks the cheapest piece in attackers (all of
// which belong to side), recomputing slider attacks against the
// current occupied set so x-rays revealed mid-sequence are respected.
func leastValuableAttacker(p *Position, attackers Bitboard, side Color) (Square, Piece, bool) {
	for pt := Pawn; pt <= King; pt++ {
		bb := attackers & p.Pieces[side][pt]
		if bb != 0 {
			return bb.LSB(), NewPiece(pt, side), true
		}
	}
	return NoSquare, NoPiece, false
}
