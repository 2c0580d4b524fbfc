package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGivesCheckDirect(t *testing.T) {
	// White rook a1, king e1; black king a8. Sliding the rook up the
	// a-file attacks a8 directly.
	pos, err := ParseFEN("k7/8/8/8/8/8/8/R3K3 w - - 0 1")
	require.NoError(t, err)

	move := NewMove(A1, A5)
	assert.True(t, pos.GivesCheck(move))

	quiet := NewMove(E1, D2)
	assert.False(t, pos.GivesCheck(quiet))
}

func TestGivesCheckDiscovered(t *testing.T) {
	// White queen a1, bishop b2 blocking the a1-h8 diagonal, king e1;
	// black king h8. Moving the bishop off the diagonal uncovers the
	// queen's check.
	pos, err := ParseFEN("7k/8/8/8/8/8/1B6/Q3K3 w - - 0 1")
	require.NoError(t, err)

	discovered := NewMove(B2, A3)
	assert.True(t, pos.GivesCheck(discovered))

	// Moving along the same diagonal keeps the ray blocked by the
	// bishop itself landing short of h8... except c3 is itself on the
	// diagonal, so this move gives direct check from the bishop.
	stillOnDiagonal := NewMove(B2, C3)
	assert.True(t, pos.GivesCheck(stillOnDiagonal))
}

func TestGivesCheckNoCheck(t *testing.T) {
	pos := NewPosition()
	move := NewMove(B1, C3)
	assert.False(t, pos.GivesCheck(move))
}

func TestGivesCheckCastling(t *testing.T) {
	// White king e1, rook h1, kingside castling rights; black king f8.
	// O-O lands the rook on f1, attacking straight up the f-file.
	pos, err := ParseFEN("5k2/8/8/8/8/8/8/4K2R w K - 0 1")
	require.NoError(t, err)

	castle := NewCastling(E1, H1, true)
	assert.True(t, pos.GivesCheck(castle))
}
