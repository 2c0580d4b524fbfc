package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckmate(t *testing.T) {
	// White: Ka1, Ra8; Black: Kh8, pawns on g7/h7 blocking escape.
	// Black to move, already checkmated.
	pos, err := ParseFEN("R6k/6pp/8/8/8/8/8/K7 b - - 0 1")
	require.NoError(t, err)

	pos.UpdateCheckers()
	assert.True(t, pos.InCheck())
	assert.False(t, pos.HasLegalMoves())
	assert.True(t, pos.IsCheckmate())
	assert.False(t, pos.IsStalemate())
}

func TestNotCheckmate(t *testing.T) {
	// Black king on h8, rook on g8, but the king can capture it.
	pos, err := ParseFEN("6Rk/8/8/8/8/8/8/K7 b - - 0 1")
	require.NoError(t, err)

	pos.UpdateCheckers()
	assert.True(t, pos.InCheck())
	assert.False(t, pos.IsCheckmate())
}
