package book

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/chessplay/internal/board"
)

func TestPolyglotHash(t *testing.T) {
	pos := board.NewPosition()
	hash1 := pos.PolyglotHash()
	hash2 := pos.PolyglotHash()
	assert.Equal(t, hash1, hash2, "PolyglotHash should be consistent across calls")

	move := board.NewMove(board.E2, board.E4)
	undo := pos.MakeMove(move)
	hash3 := pos.PolyglotHash()
	assert.NotEqual(t, hash1, hash3, "PolyglotHash should change after a move")

	pos.UnmakeMove(move, undo)
	hash4 := pos.PolyglotHash()
	assert.Equal(t, hash1, hash4, "PolyglotHash should be restored after unmake")
}

func TestBookLoadAndProbe(t *testing.T) {
	pos := board.NewPosition()
	key := pos.PolyglotHash()

	// e2e4 = to_file | (to_rank << 3) | (from_file << 6) | (from_rank << 9)
	e2e4Encoded := uint16(4 | (3 << 3) | (4 << 6) | (1 << 9))

	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, key)
	binary.Write(&buf, binary.BigEndian, e2e4Encoded)
	binary.Write(&buf, binary.BigEndian, uint16(100)) // weight
	binary.Write(&buf, binary.BigEndian, uint32(0))   // learn

	b, err := LoadPolyglotReader(&buf)
	require.NoError(t, err)
	require.Equal(t, 1, b.Size())

	move, found := b.Probe(pos)
	require.True(t, found, "expected to find move in book")
	assert.Equal(t, board.E2, move.From())
	assert.Equal(t, board.E4, move.To())
}

func TestBookMiss(t *testing.T) {
	b := New()
	pos := board.NewPosition()

	move, found := b.Probe(pos)
	assert.False(t, found, "expected book miss on empty book")
	assert.Equal(t, board.NoMove, move)
}

func TestDecodePolyglotMove(t *testing.T) {
	// e2e4: e2 = file 4, rank 1; e4 = file 4, rank 3
	e2e4 := uint16(4 | (3 << 3) | (4 << 6) | (1 << 9))
	move := decodePolyglotMove(e2e4)
	assert.Equal(t, board.E2, move.From())
	assert.Equal(t, board.E4, move.To())

	// d7d5: d7 = file 3, rank 6; d5 = file 3, rank 4
	d7d5 := uint16(3 | (4 << 3) | (3 << 6) | (6 << 9))
	move = decodePolyglotMove(d7d5)
	assert.Equal(t, board.D7, move.From())
	assert.Equal(t, board.D5, move.To())
}
