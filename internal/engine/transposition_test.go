package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hailam/chessplay/internal/board"
)

func TestTranspositionStoreProbe(t *testing.T) {
	tt := NewTranspositionTable(1)

	hash := uint64(0x123456789ABCDEF0)
	tt.Store(hash, 6, 42, TTExact, board.NewMove(board.E2, board.E4), true)

	entry, found := tt.Probe(hash)
	assert.True(t, found)
	assert.Equal(t, TTExact, entry.Flag)
	assert.Equal(t, int16(42), entry.Score)
	assert.Equal(t, int8(6), entry.Depth)
}

func TestTranspositionProbeMiss(t *testing.T) {
	tt := NewTranspositionTable(1)
	_, found := tt.Probe(0xDEADBEEF)
	assert.False(t, found)
}

// TestTranspositionConcurrentProbeStore exercises Probe's read-side
// guard under a concurrent Store hammering the same bucket: Probe must
// never return a torn entry (mismatched fields from two different
// writes), only a clean hit or a miss.
func TestTranspositionConcurrentProbeStore(t *testing.T) {
	tt := NewTranspositionTable(1)
	hash := uint64(0xAAAAAAAA)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 2000; i++ {
			depth := 1 + i%63
			tt.Store(hash, depth, i, TTExact, board.NewMove(board.A2, board.A4), false)
		}
	}()

	for i := 0; i < 2000; i++ {
		entry, found := tt.Probe(hash)
		if found {
			assert.True(t, entry.Depth > 0)
		}
	}
	<-done
}
