package engine

import (
	"sync/atomic"

	"github.com/hailam/chessplay/internal/board"
)

// TTFlag indicates the type of bound stored in the transposition table.
type TTFlag uint8

const (
	TTExact      TTFlag = iota // Exact score
	TTLowerBound               // Failed high (beta cutoff)
	TTUpperBound               // Failed low
)

// bucketSize is the number of entries sharing one hash bucket. A small
// bucket gives the replacement scheme somewhere to put a deep entry
// without evicting it on every collision, at a fixed, small lookup cost.
const bucketSize = 4

// TTEntry represents one slot in the transposition table.
type TTEntry struct {
	Key      uint32     // Upper 32 bits of the Zobrist hash, for verification
	BestMove board.Move
	Score    int16
	Depth    int8
	Flag     TTFlag
	IsPV     bool
	Age      uint8
}

type bucket struct {
	entries [bucketSize]TTEntry
	// lock is a single-word XOR-trick guard: Store XORs it with the
	// index of the slot being written plus one before and after the
	// write, leaving it
	// momentarily different from its settled value while the write is
	// in flight. Probe reads it before and after copying a candidate
	// entry and discards the read if the two values differ, catching a
	// write torn across the copy without ever blocking.
	lock atomic.Uint64
}

// TranspositionTable is a bucketed hash table for storing search
// results, shared read/write across all lazy-SMP workers.
type TranspositionTable struct {
	buckets []bucket
	size    uint64
	mask    uint64
	age     uint8

	hits   atomic.Uint64
	probes atomic.Uint64
}

// NewTranspositionTable creates a transposition table with the given size in MB.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	bucketBytes := uint64(bucketSize*18 + 8)
	numBuckets := (uint64(sizeMB) * 1024 * 1024) / bucketBytes
	numBuckets = roundDownToPowerOf2(numBuckets)
	if numBuckets == 0 {
		numBuckets = 1
	}

	return &TranspositionTable{
		buckets: make([]bucket, numBuckets),
		size:    numBuckets * bucketSize,
		mask:    numBuckets - 1,
	}
}

// roundDownToPowerOf2 rounds n down to the nearest power of 2.
func roundDownToPowerOf2(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// ttProbeRetries bounds how many times Probe retries a slot whose read
// raced a concurrent Store; past this it gives up and treats the slot
// as a miss rather than spinning indefinitely against a hot writer.
const ttProbeRetries = 4

// Probe looks up a position in the transposition table. Returns the
// entry and true if a verified match was found in its bucket.
func (tt *TranspositionTable) Probe(hash uint64) (TTEntry, bool) {
	tt.probes.Add(1)
	b := &tt.buckets[hash&tt.mask]
	key := uint32(hash >> 32)

	for i := range b.entries {
		var e TTEntry
		torn := true
		for attempt := 0; attempt < ttProbeRetries; attempt++ {
			before := b.lock.Load()
			e = b.entries[i]
			after := b.lock.Load()
			if before == after {
				torn = false
				break
			}
		}
		if torn {
			continue
		}
		if e.Key == key && e.Depth > 0 {
			tt.hits.Add(1)
			return e, true
		}
	}
	return TTEntry{}, false
}

// Store saves a position in the transposition table, picking a
// replacement slot within the position's bucket: the slot already
// holding this key, an empty slot, a stale slot from a previous search
// generation, or — failing those — the shallowest slot of the current
// generation. IsPV plays no part in the choice.
func (tt *TranspositionTable) Store(hash uint64, depth int, score int, flag TTFlag, bestMove board.Move, isPV bool) {
	b := &tt.buckets[hash&tt.mask]
	key := uint32(hash >> 32)

	slot := 0
	for i := range b.entries {
		e := &b.entries[i]
		if e.Key == key {
			slot = i
			break
		}
		if e.Depth == 0 {
			slot = i
			break
		}
		if e.Age != tt.age {
			slot = i
		} else if b.entries[slot].Age == tt.age && e.Depth < b.entries[slot].Depth {
			slot = i
		}
	}

	e := &b.entries[slot]
	writeGuard := b.lock.Load() ^ (uint64(slot) + 1)
	b.lock.Store(writeGuard)

	e.Key = key
	e.BestMove = bestMove
	e.Score = int16(score)
	e.Depth = int8(depth)
	e.Flag = flag
	e.IsPV = isPV
	e.Age = tt.age

	b.lock.Store(writeGuard ^ (uint64(slot) + 1))
}

// NewSearch increments the age counter for a new search, marking all
// existing entries as eligible for replacement before a deeper one.
func (tt *TranspositionTable) NewSearch() {
	tt.age++
}

// Clear clears the transposition table.
func (tt *TranspositionTable) Clear() {
	for i := range tt.buckets {
		tt.buckets[i] = bucket{}
	}
	tt.age = 0
	tt.hits.Store(0)
	tt.probes.Store(0)
}

// HashFull returns the permille (parts per thousand) of the table that is used.
func (tt *TranspositionTable) HashFull() int {
	sampleSize := 1000 / bucketSize
	if sampleSize == 0 {
		sampleSize = 1
	}
	if uint64(sampleSize) > uint64(len(tt.buckets)) {
		sampleSize = len(tt.buckets)
	}
	used, total := 0, 0
	for i := 0; i < sampleSize; i++ {
		for j := range tt.buckets[i].entries {
			total++
			e := &tt.buckets[i].entries[j]
			if e.Depth > 0 && e.Age == tt.age {
				used++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return (used * 1000) / total
}

// HitRate returns the cache hit rate as a percentage.
func (tt *TranspositionTable) HitRate() float64 {
	probes := tt.probes.Load()
	if probes == 0 {
		return 0
	}
	return float64(tt.hits.Load()) / float64(probes) * 100
}

// Size returns the total number of entry slots in the table.
func (tt *TranspositionTable) Size() uint64 {
	return tt.size
}

// AdjustScoreFromTT converts a mate score stored relative to the root
// into one relative to the current ply.
func AdjustScoreFromTT(score int, ply int) int {
	if score > MateScore-MaxPly {
		return score - ply
	}
	if score < -MateScore+MaxPly {
		return score + ply
	}
	return score
}

// AdjustScoreToTT converts a mate score relative to the current ply
// into one relative to the root, for storage.
func AdjustScoreToTT(score int, ply int) int {
	if score > MateScore-MaxPly {
		return score + ply
	}
	if score < -MateScore+MaxPly {
		return score - ply
	}
	return score
}
