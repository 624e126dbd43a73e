package engine

import (
	"github.com/cespare/xxhash/v2"

	"github.com/LittleKatyusha/minesweeper/internal/board"
)

// TTFlag indicates the type of bound stored in the transposition table.
type TTFlag uint8

const (
	TTExact      TTFlag = iota // Exact score
	TTLowerBound               // Failed high (beta cutoff)
	TTUpperBound               // Failed low
)

// String returns a short name for the bound.
func (f TTFlag) String() string {
	switch f {
	case TTExact:
		return "exact"
	case TTLowerBound:
		return "lower"
	case TTUpperBound:
		return "upper"
	}
	return "?"
}

// TTEntry represents an entry in the transposition table.
type TTEntry struct {
	Key      string     // Canonical board key for verification
	BestMove board.Move // Best move found
	Score    int        // Score (bounded by flag)
	Depth    int        // Search depth
	Flag     TTFlag     // Type of bound
}

// TranspositionTable caches search results keyed by the canonical board
// serialization. Slots are addressed by an xxhash of the key; the full key
// is kept in the slot so a probe never returns another position's result.
// A colliding store simply overwrites the slot.
//
// The table belongs to one SearchContext and is not safe for concurrent use.
type TranspositionTable struct {
	entries []TTEntry
	size    uint64
	mask    uint64
	used    int

	// Statistics
	hits   uint64
	probes uint64
}

// NewTranspositionTable creates a transposition table with room for at
// least one and at most n entries (rounded down to a power of two).
func NewTranspositionTable(n int) *TranspositionTable {
	numEntries := roundDownToPowerOf2(uint64(max(n, 1)))
	return &TranspositionTable{
		entries: make([]TTEntry, numEntries),
		size:    numEntries,
		mask:    numEntries - 1,
	}
}

// roundDownToPowerOf2 rounds n down to the nearest power of 2.
func roundDownToPowerOf2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

func (tt *TranspositionTable) index(key string) uint64 {
	return xxhash.Sum64String(key) & tt.mask
}

// Probe looks up a position in the transposition table.
// Returns the entry and true if found, otherwise returns empty entry and false.
func (tt *TranspositionTable) Probe(key string) (TTEntry, bool) {
	tt.probes++

	entry := tt.entries[tt.index(key)]
	if entry.Key == key && entry.Key != "" {
		tt.hits++
		return entry, true
	}

	return TTEntry{}, false
}

// Store saves a position in the transposition table, replacing whatever
// occupied the slot.
func (tt *TranspositionTable) Store(key string, depth int, score int, flag TTFlag, bestMove board.Move) {
	entry := &tt.entries[tt.index(key)]
	if entry.Key == "" {
		tt.used++
	}
	*entry = TTEntry{
		Key:      key,
		BestMove: bestMove,
		Score:    score,
		Depth:    depth,
		Flag:     flag,
	}
}

// Clear empties the transposition table.
func (tt *TranspositionTable) Clear() {
	clear(tt.entries)
	tt.used = 0
	tt.hits = 0
	tt.probes = 0
}

// ClearIfOver empties the table when more than limit slots are occupied.
// It reports whether the table was cleared.
func (tt *TranspositionTable) ClearIfOver(limit int) bool {
	if tt.used <= limit {
		return false
	}
	tt.Clear()
	return true
}

// Len returns the number of occupied slots.
func (tt *TranspositionTable) Len() int {
	return tt.used
}

// HashFull returns the permille (parts per thousand) of the table that is used.
func (tt *TranspositionTable) HashFull() int {
	return int(uint64(tt.used) * 1000 / tt.size)
}

// HitRate returns the cache hit rate as a percentage.
func (tt *TranspositionTable) HitRate() float64 {
	if tt.probes == 0 {
		return 0
	}
	return float64(tt.hits) / float64(tt.probes) * 100
}

// Size returns the number of entries in the table.
func (tt *TranspositionTable) Size() uint64 {
	return tt.size
}

// AdjustScoreFromTT converts a stored mate score back to a distance from
// the current root. Mate scores are kept relative to the node they were
// computed at.
func AdjustScoreFromTT(score int, ply int) int {
	if score > MateScore-MaxPly {
		return score - ply
	}
	if score < -MateScore+MaxPly {
		return score + ply
	}
	return score
}

// AdjustScoreToTT adjusts a score for storage in the transposition table.
func AdjustScoreToTT(score int, ply int) int {
	if score > MateScore-MaxPly {
		return score + ply
	}
	if score < -MateScore+MaxPly {
		return score - ply
	}
	return score
}
