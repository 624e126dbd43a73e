package engine

import (
	"fmt"
	"strings"
	"time"
)

// Config holds the tunable parameters of the search. The pruning
// thresholds are empirical; changing them affects strength and speed,
// never legality.
type Config struct {
	// Transposition table
	TTSize    int // Number of slots (rounded down to a power of two)
	TTMaxFill int // Occupied slots above which the table is cleared before a search

	// Iterative deepening
	MaxDepth         int    // Depth cap when only a time budget is given
	CheckInterval    uint64 // Nodes between clock checks
	AspirationWindow int    // Half-width of the aspiration window; negative disables it

	// Null move pruning
	NullMoveMinDepth  int
	NullMoveReduction int

	// Late move reduction
	LMRMinDepth      int
	LMRMoveThreshold int // Moves at or beyond this index are candidates
	LMRReduction     int

	// Quiescence search
	QuiescenceDepth int

	// Evaluation
	MobilityWeight int // Negative disables the mobility term
}

// DefaultConfig returns the standard engine configuration.
func DefaultConfig() Config {
	return Config{
		TTSize:            1 << 20,
		TTMaxFill:         3 << 18,
		MaxDepth:          64,
		CheckInterval:     2048,
		AspirationWindow:  50,
		NullMoveMinDepth:  3,
		NullMoveReduction: 2,
		LMRMinDepth:       3,
		LMRMoveThreshold:  4,
		LMRReduction:      1,
		QuiescenceDepth:   6,
		MobilityWeight:    DefaultMobilityWeight,
	}
}

// normalize fills zero fields with defaults so a partially filled Config
// is usable.
func (c Config) normalize() Config {
	def := DefaultConfig()
	if c.TTSize <= 0 {
		c.TTSize = def.TTSize
	}
	if c.TTMaxFill <= 0 {
		c.TTMaxFill = c.TTSize * 3 / 4
	}
	if c.MaxDepth <= 0 || c.MaxDepth >= MaxPly {
		c.MaxDepth = def.MaxDepth
	}
	if c.AspirationWindow == 0 {
		c.AspirationWindow = def.AspirationWindow
	}
	if c.CheckInterval == 0 {
		c.CheckInterval = def.CheckInterval
	}
	if c.NullMoveMinDepth <= 0 {
		c.NullMoveMinDepth = def.NullMoveMinDepth
	}
	if c.NullMoveReduction <= 0 {
		c.NullMoveReduction = def.NullMoveReduction
	}
	if c.LMRMinDepth <= 0 {
		c.LMRMinDepth = def.LMRMinDepth
	}
	if c.LMRMoveThreshold <= 0 {
		c.LMRMoveThreshold = def.LMRMoveThreshold
	}
	if c.LMRReduction <= 0 {
		c.LMRReduction = def.LMRReduction
	}
	if c.QuiescenceDepth <= 0 {
		c.QuiescenceDepth = def.QuiescenceDepth
	}
	switch {
	case c.MobilityWeight == 0:
		c.MobilityWeight = def.MobilityWeight
	case c.MobilityWeight < 0:
		c.MobilityWeight = 0
	}
	return c
}

// Difficulty represents the AI difficulty level.
type Difficulty int

const (
	Easy   Difficulty = iota // 3 ply, 500ms
	Medium                   // 5 ply, 2s
	Hard                     // 7 ply, 5s
)

// DifficultySettings maps difficulty to search limits.
var DifficultySettings = map[Difficulty]SearchLimits{
	Easy:   {Depth: 3, MoveTime: 500 * time.Millisecond},
	Medium: {Depth: 5, MoveTime: 2 * time.Second},
	Hard:   {Depth: 7, MoveTime: 5 * time.Second},
}

// Valid reports whether d has a preset.
func (d Difficulty) Valid() bool {
	_, ok := DifficultySettings[d]
	return ok
}

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	}
	return fmt.Sprintf("difficulty(%d)", int(d))
}

// ParseDifficulty parses "easy", "medium" or "hard" (case-insensitive).
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy, nil
	case "medium", "":
		return Medium, nil
	case "hard":
		return Hard, nil
	}
	return Medium, fmt.Errorf("unknown difficulty %q", s)
}
