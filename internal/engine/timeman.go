package engine

import (
	"time"

	"github.com/LittleKatyusha/minesweeper/internal/board"
)

// SearchLimits specifies constraints on the search.
type SearchLimits struct {
	Depth     int              // Maximum depth (0 = Config.MaxDepth)
	Nodes     uint64           // Maximum nodes (0 = no limit)
	MoveTime  time.Duration    // Time for this move (0 = no limit)
	Time      [2]time.Duration // Remaining clock per color (wtime, btime)
	Inc       [2]time.Duration // Increment per color (winc, binc)
	MovesToGo int              // Moves until next time control (0 = sudden death)
	Infinite  bool             // Search until stopped
}

// noDeadline stands in for "no time limit".
const noDeadline = time.Duration(1<<63 - 1)

// TimeManager handles time allocation for searches. The budget is
// advisory: the search polls ShouldStop between nodes.
type TimeManager struct {
	optimumTime time.Duration // Don't start a new iteration past this
	maximumTime time.Duration // Abort the running iteration past this
	startTime   time.Time     // When search started
}

// NewTimeManager creates a new time manager.
func NewTimeManager() *TimeManager {
	return &TimeManager{optimumTime: noDeadline, maximumTime: noDeadline}
}

// Init initializes the time manager for a new search.
// ply is the current game ply (half-move number).
func (tm *TimeManager) Init(limits SearchLimits, us board.Color, ply int) {
	tm.startTime = time.Now()

	// Fixed move time mode
	if limits.MoveTime > 0 {
		tm.optimumTime = limits.MoveTime
		tm.maximumTime = limits.MoveTime
		return
	}

	// Infinite or depth-limited mode
	if limits.Infinite || us > board.Black || limits.Time[us] <= 0 {
		tm.optimumTime = noDeadline
		tm.maximumTime = noDeadline
		return
	}

	timeLeft := limits.Time[us]
	inc := limits.Inc[us]

	// Estimate moves to go
	mtg := limits.MovesToGo
	if mtg == 0 {
		// Sudden death: expect fewer remaining moves as the game goes on
		mtg = min(max(50-ply/4, 10), 50)
	}

	// Base time per move plus most of the increment
	tm.optimumTime = timeLeft/time.Duration(mtg) + inc*9/10

	// Maximum time: 5x optimum or 80% of remaining, whichever is smaller
	tm.maximumTime = min(tm.optimumTime*5, timeLeft*8/10)

	// Minimum times
	tm.optimumTime = max(tm.optimumTime, 10*time.Millisecond)
	tm.maximumTime = max(tm.maximumTime, tm.optimumTime)
}

// Elapsed returns the time elapsed since search started.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.startTime)
}

// OptimumTime returns the target time for this move.
func (tm *TimeManager) OptimumTime() time.Duration {
	return tm.optimumTime
}

// MaximumTime returns the maximum time allowed.
func (tm *TimeManager) MaximumTime() time.Duration {
	return tm.maximumTime
}

// ShouldStop returns true if the running iteration must be abandoned.
func (tm *TimeManager) ShouldStop() bool {
	return tm.maximumTime != noDeadline && tm.Elapsed() >= tm.maximumTime
}

// PastOptimum returns true if no new iteration should be started.
func (tm *TimeManager) PastOptimum() bool {
	return tm.optimumTime != noDeadline && tm.Elapsed() >= tm.optimumTime
}
