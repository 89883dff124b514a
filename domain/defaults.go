package domain

// ============================================================================
// Block reduction (S6) cost model defaults
// ============================================================================

// Jump costs: how expensive it is, in the if-shaping cost model, to leave a
// block via each kind of trailing control transfer. A Return is cheap; a
// raw goto is the ugliest thing the reducer can emit.
const (
	// DefaultExitJumpCost is the cost of a trailing Return.
	DefaultExitJumpCost = 10
	// DefaultLoopExitJumpCost is the cost of a trailing Break.
	DefaultLoopExitJumpCost = 10
	// DefaultContinueLoopJumpCost is the cost of a trailing Continue.
	DefaultContinueLoopJumpCost = 20
	// DefaultGotoJumpCost is the cost of a trailing labelled Goto (GotoNode
	// or any other in-scope tail node).
	DefaultGotoJumpCost = 50
)

// Strategy cost penalties layered on top of the jump costs above.
const (
	// DefaultLoseElseChainPenalty is added when a strategy collapses an
	// existing else-if chain into a flat tail, per the RemoveElse,
	// FlipToRemoveElse and JumpFromThen cost formulas.
	DefaultLoseElseChainPenalty = 20
	// DefaultThenEndsInJumpPenalty is added to Null's cost when the
	// then-branch itself ends in a jump (keeping the else around is wasted
	// structure in that case).
	DefaultThenEndsInJumpPenalty = 5
	// DefaultFlipPenalty is the flat cost of flipping a condition and
	// swapping then/else (FlipToRemoveElse, JumpFromFlippedElse).
	DefaultFlipPenalty = 5
)

// ============================================================================
// Reduction budget & label synthesis defaults
// ============================================================================

const (
	// DefaultReductionBudget is the per-section step counter guarding
	// against pathological inputs. 0 means unlimited: the guard is off
	// unless a caller opts in.
	DefaultReductionBudget = 0

	// DefaultLabelPrefix names synthesised labels when no COBOL paragraph
	// name is available for a tail target.
	DefaultLabelPrefix = "__line"

	// DefaultDuplicateNameSeparator is the auto-mangling separator for
	// colliding section/paragraph names. Never appears in a COBOL
	// identifier, so it can't collide with a real name.
	DefaultDuplicateNameSeparator = "#"
)

// ============================================================================
// Driver / diagnostics defaults
// ============================================================================

const (
	// DefaultMaxGoroutines is the default bound on concurrent per-section
	// pipeline runs when the caller doesn't override it. 0 means
	// GOMAXPROCS, the ParallelExecutor convention throughout this repo.
	DefaultMaxGoroutines = 0

	// DefaultDotDir is where --dump-stage writes Graphviz files when the
	// caller doesn't override the directory.
	DefaultDotDir = ".cobscn/dot"

	// DefaultCheckMaxWarnings bounds how many non-fatal warnings the check
	// command tolerates before treating the run as failed.
	DefaultCheckMaxWarnings = 0
)
