package structure

import "github.com/ludo-technologies/cobscn/domain"

// Options configures one Reduce call.
type Options struct {
	// KeepRawGotos disables statement filtering:
	// GOTO/NEXT SENTENCE/terminator statements are emitted as Cobol
	// pass-throughs alongside the structured construct that already
	// captures their control-flow effect. Off by default.
	KeepRawGotos bool

	// LabelPrefix names synthesised labels when no COBOL paragraph name is
	// available for a tail target.
	LabelPrefix string

	// ReductionBudget bounds the number of nodes the reducer may consume
	// before giving up with ReductionBudgetExceeded. 0 means
	// unlimited.
	ReductionBudget int
}

// DefaultOptions returns the zero-value-safe defaults, grounded in
// domain/defaults.go's S6 constants.
func DefaultOptions() Options {
	return Options{
		LabelPrefix:     domain.DefaultLabelPrefix,
		ReductionBudget: domain.DefaultReductionBudget,
	}
}
