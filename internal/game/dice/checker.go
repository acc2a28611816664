package dice

import (
	"sort"

	"go.uber.org/zap"
)

// Checker performs stat+skill checks against a difficulty and logs every
// roll at debug level with its pool, kept dice, and margin.
type Checker struct {
	src    Source
	logger *zap.Logger
}

// NewChecker creates a Checker rolling with src and logging to logger.
//
// Precondition: src and logger must be non-nil.
func NewChecker(src Source, logger *zap.Logger) *Checker {
	return &Checker{src: src, logger: logger}
}

// Source returns the underlying randomness source, for callers that need
// raw rolls (tiebreakers, weighted target picks) alongside checks.
func (c *Checker) Source() Source {
	return c.src
}

// Total rolls actor's pool for spec and returns the raw kept-dice sum
// minus penalty, without the margin baseline. Damage and mitigation
// rolls use this: they are quantities, not success margins.
//
// Precondition: actor must be non-nil.
func (c *Checker) Total(actor StatSource, spec Spec, penalty int) int {
	pool := poolSize(actor, spec)
	rolled := make([]int, pool)
	for i := range rolled {
		rolled[i] = c.src.Intn(dieSides) + 1
	}

	kept := rolled
	if spec.KeepOverride > 0 && spec.KeepOverride < len(rolled) {
		sorted := make([]int, len(rolled))
		copy(sorted, rolled)
		sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
		kept = sorted[:spec.KeepOverride]
	}

	total := -penalty
	for _, d := range kept {
		total += d
	}

	c.logger.Debug("pool roll",
		zap.String("spec", spec.String()),
		zap.Int("penalty", penalty),
		zap.Ints("kept", kept),
		zap.Int("total", total),
	)
	return total
}

// Check rolls actor's pool for spec against difficulty and returns the
// signed margin: pool total minus baseline minus difficulty. Positive
// means success by that much, negative failure by that much.
//
// Precondition: actor must be non-nil.
func (c *Checker) Check(actor StatSource, spec Spec, difficulty int) int {
	pool := poolSize(actor, spec)
	rolled := make([]int, pool)
	for i := range rolled {
		rolled[i] = c.src.Intn(dieSides) + 1
	}

	kept := rolled
	if spec.KeepOverride > 0 && spec.KeepOverride < len(rolled) {
		sorted := make([]int, len(rolled))
		copy(sorted, rolled)
		sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
		kept = sorted[:spec.KeepOverride]
	}

	total := 0
	for _, d := range kept {
		total += d
	}
	margin := total - checkBaseline - difficulty

	c.logger.Debug("stat check",
		zap.String("spec", spec.String()),
		zap.Int("difficulty", difficulty),
		zap.Ints("kept", kept),
		zap.Int("total", total),
		zap.Int("margin", margin),
	)
	return margin
}
