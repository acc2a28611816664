// Package dice provides the randomness abstraction and the stat+skill
// check primitive used by the combat engine. A check rolls a pool of
// d10s sized by the actor's stats and skill, sums the kept dice, and
// returns the signed margin against a difficulty: positive is a success
// margin, negative a failure margin.
package dice

import "fmt"

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// StatSource exposes the attribute and skill ratings a check reads.
// Unknown names return 0.
type StatSource interface {
	Stat(name string) int
	Skill(name string) int
}

// Spec selects which stats and skill feed a check's dice pool.
type Spec struct {
	// Stats are the attribute names contributing dice to the pool.
	Stats []string
	// Skill is the skill name contributing dice; empty for a raw stat check.
	Skill string
	// BonusDice adds flat dice to the pool (weapon quality and the like).
	BonusDice int
	// KeepOverride caps how many of the highest dice are summed.
	// Zero keeps the whole pool.
	KeepOverride int
}

// String returns a compact description like "dexterity+composure/dodge".
func (s Spec) String() string {
	stats := ""
	for i, st := range s.Stats {
		if i > 0 {
			stats += "+"
		}
		stats += st
	}
	if s.Skill == "" {
		return stats
	}
	return fmt.Sprintf("%s/%s", stats, s.Skill)
}

// checkBaseline is subtracted from the pool total so that an average
// actor against difficulty 0 lands near zero margin rather than deep in
// positive territory.
const checkBaseline = 20

// dieSides is the die used for every check roll.
const dieSides = 10

// poolSize computes the number of dice a StatSource rolls for spec.
//
// Postcondition: returns >= 1.
func poolSize(src StatSource, spec Spec) int {
	pool := spec.BonusDice
	for _, st := range spec.Stats {
		pool += src.Stat(st)
	}
	if spec.Skill != "" {
		pool += src.Skill(spec.Skill)
	}
	if pool < 1 {
		pool = 1
	}
	return pool
}
