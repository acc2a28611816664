// Package combat implements the turn-based combat engine: one session
// per location, a two-phase round structure (setup, then resolution in
// initiative order), dice-based attack/defense/damage resolution, guard
// and flee relationship bookkeeping, AFK eviction, and end-of-combat
// voting.
//
// The engine is single-threaded cooperative: the hosting command layer
// must serialize all calls into a Session. Only the Manager's session
// registry is internally locked.
package combat

import "time"

// Phase is the session's position in the round structure.
type Phase int

const (
	// PhaseSetup gates progress on unanimous readiness; joins, votes,
	// and stance changes happen here.
	PhaseSetup Phase = iota
	// PhaseResolution resolves one turn per combatant in initiative order.
	PhaseResolution
	// PhaseEnded is terminal.
	PhaseEnded
)

// String returns "setup", "resolution", or "ended".
func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "setup"
	case PhaseResolution:
		return "resolution"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Stances, from most defensive to most reckless. Stance shifts both the
// wielder's attack difficulty and the difficulty opponents face when
// attacking them; it persists on the actor between fights.
const (
	StanceDefensive  = "defensive"
	StanceGuarded    = "guarded"
	StanceBalanced   = "balanced"
	StanceAggressive = "aggressive"
	StanceReckless   = "reckless"
)

// stanceAttackMod raises the attack difficulty for cautious stances and
// lowers it for reckless ones.
var stanceAttackMod = map[string]int{
	StanceDefensive:  15,
	StanceGuarded:    8,
	StanceBalanced:   0,
	StanceAggressive: -8,
	StanceReckless:   -15,
}

// stanceDefenseMod is the mirror image for the defender: cautious
// stances make the defender harder to hit.
var stanceDefenseMod = map[string]int{
	StanceDefensive:  -15,
	StanceGuarded:    -8,
	StanceBalanced:   0,
	StanceAggressive: 8,
	StanceReckless:   15,
}

// ValidStance reports whether s names a known stance.
func ValidStance(s string) bool {
	_, ok := stanceAttackMod[s]
	return ok
}

// normalizeStance maps unknown persisted stances to balanced.
func normalizeStance(s string) string {
	if ValidStance(s) {
		return s
	}
	return StanceBalanced
}

// Tuning constants for the resolution math.
const (
	// baseAttackDifficulty and baseDefenseDifficulty skew contests
	// slightly toward the defender to lower overall lethality.
	baseAttackDifficulty  = 2
	baseDefenseDifficulty = -2

	// parryDifficultyShift and dodgeDifficultyShift adjust the defense
	// sub-rolls: parrying is harder than dodging.
	parryDifficultyShift = 10
	dodgeDifficultyShift = -10

	// coverPenalty is the attack and defense difficulty surcharge while
	// covering someone's retreat.
	coverPenalty = 5

	// overwhelmStep and overwhelmCap grow defense difficulty as more
	// attacks converge on one target in a round.
	overwhelmStep = 10
	overwhelmCap  = 40

	// bypassPenaltyPerDefender prices attacking past each bodyguard.
	bypassPenaltyPerDefender = 15

	// flankShift is the attack-difficulty swing on a flank: eased by
	// this much on a clean ambush, raised by it when spotted.
	flankShift = 5

	// botchMargin and the attack-roll sign gate define a botch.
	botchMargin = -30

	// missMargin is the band floor below which an attack misses clean.
	missMargin = -15

	// pierceThreshold is the attack-roll excess that starts cutting
	// through armor.
	pierceThreshold = 15

	// deathThresholdMult scales max health into the survival-check line.
	deathThresholdMult = 2

	// fatigueAttackCap bounds how much fatigue can hurt attack rolls.
	fatigueAttackCap = 30

	// fatigueCheckStep raises the end-of-round endurance difficulty per
	// action taken.
	fatigueCheckStep = 5

	// maxFatigueGainPerRound bounds fatigue accrual within one round.
	maxFatigueGainPerRound = 0.5
)

// Settings are the engine-wide tunables a Manager is built with.
type Settings struct {
	// RoundDelay is the advisory re-broadcast interval. The engine never
	// force-resolves actions on elapsed time.
	RoundDelay time.Duration
	// MaxRounds ends any session whose round counter exceeds it.
	MaxRounds int
	// AFKGrace is the window after a first AFK check before subsequent
	// checks count as eviction votes.
	AFKGrace time.Duration
	// RandomDeaths allows player characters to be killed the same round
	// they are first incapacitated. When false, every PC always gets the
	// one-round grace period.
	RandomDeaths bool
}

// DefaultSettings mirror the tabletop-speed defaults.
func DefaultSettings() Settings {
	return Settings{
		RoundDelay:   30 * time.Second,
		MaxRounds:    250,
		AFKGrace:     2 * time.Minute,
		RandomDeaths: true,
	}
}

// LocationOpts carry the per-location combat configuration, fixed at
// session creation.
type LocationOpts struct {
	// NonLethal sessions restore all surviving combatants' pre-fight
	// health when the session ends.
	NonLethal bool
}
