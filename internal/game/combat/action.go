package combat

// ActionKind identifies what a combatant has committed to do on its
// turn. The zero value is "no action queued".
type ActionKind int

const (
	ActionNone ActionKind = iota
	// ActionPass forfeits the turn, consuming the attack.
	ActionPass
	// ActionDelay forfeits the turn without consuming the attack; the
	// actor is offered another turn after everyone else has gone.
	ActionDelay
	// ActionAttack attacks a target non-lethally (incapacitated player
	// characters are off limits without kill intent).
	ActionAttack
	// ActionKill is attack with explicit kill intent (coup de grace).
	ActionKill
)

// String returns the player-facing name of the kind.
func (k ActionKind) String() string {
	switch k {
	case ActionNone:
		return "none"
	case ActionPass:
		return "pass"
	case ActionDelay:
		return "delay"
	case ActionAttack:
		return "attack"
	case ActionKill:
		return "kill"
	default:
		return "unknown"
	}
}

// QueuedAction is the single pending action a combatant has committed
// to, set by explicit command or by the autoattack policy.
type QueuedAction struct {
	Kind ActionKind
	// TargetID names the target for attack/kill; empty otherwise.
	TargetID string
	// Message is echoed to the actor when the action fires.
	Message string
	// AttackPenalty is the accumulated difficulty surcharge (critical
	// attempts, called shots).
	AttackPenalty int
	// DamageMod sweetens the damage roll for critical attempts.
	DamageMod int
	// Bypass attacks past the target's defenders at an accumulating
	// difficulty cost; Flank tries stealth instead, contested by each
	// defender in sequence.
	Bypass bool
	Flank  bool
	// BackOff aborts a spotted flank instead of pressing the attack.
	BackOff bool
}

// String shows the queued kind for the status roster.
func (q *QueuedAction) String() string {
	if q == nil {
		return "none"
	}
	return q.Kind.String()
}
