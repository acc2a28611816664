package combat

// AutoPolicy decides the queued action for automated combatants. It is
// invoked once per Setup phase per actor (and again on the actor's turn
// if the queue is somehow empty) with a read-only view of the fight.
type AutoPolicy interface {
	Decide(snap Snapshot) *QueuedAction
}

// PolicyFunc adapts a function to AutoPolicy.
type PolicyFunc func(Snapshot) *QueuedAction

func (f PolicyFunc) Decide(snap Snapshot) *QueuedAction { return f(snap) }

// Snapshot is the read-only fight view handed to a policy.
type Snapshot struct {
	Round  int
	Lethal bool

	SelfID     string
	SelfHarm   int
	SelfHealth int

	// Targets are the currently valid foes, in roster order.
	Targets []TargetInfo
}

// TargetInfo describes one valid foe.
type TargetInfo struct {
	ID        string
	Name      string
	Conscious bool
	Harm      int
	MaxHealth int
}

// DefaultPolicy is the builtin autoattack: swing at a foe when one
// exists, otherwise pass. Leaving TargetID empty lets the session pick
// a random valid foe at resolution time, so a target that drops between
// phases never wastes the turn.
func DefaultPolicy() AutoPolicy {
	return PolicyFunc(func(snap Snapshot) *QueuedAction {
		if len(snap.Targets) == 0 {
			return &QueuedAction{Kind: ActionPass}
		}
		kind := ActionAttack
		if snap.Lethal {
			kind = ActionKill
		}
		return &QueuedAction{Kind: kind}
	})
}
