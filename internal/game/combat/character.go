package combat

// Character is the capability contract the engine consumes. The game
// layer owns persistent sheets; the engine only asks the questions
// below. internal/game/actor provides the reference implementation.
type Character interface {
	ID() string
	Name() string
	LocationID() string

	// Conscious reports whether the actor can perceive and act;
	// Attackable whether it is a legal target at all.
	Conscious() bool
	Attackable() bool

	// Automated actors have no player at the helm; the engine queues
	// actions for them. NPC actors may be killed without explicit kill
	// intent.
	Automated() bool
	NPC() bool

	// Quantity is the number of living bodies; >1 for squads
	// represented as a single entity.
	Quantity() int

	// Stat and Skill feed dice checks; unknown names return 0.
	Stat(name string) int
	Skill(name string) int

	// Armor is flat mitigation; ArmorPenalty burdens dodge and fatigue.
	Armor() int
	ArmorPenalty() int

	// Stance persists on the actor across sessions.
	Stance() string
	SetStance(stance string)

	// MaxHealth is the damage threshold; Harm the accumulated damage.
	// Non-lethal harm must be tracked separately so ClearTempHarm can
	// revert it when a non-lethal session ends.
	MaxHealth() int
	Harm() int
	ApplyHarm(amount int, lethal bool)
	ClearTempHarm()

	// Asleep is ordinary sleep: such targets auto-fail defense and wake
	// when struck. Wake also clears damage-induced unconsciousness.
	Asleep() bool
	Wake(quiet bool)
	FallUnconscious(lethal bool)
	Dead() bool

	// Kill resolves a failed survival check: real death when lethal,
	// a knockout otherwise; squads lose one body instead.
	Kill(lethal bool)

	// Guarding returns the ID of the actor this one has declared itself
	// a defender of ("" for none); DeclaredDefenders the IDs of actors
	// who have declared themselves its defenders.
	Guarding() string
	DeclaredDefenders() []string

	// Msg delivers text, best effort while connected.
	Msg(text string)
}
