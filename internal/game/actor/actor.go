// Package actor provides the reference implementation of the capability
// contract the combat engine consumes: conscious/attackable state, stat
// and skill lookups, health accumulation, and text delivery. Persistent
// character sheets live elsewhere; an Actor is the in-memory projection
// the game layer hands to the engine.
package actor

// Params describes a new Actor. Zero values are filled with sane
// defaults: quantity 1, stance "balanced", attackable true.
type Params struct {
	ID         string
	Name       string
	LocationID string
	// Automated marks an actor with no player at the helm; the engine
	// auto-queues actions for it.
	Automated bool
	// NPC marks an actor that may be killed without explicit kill intent.
	NPC bool
	// Quantity is the number of living bodies; >1 makes a squad.
	Quantity int
	Stats    map[string]int
	Skills   map[string]int
	// Armor is flat damage mitigation; ArmorPenalty feeds dodge and
	// fatigue difficulties.
	Armor        int
	ArmorPenalty int
	// Sink receives text delivered to this actor. Nil discards.
	Sink func(text string)
}

// Actor is one game entity: a player character, an automated NPC, or a
// multi-body squad represented as a single entity.
//
// Actor is not safe for concurrent mutation; the command layer
// serializes all access, per the engine's single-writer model.
type Actor struct {
	id           string
	name         string
	location     string
	automated    bool
	npc          bool
	quantity     int
	stats        map[string]int
	skills       map[string]int
	armor        int
	armorPenalty int
	stance       string

	harm     int
	tempHarm int

	asleep      bool
	unconscious bool
	dead        bool
	attackable  bool

	// guarding is the one actor this actor has declared itself a
	// defender of; defenders is the reverse set. Both store IDs, kept
	// symmetric by SetGuarding.
	guarding  string
	defenders []string

	sink func(string)
}

// New creates an Actor from p.
//
// Precondition: p.ID and p.Name must be non-empty.
// Postcondition: the actor is awake, attackable, and at full health.
func New(p Params) *Actor {
	qty := p.Quantity
	if qty < 1 {
		qty = 1
	}
	stats := p.Stats
	if stats == nil {
		stats = map[string]int{}
	}
	skills := p.Skills
	if skills == nil {
		skills = map[string]int{}
	}
	return &Actor{
		id:           p.ID,
		name:         p.Name,
		location:     p.LocationID,
		automated:    p.Automated,
		npc:          p.NPC,
		quantity:     qty,
		stats:        stats,
		skills:       skills,
		armor:        p.Armor,
		armorPenalty: p.ArmorPenalty,
		stance:       "balanced",
		attackable:   true,
		sink:         p.Sink,
	}
}

func (a *Actor) ID() string         { return a.id }
func (a *Actor) Name() string       { return a.name }
func (a *Actor) LocationID() string { return a.location }
func (a *Actor) Automated() bool    { return a.automated }
func (a *Actor) NPC() bool          { return a.npc }
func (a *Actor) Quantity() int      { return a.quantity }

// Stat returns the attribute rating for name, 0 if unknown.
func (a *Actor) Stat(name string) int { return a.stats[name] }

// Skill returns the skill rating for name, 0 if unknown.
func (a *Actor) Skill(name string) int { return a.skills[name] }

func (a *Actor) Armor() int        { return a.armor }
func (a *Actor) ArmorPenalty() int { return a.armorPenalty }

// Stance persists across combat sessions; it belongs to the actor, not
// to any one fight.
func (a *Actor) Stance() string         { return a.stance }
func (a *Actor) SetStance(stance string) { a.stance = stance }

// MoveTo relocates the actor. Registered actors should move through
// Roster.Move so location indexes stay consistent.
func (a *Actor) MoveTo(locationID string) { a.location = locationID }

// SetAttackable overrides attackability (staff avatars, scenery actors).
func (a *Actor) SetAttackable(v bool) { a.attackable = v }

// Attackable reports whether the actor is a legal target at all.
func (a *Actor) Attackable() bool {
	return a.attackable && !a.dead && a.quantity > 0
}

// Conscious reports whether the actor can perceive and act.
func (a *Actor) Conscious() bool {
	return !a.dead && !a.asleep && !a.unconscious && a.quantity > 0
}

// Asleep reports ordinary sleep, as opposed to damage-induced
// unconsciousness. Sleeping targets auto-fail defense and wake when hit.
func (a *Actor) Asleep() bool { return a.asleep }

// Dead reports permanent death.
func (a *Actor) Dead() bool { return a.dead }

// FallAsleep puts the actor into ordinary sleep.
func (a *Actor) FallAsleep() {
	if !a.dead {
		a.asleep = true
	}
}

// Wake clears sleep and unconsciousness. Dead actors stay dead.
func (a *Actor) Wake(quiet bool) {
	if a.dead {
		return
	}
	woke := a.asleep || a.unconscious
	a.asleep = false
	a.unconscious = false
	if woke && !quiet {
		a.Msg("You regain consciousness.")
	}
}

// FallUnconscious knocks the actor out from damage.
func (a *Actor) FallUnconscious(lethal bool) {
	if a.dead {
		return
	}
	a.unconscious = true
	_ = lethal // harm bookkeeping already distinguishes real from temp
}

// MaxHealth derives the damage threshold from endurance: stamina×10+10.
// Squads use per-body thresholds; body loss is handled by Kill.
func (a *Actor) MaxHealth() int {
	return a.Stat("stamina")*10 + 10
}

// Harm returns total accumulated damage, real plus temporary.
func (a *Actor) Harm() int { return a.harm + a.tempHarm }

// ApplyHarm accrues damage. Lethal harm persists beyond the fight;
// non-lethal harm is temporary and cleared when the session ends.
//
// Precondition: amount >= 0.
func (a *Actor) ApplyHarm(amount int, lethal bool) {
	if lethal {
		a.harm += amount
	} else {
		a.tempHarm += amount
	}
}

// ClearTempHarm discards all temporary damage.
func (a *Actor) ClearTempHarm() { a.tempHarm = 0 }

// HealAll clears all damage and restores consciousness.
func (a *Actor) HealAll() {
	a.harm = 0
	a.tempHarm = 0
	if !a.dead {
		a.asleep = false
		a.unconscious = false
	}
}

// Kill resolves a failed survival check. A squad loses one body and
// shakes off its accumulated damage (the next body is fresh); a single
// actor dies for real when lethal, or is knocked out cold otherwise.
func (a *Actor) Kill(lethal bool) {
	if a.quantity > 1 {
		a.quantity--
		a.harm = 0
		a.tempHarm = 0
		return
	}
	if a.quantity == 1 && a.npc && a.automated && lethal {
		a.quantity = 0
	}
	if lethal {
		a.dead = true
		return
	}
	a.unconscious = true
}

// Msg delivers text to the actor, best effort.
func (a *Actor) Msg(text string) {
	if a.sink != nil {
		a.sink(text)
	}
}

// SetSink replaces the text delivery sink. Nil discards.
func (a *Actor) SetSink(sink func(string)) { a.sink = sink }

// Guarding returns the ID of the actor this one protects, "" for none.
func (a *Actor) Guarding() string { return a.guarding }

// DeclaredDefenders returns the IDs of actors protecting this one.
func (a *Actor) DeclaredDefenders() []string {
	out := make([]string, len(a.defenders))
	copy(out, a.defenders)
	return out
}

// SetGuarding declares a as a defender of target, maintaining the
// reverse reference on target. A nil target clears the declaration.
//
// Precondition: a may guard at most one actor. When switching targets
// the caller must first call DropDefender(a.ID()) on the old target;
// only IDs are stored here, so the old object cannot be reached.
func (a *Actor) SetGuarding(target *Actor) {
	a.guarding = ""
	if target == nil {
		return
	}
	a.guarding = target.id
	for _, id := range target.defenders {
		if id == a.id {
			return
		}
	}
	target.defenders = append(target.defenders, a.id)
}

// DropDefender removes id from this actor's declared defender set.
func (a *Actor) DropDefender(id string) {
	for i, d := range a.defenders {
		if d == id {
			a.defenders = append(a.defenders[:i], a.defenders[i+1:]...)
			return
		}
	}
}
