package combat

import (
	"time"

	"github.com/harrovale/mud/internal/game/weapons"
)

// Combatant is the per-actor combat state: weapon profile, queued
// action, relationship sets, fatigue, and readiness. It is created when
// the actor joins a session and destroyed when it leaves; nothing here
// survives the fight.
type Combatant struct {
	char    Character
	session *Session
	weapon  weapons.Profile
	// canBlock is granted by a shield, not the weapon.
	canBlock bool

	initiative int
	tiebreaker int

	queued           *QueuedAction
	totalAttacks     int
	remainingAttacks int

	automated  bool
	autoattack bool
	multiple   bool
	// killIntent makes the autoattack policy press lethal attacks.
	killIntent bool

	prevTarget Character
	targets    []Character
	foes       []Character
	friends    []Character

	ready       bool
	lastDefense string

	// defenders guard this combatant; guarding is the one combatant
	// this one protects.
	defenders []Character
	guarding  Character

	// blockFlee is the one target this combatant is stopping from
	// fleeing; blockers are those stopping this combatant.
	blockFlee Character
	blockers  []Character
	covering  []Character
	coveredBy []Character
	fleeExit  string

	afkSince    time.Time
	votesToKick []string

	lostTurns     int
	timesAttacked int
	changedStance bool
	// gracedOnce records that this player character has already used its
	// guaranteed one-round reprieve after first crossing max health.
	gracedOnce bool

	fatigue          float64
	fatigueThisRound float64
	numActions       float64
}

// newCombatant wires per-fight state for ch with the given attack
// profile. Shield capability comes from the caller since the profile
// describes only the weapon.
func newCombatant(s *Session, ch Character, weapon weapons.Profile, canBlock bool) *Combatant {
	c := &Combatant{
		char:       ch,
		session:    s,
		weapon:     weapon,
		canBlock:   canBlock,
		automated:  ch.Automated(),
		autoattack: ch.Automated(),
	}
	if ch.Quantity() > 1 {
		c.multiple = true
		c.automated = true
		c.autoattack = true
	}
	c.totalAttacks = ch.Quantity()
	return c
}

// Char returns the underlying actor.
func (c *Combatant) Char() Character { return c.char }

// Name returns the display name, with the body count for squads.
func (c *Combatant) Name() string {
	return c.char.Name()
}

// Weapon returns the active attack profile.
func (c *Combatant) Weapon() weapons.Profile { return c.weapon }

// Queued returns the pending action, nil if none.
func (c *Combatant) Queued() *QueuedAction { return c.queued }

// Initiative returns the current round's initiative value.
func (c *Combatant) Initiative() int { return c.initiative }

// RemainingAttacks returns how many turns remain this round.
func (c *Combatant) RemainingAttacks() int { return c.remainingAttacks }

// Defenders returns the combatants currently guarding this one that are
// still able to act.
func (c *Combatant) Defenders() []Character {
	var out []Character
	for _, d := range c.defenders {
		if dc := c.session.combatant(d.ID()); dc != nil && dc.canAct() {
			out = append(out, d)
		}
	}
	return out
}

// Foes returns the current foe set.
func (c *Combatant) Foes() []Character { return c.foes }

// Friends returns the current friend set.
func (c *Combatant) Friends() []Character { return c.friends }

// Guarding returns who this combatant protects, nil for nobody.
func (c *Combatant) Guarding() Character { return c.guarding }

// Covering reports whether this combatant is covering anyone's retreat.
func (c *Combatant) Covering() bool { return len(c.covering) > 0 }

// Stance returns the actor's persisted stance, normalized.
func (c *Combatant) Stance() string { return normalizeStance(c.char.Stance()) }

// ready state: actors the engine acts for are always ready to proceed.
func (c *Combatant) isReady() bool { return c.automated || c.autoattack || c.ready }

// validTarget reports whether this combatant can be interacted with at
// all: present in the session and at its location.
func (c *Combatant) validTarget() bool {
	return c.session != nil && c.char.LocationID() == c.session.locationID
}

// canFight reports whether the combatant is still a fighting party:
// valid and conscious. Incapacitated actors can be attacked but not act.
func (c *Combatant) canFight() bool {
	return c.validTarget() && c.char.Conscious()
}

// canAct reports whether the combatant may act this round.
func (c *Combatant) canAct() bool { return c.canFight() }

// reset clears per-round state at the top of every Setup phase.
func (c *Combatant) reset() {
	c.timesAttacked = 0
	c.ready = false
	c.queued = nil
	c.changedStance = false
	c.fatigueThisRound = 0
	if c.multiple {
		c.totalAttacks = c.char.Quantity()
	}
	c.remainingAttacks = c.totalAttacks
}

// addFoe records targ as hostile and recursively marks its declared
// defenders hostile too. Foes and friends stay disjoint.
func (c *Combatant) addFoe(targ Character) {
	if targ == nil || targ.ID() == c.char.ID() || containsChar(c.foes, targ.ID()) {
		return
	}
	c.foes = append(c.foes, targ)
	c.friends = removeChar(c.friends, targ.ID())
	for _, id := range targ.DeclaredDefenders() {
		if id == c.char.ID() || containsChar(c.friends, id) {
			continue
		}
		if def, ok := c.session.manager.resolve(id); ok {
			c.addFoe(def)
		}
	}
}

// addFriend records targ as friendly, with the same defender
// propagation as addFoe.
func (c *Combatant) addFriend(targ Character) {
	if targ == nil || targ.ID() == c.char.ID() || containsChar(c.friends, targ.ID()) {
		return
	}
	c.friends = append(c.friends, targ)
	c.foes = removeChar(c.foes, targ.ID())
	for _, id := range targ.DeclaredDefenders() {
		if id == c.char.ID() || containsChar(c.foes, id) {
			continue
		}
		if def, ok := c.session.manager.resolve(id); ok {
			c.addFriend(def)
		}
	}
}

// validateTargets rebuilds the target list from the foe set: foes still
// in the fight, conscious unless we mean to kill, plus inherited foes of
// whoever we are guarding.
func (c *Combatant) validateTargets(lethal bool) {
	if g := c.guarding; g != nil {
		if gd := c.session.combatant(g.ID()); gd != nil {
			for _, foe := range gd.foes {
				c.addFoe(foe)
			}
		}
	}
	c.targets = c.targets[:0]
	for _, foe := range c.foes {
		fc := c.session.combatant(foe.ID())
		if fc == nil {
			continue
		}
		if lethal {
			if fc.validTarget() && foe.Attackable() {
				c.targets = append(c.targets, foe)
			}
		} else if fc.canFight() {
			c.targets = append(c.targets, foe)
		}
	}
}

// setQueuedAction commits the pending action, optionally marking the
// combatant ready for the phase to advance.
func (c *Combatant) setQueuedAction(q *QueuedAction, markReady bool) {
	if q != nil && q.TargetID != "" {
		if targ, ok := c.session.manager.resolve(q.TargetID); ok {
			c.addFoe(targ)
		}
	}
	c.queued = q
	if markReady {
		c.session.setReady(c)
	}
}

// woundPenalty converts accumulated damage into a difficulty penalty:
// one point per 10% of max health. Only the lead body of a squad feels
// its wounds.
func (c *Combatant) woundPenalty() int {
	if c.multiple && c.remainingAttacks != c.totalAttacks {
		return 0
	}
	maxHealth := c.char.MaxHealth()
	if maxHealth <= 0 {
		return 0
	}
	base := c.char.Harm() * 10 / maxHealth
	if base < 0 {
		base = 0
	}
	return base
}

// attackPenalties is the accumulated difficulty on attack rolls from
// wounds and fatigue.
func (c *Combatant) attackPenalties() int {
	return c.woundPenalty()/2 + c.fatigueAttackPenalty()
}

// defensePenalties is the accumulated difficulty on defense rolls from
// wounds, fatigue, and being swarmed this round.
func (c *Combatant) defensePenalties() int {
	overwhelm := c.timesAttacked * overwhelmStep
	if overwhelm > overwhelmCap {
		overwhelm = overwhelmCap
	}
	return c.woundPenalty() + c.fatigueDefensePenalty() + overwhelm
}

// dodgePenalty burdens dodge rolls with armor encumbrance.
func (c *Combatant) dodgePenalty() int {
	return c.char.ArmorPenalty() * 5 / 4
}

// soak is the randomized portion of damage mitigation: endurance plus
// survival instinct.
func (c *Combatant) soak() int {
	return c.char.Stat("stamina") + c.char.Stat("willpower") + c.char.Skill("survival")
}

// fatigueSoak absorbs fatigue accrual before it becomes a penalty.
func (c *Combatant) fatigueSoak() int {
	soak := c.char.Stat("willpower")
	if st := c.char.Stat("stamina"); st > soak {
		soak = st
	}
	soak += c.char.Skill("athletics")
	if soak < 2 {
		soak = 2
	}
	return soak
}

// fatiguePenalty is the effective fatigue after soak.
func (c *Combatant) fatiguePenalty() int {
	fat := int(c.fatigue) - c.fatigueSoak()
	if fat < 0 {
		return 0
	}
	return fat
}

func (c *Combatant) fatigueAttackPenalty() int {
	fat := c.fatiguePenalty() / 2
	if fat > fatigueAttackCap {
		return fatigueAttackCap
	}
	return fat
}

func (c *Combatant) fatigueDefensePenalty() int {
	return c.fatiguePenalty() * 2
}

// containsChar reports whether set holds a character with the given ID.
func containsChar(set []Character, id string) bool {
	for _, ch := range set {
		if ch.ID() == id {
			return true
		}
	}
	return false
}

// removeChar returns set without the character with the given ID.
func removeChar(set []Character, id string) []Character {
	for i, ch := range set {
		if ch.ID() == id {
			return append(set[:i], set[i+1:]...)
		}
	}
	return set
}
