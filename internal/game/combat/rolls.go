package combat

import (
	"github.com/harrovale/mud/internal/game/dice"
)

// Roll plumbing for the resolution phase. All randomness flows through
// the session's checker so fights can be replayed under a seeded
// source.

// rollInitiative orders the combatant for the round. The tiebreaker is a
// large random draw so equal initiatives still sort deterministically
// within a round.
func (c *Combatant) rollInitiative() {
	spec := dice.Spec{Stats: []string{"dexterity", "composure"}}
	c.initiative = c.session.checker().Check(c.char, spec, 0)
	c.tiebreaker = c.session.checker().Source().Intn(1_000_000_000)
}

// rollAttack makes an attack check against defender. Penalty carries
// situational modifiers (stance, cover, bypass) on top of the standing
// wound and fatigue penalties. When the attacker still has bodies or
// attacks in reserve the roll is half-randomized to flatten swing.
func (c *Combatant) rollAttack(penalty int) int {
	diff := baseAttackDifficulty + penalty + c.attackPenalties() + c.weapon.DifficultyMod
	spec := dice.Spec{Stats: []string{c.weapon.AttackStat}, Skill: c.weapon.AttackSkill}
	roll := c.session.checker().Check(c.char, spec, diff)
	if c.remainingAttacks >= 2 {
		roll = halveSwing(roll, c.session.checker().Source())
	}
	return roll
}

// rollDefense takes the best of the defenses the combatant can mount:
// parry with the weapon, block with a shield, dodge on foot. A defense
// the incoming weapon cannot be stopped by is skipped, as is one the
// defender has no tool for.
func (c *Combatant) rollDefense(attacker *Combatant, penalty int) int {
	diff := baseDefenseDifficulty + penalty + c.defensePenalties()
	src := c.session.checker().Source()

	best := -1000
	kind := "none"

	if attacker.weapon.CanBeParried && c.weapon.CanParry {
		spec := dice.Spec{Stats: []string{c.weapon.AttackStat}, Skill: c.weapon.AttackSkill}
		roll := c.session.checker().Check(c.char, spec, diff+parryDifficultyShift)
		roll = halveSwing(roll, src)
		if roll > best {
			best, kind = roll, "parry"
		}
	}
	if attacker.weapon.CanBeBlocked && c.canBlock {
		spec := dice.Spec{Stats: []string{"dexterity"}, Skill: "melee"}
		roll := c.session.checker().Check(c.char, spec, diff+c.dodgePenalty())
		roll = halveSwing(roll, src)
		if roll > best {
			best, kind = roll, "block"
		}
	}
	if attacker.weapon.CanBeDodged {
		spec := dice.Spec{Stats: []string{"dexterity"}, Skill: "dodge"}
		roll := c.session.checker().Check(c.char, spec, diff+dodgeDifficultyShift+c.dodgePenalty())
		roll = halveSwing(roll, src)
		if roll > best {
			best, kind = roll, "dodge"
		}
	}

	c.lastDefense = kind
	c.timesAttacked++
	return best
}

// rollDamage produces the raw damage of a landed hit before mitigation.
// Amplifying band multipliers (>1.0) scale here, before mitigation;
// reducing ones scale the post-mitigation remainder in applyBand. A
// quarter of the rolled total is kept fixed and the rest re-randomized
// so even strong hits vary.
func (c *Combatant) rollDamage(mult float64, bonus int) int {
	keep := c.weapon.WeaponDamage + 1 + c.char.Stat(c.weapon.DamageStat)/2
	if keep < 3 {
		keep = 3
	}
	spec := dice.Spec{
		Stats:        []string{c.weapon.DamageStat},
		Skill:        c.weapon.AttackSkill,
		BonusDice:    c.weapon.WeaponDamage,
		KeepOverride: keep,
	}
	roll := c.session.checker().Total(c.char, spec, 0)
	roll += c.weapon.FlatDamage + bonus
	if mult > 1.0 {
		roll = int(float64(roll) * mult)
	}
	if roll <= 0 {
		return 1
	}
	src := c.session.checker().Source()
	return roll/4 + src.Intn(3*roll/4+2)
}

// rollMitigation reduces incoming damage by armor and soak. Attack
// margin past the pierce threshold strips armor first.
func (c *Combatant) rollMitigation(aRoll int) int {
	armor := c.char.Armor()
	if pierce := aRoll - pierceThreshold; pierce > 0 {
		armor -= pierce
	}
	if armor < 0 {
		armor = 0
	}
	src := c.session.checker().Source()
	mit := armor + src.Intn(c.soak()*2+1)
	if mit < 0 {
		return 0
	}
	// Keep half fixed, re-randomize the rest.
	return mit/2 + src.Intn(mit/2+1)
}

// rollFatigue makes the end-of-round endurance check. The difficulty
// climbs with how much the combatant did this round and with armor
// encumbrance; a failure accrues fatigue in proportion to the failure
// margin, capped per round so marathon fights degrade gradually.
func (c *Combatant) rollFatigue() {
	if c.numActions <= 0 {
		return
	}
	spec := dice.Spec{Stats: []string{"stamina"}, Skill: "athletics"}
	diff := int(c.numActions)*fatigueCheckStep + c.char.ArmorPenalty()
	margin := c.session.checker().Check(c.char, spec, diff)
	c.numActions = 0
	if margin >= 0 {
		return
	}
	gain := float64(-margin) / float64(2*c.fatigueSoak())
	if gain > maxFatigueGainPerRound {
		gain = maxFatigueGainPerRound
	}
	c.fatigue += gain
}

// rollFleeSuccess contests the fleer's escape against every blocker.
// The fleer slips away on dexterity and dodge; each blocker grabs with
// dexterity and brawl. A blocker must out-roll the fleer outright to
// keep it in the fight, so ties favor the escape.
func (c *Combatant) rollFleeSuccess() bool {
	slip := dice.Spec{Stats: []string{"dexterity"}, Skill: "dodge"}
	grab := dice.Spec{Stats: []string{"dexterity"}, Skill: "brawl"}
	mine := c.session.checker().Check(c.char, slip, 0)
	for _, b := range c.blockers {
		bc := c.session.combatant(b.ID())
		if bc == nil || !bc.canAct() {
			continue
		}
		theirs := c.session.checker().Check(b, grab, 0)
		if theirs > mine {
			return false
		}
	}
	return true
}

// senseAmbush contests the target's awareness against a flanking
// attacker. Returns true when the ambush is noticed.
func (c *Combatant) senseAmbush(attacker *Combatant, sneaking bool) bool {
	perception := dice.Spec{Stats: []string{"wits"}, Skill: "perception"}
	stealth := dice.Spec{Stats: []string{"dexterity"}, Skill: "stealth"}
	diff := 0
	if sneaking {
		diff = 5
	}
	mine := c.session.checker().Check(c.char, perception, diff)
	theirs := c.session.checker().Check(attacker.char, stealth, 0)
	return mine >= theirs
}

// consciousCheck is the spec used for both the stay-conscious and the
// survival check.
func consciousCheck() dice.Spec {
	return dice.Spec{Stats: []string{"stamina", "willpower"}, Skill: "survival"}
}

// halveSwing keeps half a roll fixed and re-randomizes the other half,
// pulling repeated rolls toward their mean.
func halveSwing(roll int, src dice.Source) int {
	if roll <= 1 {
		return roll
	}
	return roll/2 + src.Intn(roll/2+1)
}
