package combat

import (
	"fmt"

	"go.uber.org/zap"
)

// Attack resolution: target selection with defender interception,
// the attack/defense contest, botches and ripostes, damage bands, and
// incapacitation checks.

// resolveAttackAction carries out a queued attack or kill. Stale
// targets are silently re-validated; an attacker left with no legal
// target wastes the swing with a message rather than erroring.
func (s *Session) resolveAttackAction(c *Combatant, q *QueuedAction) {
	lethal := s.lethal && (q.Kind == ActionKill || c.killIntent)

	target := s.pickTarget(c, q, lethal)
	if target == nil {
		c.char.Msg("You have nobody left to attack.")
		return
	}
	// NPCs die without explicit kill intent in lethal sessions.
	if s.lethal && target.char.NPC() {
		lethal = true
	}

	penalty := q.AttackPenalty
	if q.Bypass {
		penalty += bypassPenaltyPerDefender * len(target.Defenders())
	}

	if q.Flank {
		intercept, noticed := s.contestFlank(c, target)
		spotted := noticed || intercept != nil
		if spotted && q.BackOff {
			s.broadcast(fmt.Sprintf("%s is spotted and melts back into the fray.", c.Name()))
			return
		}
		if intercept != nil {
			s.broadcast(fmt.Sprintf("%s moves to intercept %s's ambush!", intercept.Name(), c.Name()))
			target = intercept
		}
		if spotted {
			penalty += flankShift
		} else {
			penalty -= flankShift
		}
	} else if !q.Bypass {
		if sub := s.interceptingDefender(target); sub != nil {
			s.broadcast(fmt.Sprintf("%s steps in front of %s!", sub.Name(), target.Name()))
			target = sub
		}
	}

	s.resolveAttack(c, target, penalty, q.DamageMod, lethal, true)
}

// pickTarget returns the combatant the queued action names, falling
// back to a random valid foe when the named target has gone stale.
func (s *Session) pickTarget(c *Combatant, q *QueuedAction, lethal bool) *Combatant {
	if q.TargetID != "" {
		if t := s.combatant(q.TargetID); t != nil {
			if lethal && t.validTarget() && t.char.Attackable() {
				c.prevTarget = t.char
				return t
			}
			if !lethal && t.canFight() {
				c.prevTarget = t.char
				return t
			}
		}
	}
	c.validateTargets(lethal)
	if len(c.targets) == 0 {
		return nil
	}
	// Squads spread their attacks across the field and never hammer the
	// same lone target twice running; single fighters stick with the
	// previous target while it remains valid.
	if c.char.Quantity() > 1 {
		pool := c.targets
		if prev := c.prevTarget; prev != nil && prev.Quantity() <= 1 && len(pool) > 1 {
			trimmed := make([]Character, 0, len(pool)-1)
			for _, tgt := range pool {
				if tgt.ID() != prev.ID() {
					trimmed = append(trimmed, tgt)
				}
			}
			pool = trimmed
		}
		pick := pool[s.checker().Source().Intn(len(pool))]
		c.prevTarget = pick
		return s.combatant(pick.ID())
	}
	if prev := c.prevTarget; prev != nil && containsChar(c.targets, prev.ID()) {
		return s.combatant(prev.ID())
	}
	pick := c.targets[s.checker().Source().Intn(len(c.targets))]
	c.prevTarget = pick
	return s.combatant(pick.ID())
}

// interceptingDefender chooses which of the target's able defenders
// takes the hit, weighted by body count so squads do most of the
// shielding. Nil means the attack lands on the target itself.
func (s *Session) interceptingDefender(target *Combatant) *Combatant {
	defenders := target.Defenders()
	if len(defenders) == 0 {
		return nil
	}
	total := 0
	weights := make([]int, len(defenders))
	for i, d := range defenders {
		w := d.Quantity()
		if w < 1 {
			w = 1
		}
		weights[i] = w
		total += w
	}
	pick := s.checker().Source().Intn(total)
	for i, w := range weights {
		if pick < w {
			return s.combatant(defenders[i].ID())
		}
		pick -= w
	}
	return s.combatant(defenders[len(defenders)-1].ID())
}

// contestFlank runs the ambush contest: each able defender in sequence,
// then the target itself. The first defender to sense the ambush
// intercepts; returns (nil, true) when only the target noticed and
// (nil, false) on a clean ambush.
func (s *Session) contestFlank(c *Combatant, target *Combatant) (*Combatant, bool) {
	for _, d := range target.Defenders() {
		dc := s.combatant(d.ID())
		if dc == nil {
			continue
		}
		if dc.senseAmbush(c, true) {
			return dc, true
		}
	}
	return nil, target.senseAmbush(c, true)
}

// resolveAttack runs one attack contest from c against target.
// consumeTurn is false for ripostes, which are free.
func (s *Session) resolveAttack(c, target *Combatant, penalty, damageMod int, lethal, consumeTurn bool) {
	attackMod := stanceAttackMod[c.Stance()]
	if c.Covering() {
		attackMod += coverPenalty
	}
	aRoll := c.rollAttack(penalty + attackMod)

	var dRoll int
	if target.char.Asleep() {
		// Sleeping targets cannot defend, and a hit wakes them.
		dRoll = -1000
		target.char.Wake(false)
	} else {
		defenseMod := stanceDefenseMod[target.Stance()]
		if target.Covering() {
			defenseMod += coverPenalty
		}
		dRoll = target.rollDefense(c, defenseMod)
	}
	margin := aRoll - dRoll

	s.logger.Debug("attack",
		zap.String("attacker", c.char.ID()),
		zap.String("target", target.char.ID()),
		zap.Int("attack", aRoll),
		zap.Int("defense", dRoll),
		zap.Int("margin", margin),
	)

	if aRoll < 0 && margin < botchMargin {
		s.resolveBotch(c, target, consumeTurn)
		return
	}

	mult, verb := marginBand(margin)
	if mult == 0 {
		s.broadcast(fmt.Sprintf("%s attacks %s and misses.", c.Name(), target.Name()))
		return
	}
	s.broadcast(fmt.Sprintf("%s %s %s (%s).", c.Name(), verb, target.Name(), target.lastDefenseLabel()))

	dmg := applyBand(c.rollDamage(mult, damageMod), target.rollMitigation(aRoll), mult)
	s.assignDamage(c, target, dmg, lethal)
}

// applyBand computes the net harm of a hit. Reducing band multipliers
// scale what is left after mitigation; amplifying ones were already
// folded into the damage roll.
func applyBand(raw, mitigation int, mult float64) int {
	net := raw - mitigation
	if mult < 1.0 && net > 0 {
		net = int(float64(net) * mult)
	}
	return net
}

// resolveBotch handles a catastrophic attack failure: the target takes
// a free counter when it can riposte and the attack type permits one,
// otherwise the botcher loses its next turn. The counter itself is
// never allowed to botch into a second riposte.
func (s *Session) resolveBotch(c, target *Combatant, allowRiposte bool) {
	s.broadcast(fmt.Sprintf("%s attacks %s and fumbles badly!", c.Name(), target.Name()))
	if allowRiposte && target.canAct() && !target.char.Asleep() &&
		target.weapon.CanRiposte && c.weapon.CanBeParried {
		s.broadcast(fmt.Sprintf("%s ripostes!", target.Name()))
		s.resolveAttack(target, c, 0, 0, s.lethal && target.killIntent, false)
		return
	}
	c.lostTurns++
	c.char.Msg("You are off balance and will lose your next turn.")
}

// marginBand maps the attack margin to a damage multiplier and a
// flavor verb. A zero multiplier is a clean miss.
func marginBand(margin int) (float64, string) {
	switch {
	case margin < missMargin:
		return 0, ""
	case margin < -5:
		return 0.25, "barely grazes"
	case margin < 5:
		return 0.5, "clips"
	case margin < 15:
		return 0.75, "solidly strikes"
	default:
		return 1.0, "lands squarely on"
	}
}

func (c *Combatant) lastDefenseLabel() string {
	switch c.lastDefense {
	case "parry":
		return "past a parry"
	case "block":
		return "around a shield"
	case "dodge":
		return "despite a dodge"
	default:
		return "undefended"
	}
}

// assignDamage records net damage against target. Non-positive net
// damage is a no-harm outcome with no state change.
func (s *Session) assignDamage(c, target *Combatant, dmg int, lethal bool) {
	if dmg <= 0 {
		s.broadcast(fmt.Sprintf("%s shrugs off the blow.", target.Name()))
		return
	}
	s.takeDamage(target, dmg, lethal, c)
}

// takeDamage applies dmg and runs the consciousness and survival
// checks. Squads lose bodies on failed survival checks; single actors
// fall unconscious or die. A player character always survives the first
// round it crosses max health (the grace period), and always gets it
// when random deaths are disabled.
func (s *Session) takeDamage(target *Combatant, dmg int, lethal bool, attacker *Combatant) {
	lethal = lethal && s.lethal
	target.char.ApplyHarm(dmg, lethal)
	s.broadcast(fmt.Sprintf("%s takes damage and is now %s.", target.Name(), healthWord(target.char)))

	maxHealth := target.char.MaxHealth()
	harm := target.char.Harm()
	if harm <= maxHealth {
		return
	}

	grace := !target.char.NPC() && (!target.gracedOnce || !s.manager.settings.RandomDeaths)
	over := harm - maxHealth

	// Consciousness: stay fighting one more round?
	consciousSpec := consciousCheck()
	consciousDiff := over * 10 / max(maxHealth, 1)
	stays := s.checker().Check(target.char, consciousSpec, consciousDiff) >= 0

	if harm < maxHealth*deathThresholdMult {
		if stays || grace {
			target.gracedOnce = true
			s.broadcast(fmt.Sprintf("%s staggers but stays on their feet.", target.Name()))
			return
		}
		s.knockOut(target, lethal)
		return
	}

	// Past the death threshold: survival check.
	survives := s.checker().Check(target.char, consciousSpec, consciousDiff+15) >= 0
	if survives || (grace && !target.char.NPC()) {
		target.gracedOnce = true
		if stays {
			s.broadcast(fmt.Sprintf("%s somehow remains standing.", target.Name()))
			return
		}
		s.knockOut(target, lethal)
		return
	}

	// Failed survival. Squads lose a body; singles die or drop.
	if target.multiple {
		target.char.Kill(lethal)
		target.totalAttacks = target.char.Quantity()
		if target.remainingAttacks > target.totalAttacks {
			target.remainingAttacks = target.totalAttacks
		}
		s.broadcast(fmt.Sprintf("One of %s falls!", target.Name()))
		if target.char.Quantity() <= 0 {
			s.removeCombatantState(target, fmt.Sprintf("%s have been wiped out.", target.Name()))
			s.checkTermination()
		}
		return
	}
	target.char.Kill(lethal)
	if target.char.Dead() {
		s.removeCombatantState(target, fmt.Sprintf("%s is slain!", target.Name()))
		s.checkTermination()
		return
	}
	s.broadcast(fmt.Sprintf("%s collapses, out of the fight.", target.Name()))
}

// knockOut drops target unconscious but leaves it in the session as an
// attackable non-actor.
func (s *Session) knockOut(target *Combatant, lethal bool) {
	target.char.FallUnconscious(lethal)
	s.broadcast(fmt.Sprintf("%s collapses, unconscious.", target.Name()))
}
