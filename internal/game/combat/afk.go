package combat

import (
	"fmt"
	"time"
)

var zeroTime time.Time

// AFK detection. The engine never force-resolves on a clock; removing
// an unresponsive player is a social mechanism. The first check on an
// actor arms its timer and warns it. Checks after the grace window
// count as eviction votes; unanimity among every other able combatant
// moves the target to observer status.

// CheckAFK is one participant checking another for inactivity.
func (s *Session) CheckAFK(checkerID, targetID string) error {
	if s.ended() {
		return ErrSessionOver
	}
	checker := s.combatant(checkerID)
	if checker == nil {
		return ErrNotInCombat
	}
	target := s.combatant(targetID)
	if target == nil {
		return ErrInvalidTarget
	}
	if targetID == checkerID {
		return ErrInvalidTarget
	}
	if target.automated {
		checker.char.Msg(fmt.Sprintf("%s does not need checking.", target.Name()))
		return nil
	}
	if !s.holdingUpFight(target) {
		return fmt.Errorf("%s is not holding up the fight: %w", target.Name(), ErrInvalidTarget)
	}

	now := s.manager.now()
	if target.afkSince.IsZero() {
		target.afkSince = now
		target.char.Msg("Are you still there? You will be removed from the fight if you stay idle.")
		checker.char.Msg(fmt.Sprintf("%s has been warned. Check again later to vote for removal.", target.Name()))
		return nil
	}
	if now.Sub(target.afkSince) < s.manager.settings.AFKGrace {
		checker.char.Msg(fmt.Sprintf("%s was warned recently; give them more time.", target.Name()))
		return nil
	}

	for _, v := range target.votesToKick {
		if v == checkerID {
			checker.char.Msg(fmt.Sprintf("You have already voted to remove %s.", target.Name()))
			return nil
		}
	}
	target.votesToKick = append(target.votesToKick, checkerID)
	checker.char.Msg(fmt.Sprintf("You vote to remove %s from the fight.", target.Name()))

	needed := 0
	for _, c := range s.combatants {
		if c == target || !c.canFight() {
			continue
		}
		needed++
	}
	votes := 0
	for _, v := range target.votesToKick {
		if vc := s.combatant(v); vc != nil && vc.canFight() {
			votes++
		}
	}
	if votes < needed {
		s.broadcast(fmt.Sprintf("%d of %d votes to remove %s.", votes, needed, target.Name()))
		return nil
	}
	s.MoveToObserver(target)
	return nil
}

// holdingUpFight reports whether everyone is waiting on c: not yet
// ready during Setup, or sitting on the active turn during Resolution.
func (s *Session) holdingUpFight(c *Combatant) bool {
	switch s.phase {
	case PhaseSetup:
		return !c.isReady()
	case PhaseResolution:
		return s.active == c
	default:
		return false
	}
}
