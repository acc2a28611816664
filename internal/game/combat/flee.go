package combat

import (
	"fmt"
)

// Flee, catch, and cover. Fleeing is a two-step commitment: declaring
// intent costs nothing, and the escape contest runs at the top of each
// Resolution phase. An approved fleer exits automatically on its turn.

// AttemptFlee declares id's intent to flee through exit. The escape is
// contested at the start of the next Resolution phase.
func (s *Session) AttemptFlee(id, exit string) error {
	if s.ended() {
		return ErrSessionOver
	}
	c := s.combatant(id)
	if c == nil {
		return ErrNotInCombat
	}
	if len(c.covering) > 0 {
		return fmt.Errorf("you cannot flee while covering a retreat: %w", ErrInvalidTarget)
	}
	c.fleeExit = exit
	s.noteActivity(c)
	c.char.Msg("You look for your chance to slip away.")
	s.broadcast(fmt.Sprintf("%s looks ready to flee!", c.Name()))
	return nil
}

// StopFleeing withdraws a flee declaration.
func (s *Session) StopFleeing(id string) error {
	c := s.combatant(id)
	if c == nil {
		return ErrNotInCombat
	}
	c.fleeExit = ""
	delete(s.fleeApproved, id)
	c.char.Msg("You steady yourself and stay in the fight.")
	return nil
}

// AttemptCatch registers the catcher as a blocker of target's escape. A
// catcher actively blocks at most one fleeing target; a new catch
// replaces the previous one.
func (s *Session) AttemptCatch(catcherID, targetID string) error {
	if s.ended() {
		return ErrSessionOver
	}
	c := s.combatant(catcherID)
	if c == nil {
		return ErrNotInCombat
	}
	t := s.combatant(targetID)
	if t == nil || !t.validTarget() {
		return ErrInvalidTarget
	}
	if prev := c.blockFlee; prev != nil {
		if pc := s.combatant(prev.ID()); pc != nil {
			pc.blockers = removeChar(pc.blockers, catcherID)
		}
	}
	c.blockFlee = t.char
	if !containsChar(t.blockers, catcherID) {
		t.blockers = append(t.blockers, c.char)
	}
	s.noteActivity(c)
	s.broadcast(fmt.Sprintf("%s moves to cut off %s's escape.", c.Name(), t.Name()))
	return nil
}

// BeginCover commits id to covering the retreat of the given targets.
// A coverer fights at a penalty, cannot flee, and cannot itself be
// covered while covering.
func (s *Session) BeginCover(id string, targetIDs []string) error {
	if s.ended() {
		return ErrSessionOver
	}
	c := s.combatant(id)
	if c == nil {
		return ErrNotInCombat
	}
	if c.fleeExit != "" {
		return fmt.Errorf("you cannot cover a retreat while fleeing: %w", ErrInvalidTarget)
	}
	if len(c.coveredBy) > 0 {
		return fmt.Errorf("someone is covering you; you cannot cover others: %w", ErrInvalidTarget)
	}
	covered := 0
	for _, tid := range targetIDs {
		t := s.combatant(tid)
		if t == nil || tid == id {
			continue
		}
		if len(t.covering) > 0 {
			// A coverer cannot be covered.
			continue
		}
		if !containsChar(c.covering, tid) {
			c.covering = append(c.covering, t.char)
			t.coveredBy = append(t.coveredBy, c.char)
		}
		covered++
	}
	if covered == 0 {
		return ErrInvalidTarget
	}
	s.noteActivity(c)
	s.broadcast(fmt.Sprintf("%s moves to cover the retreat.", c.Name()))
	return nil
}

// StopCovering releases cover on one target, or on everyone when
// targetID is empty.
func (s *Session) StopCovering(id, targetID string) error {
	c := s.combatant(id)
	if c == nil {
		return ErrNotInCombat
	}
	release := func(t *Combatant) {
		c.covering = removeChar(c.covering, t.char.ID())
		t.coveredBy = removeChar(t.coveredBy, id)
	}
	if targetID == "" {
		for len(c.covering) > 0 {
			if t := s.combatant(c.covering[0].ID()); t != nil {
				release(t)
			} else {
				c.covering = c.covering[1:]
			}
		}
	} else if t := s.combatant(targetID); t != nil {
		release(t)
	}
	c.char.Msg("You stop covering the retreat.")
	return nil
}

// resolveFleeContests runs at the top of Resolution. Every declared
// fleer rolls against all of its blockers; winning against all of them,
// or having at least one coverer, approves the escape for this round.
func (s *Session) resolveFleeContests() {
	for _, c := range s.combatants {
		if c.fleeExit == "" || !c.canAct() {
			continue
		}
		if len(c.coveredBy) > 0 || c.rollFleeSuccess() {
			s.fleeApproved[c.char.ID()] = true
			c.char.Msg("You see your opening to escape.")
		} else {
			c.char.Msg("Your escape is cut off this round.")
			s.broadcast(fmt.Sprintf("%s tries to flee but is hemmed in.", c.Name()))
		}
	}
}

// executeFlee carries out an approved escape on the fleer's turn: the
// actor departs through its chosen exit and leaves the session.
func (s *Session) executeFlee(c *Combatant) {
	exit := c.fleeExit
	delete(s.fleeApproved, c.char.ID())
	s.removeCombatantState(c, fmt.Sprintf("%s flees the fight!", c.Name()))
	if s.manager.depart != nil {
		if err := s.manager.depart(c.char, exit); err != nil {
			c.char.Msg("You cannot get away that way, but you are out of the fight.")
		}
	}
	s.checkTermination()
}
