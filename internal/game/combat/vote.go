package combat

import "fmt"

// End-of-combat voting: unanimity among every able combatant who has
// not already disengaged ends the fight.

// VoteToEnd records id's vote to stop fighting and ends the session if
// the vote is now unanimous.
func (s *Session) VoteToEnd(id string) error {
	if s.ended() {
		return ErrSessionOver
	}
	c := s.combatant(id)
	if c == nil {
		return ErrNotInCombat
	}
	if s.votesToEnd[id] {
		c.char.Msg("You have already voted to end the fight.")
		return nil
	}
	s.votesToEnd[id] = true
	s.noteActivity(c)
	s.broadcast(fmt.Sprintf("%s wants to stop fighting.", c.Name()))
	if s.endVotePassed() {
		s.End("All parties agree to stop fighting.")
		return nil
	}
	var waiting []string
	for _, other := range s.combatants {
		if other.canFight() && !s.votesToEnd[other.char.ID()] && !s.disengaged(other) {
			waiting = append(waiting, other.Name())
		}
	}
	if len(waiting) > 0 {
		c.char.Msg(fmt.Sprintf("Still fighting: %v", waiting))
	}
	return nil
}

// endVotePassed reports whether every able, non-disengaged combatant
// has voted to end. A fight with no votes at all never auto-ends.
func (s *Session) endVotePassed() bool {
	if len(s.votesToEnd) == 0 {
		return false
	}
	for _, c := range s.combatants {
		if !c.canFight() || s.disengaged(c) {
			continue
		}
		if !s.votesToEnd[c.char.ID()] {
			return false
		}
	}
	return true
}

// disengaged combatants are not counted toward the end vote: they are
// already on their way out.
func (s *Session) disengaged(c *Combatant) bool {
	return c.fleeExit != "" || s.fleeApproved[c.char.ID()]
}
