package combat

import (
	"fmt"

	"go.uber.org/zap"
)

// Membership management: joining a fight, pulling in declared
// defenders, observer status, and the cleanup that keeps relationship
// sets consistent when anyone leaves.

// AddCombatant brings ch into the fight. When initiator is non-nil the
// two are marked mutual foes. Declared defenders of ch that are present
// and attackable are pulled in on its side. Joining is idempotent.
func (s *Session) AddCombatant(ch Character, initiator Character) (*Combatant, error) {
	if s.ended() {
		return nil, ErrSessionOver
	}
	if existing := s.combatant(ch.ID()); existing != nil {
		if initiator != nil {
			existing.addFoe(initiator)
			if ic := s.combatant(initiator.ID()); ic != nil {
				ic.addFoe(ch)
			}
		}
		return existing, nil
	}
	if ch.LocationID() != s.locationID {
		return nil, fmt.Errorf("%s is not here: %w", ch.Name(), ErrInvalidTarget)
	}
	if !ch.Attackable() {
		return nil, fmt.Errorf("%s cannot be fought: %w", ch.Name(), ErrInvalidTarget)
	}

	delete(s.observers, ch.ID())
	weapon, canBlock := s.manager.arm(ch)
	c := newCombatant(s, ch, weapon, canBlock)
	s.combatants = append(s.combatants, c)
	s.manager.engage(ch.ID(), s.locationID)
	s.logger.Debug("combatant joined", zap.String("actor", ch.ID()))
	s.broadcast(fmt.Sprintf("%s joins the fight.", c.Name()))

	if initiator != nil {
		c.addFoe(initiator)
		if ic := s.combatant(initiator.ID()); ic != nil {
			ic.addFoe(ch)
		}
	}

	// Pull in declared defenders on the new combatant's side.
	for _, id := range ch.DeclaredDefenders() {
		def, ok := s.manager.resolve(id)
		if !ok || def.LocationID() != s.locationID || !def.Attackable() || !def.Conscious() {
			continue
		}
		dc, err := s.AddCombatant(def, nil)
		if err != nil {
			continue
		}
		dc.guarding = ch
		c.defenders = append(c.defenders, def)
		dc.addFriend(ch)
		c.addFriend(def)
		for _, foe := range c.foes {
			dc.addFoe(foe)
		}
	}
	return c, nil
}

// AddObserver registers ch to receive fight broadcasts without taking
// part.
func (s *Session) AddObserver(ch Character) {
	if s.combatant(ch.ID()) != nil {
		return
	}
	s.observers[ch.ID()] = ch
}

// RemoveObserver drops ch from the broadcast list.
func (s *Session) RemoveObserver(id string) {
	delete(s.observers, id)
}

// RemoveCombatant takes ch out of the fight entirely, scrubbing every
// back-reference to it and re-checking termination.
func (s *Session) RemoveCombatant(id string) error {
	c := s.combatant(id)
	if c == nil {
		return ErrNotInCombat
	}
	s.removeCombatantState(c, "")
	s.checkTermination()
	return nil
}

// MoveToObserver demotes c to an observer, used by AFK eviction.
func (s *Session) MoveToObserver(c *Combatant) {
	ch := c.char
	s.removeCombatantState(c, fmt.Sprintf("%s is moved to the sidelines.", c.Name()))
	s.observers[ch.ID()] = ch
	s.checkTermination()
}

// removeCombatantState destroys c's per-fight state and scrubs both
// sides of every relationship pointing at it. In a non-lethal session
// the actor's temporary harm is undone on the way out.
func (s *Session) removeCombatantState(c *Combatant, notice string) {
	id := c.char.ID()
	for i, cc := range s.combatants {
		if cc == c {
			s.combatants = append(s.combatants[:i], s.combatants[i+1:]...)
			break
		}
	}

	for _, other := range s.combatants {
		other.foes = removeChar(other.foes, id)
		other.friends = removeChar(other.friends, id)
		other.targets = removeChar(other.targets, id)
		other.defenders = removeChar(other.defenders, id)
		other.blockers = removeChar(other.blockers, id)
		other.covering = removeChar(other.covering, id)
		other.coveredBy = removeChar(other.coveredBy, id)
		if other.guarding != nil && other.guarding.ID() == id {
			other.guarding = nil
		}
		if other.blockFlee != nil && other.blockFlee.ID() == id {
			other.blockFlee = nil
		}
		if other.prevTarget != nil && other.prevTarget.ID() == id {
			other.prevTarget = nil
		}
	}

	for i, cc := range s.initiative {
		if cc == c {
			s.initiative = append(s.initiative[:i], s.initiative[i+1:]...)
			break
		}
	}
	if s.active == c {
		s.active = nil
	}
	delete(s.votesToEnd, id)
	delete(s.fleeApproved, id)
	s.manager.disengage(id)

	if !s.lethal && !c.char.Dead() {
		c.char.ClearTempHarm()
		c.char.Wake(true)
	}
	c.session = nil
	if notice != "" {
		s.broadcast(notice)
	}
	s.logger.Debug("combatant removed", zap.String("actor", id))
}
