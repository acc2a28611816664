package combat

import "fmt"

// Player-facing operation surface. The command layer translates input
// into these calls and relays errors back as plain text.

// QueueAction commits id's pending action. During Setup the action
// waits for Resolution; if it is currently the actor's turn the action
// resolves immediately instead of queueing.
func (s *Session) QueueAction(id string, q QueuedAction, markReady bool) error {
	if s.ended() {
		return ErrSessionOver
	}
	c := s.combatant(id)
	if c == nil {
		return ErrNotInCombat
	}
	if q.Kind == ActionKill && !s.lethal {
		return fmt.Errorf("this is not a lethal fight: %w", ErrInvalidTarget)
	}
	if q.TargetID != "" && s.combatant(q.TargetID) == nil {
		if targ, ok := s.manager.resolve(q.TargetID); ok && targ.LocationID() == s.locationID {
			// A fresh target is pulled into the fight first.
			if _, err := s.AddCombatant(targ, c.char); err != nil {
				return err
			}
		} else {
			return fmt.Errorf("no such target: %w", ErrInvalidTarget)
		}
	}
	s.noteActivity(c)
	if s.phase == PhaseResolution && s.active == c {
		c.setQueuedAction(&q, false)
		s.resolveQueued(c)
		if !s.ended() {
			s.nextTurn()
		}
		return nil
	}
	c.setQueuedAction(&q, markReady)
	if s.phase == PhaseSetup {
		s.readyCheck()
	}
	return nil
}

// CancelAction clears id's queued action with no side effects. Legal
// any time before the action resolves.
func (s *Session) CancelAction(id string) error {
	c := s.combatant(id)
	if c == nil {
		return ErrNotInCombat
	}
	c.queued = nil
	c.ready = false
	c.char.Msg("You cancel your planned action.")
	return nil
}

// MarkReady flags id as ready for the round to proceed even without a
// queued action.
func (s *Session) MarkReady(id string) error {
	if s.ended() {
		return ErrSessionOver
	}
	c := s.combatant(id)
	if c == nil {
		return ErrNotInCombat
	}
	s.setReady(c)
	if s.phase == PhaseSetup {
		s.readyCheck()
	}
	return nil
}

// ChangeStance adjusts id's fighting stance. Stance changes are a Setup
// action, once per round, and count as activity for AFK purposes.
func (s *Session) ChangeStance(id, stance string) error {
	if s.ended() {
		return ErrSessionOver
	}
	c := s.combatant(id)
	if c == nil {
		return ErrNotInCombat
	}
	if !ValidStance(stance) {
		return fmt.Errorf("unknown stance %q: %w", stance, ErrInvalidTarget)
	}
	if s.phase != PhaseSetup {
		return fmt.Errorf("stances change between rounds: %w", ErrWrongPhase)
	}
	if c.changedStance {
		return fmt.Errorf("you have already shifted stance this round: %w", ErrWrongPhase)
	}
	c.changedStance = true
	c.char.SetStance(stance)
	s.noteActivity(c)
	s.broadcast(fmt.Sprintf("%s shifts to a %s stance.", c.Name(), stance))
	return nil
}

// SetKillIntent toggles whether id's attacks press for the kill.
func (s *Session) SetKillIntent(id string, kill bool) error {
	c := s.combatant(id)
	if c == nil {
		return ErrNotInCombat
	}
	c.killIntent = kill && s.lethal
	return nil
}

// SetAutoattack toggles automated action filling for a player who wants
// the engine to fight for them.
func (s *Session) SetAutoattack(id string, on bool) error {
	c := s.combatant(id)
	if c == nil {
		return ErrNotInCombat
	}
	c.autoattack = on
	c.automated = on || c.char.Automated()
	return nil
}

// Administrative overrides. These bypass the voting and readiness
// machinery and are not offered to ordinary players.

// ForceEnd terminates the session unconditionally.
func (s *Session) ForceEnd() {
	s.End("The fight has been called off.")
}

// ForceReadyAll skips the Setup ready check, queueing a pass for anyone
// without an action.
func (s *Session) ForceReadyAll() error {
	if s.ended() {
		return ErrSessionOver
	}
	if s.phase != PhaseSetup {
		return ErrWrongPhase
	}
	for _, c := range s.combatants {
		if !c.canAct() {
			continue
		}
		if c.queued == nil {
			c.queued = &QueuedAction{Kind: ActionPass}
		}
		c.ready = true
	}
	s.startResolution()
	return nil
}

// ForcePass discards id's turn with a pass.
func (s *Session) ForcePass(id string) error {
	if s.ended() {
		return ErrSessionOver
	}
	c := s.combatant(id)
	if c == nil {
		return ErrNotInCombat
	}
	if s.phase == PhaseResolution && s.active == c {
		c.setQueuedAction(&QueuedAction{Kind: ActionPass}, false)
		s.resolveQueued(c)
		if !s.ended() {
			s.nextTurn()
		}
		return nil
	}
	c.setQueuedAction(&QueuedAction{Kind: ActionPass}, true)
	if s.phase == PhaseSetup {
		s.readyCheck()
	}
	return nil
}

// ForceEvict moves id to observer status without a vote.
func (s *Session) ForceEvict(id string) error {
	c := s.combatant(id)
	if c == nil {
		return ErrNotInCombat
	}
	s.MoveToObserver(c)
	return nil
}
