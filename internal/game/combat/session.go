package combat

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harrovale/mud/internal/game/dice"
)

// Session owns one fight at one location: its combatants, observers,
// phase machine, initiative order, and vote tallies. All mutating calls
// must arrive on the single command stream that owns the session.
type Session struct {
	id         uuid.UUID
	locationID string
	manager    *Manager
	logger     *zap.Logger

	phase     Phase
	round     int
	maxRounds int
	lethal    bool

	combatants []*Combatant
	observers  map[string]Character

	initiative []*Combatant
	active     *Combatant

	votesToEnd   map[string]bool
	fleeApproved map[string]bool

	shuttingDown bool
	initializing bool
}

func newSession(m *Manager, locationID string, opts LocationOpts) *Session {
	s := &Session{
		id:           uuid.New(),
		locationID:   locationID,
		manager:      m,
		logger:       m.logger.With(zap.String("location", locationID)),
		phase:        PhaseSetup,
		round:        1,
		maxRounds:    m.settings.MaxRounds,
		lethal:       !opts.NonLethal,
		observers:    make(map[string]Character),
		votesToEnd:   make(map[string]bool),
		fleeApproved: make(map[string]bool),
		initializing: true,
	}
	s.logger = s.logger.With(zap.String("session", s.id.String()))
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// LocationID returns the location this fight occupies.
func (s *Session) LocationID() string { return s.locationID }

// Phase returns the current phase.
func (s *Session) Phase() Phase { return s.phase }

// Round returns the current round number, starting at 1.
func (s *Session) Round() int { return s.round }

// Lethal reports whether health effects persist after the fight.
func (s *Session) Lethal() bool { return s.lethal }

// ActiveCombatant returns the combatant whose turn it is, nil outside
// the Resolution phase.
func (s *Session) ActiveCombatant() *Combatant {
	if s.phase != PhaseResolution {
		return nil
	}
	return s.active
}

// Combatants returns the current combatant roster.
func (s *Session) Combatants() []*Combatant {
	out := make([]*Combatant, len(s.combatants))
	copy(out, s.combatants)
	return out
}

func (s *Session) checker() *dice.Checker { return s.manager.checker }

// combatant finds the state for the actor with the given ID, nil if the
// actor is not fighting here.
func (s *Session) combatant(id string) *Combatant {
	for _, c := range s.combatants {
		if c.char.ID() == id {
			return c
		}
	}
	return nil
}

func (s *Session) ended() bool { return s.phase == PhaseEnded }

// activeCombatants returns combatants still able to fight.
func (s *Session) activeCombatants() []*Combatant {
	var out []*Combatant
	for _, c := range s.combatants {
		if c.canFight() {
			out = append(out, c)
		}
	}
	return out
}

// setReady marks c ready and records the activity for AFK purposes.
func (s *Session) setReady(c *Combatant) {
	c.ready = true
	s.noteActivity(c)
}

// noteActivity clears AFK tracking against c. Any deliberate action
// counts, including a stance change.
func (s *Session) noteActivity(c *Combatant) {
	c.afkSince = zeroTime
	c.votesToKick = nil
}

// startSetup opens a new round: clears per-round state, asks automated
// actors for their actions, and runs the ready check.
func (s *Session) startSetup() {
	if s.ended() {
		return
	}
	s.phase = PhaseSetup
	s.active = nil
	s.initiative = nil
	for _, c := range s.combatants {
		c.reset()
	}
	s.broadcast(fmt.Sprintf("Round %d: setup phase. Queue an action or mark yourself ready.", s.round))
	s.fillAutomatedActions()
	s.readyCheck()
}

// fillAutomatedActions queues a policy decision for every combatant on
// autoattack that has none. This covers automated actors and players
// who switched the engine on for themselves.
func (s *Session) fillAutomatedActions() {
	for _, c := range s.combatants {
		if !c.autoattack || c.queued != nil || !c.canAct() {
			continue
		}
		c.queued = s.manager.policy.Decide(s.snapshotFor(c))
	}
}

// readyCheck advances to Resolution once every active combatant has
// queued an action or marked itself ready. A fight left entirely to
// automated actors that all queue Pass ends instead of spinning.
func (s *Session) readyCheck() {
	if s.ended() || s.phase != PhaseSetup {
		return
	}
	if s.checkTermination() {
		return
	}
	var blocking []string
	allAutomated := true
	allPass := true
	for _, c := range s.combatants {
		if !c.canAct() {
			continue
		}
		if !c.automated {
			allAutomated = false
		}
		if c.queued == nil || c.queued.Kind != ActionPass {
			allPass = false
		}
		if !c.isReady() && c.queued == nil {
			blocking = append(blocking, c.Name())
		}
	}
	if allAutomated && allPass {
		s.End("Nobody seems willing to fight. The battle winds down.")
		return
	}
	if len(blocking) > 0 {
		s.broadcast("Waiting on: " + strings.Join(blocking, ", "))
		return
	}
	s.startResolution()
}

// startResolution builds initiative, settles pending flee contests, and
// dispatches the first turn.
func (s *Session) startResolution() {
	s.phase = PhaseResolution
	s.resolveFleeContests()
	s.buildInitiative()
	s.broadcast("Resolution phase begins.")
	s.nextTurn()
}

// buildInitiative rolls and orders this round's turn queue, highest
// initiative first.
func (s *Session) buildInitiative() {
	s.initiative = s.initiative[:0]
	for _, c := range s.combatants {
		if !c.canAct() {
			continue
		}
		c.rollInitiative()
		s.initiative = append(s.initiative, c)
	}
	sortInitiative(s.initiative)
}

func sortInitiative(order []*Combatant) {
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].initiative != order[j].initiative {
			return order[i].initiative > order[j].initiative
		}
		return order[i].tiebreaker > order[j].tiebreaker
	})
}

// nextTurn pops the initiative queue until it finds a combatant that
// can take an action, resolving departures, skips, and lost turns along
// the way. With the queue exhausted it closes the round.
func (s *Session) nextTurn() {
	for {
		if s.ended() {
			return
		}
		if s.checkTermination() {
			return
		}
		if len(s.initiative) == 0 {
			s.endRound()
			return
		}
		c := s.initiative[0]
		s.initiative = s.initiative[1:]
		s.active = c

		if !c.validTarget() {
			// Left the scene mid-round. No turn consumed.
			s.removeCombatantState(c, "")
			continue
		}
		if !c.canAct() {
			s.broadcast(fmt.Sprintf("%s cannot act.", c.Name()))
			continue
		}
		if c.lostTurns > 0 {
			c.lostTurns--
			c.remainingAttacks--
			s.broadcast(fmt.Sprintf("%s is reeling and loses a turn.", c.Name()))
			continue
		}
		if s.fleeApproved[c.char.ID()] {
			s.executeFlee(c)
			continue
		}

		if c.queued == nil {
			if c.autoattack {
				c.queued = s.manager.policy.Decide(s.snapshotFor(c))
			} else {
				// Control returns to the command surface until the
				// player queues something.
				c.char.Msg("It is your turn. Choose an action.")
				return
			}
		}
		s.resolveQueued(c)
		if s.ended() {
			return
		}
	}
}

// resolveQueued executes c's queued action and clears the active slot.
// The caller keeps popping turns afterward.
func (s *Session) resolveQueued(c *Combatant) {
	q := c.queued
	c.queued = nil
	s.noteActivity(c)

	switch q.Kind {
	case ActionPass, ActionNone:
		msg := q.Message
		if msg == "" {
			msg = fmt.Sprintf("%s stands back and waits.", c.Name())
		}
		s.broadcast(msg)
		c.remainingAttacks--
	case ActionDelay:
		s.broadcast(fmt.Sprintf("%s bides their time.", c.Name()))
		s.initiative = append(s.initiative, c)
		s.active = nil
		return
	case ActionAttack, ActionKill:
		s.resolveAttackAction(c, q)
		if s.ended() {
			return
		}
		c.remainingAttacks--
	default:
		c.char.Msg("You hesitate, unsure what to do.")
		c.remainingAttacks--
	}

	c.numActions++
	if c.remainingAttacks > 0 && c.canAct() {
		s.initiative = append(s.initiative, c)
	}
	s.active = nil
}

// endRound closes Resolution: fatigue accrues, the round counter moves,
// and the session either hits the cap or re-enters Setup.
func (s *Session) endRound() {
	s.active = nil
	for _, c := range s.combatants {
		c.rollFatigue()
	}
	s.round++
	if s.round > s.maxRounds {
		s.End("The fight has dragged on too long and sputters out.")
		return
	}
	s.startSetup()
}

// checkTermination applies the continuous end conditions. It returns
// true when the session has ended.
func (s *Session) checkTermination() bool {
	if s.ended() {
		return true
	}
	if s.initializing {
		return false
	}
	remaining := 0
	for _, c := range s.combatants {
		if c.validTarget() {
			remaining++
		}
	}
	if remaining < 2 {
		s.End("The fight is over.")
		return true
	}
	if s.endVotePassed() {
		s.End("All parties agree to stop fighting.")
		return true
	}
	return false
}

// End terminates the session, tearing down every combatant's state and
// unwinding non-lethal harm.
func (s *Session) End(reason string) {
	if s.ended() || s.shuttingDown {
		return
	}
	s.shuttingDown = true
	if reason != "" {
		s.broadcast(reason)
	}
	for len(s.combatants) > 0 {
		s.removeCombatantState(s.combatants[0], "")
	}
	s.observers = make(map[string]Character)
	s.phase = PhaseEnded
	s.initiative = nil
	s.active = nil
	s.logger.Info("combat ended", zap.Int("rounds", s.round))
	s.manager.endSession(s)
}

// snapshotFor assembles the read-only view handed to an auto policy.
func (s *Session) snapshotFor(c *Combatant) Snapshot {
	snap := Snapshot{
		Round:      s.round,
		Lethal:     s.lethal && c.killIntent,
		SelfID:     c.char.ID(),
		SelfHarm:   c.char.Harm(),
		SelfHealth: c.char.MaxHealth(),
	}
	c.validateTargets(s.lethal && c.killIntent)
	for _, t := range c.targets {
		snap.Targets = append(snap.Targets, TargetInfo{
			ID:        t.ID(),
			Name:      t.Name(),
			Conscious: t.Conscious(),
			Harm:      t.Harm(),
			MaxHealth: t.MaxHealth(),
		})
	}
	return snap
}

// Status renders the fight roster for a viewer: stance, health and
// fatigue in coarse words rather than numbers, the queued action, and
// the readiness state.
func (s *Session) Status() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Combat, round %d (%s phase)\n", s.round, s.phase)
	for _, c := range s.combatants {
		state := "ready"
		switch {
		case !c.char.Conscious():
			state = "down"
		case s.votesToEnd[c.char.ID()]:
			state = "wants to end"
		case s.phase == PhaseSetup && !c.isReady() && c.queued == nil:
			state = "deciding"
		}
		fmt.Fprintf(&b, "  %-20s %-10s %-18s %-10s %-8s (%s)\n",
			c.Name(), c.Stance(), healthWord(c.char), fatigueWord(c), c.queued.String(), state)
	}
	return b.String()
}

func fatigueWord(c *Combatant) string {
	switch fat := c.fatiguePenalty(); {
	case fat <= 0:
		return "fresh"
	case fat < 5:
		return "winded"
	case fat < 10:
		return "flagging"
	default:
		return "exhausted"
	}
}

func healthWord(ch Character) string {
	maxHealth := ch.MaxHealth()
	if maxHealth <= 0 {
		return "unharmed"
	}
	ratio := float64(ch.Harm()) / float64(maxHealth)
	switch {
	case ch.Harm() == 0:
		return "unharmed"
	case ratio < 0.25:
		return "scratched"
	case ratio < 0.5:
		return "bruised"
	case ratio < 0.75:
		return "wounded"
	case ratio < 1.0:
		return "badly wounded"
	default:
		return "critically wounded"
	}
}

// broadcast sends text to every combatant and observer.
func (s *Session) broadcast(text string) {
	for _, c := range s.combatants {
		c.char.Msg(text)
	}
	for _, o := range s.observers {
		o.Msg(text)
	}
}
