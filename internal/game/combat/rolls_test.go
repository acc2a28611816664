package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrovale/mud/internal/game/actor"
)

// flatSource rolls the same face every time, so checks reduce to pure
// pool-size arithmetic.
type flatSource struct{ v int }

func (f flatSource) Intn(n int) int {
	if f.v >= n {
		return n - 1
	}
	return f.v
}

func TestFleeContestTieFavorsFleer(t *testing.T) {
	f := newFixtureFrom(t, flatSource{4})
	a := f.player(t, "alice")
	b := f.player(t, "bob")

	s, err := f.manager.StartCombat(a, b, LocationOpts{})
	require.NoError(t, err)

	ca := s.combatant("alice")
	ca.blockers = []Character{b}

	// Alice slips on dexterity and dodge, bob grabs on dexterity and
	// brawl. Under flat dice their equal pools roll equal totals, and a
	// blocker must win outright, so the tie lets alice slip away.
	assert.True(t, ca.rollFleeSuccess())
}

func TestFleeContestBlockerMustOutroll(t *testing.T) {
	f := newFixtureFrom(t, flatSource{4})
	a := f.player(t, "alice")
	bruiser := actor.New(actor.Params{
		ID: "bruiser", Name: "bruiser", LocationID: "arena",
		Stats:  map[string]int{"dexterity": 3, "stamina": 3, "strength": 3},
		Skills: map[string]int{"brawl": 4, "dodge": 2},
	})
	require.NoError(t, f.roster.Add(bruiser))

	s, err := f.manager.StartCombat(a, bruiser, LocationOpts{})
	require.NoError(t, err)

	ca := s.combatant("alice")
	ca.blockers = []Character{bruiser}
	assert.False(t, ca.rollFleeSuccess(), "a stronger grab keeps the fleer in")
}

func TestFleeContestRunsOnDodge(t *testing.T) {
	f := newFixtureFrom(t, flatSource{4})
	eel := actor.New(actor.Params{
		ID: "eel", Name: "eel", LocationID: "arena",
		Stats:  map[string]int{"dexterity": 3, "stamina": 3, "strength": 3},
		Skills: map[string]int{"dodge": 5, "brawl": 2},
	})
	require.NoError(t, f.roster.Add(eel))
	bruiser := actor.New(actor.Params{
		ID: "bruiser", Name: "bruiser", LocationID: "arena",
		Stats:  map[string]int{"dexterity": 3, "stamina": 3, "strength": 3},
		Skills: map[string]int{"brawl": 4, "dodge": 2},
	})
	require.NoError(t, f.roster.Add(bruiser))

	s, err := f.manager.StartCombat(eel, bruiser, LocationOpts{})
	require.NoError(t, err)

	// The same grab that held alice loses to a slippery fleer: the
	// escape rides on dodge, not on raw muscle.
	ce := s.combatant("eel")
	ce.blockers = []Character{bruiser}
	assert.True(t, ce.rollFleeSuccess())
}

func TestRollFatiguePassedCheckCostsNothing(t *testing.T) {
	f := newFixtureFrom(t, flatSource{9})
	a := f.player(t, "alice")
	b := f.player(t, "bob")

	s, err := f.manager.StartCombat(a, b, LocationOpts{})
	require.NoError(t, err)

	ca := s.combatant("alice")
	ca.numActions = 2
	ca.rollFatigue()
	assert.Zero(t, ca.fatigue, "a passed endurance check accrues nothing")
	assert.Zero(t, ca.numActions, "the action count resets either way")
}

func TestRollFatigueFailureCappedPerRound(t *testing.T) {
	f := newFixtureFrom(t, flatSource{0})
	a := f.player(t, "alice")
	b := f.player(t, "bob")

	s, err := f.manager.StartCombat(a, b, LocationOpts{})
	require.NoError(t, err)

	ca := s.combatant("alice")
	ca.numActions = 2
	ca.rollFatigue()
	assert.Equal(t, maxFatigueGainPerRound, ca.fatigue,
		"a bad failure still gains at most half a point per round")

	// A second losing round stacks another capped gain.
	ca.numActions = 2
	ca.rollFatigue()
	assert.Equal(t, 2*maxFatigueGainPerRound, ca.fatigue)
}
