package command

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/harrovale/mud/internal/game/actor"
	"github.com/harrovale/mud/internal/game/combat"
	"github.com/harrovale/mud/internal/game/dice"
)

type dispatchFixture struct {
	roster     *actor.Roster
	manager    *combat.Manager
	dispatcher *Dispatcher
}

func newDispatchFixture(t *testing.T, seed int64) *dispatchFixture {
	t.Helper()
	roster := actor.NewRoster()
	lookup := func(id string) (combat.Character, bool) {
		a, ok := roster.Get(id)
		if !ok {
			return nil, false
		}
		return a, true
	}
	m := combat.NewManager(combat.ManagerParams{
		Checker: dice.NewChecker(dice.NewSeededSource(seed), zap.NewNop()),
		Settings: combat.Settings{
			RoundDelay:   time.Second,
			MaxRounds:    250,
			AFKGrace:     2 * time.Minute,
			RandomDeaths: true,
		},
		Resolve: lookup,
		Depart: func(ch combat.Character, exit string) error {
			return roster.Move(ch.ID(), exit)
		},
	})
	return &dispatchFixture{
		roster:     roster,
		manager:    m,
		dispatcher: NewDispatcher(m, lookup, zap.NewNop()),
	}
}

func (f *dispatchFixture) player(t *testing.T, id string) *actor.Actor {
	t.Helper()
	a := actor.New(actor.Params{
		ID: id, Name: id, LocationID: "arena",
		Stats:  map[string]int{"dexterity": 3, "stamina": 3, "strength": 3, "composure": 3, "willpower": 3},
		Skills: map[string]int{"brawl": 2, "dodge": 2, "athletics": 2, "survival": 2},
	})
	require.NoError(t, f.roster.Add(a))
	return a
}

func TestHandle_UnknownCommand(t *testing.T) {
	f := newDispatchFixture(t, 1)
	f.player(t, "alice")

	out := f.dispatcher.Handle("alice", "teleport bob")
	assert.Contains(t, out, "Unknown command")
}

func TestHandle_EmptyLine(t *testing.T) {
	f := newDispatchFixture(t, 1)
	f.player(t, "alice")

	assert.Equal(t, "", f.dispatcher.Handle("alice", "   "))
}

func TestHandle_AttackStartsFight(t *testing.T) {
	f := newDispatchFixture(t, 1)
	f.player(t, "alice")
	f.player(t, "bob")

	out := f.dispatcher.Handle("alice", "attack bob")
	assert.Equal(t, "", out)

	s := f.manager.SessionFor("alice")
	require.NotNil(t, s)
	assert.Equal(t, combat.PhaseSetup, s.Phase())
	assert.NotNil(t, f.manager.SessionFor("bob"))
}

func TestHandle_FlankAcceptsBackOff(t *testing.T) {
	f := newDispatchFixture(t, 1)
	f.player(t, "alice")
	f.player(t, "bob")

	// The trailing word marks the cautious variant; either form queues.
	out := f.dispatcher.Handle("alice", "flank bob off")
	assert.Equal(t, "", out)
	require.NotNil(t, f.manager.SessionFor("alice"))

	assert.Equal(t, "", f.dispatcher.Handle("alice", "flank bob"))
}

func TestHandle_AttackUnknownTarget(t *testing.T) {
	f := newDispatchFixture(t, 1)
	f.player(t, "alice")

	out := f.dispatcher.Handle("alice", "attack nobody")
	assert.Contains(t, out, "nobody")
	assert.Nil(t, f.manager.SessionFor("alice"))
}

func TestHandle_AttackAlias(t *testing.T) {
	f := newDispatchFixture(t, 1)
	f.player(t, "alice")
	f.player(t, "bob")

	f.dispatcher.Handle("alice", "att bob")
	assert.NotNil(t, f.manager.SessionFor("alice"))
}

func TestHandle_PassRequiresCombat(t *testing.T) {
	f := newDispatchFixture(t, 1)
	f.player(t, "alice")

	out := f.dispatcher.Handle("alice", "pass")
	assert.Contains(t, strings.ToLower(out), "not in this fight")
}

func TestHandle_StanceUsage(t *testing.T) {
	f := newDispatchFixture(t, 1)
	f.player(t, "alice")
	f.player(t, "bob")
	f.dispatcher.Handle("alice", "attack bob")

	out := f.dispatcher.Handle("alice", "stance")
	assert.Contains(t, out, "stance <name>")

	out = f.dispatcher.Handle("alice", "stance aggressive")
	assert.Equal(t, "", out)
}

func TestHandle_KillRejectedInNonLethalFight(t *testing.T) {
	f := newDispatchFixture(t, 1)
	f.player(t, "alice")
	f.player(t, "bob")
	f.dispatcher.Opts = combat.LocationOpts{NonLethal: true}

	f.dispatcher.Handle("alice", "attack bob")
	out := f.dispatcher.Handle("alice", "kill bob")
	assert.Contains(t, strings.ToLower(out), "not a lethal fight")
}

func TestHandle_CriticalClampsTradeoff(t *testing.T) {
	f := newDispatchFixture(t, 1)
	f.player(t, "alice")
	f.player(t, "bob")

	assert.Equal(t, "", f.dispatcher.Handle("alice", "critical bob"))
	require.NotNil(t, f.manager.SessionFor("alice"))

	out := f.dispatcher.Handle("alice", "critical 999 bob")
	assert.Equal(t, "", out)

	out = f.dispatcher.Handle("alice", "critical lots bob")
	assert.Contains(t, out, "critical [1-50]")
}

func TestHandle_AdminGate(t *testing.T) {
	f := newDispatchFixture(t, 1)
	f.player(t, "alice")
	f.player(t, "bob")
	f.dispatcher.Handle("alice", "attack bob")

	out := f.dispatcher.Handle("alice", "forceend")
	assert.Contains(t, out, "not allowed")
	require.NotNil(t, f.manager.SessionFor("alice"))

	f.dispatcher.Admins["alice"] = true
	out = f.dispatcher.Handle("alice", "forceend")
	assert.Equal(t, "Fight ended.", out)
	assert.Nil(t, f.manager.SessionFor("alice"))
}

func TestHandle_TruceEndsDuel(t *testing.T) {
	f := newDispatchFixture(t, 1)
	f.player(t, "alice")
	f.player(t, "bob")
	f.dispatcher.Handle("alice", "attack bob")

	assert.Equal(t, "", f.dispatcher.Handle("alice", "truce"))
	require.NotNil(t, f.manager.SessionFor("alice"))

	assert.Equal(t, "", f.dispatcher.Handle("bob", "yield"))
	assert.Nil(t, f.manager.SessionFor("alice"))
}

func TestHandle_StatusShowsRoster(t *testing.T) {
	f := newDispatchFixture(t, 1)
	f.player(t, "alice")
	f.player(t, "bob")
	f.dispatcher.Handle("alice", "attack bob")

	out := f.dispatcher.Handle("alice", "status")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "bob")
}

func TestHandle_ObserveWithoutFight(t *testing.T) {
	f := newDispatchFixture(t, 1)
	f.player(t, "alice")

	out := f.dispatcher.Handle("alice", "observe")
	assert.Contains(t, out, "no fight here")
}

func TestHandle_HelpHidesAdminCommands(t *testing.T) {
	f := newDispatchFixture(t, 1)
	f.player(t, "alice")

	out := f.dispatcher.Handle("alice", "help")
	assert.Contains(t, out, "attack")
	assert.NotContains(t, out, "forceend")

	f.dispatcher.Admins["alice"] = true
	out = f.dispatcher.Handle("alice", "help")
	assert.Contains(t, out, "forceend")
}

func TestHandle_FleeDeclaration(t *testing.T) {
	f := newDispatchFixture(t, 1)
	f.player(t, "alice")
	f.player(t, "bob")
	f.dispatcher.Handle("alice", "attack bob")

	assert.Equal(t, "", f.dispatcher.Handle("alice", "flee street"))
	assert.Equal(t, "", f.dispatcher.Handle("alice", "stay"))
	assert.Equal(t, "", f.dispatcher.Handle("bob", "catch alice"))
}
