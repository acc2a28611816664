package combat

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/harrovale/mud/internal/game/actor"
)

func TestMarginBands(t *testing.T) {
	cases := []struct {
		margin int
		mult   float64
	}{
		{-40, 0},
		{-16, 0},
		{-15, 0.25},
		{-6, 0.25},
		{-5, 0.5},
		{0, 0.5},
		{4, 0.5},
		{5, 0.75},
		{14, 0.75},
		{15, 1.0},
		{60, 1.0},
	}
	for _, tc := range cases {
		mult, _ := marginBand(tc.margin)
		assert.Equal(t, tc.mult, mult, "margin %d", tc.margin)
	}
}

func TestMarginBandMonotonic_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.IntRange(-100, 100).Draw(t, "a")
		b := rapid.IntRange(-100, 100).Draw(t, "b")
		if a > b {
			a, b = b, a
		}
		ma, _ := marginBand(a)
		mb, _ := marginBand(b)
		if ma > mb {
			t.Fatalf("multiplier fell from %v to %v as margin rose %d -> %d", ma, mb, a, b)
		}
	})
}

func TestSortInitiative(t *testing.T) {
	order := []*Combatant{
		{initiative: 5, tiebreaker: 1},
		{initiative: 12, tiebreaker: 3},
		{initiative: 5, tiebreaker: 9},
		{initiative: -2, tiebreaker: 0},
	}
	sortInitiative(order)

	assert.Equal(t, 12, order[0].initiative)
	assert.Equal(t, 5, order[1].initiative)
	assert.Equal(t, 9, order[1].tiebreaker, "equal initiative breaks on tiebreaker, descending")
	assert.Equal(t, 5, order[2].initiative)
	assert.Equal(t, -2, order[3].initiative)
}

func TestSortInitiativeDeterministic_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(t, "n")
		build := func() []*Combatant {
			out := make([]*Combatant, n)
			for i := range out {
				out[i] = &Combatant{
					initiative: rapid.IntRange(-20, 40).Draw(t, fmt.Sprintf("init%d", i)),
					tiebreaker: i,
				}
			}
			return out
		}
		a := build()
		b := make([]*Combatant, n)
		copy(b, a)
		sortInitiative(a)
		sortInitiative(b)
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("sort not stable at %d", i)
			}
			if i > 0 {
				prev, cur := a[i-1], a[i]
				if prev.initiative < cur.initiative ||
					(prev.initiative == cur.initiative && prev.tiebreaker < cur.tiebreaker) {
					t.Fatalf("order violated at %d", i)
				}
			}
		}
	})
}

func TestAssignDamageNonNegative(t *testing.T) {
	f := newFixture(t, 13)
	a := f.player(t, "alice")
	b := f.player(t, "bob")

	s, err := f.manager.StartCombat(a, b, LocationOpts{})
	require.NoError(t, err)

	ca := s.combatant("alice")
	cb := s.combatant("bob")

	s.assignDamage(ca, cb, 0, false)
	assert.Zero(t, b.Harm())
	s.assignDamage(ca, cb, -25, false)
	assert.Zero(t, b.Harm(), "netted-out damage leaves no mark")
	s.assignDamage(ca, cb, 7, false)
	assert.Equal(t, 7, b.Harm())
}

func TestTakeDamageGracePeriod(t *testing.T) {
	f := newFixture(t, 13)
	a := f.player(t, "alice")
	b := f.player(t, "bob")

	s, err := f.manager.StartCombat(a, b, LocationOpts{})
	require.NoError(t, err)

	cb := s.combatant("bob")
	// Push bob just past max health: the first crossing never drops a
	// player character, whatever the dice say.
	s.takeDamage(cb, b.MaxHealth()+5, true, s.combatant("alice"))
	assert.True(t, b.Conscious(), "first crossing is always graced")
	assert.True(t, cb.gracedOnce)
}

func TestTakeDamageSquadLosesBodies(t *testing.T) {
	f := newFixture(t, 13)
	a := f.player(t, "alice")
	squad := actor.New(actor.Params{
		ID: "militia", Name: "militia", LocationID: "arena", Quantity: 3,
		Stats:  map[string]int{"dexterity": 2, "stamina": 2, "strength": 2},
		Skills: map[string]int{"brawl": 1},
	})
	require.NoError(t, f.roster.Add(squad))

	s, err := f.manager.StartCombat(a, squad, LocationOpts{})
	require.NoError(t, err)

	cs := s.combatant("militia")
	// Hammer the squad until a body drops; the survival check cannot
	// pass forever under accumulating damage.
	for i := 0; i < 50 && squad.Quantity() == 3; i++ {
		s.takeDamage(cs, squad.MaxHealth()*3, true, s.combatant("alice"))
	}
	assert.Less(t, squad.Quantity(), 3, "squads lose bodies, not their lives")
	assert.False(t, squad.Dead())
}

func TestSquadSpreadsAttacks(t *testing.T) {
	f := newFixture(t, 37)
	squad := actor.New(actor.Params{
		ID: "militia", Name: "militia", LocationID: "arena", Quantity: 3,
		Stats:  map[string]int{"dexterity": 2, "stamina": 2, "strength": 2},
		Skills: map[string]int{"brawl": 1},
	})
	require.NoError(t, f.roster.Add(squad))
	a := f.player(t, "alice")
	b := f.player(t, "bob")

	s, err := f.manager.StartCombat(squad, a, LocationOpts{})
	require.NoError(t, err)
	_, err = s.AddCombatant(b, a)
	require.NoError(t, err)

	cs := s.combatant("militia")
	prev := ""
	for i := 0; i < 20; i++ {
		got := s.pickTarget(cs, &QueuedAction{Kind: ActionAttack}, false)
		require.NotNil(t, got)
		assert.NotEqual(t, prev, got.char.ID(),
			"a squad never hammers the same lone target twice running")
		prev = got.char.ID()
	}
}

func TestInterceptingDefenderAlwaysADefender(t *testing.T) {
	f := newFixture(t, 17)
	principal := f.player(t, "noble")
	guard := f.player(t, "guard")
	guard.SetGuarding(principal)
	attacker := f.player(t, "assassin")

	s, err := f.manager.StartCombat(attacker, principal, LocationOpts{})
	require.NoError(t, err)
	require.NotNil(t, s.combatant("guard"), "declared defenders are pulled in")

	cp := s.combatant("noble")
	for i := 0; i < 25; i++ {
		got := s.interceptingDefender(cp)
		require.NotNil(t, got, "a guarded target is never hit directly")
		assert.Equal(t, "guard", got.char.ID())
	}
}

func TestGuardedAttackRedirects(t *testing.T) {
	f := newFixture(t, 17)
	principal := f.player(t, "noble")
	guardA := f.player(t, "guard")
	guardA.SetGuarding(principal)
	attacker := f.player(t, "assassin")

	s, err := f.manager.StartCombat(attacker, principal, LocationOpts{})
	require.NoError(t, err)

	// The guard inherits the attacker as a foe.
	cg := s.combatant("guard")
	assert.True(t, containsChar(cg.foes, "assassin"))

	// Resolve attacks straight at the noble: while the guard stands,
	// only the guard gets hurt.
	ca := s.combatant("assassin")
	for i := 0; i < 10 && guardA.Conscious(); i++ {
		s.resolveAttackAction(ca, &QueuedAction{Kind: ActionAttack, TargetID: "noble"})
		if s.ended() {
			break
		}
	}
	assert.Zero(t, principal.Harm(), "defender redirection shields the principal")
}

func TestBypassSkipsDefenders(t *testing.T) {
	f := newFixture(t, 23)
	principal := f.player(t, "noble")
	guardA := f.player(t, "guard")
	guardA.SetGuarding(principal)
	attacker := f.player(t, "assassin")

	s, err := f.manager.StartCombat(attacker, principal, LocationOpts{})
	require.NoError(t, err)

	ca := s.combatant("assassin")
	guardHarm := guardA.Harm()
	for i := 0; i < 20 && principal.Harm() == 0; i++ {
		s.resolveAttackAction(ca, &QueuedAction{Kind: ActionAttack, TargetID: "noble", Bypass: true})
		if s.ended() {
			break
		}
	}
	assert.Equal(t, guardHarm, guardA.Harm(), "bypassed guard never intercepts")
}

func TestResolveBotchRiposteVsLostTurn(t *testing.T) {
	f := newFixture(t, 29)
	a := f.player(t, "alice")
	b := f.player(t, "bob")

	s, err := f.manager.StartCombat(a, b, LocationOpts{})
	require.NoError(t, err)

	ca := s.combatant("alice")
	cb := s.combatant("bob")

	// Bare hands answer a fumble just fine: the defender ripostes and
	// the botcher keeps its turn allowance.
	require.True(t, cb.weapon.CanRiposte)
	require.True(t, ca.weapon.CanBeParried)
	s.resolveBotch(ca, cb, true)
	assert.Zero(t, ca.lostTurns)

	// A defender whose weapon cannot riposte gets no counter; the
	// botcher loses its next turn instead.
	cb.weapon.CanRiposte = false
	s.resolveBotch(ca, cb, true)
	assert.Equal(t, 1, ca.lostTurns)

	// Likewise when the incoming attack cannot be parried at all.
	cb.weapon.CanRiposte = true
	ca.weapon.CanBeParried = false
	s.resolveBotch(ca, cb, true)
	assert.Equal(t, 2, ca.lostTurns)
}

func TestApplyBandScalesAfterMitigation(t *testing.T) {
	// A graze that out-rolls the armor must still draw blood: the
	// reduced bands scale what survives mitigation, they do not shrink
	// the raw roll before the armor eats it.
	assert.Equal(t, 2, applyBand(20, 10, 0.25))
	assert.Equal(t, 5, applyBand(20, 10, 0.5))

	// Armor that swallows the whole roll leaves nothing to scale.
	assert.LessOrEqual(t, applyBand(10, 15, 0.25), 0)

	// Full hits pass through untouched; the amplified roll already
	// carried any bonus before the armor was applied.
	assert.Equal(t, 10, applyBand(20, 10, 1.0))
	assert.Equal(t, 30, applyBand(40, 10, 1.5))
}

func TestFlankSpottedBacksOff(t *testing.T) {
	f := newFixtureFrom(t, flatSource{4})
	sneak := f.player(t, "sneak")
	sentinel := actor.New(actor.Params{
		ID: "sentinel", Name: "sentinel", LocationID: "arena",
		Stats:  map[string]int{"dexterity": 3, "stamina": 3, "strength": 3, "wits": 5},
		Skills: map[string]int{"perception": 3, "brawl": 2, "dodge": 2},
	})
	require.NoError(t, f.roster.Add(sentinel))

	s, err := f.manager.StartCombat(sneak, sentinel, LocationOpts{})
	require.NoError(t, err)

	var heard []string
	sneak.SetSink(func(text string) { heard = append(heard, text) })

	cs := s.combatant("sneak")
	s.resolveAttackAction(cs, &QueuedAction{Kind: ActionAttack, TargetID: "sentinel", Flank: true, BackOff: true})

	// The sharp-eyed sentinel sees it coming; the sneak withdraws and
	// nobody swings.
	assert.Zero(t, sentinel.Harm())
	assert.Zero(t, sneak.Harm())
	assert.Contains(t, strings.Join(heard, "\n"), "spotted")
}

func TestFlankCleanAmbushPressesOn(t *testing.T) {
	f := newFixtureFrom(t, flatSource{4})
	sneak := f.player(t, "sneak")
	oblivious := f.player(t, "bob")

	s, err := f.manager.StartCombat(sneak, oblivious, LocationOpts{})
	require.NoError(t, err)

	var heard []string
	sneak.SetSink(func(text string) { heard = append(heard, text) })

	// Bob has no perception worth the name: the ambush is clean, so even
	// a cautious flanker attacks instead of withdrawing.
	cs := s.combatant("sneak")
	s.resolveAttackAction(cs, &QueuedAction{Kind: ActionAttack, TargetID: "bob", Flank: true, BackOff: true})

	out := strings.Join(heard, "\n")
	assert.NotContains(t, out, "spotted")
	assert.Contains(t, out, "bob", "the swing resolved against the target")
}

func TestSleepingTargetAutoFailsAndWakes(t *testing.T) {
	f := newFixture(t, 31)
	a := f.player(t, "alice")
	b := f.player(t, "bob")

	s, err := f.manager.StartCombat(a, b, LocationOpts{})
	require.NoError(t, err)

	// The hit always lands against a sleeper, though soak can still
	// absorb the damage; repeat until it bites.
	for i := 0; i < 10 && b.Harm() == 0; i++ {
		b.FallAsleep()
		require.False(t, b.Conscious())
		s.resolveAttack(s.combatant("alice"), s.combatant("bob"), 0, 0, false, true)
		assert.False(t, b.Asleep(), "being struck wakes a sleeper")
	}
	assert.Positive(t, b.Harm(), "a sleeping defense always loses")
}

func TestOverwhelmPenaltyGrowsAndCaps(t *testing.T) {
	f := newFixture(t, 31)
	a := f.player(t, "alice")
	b := f.player(t, "bob")

	s, err := f.manager.StartCombat(a, b, LocationOpts{})
	require.NoError(t, err)

	cb := s.combatant("bob")
	base := cb.defensePenalties()
	cb.timesAttacked = 2
	assert.Equal(t, base+2*overwhelmStep, cb.defensePenalties())
	cb.timesAttacked = 100
	assert.Equal(t, base+overwhelmCap, cb.defensePenalties(), "overwhelm caps")
}

func TestWoundPenaltyScalesWithHarm(t *testing.T) {
	f := newFixture(t, 31)
	a := f.player(t, "alice")
	b := f.player(t, "bob")

	s, err := f.manager.StartCombat(a, b, LocationOpts{})
	require.NoError(t, err)

	ca := s.combatant("alice")
	assert.Zero(t, ca.woundPenalty())
	a.ApplyHarm(a.MaxHealth()/2, true)
	assert.Equal(t, 5, ca.woundPenalty(), "half health is a five point penalty")
}

func TestHarmNeverNegative_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture(t, int64(rapid.IntRange(1, 1<<30).Draw(rt, "seed")))
		a := f.player(t, "alice")
		b := f.player(t, "bob")

		s, err := f.manager.StartCombat(a, b, LocationOpts{})
		require.NoError(t, err)

		ca := s.combatant("alice")
		cb := s.combatant("bob")
		rounds := rapid.IntRange(1, 8).Draw(rt, "rounds")
		for i := 0; i < rounds && !s.ended(); i++ {
			s.resolveAttack(ca, cb, 0, 0, false, true)
			if a.Harm() < 0 || b.Harm() < 0 {
				rt.Fatalf("negative harm: alice=%d bob=%d", a.Harm(), b.Harm())
			}
		}
	})
}
