package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.NotNil(t, r)
	assert.Greater(t, len(r.Commands()), 0)
}

func TestResolve_CanonicalName(t *testing.T) {
	r := DefaultRegistry()

	cmd, ok := r.Resolve("attack")
	assert.True(t, ok)
	assert.Equal(t, "attack", cmd.Name)
	assert.Equal(t, HandlerAttack, cmd.Handler)
}

func TestResolve_Alias(t *testing.T) {
	r := DefaultRegistry()

	cmd, ok := r.Resolve("att")
	assert.True(t, ok)
	assert.Equal(t, "attack", cmd.Name)
}

func TestResolve_NotFound(t *testing.T) {
	r := DefaultRegistry()

	_, ok := r.Resolve("teleport")
	assert.False(t, ok)
}

func TestResolve_AllCombatCommands(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		input   string
		handler string
	}{
		{"attack", HandlerAttack},
		{"att", HandlerAttack},
		{"hit", HandlerAttack},
		{"kill", HandlerKill},
		{"flank", HandlerFlank},
		{"bypass", HandlerBypass},
		{"critical", HandlerCritical},
		{"crit", HandlerCritical},
		{"pass", HandlerPass},
		{"p", HandlerPass},
		{"delay", HandlerDelay},
		{"ready", HandlerReady},
		{"r", HandlerReady},
		{"cancel", HandlerCancel},
		{"stance", HandlerStance},
		{"autoattack", HandlerAuto},
		{"auto", HandlerAuto},
		{"flee", HandlerFlee},
		{"run", HandlerFlee},
		{"stay", HandlerStay},
		{"catch", HandlerCatch},
		{"cover", HandlerCover},
		{"stopcover", HandlerStopCover},
		{"truce", HandlerTruce},
		{"yield", HandlerTruce},
		{"check", HandlerCheck},
		{"status", HandlerStatus},
		{"st", HandlerStatus},
		{"observe", HandlerObserve},
		{"watch", HandlerObserve},
		{"help", HandlerHelp},
		{"?", HandlerHelp},
		{"forceend", HandlerForceEnd},
		{"forceready", HandlerForceReady},
		{"forcepass", HandlerForcePass},
		{"evict", HandlerEvict},
	}

	for _, tt := range tests {
		cmd, ok := r.Resolve(tt.input)
		require.True(t, ok, "input %q not found", tt.input)
		assert.Equal(t, tt.handler, cmd.Handler, "input %q wrong handler", tt.input)
	}
}

func TestNewRegistry_DuplicateName(t *testing.T) {
	cmds := []Command{
		{Name: "test", Handler: "a"},
		{Name: "test", Handler: "b"},
	}
	_, err := NewRegistry(cmds)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate command name")
}

func TestNewRegistry_DuplicateAlias(t *testing.T) {
	cmds := []Command{
		{Name: "test1", Aliases: []string{"t"}, Handler: "a"},
		{Name: "test2", Aliases: []string{"t"}, Handler: "b"},
	}
	_, err := NewRegistry(cmds)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate alias")
}

func TestCommandsByCategory(t *testing.T) {
	r := DefaultRegistry()
	cats := r.CommandsByCategory()

	assert.Contains(t, cats, CategoryCombat)
	assert.Contains(t, cats, CategoryEscape)
	assert.Contains(t, cats, CategorySocial)
	assert.Contains(t, cats, CategoryAdmin)
	assert.Len(t, cats[CategoryEscape], 5)
	assert.Len(t, cats[CategoryAdmin], 4)
}

func TestIsAdminCommand(t *testing.T) {
	r := DefaultRegistry()

	evict, ok := r.Resolve("evict")
	require.True(t, ok)
	assert.True(t, IsAdminCommand(evict))

	attack, ok := r.Resolve("attack")
	require.True(t, ok)
	assert.False(t, IsAdminCommand(attack))
}

func TestPropertyAllAliasesResolveToCanonical(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := DefaultRegistry()
		cmds := r.Commands()
		idx := rapid.IntRange(0, len(cmds)-1).Draw(t, "cmd_idx")
		cmd := cmds[idx]

		resolved, ok := r.Resolve(cmd.Name)
		if !ok {
			t.Fatalf("canonical name %q did not resolve", cmd.Name)
		}
		if resolved.Name != cmd.Name {
			t.Fatalf("canonical name %q resolved to %q", cmd.Name, resolved.Name)
		}

		for _, alias := range cmd.Aliases {
			aliasResolved, ok := r.Resolve(alias)
			if !ok {
				t.Fatalf("alias %q did not resolve", alias)
			}
			if aliasResolved.Name != cmd.Name {
				t.Fatalf("alias %q resolved to %q, expected %q", alias, aliasResolved.Name, cmd.Name)
			}
		}
	})
}
