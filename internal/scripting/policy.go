package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/harrovale/mud/internal/game/combat"
)

// PolicyEngine loads Lua autoattack policies, one script per file. A
// script defines a global function
//
//	function decide(fight) ... end
//
// receiving a table with round, lethal, self = {id, harm, max_health},
// and targets = array of {id, name, conscious, harm, max_health}. It
// returns a table {action="attack"|"kill"|"pass"|"delay", target=id,
// bypass=bool, flank=bool}, or nil to fall back to the builtin policy.
//
// Each invocation runs in a fresh sandboxed VM with a fixed opcode
// budget, so a broken or hostile script can only waste its own turn.
type PolicyEngine struct {
	logger    *zap.Logger
	instLimit int
	fallback  combat.AutoPolicy
	scripts   map[string]string
}

// NewPolicyEngine creates an engine with the given per-invocation
// opcode budget (0 uses DefaultInstructionLimit).
func NewPolicyEngine(logger *zap.Logger, instLimit int) *PolicyEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PolicyEngine{
		logger:    logger.Named("policy"),
		instLimit: instLimit,
		fallback:  combat.DefaultPolicy(),
		scripts:   make(map[string]string),
	}
}

// LoadDir loads every *.lua file in dir as a policy named after its
// basename, in lexicographic order. Each script is compiled once here
// so syntax errors surface at startup rather than mid-fight.
func (e *PolicyEngine) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading policy dir %s: %w", dir, err)
	}
	var names []string
	for _, ent := range entries {
		if ent.IsDir() || !strings.HasSuffix(ent.Name(), ".lua") {
			continue
		}
		names = append(names, ent.Name())
	}
	sort.Strings(names)
	for _, name := range names {
		src, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("reading policy %s: %w", name, err)
		}
		policy := strings.TrimSuffix(name, ".lua")
		if err := e.LoadScript(policy, string(src)); err != nil {
			return err
		}
	}
	return nil
}

// LoadScript registers source as the policy with the given name.
func (e *PolicyEngine) LoadScript(name, source string) error {
	L := NewSandboxedState(e.instLimit)
	defer L.Close()
	if err := L.DoString(source); err != nil {
		return fmt.Errorf("loading policy %s: %w", name, err)
	}
	if L.GetGlobal("decide").Type() != lua.LTFunction {
		return fmt.Errorf("policy %s does not define decide()", name)
	}
	e.scripts[name] = source
	e.logger.Info("policy loaded", zap.String("name", name))
	return nil
}

// Names returns the loaded policy names, sorted.
func (e *PolicyEngine) Names() []string {
	out := make([]string, 0, len(e.scripts))
	for name := range e.scripts {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Policy returns the named policy as a combat.AutoPolicy, or false when
// no such script is loaded. Script failures at decision time degrade to
// the builtin autoattack rather than stalling the fight.
func (e *PolicyEngine) Policy(name string) (combat.AutoPolicy, bool) {
	source, ok := e.scripts[name]
	if !ok {
		return nil, false
	}
	return combat.PolicyFunc(func(snap combat.Snapshot) *combat.QueuedAction {
		q, err := e.run(source, snap)
		if err != nil {
			e.logger.Warn("policy failed, using builtin",
				zap.String("name", name), zap.Error(err))
			return e.fallback.Decide(snap)
		}
		if q == nil {
			return e.fallback.Decide(snap)
		}
		return q
	}), true
}

// run executes one decision in a fresh sandboxed VM.
func (e *PolicyEngine) run(source string, snap combat.Snapshot) (*combat.QueuedAction, error) {
	L := NewSandboxedState(e.instLimit)
	defer L.Close()
	if err := L.DoString(source); err != nil {
		return nil, err
	}
	fight := snapshotTable(L, snap)
	if err := L.CallByParam(lua.P{
		Fn:      L.GetGlobal("decide"),
		NRet:    1,
		Protect: true,
	}, fight); err != nil {
		return nil, err
	}
	ret := L.Get(-1)
	L.Pop(1)
	if ret == lua.LNil {
		return nil, nil
	}
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("decide() returned %s, want table or nil", ret.Type())
	}
	return actionFromTable(tbl)
}

func snapshotTable(L *lua.LState, snap combat.Snapshot) *lua.LTable {
	fight := L.NewTable()
	L.SetField(fight, "round", lua.LNumber(snap.Round))
	L.SetField(fight, "lethal", lua.LBool(snap.Lethal))

	self := L.NewTable()
	L.SetField(self, "id", lua.LString(snap.SelfID))
	L.SetField(self, "harm", lua.LNumber(snap.SelfHarm))
	L.SetField(self, "max_health", lua.LNumber(snap.SelfHealth))
	L.SetField(fight, "self", self)

	targets := L.NewTable()
	for _, t := range snap.Targets {
		targ := L.NewTable()
		L.SetField(targ, "id", lua.LString(t.ID))
		L.SetField(targ, "name", lua.LString(t.Name))
		L.SetField(targ, "conscious", lua.LBool(t.Conscious))
		L.SetField(targ, "harm", lua.LNumber(t.Harm))
		L.SetField(targ, "max_health", lua.LNumber(t.MaxHealth))
		targets.Append(targ)
	}
	L.SetField(fight, "targets", targets)
	return fight
}

func actionFromTable(tbl *lua.LTable) (*combat.QueuedAction, error) {
	q := &combat.QueuedAction{}
	switch action := tbl.RawGetString("action").String(); action {
	case "attack":
		q.Kind = combat.ActionAttack
	case "kill":
		q.Kind = combat.ActionKill
	case "pass":
		q.Kind = combat.ActionPass
	case "delay":
		q.Kind = combat.ActionDelay
	default:
		return nil, fmt.Errorf("unknown action %q", action)
	}
	if target := tbl.RawGetString("target"); target != lua.LNil {
		q.TargetID = target.String()
	}
	q.Bypass = lua.LVAsBool(tbl.RawGetString("bypass"))
	q.Flank = lua.LVAsBool(tbl.RawGetString("flank"))
	return q, nil
}
