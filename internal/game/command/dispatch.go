package command

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/harrovale/mud/internal/game/combat"
)

// Dispatcher executes parsed commands against the combat engine. One
// dispatcher serves all players; the host must feed it from a single
// serialized command stream, matching the engine's ownership model.
type Dispatcher struct {
	registry *Registry
	manager  *combat.Manager
	lookup   func(id string) (combat.Character, bool)
	logger   *zap.Logger

	// Admins may use the force-override commands.
	Admins map[string]bool
	// Opts configures newly created sessions.
	Opts combat.LocationOpts
}

// NewDispatcher wires the command surface to a combat manager. lookup
// resolves actor IDs the same way the manager's resolver does.
func NewDispatcher(m *combat.Manager, lookup func(id string) (combat.Character, bool), logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		registry: DefaultRegistry(),
		manager:  m,
		lookup:   lookup,
		logger:   logger.Named("command"),
		Admins:   make(map[string]bool),
	}
}

// Handle parses and executes one input line for the given actor,
// returning the text response for that actor alone. Fight-wide effects
// are broadcast by the engine itself.
func (d *Dispatcher) Handle(actorID, line string) string {
	parsed := Parse(line)
	if parsed.Command == "" {
		return ""
	}
	cmd, ok := d.registry.Resolve(parsed.Command)
	if !ok {
		return fmt.Sprintf("Unknown command %q. Try \"help\".", parsed.Command)
	}
	if IsAdminCommand(cmd) && !d.Admins[actorID] {
		return "You are not allowed to do that."
	}

	out, err := d.run(actorID, cmd, parsed.Args)
	if err != nil {
		d.logger.Debug("command failed",
			zap.String("actor", actorID),
			zap.String("command", cmd.Name),
			zap.Error(err),
		)
		return errorText(err)
	}
	return out
}

func (d *Dispatcher) run(actorID string, cmd *Command, args []string) (string, error) {
	switch cmd.Handler {
	case HandlerAttack:
		return d.attack(actorID, cmd.Name, args, combat.QueuedAction{Kind: combat.ActionAttack})
	case HandlerKill:
		return d.attack(actorID, cmd.Name, args, combat.QueuedAction{Kind: combat.ActionKill})
	case HandlerFlank:
		q := combat.QueuedAction{Kind: combat.ActionAttack, Flank: true}
		// A trailing "off" backs out of the ambush if it is spotted.
		if n := len(args); n > 1 && strings.EqualFold(args[n-1], "off") {
			q.BackOff = true
			args = args[:n-1]
		}
		return d.attack(actorID, cmd.Name, args, q)
	case HandlerBypass:
		return d.attack(actorID, cmd.Name, args, combat.QueuedAction{Kind: combat.ActionAttack, Bypass: true})
	case HandlerCritical:
		return d.critical(actorID, args)
	case HandlerPass:
		s, err := d.sessionOf(actorID)
		if err != nil {
			return "", err
		}
		return "You hold your action.", s.QueueAction(actorID, combat.QueuedAction{Kind: combat.ActionPass}, true)
	case HandlerDelay:
		s, err := d.sessionOf(actorID)
		if err != nil {
			return "", err
		}
		return "You will act after the others.", s.QueueAction(actorID, combat.QueuedAction{Kind: combat.ActionDelay}, true)
	case HandlerReady:
		s, err := d.sessionOf(actorID)
		if err != nil {
			return "", err
		}
		return "You are ready.", s.MarkReady(actorID)
	case HandlerCancel:
		s, err := d.sessionOf(actorID)
		if err != nil {
			return "", err
		}
		return "", s.CancelAction(actorID)
	case HandlerStance:
		if len(args) != 1 {
			return "", fmt.Errorf("usage: stance <name>: %w", combat.ErrInvalidTarget)
		}
		s, err := d.sessionOf(actorID)
		if err != nil {
			return "", err
		}
		return "", s.ChangeStance(actorID, args[0])
	case HandlerAuto:
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			return "", fmt.Errorf("usage: autoattack on|off: %w", combat.ErrInvalidTarget)
		}
		s, err := d.sessionOf(actorID)
		if err != nil {
			return "", err
		}
		return "Autoattack " + args[0] + ".", s.SetAutoattack(actorID, args[0] == "on")

	case HandlerFlee:
		if len(args) != 1 {
			return "", fmt.Errorf("usage: flee <exit>: %w", combat.ErrInvalidTarget)
		}
		s, err := d.sessionOf(actorID)
		if err != nil {
			return "", err
		}
		return "", s.AttemptFlee(actorID, args[0])
	case HandlerStay:
		s, err := d.sessionOf(actorID)
		if err != nil {
			return "", err
		}
		return "", s.StopFleeing(actorID)
	case HandlerCatch:
		if len(args) != 1 {
			return "", fmt.Errorf("usage: catch <target>: %w", combat.ErrInvalidTarget)
		}
		s, err := d.sessionOf(actorID)
		if err != nil {
			return "", err
		}
		return "", s.AttemptCatch(actorID, args[0])
	case HandlerCover:
		if len(args) == 0 {
			return "", fmt.Errorf("usage: cover <target> [target...]: %w", combat.ErrInvalidTarget)
		}
		s, err := d.sessionOf(actorID)
		if err != nil {
			return "", err
		}
		return "", s.BeginCover(actorID, args)
	case HandlerStopCover:
		s, err := d.sessionOf(actorID)
		if err != nil {
			return "", err
		}
		target := ""
		if len(args) > 0 {
			target = args[0]
		}
		return "", s.StopCovering(actorID, target)

	case HandlerTruce:
		s, err := d.sessionOf(actorID)
		if err != nil {
			return "", err
		}
		return "", s.VoteToEnd(actorID)
	case HandlerCheck:
		if len(args) != 1 {
			return "", fmt.Errorf("usage: check <target>: %w", combat.ErrInvalidTarget)
		}
		s, err := d.sessionOf(actorID)
		if err != nil {
			return "", err
		}
		return "", s.CheckAFK(actorID, args[0])
	case HandlerStatus:
		s, err := d.sessionOf(actorID)
		if err != nil {
			return "", err
		}
		return s.Status(), nil
	case HandlerObserve:
		return d.observe(actorID)
	case HandlerHelp:
		return d.helpText(actorID), nil

	case HandlerForceEnd:
		s, err := d.sessionOf(actorID)
		if err != nil {
			return "", err
		}
		s.ForceEnd()
		return "Fight ended.", nil
	case HandlerForceReady:
		s, err := d.sessionOf(actorID)
		if err != nil {
			return "", err
		}
		return "", s.ForceReadyAll()
	case HandlerForcePass:
		if len(args) != 1 {
			return "", fmt.Errorf("usage: forcepass <target>: %w", combat.ErrInvalidTarget)
		}
		s, err := d.sessionOf(actorID)
		if err != nil {
			return "", err
		}
		return "", s.ForcePass(args[0])
	case HandlerEvict:
		if len(args) != 1 {
			return "", fmt.Errorf("usage: evict <target>: %w", combat.ErrInvalidTarget)
		}
		s, err := d.sessionOf(actorID)
		if err != nil {
			return "", err
		}
		return "", s.ForceEvict(args[0])
	default:
		return "", fmt.Errorf("command %q has no handler", cmd.Name)
	}
}

// attack starts a fight when the actor is not in one, or queues the
// action into the existing session.
func (d *Dispatcher) attack(actorID, verb string, args []string, q combat.QueuedAction) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("usage: %s <target>: %w", verb, combat.ErrInvalidTarget)
	}
	q.TargetID = args[0]

	if s := d.manager.SessionFor(actorID); s != nil {
		return "", s.QueueAction(actorID, q, true)
	}

	self, ok := d.lookup(actorID)
	if !ok {
		return "", combat.ErrNotInCombat
	}
	target, ok := d.lookup(args[0])
	if !ok {
		return "", fmt.Errorf("no such target %q: %w", args[0], combat.ErrInvalidTarget)
	}
	s, err := d.manager.StartCombat(self, target, d.Opts)
	if err != nil {
		return "", err
	}
	if err := s.QueueAction(actorID, q, true); err != nil && s.Phase() != combat.PhaseEnded {
		return "", err
	}
	return "", nil
}

// critical queues a harder attack swing that hits for more. The traded
// amount defaults to 15 and is clamped to [1, 50].
func (d *Dispatcher) critical(actorID string, args []string) (string, error) {
	amount := 15
	if len(args) == 2 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return "", fmt.Errorf("usage: critical [1-50] <target>: %w", combat.ErrInvalidTarget)
		}
		amount = min(max(n, 1), 50)
		args = args[1:]
	}
	return d.attack(actorID, "critical", args, combat.QueuedAction{
		Kind:          combat.ActionAttack,
		AttackPenalty: amount,
		DamageMod:     amount,
	})
}

func (d *Dispatcher) observe(actorID string) (string, error) {
	self, ok := d.lookup(actorID)
	if !ok {
		return "", combat.ErrNotInCombat
	}
	s := d.manager.SessionAt(self.LocationID())
	if s == nil {
		return "There is no fight here to watch.", nil
	}
	s.AddObserver(self)
	return "You settle in to watch the fight.", nil
}

func (d *Dispatcher) helpText(actorID string) string {
	cmds := d.registry.Commands()
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })

	var b strings.Builder
	b.WriteString("Commands:\n")
	for _, cmd := range cmds {
		if IsAdminCommand(cmd) && !d.Admins[actorID] {
			continue
		}
		fmt.Fprintf(&b, "  %-12s %s\n", cmd.Name, cmd.Help)
	}
	return b.String()
}

func (d *Dispatcher) sessionOf(actorID string) (*combat.Session, error) {
	s := d.manager.SessionFor(actorID)
	if s == nil {
		return nil, combat.ErrNotInCombat
	}
	return s, nil
}

// errorText turns an engine error into a player-facing message.
func errorText(err error) string {
	msg := err.Error()
	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}
