// Package command provides the combat command surface: the parser,
// registry, and dispatcher that translate player input into engine
// calls and relay the results back as text.
package command

// Categories for organizing commands.
const (
	CategoryCombat = "combat"
	CategoryEscape = "escape"
	CategorySocial = "social"
	CategoryAdmin  = "admin"
)

// Handler identifiers mapping commands to dispatcher methods.
const (
	HandlerAttack     = "attack"
	HandlerKill       = "kill"
	HandlerFlank      = "flank"
	HandlerBypass     = "bypass"
	HandlerCritical   = "critical"
	HandlerPass       = "pass"
	HandlerDelay      = "delay"
	HandlerReady      = "ready"
	HandlerCancel     = "cancel"
	HandlerStance     = "stance"
	HandlerAuto       = "autoattack"
	HandlerFlee       = "flee"
	HandlerStay       = "stay"
	HandlerCatch      = "catch"
	HandlerCover      = "cover"
	HandlerStopCover  = "stopcover"
	HandlerTruce      = "truce"
	HandlerCheck      = "check"
	HandlerStatus     = "status"
	HandlerObserve    = "observe"
	HandlerHelp       = "help"
	HandlerForceEnd   = "forceend"
	HandlerForceReady = "forceready"
	HandlerForcePass  = "forcepass"
	HandlerEvict      = "evict"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command.
	Category string
	// Handler maps to the dispatcher method.
	Handler string
}

// BuiltinCommands returns all built-in combat commands.
func BuiltinCommands() []Command {
	return []Command{
		// Combat actions
		{Name: "attack", Aliases: []string{"att", "hit"}, Help: "Attack a target (attack <target>)", Category: CategoryCombat, Handler: HandlerAttack},
		{Name: "kill", Aliases: nil, Help: "Attack with intent to kill (kill <target>)", Category: CategoryCombat, Handler: HandlerKill},
		{Name: "flank", Aliases: nil, Help: "Ambush a target past its defenders (flank <target> [off])", Category: CategoryCombat, Handler: HandlerFlank},
		{Name: "bypass", Aliases: nil, Help: "Attack past defenders at a difficulty cost (bypass <target>)", Category: CategoryCombat, Handler: HandlerBypass},
		{Name: "critical", Aliases: []string{"crit"}, Help: "Trade attack difficulty for damage (critical [1-50] <target>)", Category: CategoryCombat, Handler: HandlerCritical},
		{Name: "pass", Aliases: []string{"p"}, Help: "Forfeit your turn this round", Category: CategoryCombat, Handler: HandlerPass},
		{Name: "delay", Aliases: nil, Help: "Act after everyone else this round", Category: CategoryCombat, Handler: HandlerDelay},
		{Name: "ready", Aliases: []string{"r"}, Help: "Mark yourself ready for the round", Category: CategoryCombat, Handler: HandlerReady},
		{Name: "cancel", Aliases: nil, Help: "Cancel your queued action", Category: CategoryCombat, Handler: HandlerCancel},
		{Name: "stance", Aliases: nil, Help: "Change fighting stance (stance <defensive|guarded|balanced|aggressive|reckless>)", Category: CategoryCombat, Handler: HandlerStance},
		{Name: "autoattack", Aliases: []string{"auto"}, Help: "Let the engine fight for you (autoattack on|off)", Category: CategoryCombat, Handler: HandlerAuto},

		// Escape and protection
		{Name: "flee", Aliases: []string{"run"}, Help: "Declare intent to flee through an exit (flee <exit>)", Category: CategoryEscape, Handler: HandlerFlee},
		{Name: "stay", Aliases: nil, Help: "Withdraw your flee declaration", Category: CategoryEscape, Handler: HandlerStay},
		{Name: "catch", Aliases: nil, Help: "Block a target from fleeing (catch <target>)", Category: CategoryEscape, Handler: HandlerCatch},
		{Name: "cover", Aliases: nil, Help: "Cover the retreat of allies (cover <target> [target...])", Category: CategoryEscape, Handler: HandlerCover},
		{Name: "stopcover", Aliases: nil, Help: "Stop covering a retreat (stopcover [target])", Category: CategoryEscape, Handler: HandlerStopCover},

		// Social mechanisms
		{Name: "truce", Aliases: []string{"yield"}, Help: "Vote to end the fight", Category: CategorySocial, Handler: HandlerTruce},
		{Name: "check", Aliases: nil, Help: "Check an idle combatant (check <target>)", Category: CategorySocial, Handler: HandlerCheck},
		{Name: "status", Aliases: []string{"st"}, Help: "Show the fight roster", Category: CategorySocial, Handler: HandlerStatus},
		{Name: "observe", Aliases: []string{"watch"}, Help: "Watch the fight without taking part", Category: CategorySocial, Handler: HandlerObserve},
		{Name: "help", Aliases: []string{"?"}, Help: "Show available commands", Category: CategorySocial, Handler: HandlerHelp},

		// Admin overrides
		{Name: "forceend", Aliases: nil, Help: "Force-end the fight (admin only)", Category: CategoryAdmin, Handler: HandlerForceEnd},
		{Name: "forceready", Aliases: nil, Help: "Skip the ready check (admin only)", Category: CategoryAdmin, Handler: HandlerForceReady},
		{Name: "forcepass", Aliases: nil, Help: "Discard a combatant's turn (forcepass <target>, admin only)", Category: CategoryAdmin, Handler: HandlerForcePass},
		{Name: "evict", Aliases: nil, Help: "Move a combatant to observer status (evict <target>, admin only)", Category: CategoryAdmin, Handler: HandlerEvict},
	}
}

// IsAdminCommand reports whether the command requires admin rights.
func IsAdminCommand(c *Command) bool {
	return c.Category == CategoryAdmin
}
