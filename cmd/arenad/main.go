// Package main provides the arena daemon: a line-protocol TCP host
// where connected players fight each other and a resident sparring
// partner, with an advisory round timer nudging stalled fights.
package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/harrovale/mud/internal/config"
	"github.com/harrovale/mud/internal/game/actor"
	"github.com/harrovale/mud/internal/game/combat"
	"github.com/harrovale/mud/internal/game/command"
	"github.com/harrovale/mud/internal/game/dice"
	"github.com/harrovale/mud/internal/game/weapons"
	"github.com/harrovale/mud/internal/observability"
	"github.com/harrovale/mud/internal/scripting"
	"github.com/harrovale/mud/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (empty for defaults)")
	admin := flag.String("admin", "", "actor name granted admin commands")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	catalog, err := weapons.LoadCatalogFromFile(cfg.Content.WeaponsPath)
	if err != nil {
		logger.Warn("weapon catalog unavailable, everyone fights unarmed", zap.Error(err))
		catalog = weapons.Catalog{}
	}

	policies := scripting.NewPolicyEngine(logger, 0)
	if cfg.Content.PoliciesDir != "" {
		if err := policies.LoadDir(cfg.Content.PoliciesDir); err != nil {
			logger.Fatal("loading policies", zap.Error(err))
		}
	}
	policy := combat.DefaultPolicy()
	if names := policies.Names(); len(names) > 0 {
		if p, ok := policies.Policy(names[0]); ok {
			policy = p
		}
	}

	roster := actor.NewRoster()
	lookup := func(id string) (combat.Character, bool) {
		a, ok := roster.Get(id)
		if !ok {
			return nil, false
		}
		return a, true
	}

	manager := combat.NewManager(combat.ManagerParams{
		Checker: dice.NewChecker(dice.NewCryptoSource(), logger),
		Settings: combat.Settings{
			RoundDelay:   cfg.Combat.RoundDelay,
			MaxRounds:    cfg.Combat.MaxRounds,
			AFKGrace:     cfg.Combat.AFKGrace,
			RandomDeaths: cfg.Combat.RandomDeaths,
		},
		Logger:  logger,
		Policy:  policy,
		Resolve: lookup,
		Depart: func(ch combat.Character, exit string) error {
			return roster.Move(ch.ID(), exit)
		},
		Arm: func(ch combat.Character) (weapons.Profile, bool) {
			if ch.ID() == "brute" {
				return catalog.Get("cudgel"), false
			}
			return weapons.Unarmed(), false
		},
	})

	dispatcher := command.NewDispatcher(manager, lookup, logger)
	if *admin != "" {
		dispatcher.Admins[*admin] = true
	}

	// A resident sparring partner so a lone client has someone to fight.
	brute := actor.New(actor.Params{
		ID: "brute", Name: "brute", LocationID: server.ArenaLocation, Automated: true, NPC: true,
		Stats:  map[string]int{"dexterity": 3, "stamina": 4, "strength": 4, "composure": 2, "willpower": 2},
		Skills: map[string]int{"brawl": 3, "dodge": 1, "athletics": 2, "survival": 2},
		Armor:  2,
	})
	if err := roster.Add(brute); err != nil {
		logger.Fatal("staging sparring partner", zap.Error(err))
	}

	arena := server.NewArena(cfg.Server, roster, manager, dispatcher, logger)

	heartbeatCtx, stopHeartbeat := context.WithCancel(context.Background())
	lc := server.NewLifecycle(logger)
	lc.Add("arena", arena)
	lc.Add("heartbeat", &server.FuncService{
		StartFn: func() error {
			manager.Heartbeat(heartbeatCtx, arena.Submit)
			return nil
		},
		StopFn: stopHeartbeat,
	})

	if err := lc.Run(context.Background()); err != nil {
		logger.Fatal("arena daemon failed", zap.Error(err))
	}
}
