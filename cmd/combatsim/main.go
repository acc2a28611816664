// Package main provides the combat simulator: it wires configuration,
// logging, the weapon catalog, and scripted policies, then runs fully
// automated fights and reports their outcomes.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/harrovale/mud/internal/config"
	"github.com/harrovale/mud/internal/game/actor"
	"github.com/harrovale/mud/internal/game/combat"
	"github.com/harrovale/mud/internal/game/dice"
	"github.com/harrovale/mud/internal/game/weapons"
	"github.com/harrovale/mud/internal/observability"
	"github.com/harrovale/mud/internal/scripting"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file (empty for defaults)")
	seed := flag.Int64("seed", 0, "dice seed override (0 keeps the configured source)")
	verbose := flag.Bool("verbose", false, "print fight narration")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
	}
	if *seed != 0 {
		cfg.Sim.Seed = *seed
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting combat simulator",
		zap.Int("fights", cfg.Sim.Fights),
		zap.Int64("seed", cfg.Sim.Seed),
	)

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
		logger.Info("policies loaded", zap.Strings("names", policies.Names()))
	}

	var src dice.Source
	if cfg.Sim.Seed != 0 {
		src = dice.NewSeededSource(cfg.Sim.Seed)
	} else {
		src = dice.NewCryptoSource()
	}

	for i := 0; i < cfg.Sim.Fights; i++ {
		runFight(i+1, cfg, catalog, policies, src, logger, *verbose)
	}

	logger.Info("simulator done", zap.Duration("elapsed", time.Since(start)))
}

// runFight stages one automated duel with a bodyguard on one side.
func runFight(n int, cfg config.Config, catalog weapons.Catalog,
	policies *scripting.PolicyEngine, src dice.Source, logger *zap.Logger, verbose bool) {

	roster := actor.NewRoster()
	sink := func(string) {}
	if verbose {
		sink = func(text string) { fmt.Println(text) }
	}

	duelist := actor.New(actor.Params{
		ID: "duelist", Name: "Duelist", LocationID: "arena", Automated: true,
		Stats:  map[string]int{"dexterity": 4, "stamina": 3, "strength": 3, "composure": 3, "willpower": 3},
		Skills: map[string]int{"melee": 4, "dodge": 3, "athletics": 2, "survival": 2},
		Armor:  2, Sink: sink,
	})
	brute := actor.New(actor.Params{
		ID: "brute", Name: "Brute", LocationID: "arena", Automated: true, NPC: true,
		Stats:  map[string]int{"dexterity": 3, "stamina": 5, "strength": 5, "composure": 2, "willpower": 2},
		Skills: map[string]int{"brawl": 3, "dodge": 1, "athletics": 3, "survival": 3},
		Armor:  4, ArmorPenalty: 2, Sink: sink,
	})
	shield := actor.New(actor.Params{
		ID: "shield", Name: "Shieldbearer", LocationID: "arena", Automated: true, NPC: true,
		Stats:  map[string]int{"dexterity": 3, "stamina": 4, "strength": 3, "composure": 3, "willpower": 3},
		Skills: map[string]int{"melee": 2, "dodge": 2, "athletics": 2, "survival": 2},
		Armor:  6, ArmorPenalty: 3, Sink: sink,
	})
	shield.SetGuarding(brute)
	for _, a := range []*actor.Actor{duelist, brute, shield} {
		if err := roster.Add(a); err != nil {
			logger.Fatal("staging fight", zap.Error(err))
		}
	}

	policy := combat.DefaultPolicy()
	if names := policies.Names(); len(names) > 0 {
		if p, ok := policies.Policy(names[0]); ok {
			policy = p
		}
	}

	manager := combat.NewManager(combat.ManagerParams{
		Checker: dice.NewChecker(src, logger),
		Settings: combat.Settings{
			RoundDelay:   cfg.Combat.RoundDelay,
			MaxRounds:    cfg.Combat.MaxRounds,
			AFKGrace:     cfg.Combat.AFKGrace,
			RandomDeaths: cfg.Combat.RandomDeaths,
		},
		Logger: logger,
		Policy: policy,
		Resolve: func(id string) (combat.Character, bool) {
			a, ok := roster.Get(id)
			if !ok {
				return nil, false
			}
			return a, true
		},
		Depart: func(ch combat.Character, exit string) error {
			return roster.Move(ch.ID(), exit)
		},
		Arm: func(ch combat.Character) (weapons.Profile, bool) {
			switch ch.ID() {
			case "duelist":
				return catalog.Get("saber"), false
			case "shield":
				return catalog.Get("cudgel"), true
			default:
				return weapons.Unarmed(), false
			}
		},
	})

	session, err := manager.StartCombat(duelist, brute, combat.LocationOpts{NonLethal: cfg.Sim.NonLethal})
	if err != nil {
		logger.Fatal("starting fight", zap.Error(err))
	}

	// Fully automated fights resolve synchronously inside StartCombat.
	logger.Info("fight finished",
		zap.Int("fight", n),
		zap.Int("rounds", session.Round()),
		zap.Bool("duelist_standing", duelist.Conscious()),
		zap.Bool("brute_standing", brute.Conscious()),
		zap.Bool("shield_standing", shield.Conscious()),
	)
}
