package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         4000,
			WriteTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Combat: CombatConfig{
			RoundDelay:   30 * time.Second,
			MaxRounds:    250,
			AFKGrace:     2 * time.Minute,
			RandomDeaths: true,
		},
		Content: ContentConfig{
			WeaponsPath: "configs/weapons.yaml",
		},
		Sim: SimConfig{
			Fights: 1,
		},
	}
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte(`
logging:
  level: debug
  format: console
combat:
  round_delay: 10s
  max_rounds: 50
  afk_grace: 1m
  random_deaths: false
content:
  weapons_path: testdata/weapons.yaml
sim:
  seed: 42
  fights: 3
`), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 10*time.Second, cfg.Combat.RoundDelay)
	assert.Equal(t, 50, cfg.Combat.MaxRounds)
	assert.False(t, cfg.Combat.RandomDeaths)
	assert.Equal(t, "testdata/weapons.yaml", cfg.Content.WeaponsPath)
	assert.Equal(t, int64(42), cfg.Sim.Seed)
	assert.Equal(t, 3, cfg.Sim.Fights)
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte("logging:\n  level: warn\n"), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 250, cfg.Combat.MaxRounds)
	assert.Equal(t, 2*time.Minute, cfg.Combat.AFKGrace)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestValidateLoggingLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := validConfig()
		cfg.Logging.Level = level
		assert.NoError(t, cfg.Validate(), "level %q should be valid", level)
	}
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	assert.Error(t, cfg.Validate())
}

func TestValidateLoggingFormat(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		cfg := validConfig()
		cfg.Logging.Format = format
		assert.NoError(t, cfg.Validate(), "format %q should be valid", format)
	}
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidateCombat(t *testing.T) {
	cfg := validConfig()
	cfg.Combat.RoundDelay = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Combat.MaxRounds = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Combat.AFKGrace = -time.Second
	assert.Error(t, cfg.Validate())
}

func TestValidateServer(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = -1
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Server.Port = 70000
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Server.WriteTimeout = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateSim(t *testing.T) {
	cfg := validConfig()
	cfg.Sim.Fights = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateCollectsAllViolations(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "bogus"
	cfg.Combat.MaxRounds = -1
	cfg.Sim.Fights = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
	assert.Contains(t, err.Error(), "combat.max_rounds")
	assert.Contains(t, err.Error(), "sim.fights")
}

func TestValidateCombatRounds_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := validConfig()
		cfg.Combat.MaxRounds = rapid.IntRange(1, 10000).Draw(t, "rounds")
		assert.NoError(t, cfg.Validate())
	})
}
