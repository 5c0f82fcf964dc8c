package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Combat: CombatConfig{
			Seed:      42,
			MaxRounds: 200,
			PartySize: 5,
		},
		Content: ContentConfig{
			AbilitiesDir: "content/abilities",
			ClassesDir:   "content/classes",
			RacesDir:     "content/races",
			ItemsDir:     "content/items",
			MonstersDir:  "content/monsters",
		},
		Scripting: ScriptingConfig{
			AIScriptDir:      "content/scripts/ai",
			InstructionLimit: 1000,
		},
		Skirmish: SkirmishConfig{
			Recruits:     3,
			Bands:        2,
			MaxBandLevel: 3,
		},
	}
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestDefaultsAreValid(t *testing.T) {
	cfg, err := LoadFromViper(Defaults())
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Combat.MaxRounds)
	assert.Equal(t, 5, cfg.Combat.PartySize)
	assert.Equal(t, int64(0), cfg.Combat.Seed)
	assert.Equal(t, "content/monsters", cfg.Content.MonstersDir)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte(`
logging:
  level: debug
  format: console
combat:
  seed: 1234
  max_rounds: 50
content:
  monsters_dir: /srv/monsters
scripting:
  instruction_limit: 5000
skirmish:
  recruits: 2
  bands: 4
`), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, int64(1234), cfg.Combat.Seed)
	assert.Equal(t, 50, cfg.Combat.MaxRounds)
	assert.Equal(t, 5, cfg.Combat.PartySize, "unset keys keep defaults")
	assert.Equal(t, "/srv/monsters", cfg.Content.MonstersDir)
	assert.Equal(t, "content/items", cfg.Content.ItemsDir)
	assert.Equal(t, 5000, cfg.Scripting.InstructionLimit)
	assert.Equal(t, 4, cfg.Skirmish.Bands)
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte("combat:\n  max_rounds: 50\n"), 0644))
	t.Setenv("WARBAND_COMBAT_MAX_ROUNDS", "75")
	t.Setenv("WARBAND_LOGGING_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 75, cfg.Combat.MaxRounds)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte("combat:\n  max_rounds: 0\n"), 0644))
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "combat.max_rounds")
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

func TestValidateContentDirs(t *testing.T) {
	cfg := validConfig()
	cfg.Content.ItemsDir = ""
	cfg.Content.AbilitiesDir = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content.abilities_dir must not be empty; content.items_dir must not be empty")
}

func TestValidateScriptingInstructionLimit(t *testing.T) {
	cfg := validConfig()
	cfg.Scripting.InstructionLimit = 0
	assert.NoError(t, cfg.Validate())
	cfg.Scripting.InstructionLimit = -1
	assert.Error(t, cfg.Validate())
}

func TestValidateRecruitsWithinPartySize(t *testing.T) {
	cfg := validConfig()
	cfg.Skirmish.Recruits = 6
	assert.Error(t, cfg.Validate())
}

func TestValidate_ReportsAllViolations(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "loud"
	cfg.Combat.MaxRounds = 0
	cfg.Skirmish.Bands = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
	assert.Contains(t, err.Error(), "combat.max_rounds")
	assert.Contains(t, err.Error(), "skirmish.bands")
}

// Property-based tests

func TestPropertyRecruitsUpToPartySizeAccepted(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		size := rapid.IntRange(1, 10).Draw(t, "party_size")
		recruits := rapid.IntRange(1, size).Draw(t, "recruits")
		cfg := validConfig()
		cfg.Combat.PartySize = size
		cfg.Skirmish.Recruits = recruits
		if err := cfg.Validate(); err != nil {
			t.Fatalf("recruits=%d party_size=%d rejected: %v", recruits, size, err)
		}
	})
}

func TestPropertyNonPositiveMaxRoundsRejected(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rounds := rapid.IntRange(-1000, 0).Draw(t, "max_rounds")
		cfg := validConfig()
		cfg.Combat.MaxRounds = rounds
		if cfg.Validate() == nil {
			t.Fatalf("max_rounds=%d accepted", rounds)
		}
	})
}
