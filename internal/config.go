package internal

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/allisson/go-env"
	validation "github.com/jellydator/validation"
	"github.com/joho/godotenv"
)

// DefaultProfile is the profile used when none is configured.
const DefaultProfile = "default"

var profileName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)

// Config holds the CLI configuration resolved from the environment. Command
// line flags override these values.
type Config struct {
	// Key is a 26-letter key string (SUBRIOT_KEY). Empty means "use the
	// stored profile key".
	Key string
	// Profile names the stored key to use (SUBRIOT_PROFILE).
	Profile string
	// StateDir is where state.json lives (SUBRIOT_STATE_DIR).
	StateDir string
	// NoColor disables ANSI styling (SUBRIOT_NO_COLOR).
	NoColor bool
	// LogLevel is one of debug, info, warn, error (LOG_LEVEL).
	LogLevel string
}

// LoadConfig loads configuration from environment variables and the nearest
// .env file.
func LoadConfig() *Config {
	loadDotEnv()

	return &Config{
		Key:      env.GetString("SUBRIOT_KEY", ""),
		Profile:  env.GetString("SUBRIOT_PROFILE", DefaultProfile),
		StateDir: env.GetString("SUBRIOT_STATE_DIR", defaultStateDir()),
		NoColor:  env.GetBool("SUBRIOT_NO_COLOR", false),
		LogLevel: env.GetString("LOG_LEVEL", "warn"),
	}
}

// Validate checks the configuration after flags have been applied. Key is
// left to ResolveKey so that commands which never use a key still run.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Profile,
			validation.Required.Error("profile is required"),
			validation.Match(profileName).Error("profile must be 1-64 letters, digits, '.', '_' or '-'"),
		),
		validation.Field(&c.StateDir, validation.Required.Error("state directory is required")),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
	)
}

func defaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".subriot"
	}
	return filepath.Join(dir, "subriot")
}

// loadDotEnv searches for a .env file from the current directory up to the
// root and loads the first one found. Existing variables are not overridden.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
