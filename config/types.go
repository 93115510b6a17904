package config

import "time"

type AppConfig struct {
	DBDriver   string        `yaml:"db_driver" env:"ARGUS_DB_DRIVER" env-default:"sqlite"`
	DBPath     string        `yaml:"db_path" env:"ARGUS_DB_PATH" env-default:"data/argus.db"`
	DBURL      string        `yaml:"db_url" env:"ARGUS_DB_URL"`
	ListenAddr string        `yaml:"listen_addr" env:"ARGUS_LISTEN_ADDR" env-default:"0.0.0.0:8080"`
	SessionTTL time.Duration `yaml:"session_ttl" env:"ARGUS_SESSION_TTL" env-default:"3h"`
	CSRFKey    string        `yaml:"csrf_key" env:"ARGUS_CSRF_KEY"`

	// Pepper is only mixed in under the argon2id scheme; the legacy
	// sha256-hex scheme ignores it so inherited digests keep verifying.
	Pepper         string `yaml:"pepper" env:"ARGUS_PEPPER"`
	PasswordScheme string `yaml:"password_scheme" env:"ARGUS_PASSWORD_SCHEME" env-default:"sha256-hex"`

	Importer  ImporterConfig  `yaml:"importer"`
	Bootstrap BootstrapConfig `yaml:"bootstrap"`
}

type ImporterConfig struct {
	DataDir string `yaml:"data_dir" env:"ARGUS_IMPORT_DATA_DIR" env-default:"data"`
	// LoadOnStart runs a full bulk load before the server starts listening.
	LoadOnStart bool `yaml:"load_on_start" env:"ARGUS_IMPORT_LOAD_ON_START" env-default:"true"`
	// Schedule is a cron expression for periodic re-imports; empty disables them.
	Schedule string `yaml:"schedule" env:"ARGUS_IMPORT_SCHEDULE"`
}

type BootstrapConfig struct {
	AdminUsername string `yaml:"admin_username" env:"ARGUS_BOOTSTRAP_ADMIN_USERNAME" env-default:"admin"`
	AdminPassword string `yaml:"admin_password" env:"ARGUS_BOOTSTRAP_ADMIN_PASSWORD"`
}

const maxUserSessionTTL = 3 * time.Hour

func (c *AppConfig) EffectiveSessionTTL() time.Duration {
	ttl := maxUserSessionTTL
	if c != nil && c.SessionTTL > 0 {
		ttl = c.SessionTTL
	}
	if ttl > maxUserSessionTTL {
		return maxUserSessionTTL
	}
	return ttl
}
