package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Security SecurityConfig `mapstructure:"security"`
	Log      LogConfig      `mapstructure:"log"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Editor   EditorConfig   `mapstructure:"editor"`
}

type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	Debug    bool   `mapstructure:"debug"`
	AdminKey string `mapstructure:"admin_key"`
	// SaveRoot restricts which files a session may open. Empty allows any path.
	SaveRoot string `mapstructure:"save_root"`
	// MetricsAllow lists addresses or CIDRs allowed to scrape /metrics.
	MetricsAllow []string `mapstructure:"metrics_allow"`
}

type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // sqlite | mysql
	SQLitePath   string        `mapstructure:"sqlite_path"`
	MySQLDSN     string        `mapstructure:"mysql_dsn"`
	MySQLMaxOpen int           `mapstructure:"mysql_max_open"`
	MySQLMaxIdle int           `mapstructure:"mysql_max_idle"`
	MySQLMaxLife time.Duration `mapstructure:"mysql_max_life"`
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
}

type SecurityConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	JWTTTLH        time.Duration `mapstructure:"jwt_ttl_h"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"` // empty = stderr only
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type CatalogConfig struct {
	Source   string `mapstructure:"source"` // csv | db
	ParamDir string `mapstructure:"param_dir"`
}

type RelicTemplateConfig struct {
	RelicID uint32   `mapstructure:"relic_id"`
	Effects []uint32 `mapstructure:"effects"`
	Curses  []uint32 `mapstructure:"curses"`
}

type EditorConfig struct {
	// StrictPolicy is off | warn | enforce.
	StrictPolicy   string              `mapstructure:"strict_policy"`
	AutoBackup     bool                `mapstructure:"auto_backup"`
	MaxBackups     int                 `mapstructure:"max_backups"`
	BackupDir      string              `mapstructure:"backup_dir"`
	SessionIdle    time.Duration       `mapstructure:"session_idle"`
	AutosaveEvery  time.Duration       `mapstructure:"autosave_every"`
	NormalTemplate RelicTemplateConfig `mapstructure:"normal_template"`
	DeepTemplate   RelicTemplateConfig `mapstructure:"deep_template"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/relicsave.db")
	v.SetDefault("database.mysql_max_open", 20)
	v.SetDefault("database.mysql_max_idle", 5)
	v.SetDefault("database.mysql_max_life", "1h")
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("security.jwt_ttl_h", "12h")
	v.SetDefault("security.rate_limit_rps", 50)
	v.SetDefault("security.rate_limit_burst", 100)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 5)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("catalog.source", "csv")
	v.SetDefault("catalog.param_dir", "./resources/param")
	v.SetDefault("editor.strict_policy", "warn")
	v.SetDefault("editor.auto_backup", true)
	v.SetDefault("editor.max_backups", 10)
	v.SetDefault("editor.backup_dir", "./data/backups")
	v.SetDefault("editor.session_idle", "30m")
	v.SetDefault("editor.autosave_every", "0s")
	v.SetDefault("editor.normal_template.relic_id", 117)
	v.SetDefault("editor.normal_template.effects", []uint32{0x6b78e4, 0x6cb420, 0x6ad59e})
	v.SetDefault("editor.deep_template.relic_id", 2000000)
	v.SetDefault("editor.deep_template.effects", []uint32{})
}

// Load reads config from the given YAML file path. An empty path yields the
// defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
