package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/arenaharness/harness/internal/util"
	"github.com/arenaharness/harness/pkg/core"
)

// FileName is the config file looked up in the config directory.
const FileName = "harness.cfg.json"

// EnvPrefix prefixes every environment override, e.g. HARNESS_LOGLEVEL.
const EnvPrefix = "HARNESS"

// StorageConfig selects the match ledger backend.
type StorageConfig struct {
	Type     string         `json:"type" mapstructure:"type"`
	SQLite   SQLiteConfig   `json:"sqlite" mapstructure:"sqlite"`
	Postgres PostgresConfig `json:"postgres" mapstructure:"postgres"`
}

// SQLiteConfig holds SQLite storage backend settings
type SQLiteConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// PostgresConfig holds PostgreSQL connection settings, read from db.*
type PostgresConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
	SSLMode  string `json:"sslMode" mapstructure:"sslMode"`
}

// ReplayConfig controls where replays are written.
type ReplayConfig struct {
	OutputDir string `json:"outputDir" mapstructure:"outputDir"`
	Compress  bool   `json:"compress" mapstructure:"compress"`
}

// MatchConfig holds match limits and defaults.
type MatchConfig struct {
	MapsDir          string
	HardRoundCeiling int
	UnitsPerSide     int
	CombatUnitType   string
	ControlTimeout   time.Duration
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	Endpoint     string
	Insecure     bool
}

// InfluxConfig holds InfluxDB metrics settings
type InfluxConfig struct {
	Enabled    bool
	Host       string
	Port       string
	Protocol   string
	Token      string
	Org        string
	Bucket     string
	BackupPath string
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file. Defaults and
// environment overrides stay in effect when the file cannot be read.
func Load(configDir string) error {
	setDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("teams.a.url", EnvPrefix+"_TEAM_A_URL")
	_ = viper.BindEnv("teams.b.url", EnvPrefix+"_TEAM_B_URL")

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./harnesslogs")

	viper.SetDefault("maps.dir", "./maps")

	viper.SetDefault("replay.outputDir", "./matches")
	viper.SetDefault("replay.compress", true)

	viper.SetDefault("match.hardRoundCeiling", 3000)
	viper.SetDefault("match.unitsPerSide", 5)
	viper.SetDefault("match.combatUnitType", core.Soldier.String())
	viper.SetDefault("control.timeout", "2s")

	viper.SetDefault("teams.a.url", "")
	viper.SetDefault("teams.b.url", "")

	viper.SetDefault("storage.type", "sqlite")
	viper.SetDefault("storage.sqlite.path", "./harness.db")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "harness")
	viper.SetDefault("db.sslMode", "disable")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "arena-metrics")
	viper.SetDefault("influx.bucket", "matches")
	viper.SetDefault("influx.backupPath", "./harnesslogs/influx_backup.log.gz")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "arena-harness")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetStorageConfig returns the ledger backend settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		SQLite: SQLiteConfig{
			Path: viper.GetString("storage.sqlite.path"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetString("db.port"),
			Username: viper.GetString("db.username"),
			Password: viper.GetString("db.password"),
			Database: viper.GetString("db.database"),
			SSLMode:  viper.GetString("db.sslMode"),
		},
	}
}

// GetReplayConfig returns replay output settings.
func GetReplayConfig() ReplayConfig {
	return ReplayConfig{
		OutputDir: viper.GetString("replay.outputDir"),
		Compress:  viper.GetBool("replay.compress"),
	}
}

// GetMatchConfig returns match limits and defaults.
func GetMatchConfig() MatchConfig {
	return MatchConfig{
		MapsDir:          viper.GetString("maps.dir"),
		HardRoundCeiling: viper.GetInt("match.hardRoundCeiling"),
		UnitsPerSide:     viper.GetInt("match.unitsPerSide"),
		CombatUnitType:   viper.GetString("match.combatUnitType"),
		ControlTimeout:   viper.GetDuration("control.timeout"),
	}
}

// GetOTelConfig returns OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetInfluxConfig returns InfluxDB metrics settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:    viper.GetBool("influx.enabled"),
		Host:       viper.GetString("influx.host"),
		Port:       viper.GetString("influx.port"),
		Protocol:   viper.GetString("influx.protocol"),
		Token:      viper.GetString("influx.token"),
		Org:        viper.GetString("influx.org"),
		Bucket:     viper.GetString("influx.bucket"),
		BackupPath: viper.GetString("influx.backupPath"),
	}
}

// TeamURL returns the configured control program location for side, or "".
func TeamURL(side core.Side) string {
	switch side {
	case core.SideA:
		return util.TrimQuotes(viper.GetString("teams.a.url"))
	case core.SideB:
		return util.TrimQuotes(viper.GetString("teams.b.url"))
	default:
		return ""
	}
}
