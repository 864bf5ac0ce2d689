package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arenaharness/harness/pkg/core"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"maps": { "dir": "/srv/maps" },
		"db": { "host": "10.0.0.1", "port": "5433" }
	}`)

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, "/srv/maps", viper.GetString("maps.dir"))
	assert.Equal(t, "10.0.0.1", viper.GetString("db.host"))
	assert.Equal(t, "5433", viper.GetString("db.port"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./harnesslogs", viper.GetString("logsDir"))
	assert.Equal(t, "./maps", viper.GetString("maps.dir"))
	assert.Equal(t, "./matches", viper.GetString("replay.outputDir"))
	assert.Equal(t, true, viper.GetBool("replay.compress"))
	assert.Equal(t, 3000, viper.GetInt("match.hardRoundCeiling"))
	assert.Equal(t, 5, viper.GetInt("match.unitsPerSide"))
	assert.Equal(t, "SOLDIER", viper.GetString("match.combatUnitType"))
	assert.Equal(t, "sqlite", viper.GetString("storage.type"))
	assert.Equal(t, "./harness.db", viper.GetString("storage.sqlite.path"))
	assert.Equal(t, "localhost", viper.GetString("db.host"))
	assert.Equal(t, "5432", viper.GetString("db.port"))
	assert.Equal(t, "harness", viper.GetString("db.database"))
	assert.Equal(t, false, viper.GetBool("influx.enabled"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, "localhost:12201", viper.GetString("graylog.address"))
	assert.Equal(t, false, viper.GetBool("otel.enabled"))
	assert.Equal(t, "arena-harness", viper.GetString("otel.serviceName"))
}

func TestLoad_MissingFileKeepsDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
	assert.Equal(t, "./matches", GetReplayConfig().OutputDir)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("HARNESS_LOGLEVEL", "warn")
	t.Setenv("HARNESS_TEAM_A_URL", `"file:///bots/alpha"`)
	t.Setenv("HARNESS_TEAM_B_URL", "/bots/bravo")

	require.NoError(t, Load(writeConfig(t, `{"teams": {"b": {"url": "/from/file"}}}`)))

	assert.Equal(t, "warn", GetString("logLevel"))
	assert.Equal(t, "file:///bots/alpha", TeamURL(core.SideA))
	assert.Equal(t, "/bots/bravo", TeamURL(core.SideB))
	assert.Equal(t, "", TeamURL(core.SideNeutral))
}

func TestTeamURL_FromFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{"teams": {"a": {"url": "/bots/a"}}}`)))
	assert.Equal(t, "/bots/a", TeamURL(core.SideA))
	assert.Equal(t, "", TeamURL(core.SideB))
}

func TestGetString(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	assert.Equal(t, "testValue", GetString("testKey"))
}

func TestGetInt(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testInt", 42)
	assert.Equal(t, 42, GetInt("testInt"))
}

func TestGetBool(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testBool", true)
	assert.Equal(t, true, GetBool("testBool"))
}

func TestGetStorageConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetStorageConfig()
	assert.Equal(t, "sqlite", cfg.Type)
	assert.Equal(t, "./harness.db", cfg.SQLite.Path)
	assert.Equal(t, "postgres", cfg.Postgres.Username)
	assert.Equal(t, "disable", cfg.Postgres.SSLMode)
}

func TestGetStorageConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"storage": { "type": "postgres", "sqlite": { "path": "/tmp/x.db" } },
		"db": { "database": "ladder" }
	}`)))

	sc := GetStorageConfig()
	assert.Equal(t, "postgres", sc.Type)
	assert.Equal(t, "/tmp/x.db", sc.SQLite.Path)
	assert.Equal(t, "ladder", sc.Postgres.Database)
}

func TestGetMatchConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"match": { "unitsPerSide": 3, "combatUnitType": "TANK" },
		"control": { "timeout": "250ms" }
	}`)))

	mc := GetMatchConfig()
	assert.Equal(t, "./maps", mc.MapsDir)
	assert.Equal(t, 3000, mc.HardRoundCeiling)
	assert.Equal(t, 3, mc.UnitsPerSide)
	assert.Equal(t, "TANK", mc.CombatUnitType)
	assert.Equal(t, 250*time.Millisecond, mc.ControlTimeout)
}

func TestGetReplayConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{"replay": {"outputDir": "/tmp/out", "compress": false}}`)))

	rc := GetReplayConfig()
	assert.Equal(t, "/tmp/out", rc.OutputDir)
	assert.False(t, rc.Compress)
}

func TestGetOTelConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetOTelConfig()
	assert.Equal(t, false, cfg.Enabled)
	assert.Equal(t, "arena-harness", cfg.ServiceName)
	assert.Equal(t, 5*time.Second, cfg.BatchTimeout)
	assert.Equal(t, "", cfg.Endpoint)
	assert.Equal(t, true, cfg.Insecure)
}

func TestGetOTelConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"otel": {
			"enabled": true,
			"serviceName": "my-service",
			"batchTimeout": "30s",
			"endpoint": "localhost:4317",
			"insecure": false
		}
	}`)))

	oc := GetOTelConfig()
	assert.Equal(t, true, oc.Enabled)
	assert.Equal(t, "my-service", oc.ServiceName)
	assert.Equal(t, 30*time.Second, oc.BatchTimeout)
	assert.Equal(t, "localhost:4317", oc.Endpoint)
	assert.Equal(t, false, oc.Insecure)
}

func TestGetInfluxConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{"influx": {"enabled": true, "bucket": "ladder"}}`)))

	ic := GetInfluxConfig()
	assert.True(t, ic.Enabled)
	assert.Equal(t, "ladder", ic.Bucket)
	assert.Equal(t, "arena-metrics", ic.Org)
	assert.Equal(t, "8086", ic.Port)
}
