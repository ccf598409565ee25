package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Storage.Type)
	assert.NotEmpty(t, cfg.Storage.Path)
	assert.Equal(t, 50, cfg.Export.Cycles)
	assert.Equal(t, "Offshore Rotation", cfg.Export.Summary)
	assert.Equal(t, "offshoremate.app", cfg.Export.Domain)
	assert.Equal(t, "gemini-2.5-flash", cfg.Briefing.Model)
	assert.Equal(t, "0 18 * * *", cfg.Daemon.CronSpec)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Schedule.HasInlineSchedule())
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
schedule:
  start_date: "2024-01-01"
  pattern: "14/14"
storage:
  type: sqlite
  path: ${OFFSHORE_TEST_DIR}/schedules.db
export:
  cycles: 12
daemon:
  cron_spec: "30 19 * * *"
  timezone: UTC
  telegram_token: abc
  telegram_chat_id: 1234
log:
  level: debug
`)
	t.Setenv("OFFSHORE_TEST_DIR", dir)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Schedule.HasInlineSchedule())
	assert.Equal(t, "14/14", cfg.Schedule.Pattern)
	assert.Equal(t, "sqlite", cfg.Storage.Type)
	assert.Equal(t, filepath.Join(dir, "schedules.db"), cfg.Storage.Path)
	assert.Equal(t, 12, cfg.Export.Cycles)
	assert.Equal(t, "30 19 * * *", cfg.Daemon.CronSpec)
	assert.Equal(t, int64(1234), cfg.Daemon.TelegramChatID)
	assert.Equal(t, time.UTC, cfg.Daemon.GetLocation())
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("OFFSHORE_MATE_SCHEDULE_START_DATE", "2024-03-04")
	t.Setenv("OFFSHORE_MATE_SCHEDULE_PATTERN", "21/21")
	t.Setenv("OFFSHORE_MATE_STORAGE_TYPE", "memory")
	t.Setenv("OFFSHORE_MATE_BRIEFING_API_KEY", "secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "2024-03-04", cfg.Schedule.StartDate)
	assert.Equal(t, "21/21", cfg.Schedule.Pattern)
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, "secret", cfg.Briefing.APIKey)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("OFFSHORE_MATE_EXPORT_SUMMARY=From dotenv\n"), 0o644))
	t.Chdir(dir)
	t.Cleanup(func() { os.Unsetenv("OFFSHORE_MATE_EXPORT_SUMMARY") })

	cfg, err := Load(filepath.Join(dir, "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "From dotenv", cfg.Export.Summary)
}

func TestLoad_InvalidFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "storage: [unclosed")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Storage: StorageConfig{Type: "file", Path: "schedules.json"},
			Export:  ExportConfig{Cycles: 50},
			Daemon:  DaemonConfig{Timezone: "UTC"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "memory needs nothing", mutate: func(c *Config) { c.Storage = StorageConfig{Type: "memory"} }},
		{name: "unknown storage", mutate: func(c *Config) { c.Storage.Type = "redis" }, wantErr: true},
		{name: "file without path", mutate: func(c *Config) { c.Storage.Path = "" }, wantErr: true},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Storage.Type = "postgres" }, wantErr: true},
		{name: "postgres with dsn", mutate: func(c *Config) {
			c.Storage = StorageConfig{Type: "postgres", DSN: "postgres://localhost/offshore"}
		}},
		{name: "zero cycles", mutate: func(c *Config) { c.Export.Cycles = 0 }, wantErr: true},
		{name: "start date without pattern", mutate: func(c *Config) { c.Schedule.StartDate = "2024-01-01" }, wantErr: true},
		{name: "token without chat", mutate: func(c *Config) { c.Daemon.TelegramToken = "abc" }, wantErr: true},
		{name: "token for commands only", mutate: func(c *Config) {
			c.Daemon.TelegramToken = "abc"
			c.Daemon.Commands = true
		}},
		{name: "bad timezone", mutate: func(c *Config) { c.Daemon.Timezone = "Mars/Olympus" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetters(t *testing.T) {
	tests := []struct {
		timeout string
		want    time.Duration
	}{
		{"", 30 * time.Second},
		{"5s", 5 * time.Second},
		{"soon", 30 * time.Second},
	}
	for _, tt := range tests {
		b := BriefingConfig{Timeout: tt.timeout}
		if got := b.GetTimeout(); got != tt.want {
			t.Errorf("GetTimeout(%q) = %v, want %v", tt.timeout, got, tt.want)
		}
	}

	d := DaemonConfig{Timezone: "Nowhere/City"}
	assert.Equal(t, time.Local, d.GetLocation())
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "schedule:\n  start_date: \"2024-01-01\"\n  pattern: \"14/14\"\nstorage:\n  type: memory\n")

	changes := make(chan *Config, 4)
	cfg, err := Watch(path, func(c *Config) { changes <- c }, func(error) {})
	require.NoError(t, err)
	assert.Equal(t, "14/14", cfg.Schedule.Pattern)

	// give the watcher a moment to register before rewriting
	time.Sleep(100 * time.Millisecond)
	writeConfig(t, dir, "schedule:\n  start_date: \"2024-01-01\"\n  pattern: \"21/21\"\nstorage:\n  type: memory\n")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case c := <-changes:
			if c.Schedule.Pattern == "21/21" {
				return
			}
		case <-deadline:
			t.Fatal("config change not observed")
		}
	}
}
