package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Reads values from the yaml file", func(t *testing.T) {
		// Given: a config file selecting the redis store
		path := filepath.Join(t.TempDir(), "config.yml")
		content := "log-level: debug\nhttp-port: \"8081\"\nstore: redis\nredis:\n  host: cache\n  port: \"6380\"\nsession:\n  cookie-name: sid\n  ttl: 1h\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		// When: the config is loaded
		conf, err := Load(path)

		// Then: every value comes from the file
		require.NoError(t, err)
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, "8081", conf.HTTPPort)
		assert.Equal(t, StoreRedis, conf.Store)
		assert.Equal(t, "cache:6380", conf.Redis.GetRedisAddr())
		assert.Equal(t, "sid", conf.Session.CookieName)
		assert.Equal(t, time.Hour, conf.Session.TTL)
	})

	t.Run("Falls back to defaults when the file is missing", func(t *testing.T) {
		// When: loading a path that does not exist
		conf, err := Load(filepath.Join(t.TempDir(), "missing.yml"))

		// Then: defaults are applied
		require.NoError(t, err)
		assert.Equal(t, "info", conf.LogLevel)
		assert.Equal(t, "9090", conf.HTTPPort)
		assert.Equal(t, StoreMemory, conf.Store)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
		assert.Equal(t, "ttt_session", conf.Session.CookieName)
		assert.Equal(t, 24*time.Hour, conf.Session.TTL)
	})

	t.Run("Environment overrides defaults", func(t *testing.T) {
		// Given: HTTP_PORT set in the environment
		t.Setenv("HTTP_PORT", "7070")

		// When: loading without a file
		conf, err := Load(filepath.Join(t.TempDir(), "missing.yml"))

		// Then: the env value wins
		require.NoError(t, err)
		assert.Equal(t, "7070", conf.HTTPPort)
	})

	t.Run("Rejects an unknown store", func(t *testing.T) {
		// Given: a config asking for an unsupported store
		t.Setenv("STORE", "postgres")

		// When: the config is loaded
		_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))

		// Then: ErrUnknownStore is returned
		require.ErrorIs(t, err, ErrUnknownStore)
	})

	t.Run("Returns errors other than a missing file", func(t *testing.T) {
		// Given: a path whose parent is a regular file
		parent := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(parent, []byte("store: memory\n"), 0o600))

		// When: loading a file below it
		conf, err := Load(filepath.Join(parent, "nested.yml"))

		// Then: the stat error is returned instead of silently using defaults
		require.Error(t, err)
		assert.NotErrorIs(t, err, fs.ErrNotExist)
		assert.Nil(t, conf)
	})
}
