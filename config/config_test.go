package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "MAX_BODY_BYTES", "AUTH_ENFORCE", "ALLOWED_ORIGINS", "GIN_MODE"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, int64(50<<20), cfg.Server.MaxBodyBytes)
	assert.False(t, cfg.Server.AuthEnforce)
	assert.Nil(t, cfg.Server.AllowedOrigins)
	assert.False(t, cfg.IsRelease())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("MAX_BODY_BYTES", "1024")
	t.Setenv("AUTH_ENFORCE", "true")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("GIN_MODE", "release")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, int64(1024), cfg.Server.MaxBodyBytes)
	assert.True(t, cfg.Server.AuthEnforce)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.IsRelease())
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("MAX_BODY_BYTES", "lots")
	t.Setenv("AUTH_ENFORCE", "maybe")

	cfg := Load()
	assert.Equal(t, int64(50<<20), cfg.Server.MaxBodyBytes)
	assert.False(t, cfg.Server.AuthEnforce)
}
