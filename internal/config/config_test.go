package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, int64(200), cfg.Ordering.BudgetCeiling)
	assert.Equal(t, time.Friday, cfg.Ordering.CutoffWeekday)
	assert.Equal(t, 18, cfg.Ordering.CutoffHour)
	assert.Equal(t, int64(10<<20), cfg.Menu.MaxFileSize)
	assert.Empty(t, cfg.HTTP.AllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("MAX_ORDER_AMOUNT", "250")
	t.Setenv("CUTOFF_WEEKDAY", "thu")
	t.Setenv("CUTOFF_HOUR", "12")
	t.Setenv("TIME_ZONE", "Europe/Kyiv")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("MENU_MAX_FILE_SIZE_MB", "2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "postgres://postgres:@localhost:6543/smakolyk", cfg.DB.DSN())
	assert.Equal(t, int64(250), cfg.Ordering.BudgetCeiling)
	assert.Equal(t, time.Thursday, cfg.Ordering.CutoffWeekday)
	assert.Equal(t, 12, cfg.Ordering.CutoffHour)
	assert.Equal(t, "Europe/Kyiv", cfg.Ordering.Location.String())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, int64(2<<20), cfg.Menu.MaxFileSize)
}

func TestLoadRejects(t *testing.T) {
	tests := map[string][2]string{
		"driver":  {"DB_DRIVER", "mysql"},
		"hour":    {"CUTOFF_HOUR", "24"},
		"weekday": {"CUTOFF_WEEKDAY", "someday"},
		"port":    {"DB_PORT", "five"},
		"ttl":     {"TOKEN_TTL", "forever"},
		"ceiling": {"MAX_ORDER_AMOUNT", "-1"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(env[0], env[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
