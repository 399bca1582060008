package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/remindme/internal/database"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")

	cfg, err := FromViper(newViper())
	require.NoError(t, err)

	assert.Equal(t, database.DriverSQLite, cfg.DatabaseDriver)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 8, cfg.DeliveryWorkers)
	assert.Equal(t, "@every 1h", cfg.ResyncSchedule)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 0xff0000, cfg.Colors.Error)
	assert.Equal(t, 0x00ffff, cfg.Colors.Info)

	_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, cfg.Location).Zone()
	assert.Equal(t, 2*60*60, offset)
	assert.Equal(t, "UTC+02:00", cfg.Location.String())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("DATABASE_DRIVER", "PGX")
	t.Setenv("TIMEZONE_OFFSET", "-5h30m")
	t.Setenv("TIMEZONE_NAME", "Somewhere")
	t.Setenv("COLOR_INFO", "#123456")
	t.Setenv("DELIVERY_WORKERS", "2")

	cfg, err := FromViper(newViper())
	require.NoError(t, err)

	assert.Equal(t, database.DriverPostgres, cfg.DatabaseDriver)
	assert.Equal(t, 0x123456, cfg.Colors.Info)
	assert.Equal(t, 2, cfg.DeliveryWorkers)
	_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, cfg.Location).Zone()
	assert.Equal(t, -(5*60+30)*60, offset)
	assert.Equal(t, "Somewhere", cfg.Location.String())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing token", env: map[string]string{"DISCORD_TOKEN": ""}},
		{name: "bad driver", env: map[string]string{"DISCORD_TOKEN": "x", "DATABASE_DRIVER": "mysql"}},
		{name: "bad colour", env: map[string]string{"DISCORD_TOKEN": "x", "COLOR_ERROR": "red"}},
		{name: "no workers", env: map[string]string{"DISCORD_TOKEN": "x", "DELIVERY_WORKERS": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromViper(newViper())
			assert.Error(t, err)
		})
	}
}
