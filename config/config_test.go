package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, 10, cfg.PrepMin)
	assert.Equal(t, 30, cfg.PrepMax)
	assert.Equal(t, 15, cfg.DeliveryMin)
	assert.Equal(t, 45, cfg.DeliveryMax)
	assert.Zero(t, cfg.RandomSeed)
}

func TestLoadReadsEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("STORE_DRIVER=json\nDATA_FILE=orders.json\nRANDOM_SEED=7\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("STORE_DRIVER")
		os.Unsetenv("DATA_FILE")
		os.Unsetenv("RANDOM_SEED")
	})

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, DriverJSON, cfg.StoreDriver)
	assert.Equal(t, "orders.json", cfg.DataFile)
	assert.Equal(t, uint64(7), cfg.RandomSeed)
}

func TestLoadRejectsBadValues(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.env")

	t.Setenv("PREP_MIN", "ten")
	_, err := Load(missing)
	assert.Error(t, err)

	t.Setenv("PREP_MIN", "40")
	_, err = Load(missing)
	assert.ErrorContains(t, err, "preparation range")

	t.Setenv("PREP_MIN", "10")
	t.Setenv("STORE_DRIVER", "postgres")
	_, err = Load(missing)
	assert.ErrorContains(t, err, "STORE_DRIVER")
}

func TestLoadRandomSeed(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.env")

	t.Setenv("RANDOM_SEED", "-1")
	_, err := Load(missing)
	assert.ErrorContains(t, err, "RANDOM_SEED")

	t.Setenv("RANDOM_SEED", "18446744073709551615")
	cfg, err := Load(missing)
	require.NoError(t, err)
	assert.Equal(t, uint64(18446744073709551615), cfg.RandomSeed)
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, NewLogger("debug").GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewLogger("chatty").GetLevel())
}

func TestOpenDatabase(t *testing.T) {
	db, err := OpenDatabase(filepath.Join(t.TempDir(), "test.db"), NewLogger("error"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()
	assert.NoError(t, sqlDB.Ping())
}
