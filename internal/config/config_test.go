package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SinaHo/investment-backend/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))
	return dir
}

func TestLoadConfig_FileValues(t *testing.T) {
	dir := writeConfig(t, `
server:
  http_port: 8081
jwt:
  signing_key: file-secret
  token_ttl: 2h
ledger:
  withdrawal_fee_rate: "0.07"
`)
	cfg, err := config.LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.HTTPPort)
	assert.Equal(t, 9090, cfg.Server.GRPCPort)
	assert.Equal(t, "file-secret", cfg.JWT.SigningKey)
	assert.Equal(t, 2*time.Hour, cfg.JWT.TokenTTL)
	assert.Equal(t, "0.07", cfg.Ledger.WithdrawalFeeRate)
	assert.Equal(t, "0.10", cfg.Ledger.Level1Rate)
	assert.Equal(t, 2, cfg.Ledger.RequiredReferrals)
	assert.Equal(t, int64(5<<20), cfg.Uploads.MaxBytes)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	dir := writeConfig(t, `
jwt:
  signing_key: file-secret
`)
	t.Setenv("JWT_SIGNING_KEY", "env-secret")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("SEED_ADMIN_PASSWORD", "s3cret!")

	cfg, err := config.LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.JWT.SigningKey)
	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, "s3cret!", cfg.Seed.AdminPassword)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "only-env")

	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Server.HTTPPort)
	assert.Equal(t, "uploads", cfg.Uploads.Dir)
	assert.Equal(t, time.Hour, cfg.Scheduler.DailyReturnsInterval)
	assert.True(t, cfg.Seed.OnStart)
}

func TestLoadConfig_RequiresSigningKey(t *testing.T) {
	_, err := config.LoadConfig(t.TempDir())
	assert.Error(t, err)
}

func TestPostgresConfig_DSN(t *testing.T) {
	pg := config.PostgresConfig{Host: "h", Port: 5433, User: "u", Password: "p", DBName: "d", SSLMode: "disable"}
	assert.Equal(t, "host=h port=5433 user=u password=p dbname=d sslmode=disable", pg.DSN())
}
