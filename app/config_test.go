package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, data string) string {
	path := filepath.Join(t.TempDir(), "config.env")
	err := os.WriteFile(path, []byte(data), 0o600)
	require.NoError(t, err)
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
PORT=8080
ENVIRONMENT=production
VERSION=1.2.3
LOG_LEVEL=debug
TRUSTED_ORIGINS="http://localhost:3000,http://localhost:3001"
POSTGRES_HOST=db.example.com
POSTGRES_USER=testuser
POSTGRES_PASSWORD=testpassword
POSTGRES_DB=testdb
POSTGRES_MAX_IDLE_TIME=1m
MAIL_HOST=smtp.example.com
MAIL_PORT=587
MAIL_USER=testuser@example.com
MAIL_PASSWORD=testpassword
MAIL_SENDER=sender@example.com
RABBITMQ_HOST=rabbitmq.example.com
RABBITMQ_USER=testuser
RABBITMQ_PASSWORD=testpassword
JWT_SECRET=supersecret
JWT_TTL=2h
LIMITER_ENABLED=false
LIMITER_RPS=10.5
ADMIN_EMAIL=admin@example.com
`)

	config, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", config.Port)
	assert.Equal(t, "production", config.Environment)
	assert.Equal(t, "1.2.3", config.Version)
	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:3001"}, config.TrustedOrigins)
	assert.Equal(t, "db.example.com", config.DBHost)
	assert.Equal(t, "5432", config.DBPort)
	assert.Equal(t, "testuser", config.DBUser)
	assert.Equal(t, "testpassword", config.DBPassword)
	assert.Equal(t, "testdb", config.DBName)
	assert.Equal(t, time.Minute, config.DBMaxIdleTime)
	assert.Equal(t, "smtp.example.com", config.MailHost)
	assert.Equal(t, 587, config.MailPort)
	assert.Equal(t, "testuser@example.com", config.MailUser)
	assert.Equal(t, "testpassword", config.MailPassword)
	assert.Equal(t, "sender@example.com", config.MailSender)
	assert.Equal(t, "rabbitmq.example.com", config.MQHost)
	assert.Equal(t, "5672", config.MQPort)
	assert.Equal(t, "testuser", config.MQUser)
	assert.Equal(t, "testpassword", config.MQPassword)
	assert.Equal(t, "supersecret", config.JWTSecret)
	assert.Equal(t, 2*time.Hour, config.JWTTTL)
	assert.False(t, config.LimiterEnabled)
	assert.Equal(t, 10.5, config.LimiterRPS)
	assert.Equal(t, 4, config.LimiterBurst)
	assert.Equal(t, "admin@example.com", config.AdminEmail)
	assert.Equal(t, "Administrator", config.AdminName)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-the-environment")

	config, err := loadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "4000", config.Port)
	assert.Equal(t, "development", config.Environment)
	assert.Equal(t, "from-the-environment", config.JWTSecret)
	assert.Equal(t, 24*time.Hour, config.JWTTTL)
	assert.Equal(t, 5*time.Minute, config.CacheTTL)
	assert.Equal(t, 25, config.DBMaxOpenConns)
	assert.True(t, config.LimiterEnabled)
	assert.Empty(t, config.TrustedOrigins)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := writeConfig(t, "PORT=8080\nJWT_SECRET=supersecret\n")
	t.Setenv("PORT", "9090")

	config, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", config.Port)
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	path := writeConfig(t, "PORT=8080\n")
	t.Setenv("JWT_SECRET", "")

	_, err := loadConfig(path)
	assert.ErrorIs(t, err, ErrMissingJWTSecret)
}
