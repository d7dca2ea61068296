package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, "invoiceflow-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "СЧ", cfg.Invoice.Prefix)
	assert.Equal(t, int64(1), cfg.Invoice.StartNumber)
	assert.Equal(t, 3, cfg.Invoice.PaymentDays)
	assert.Equal(t, 5*time.Second, cfg.Registry.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Render.Timeout)

	// CORS origins stay empty until configured; methods and headers
	// get working defaults.
	assert.Empty(t, cfg.HTTP.CORSAllowOrigins)
	assert.Equal(t, []string{"GET", "POST", "OPTIONS"}, cfg.HTTP.CORSAllowMethods)
	assert.Contains(t, cfg.HTTP.CORSAllowHeaders, "X-Request-ID")
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	require.NoError(t, cfg.validate())

	t.Run("idle conns exceed open conns", func(t *testing.T) {
		bad := *cfg
		bad.Database.MaxIdleConns = bad.Database.MaxOpenConns + 1
		assert.Error(t, bad.validate())
	})

	t.Run("start number below one", func(t *testing.T) {
		bad := *cfg
		bad.Invoice.StartNumber = -5
		assert.Error(t, bad.validate())
	})

	t.Run("production requires password and ssl", func(t *testing.T) {
		bad := *cfg
		bad.App.Env = "production"
		assert.Error(t, bad.validate())

		bad.Database.Password = "secret"
		bad.Database.SSLMode = "require"
		bad.Company.Name = "ООО Пример"
		bad.Company.TaxID = "7700000000"
		assert.NoError(t, bad.validate())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "app",
		Password: "p@ss/word",
		DBName:   "invoices",
		SSLMode:  "require",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.internal:5433")
	assert.Contains(t, dsn, "sslmode=require")
	// Special characters in the password must be escaped.
	assert.NotContains(t, dsn, "p@ss/word")
}
