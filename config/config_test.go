package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigPoolSizes(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := LoadConfig()
		assert.Equal(t, 25, cfg.DBMaxConns)
		assert.Equal(t, 5, cfg.DBMinConns)
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("DB_MAX_CONNS", "40")
		t.Setenv("DB_MIN_CONNS", "10")

		cfg := LoadConfig()
		assert.Equal(t, 40, cfg.DBMaxConns)
		assert.Equal(t, 10, cfg.DBMinConns)
	})

	t.Run("non-numeric value falls back", func(t *testing.T) {
		t.Setenv("DB_MAX_CONNS", "lots")

		cfg := LoadConfig()
		assert.Equal(t, 25, cfg.DBMaxConns)
	})
}
