package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "EUR", cfg.Currency)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 0, cfg.Retries)
	assert.Equal(t, time.Second, cfg.Backoff)
	assert.False(t, cfg.Abort)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.True(t, cfg.Multipliers["CSP1.L"].Equal(decimal.NewFromInt(100)))
}

func TestLoad_Env(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("IM_CURRENCY", "usd")
	t.Setenv("IM_WORKERS", "8")
	t.Setenv("IM_RETRIES", "2")
	t.Setenv("IM_RETRY_BACKOFF", "250ms")
	t.Setenv("IM_ON_PROVIDER_ERROR", "abort")
	t.Setenv("IM_MULTIPLIERS", "abc=10, XYZ.PA=2.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "USD", cfg.Currency)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 2, cfg.Retries)
	assert.Equal(t, 250*time.Millisecond, cfg.Backoff)
	assert.True(t, cfg.Abort)
	assert.Len(t, cfg.Multipliers, 2)
	assert.True(t, cfg.Multipliers["ABC"].Equal(decimal.NewFromInt(10)))
	assert.True(t, cfg.Multipliers["XYZ.PA"].Equal(decimal.RequireFromString("2.5")))
}

func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		key, value string
	}{
		{"IM_ON_PROVIDER_ERROR", "panic"},
		{"IM_MULTIPLIERS", "CSP1.L"},
		{"IM_MULTIPLIERS", "CSP1.L=-1"},
		{"IM_WORKERS", "0"},
		{"IM_RETRIES", "-1"},
	}
	for _, tc := range testCases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
