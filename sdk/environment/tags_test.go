package environment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inner struct {
	Timeout time.Duration `env:"TIMEOUT" default:"5s"`
	Enabled bool          `env:"ENABLED" default:"true"`
}

type sample struct {
	Name    string   `env:"NAME" default:"svc"`
	Port    int      `env:"PORT" default:"8080"`
	Origins []string `env:"ORIGINS" default:"a|b" separator:"|"`
	Ratio   float64  `env:"RATIO"`
	Inner   inner
}

func TestApplyDefaults(t *testing.T) {
	var cfg sample
	require.NoError(t, ApplyDefaults(&cfg))

	assert.Equal(t, "svc", cfg.Name)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, []string{"a", "b"}, cfg.Origins)
	assert.Equal(t, 5*time.Second, cfg.Inner.Timeout)
	assert.True(t, cfg.Inner.Enabled)
}

func TestApplyDefaultsKeepsSetValues(t *testing.T) {
	cfg := sample{Name: "custom"}
	require.NoError(t, ApplyDefaults(&cfg))
	assert.Equal(t, "custom", cfg.Name)
}

func TestOverrideFromEnv(t *testing.T) {
	t.Setenv("TEST_PORT", "9090")
	t.Setenv("TEST_TIMEOUT", "250ms")
	t.Setenv("TEST_RATIO", "0.5")

	cfg := sample{Name: "from-file", Port: 1}
	require.NoError(t, OverrideFromEnv("TEST", &cfg))

	assert.Equal(t, "from-file", cfg.Name, "unset vars must not clobber")
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Inner.Timeout)
	assert.InDelta(t, 0.5, cfg.Ratio, 1e-9)
}

func TestOverrideFromEnvInvalidValue(t *testing.T) {
	t.Setenv("TEST_PORT", "not-a-number")
	var cfg sample
	err := OverrideFromEnv("TEST", &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TEST_PORT")
}

func TestOverrideFromEnvRequired(t *testing.T) {
	type needs struct {
		URL string `env:"URL" required:"true"`
	}
	var cfg needs
	err := OverrideFromEnv("REQ_MISSING", &cfg)
	require.Error(t, err)

	t.Setenv("REQ_MISSING_URL", "postgres://x")
	require.NoError(t, OverrideFromEnv("REQ_MISSING", &cfg))
	assert.Equal(t, "postgres://x", cfg.URL)
}

func TestNonPointerRejected(t *testing.T) {
	assert.Error(t, ApplyDefaults(sample{}))
}

func TestGetEnvKeyPrefix(t *testing.T) {
	assert.Equal(t, "KEY", GetEnvKeyPrefix("", "KEY"))
	assert.Equal(t, "APP_KEY", GetEnvKeyPrefix("APP", "KEY"))
}
