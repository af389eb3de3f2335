package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://serverest.dev", cfg.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.TimeoutDuration())
	assert.Equal(t, []string{"console"}, cfg.Reporters)
	assert.False(t, cfg.GetBail())
	assert.True(t, cfg.IsDefault())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".contractcheck.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"baseUrl": "http://localhost:3000",
		"retries": 2,
		"headers": {"X-Run": "ci"},
		"bail": true
	}`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", cfg.BaseURL)
	assert.Equal(t, 2, cfg.Retries)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, "ci", cfg.Headers["X-Run"])
	assert.True(t, cfg.GetBail())
	assert.False(t, cfg.IsDefault())
}

func TestLoadConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "contractcheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
baseUrl: http://127.0.0.1:3000
timeout: 2500
rateLimit: 5
fixtures: fixtures/usuarios.yaml
reporters: [console, junit]
`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:3000", cfg.BaseURL)
	assert.Equal(t, 2500*time.Millisecond, cfg.TimeoutDuration())
	assert.Equal(t, 5.0, cfg.RateLimit)
	assert.Equal(t, "fixtures/usuarios.yaml", cfg.Fixtures)
	assert.Equal(t, []string{"console", "junit"}, cfg.Reporters)
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()

	t.Run("malformed json", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"baseUrl": `), 0644))
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})

	negatives := []struct {
		name  string
		file  string
		data  string
		field string
	}{
		{"negative retries", "neg.json", `{"retries": -1}`, "retries"},
		{"negative timeout", "neg-timeout.json", `{"timeout": -500}`, "timeout"},
		{"negative rate limit", "neg-rate.yaml", "rateLimit: -0.5\n", "rateLimit"},
	}
	for _, tt := range negatives {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0644))
			_, err := LoadConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(dir, "nope.json"))
		assert.Error(t, err)
	})
}

func TestFindAndLoadConfig(t *testing.T) {
	t.Run("no config returns defaults", func(t *testing.T) {
		cfg, err := FindAndLoadConfig(t.TempDir())
		require.NoError(t, err)
		assert.True(t, cfg.IsDefault())
	})

	t.Run("json wins over yaml", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".contractcheck.json"), []byte(`{"retries": 1}`), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "contractcheck.yaml"), []byte("retries: 3\n"), 0644))

		cfg, err := FindAndLoadConfig(dir)
		require.NoError(t, err)
		assert.Equal(t, 1, cfg.Retries)
	})
}

func TestConfig_Merge(t *testing.T) {
	base := DefaultConfig()
	base.Headers = map[string]string{"A": "1", "B": "2"}

	merged := base.Merge(&Config{
		BaseURL:  "http://localhost:3000",
		Headers:  map[string]string{"B": "override"},
		Verbose:  BoolPtr(true),
		Insecure: BoolPtr(true),
	})

	assert.Equal(t, "http://localhost:3000", merged.BaseURL)
	assert.Equal(t, DefaultTimeout, merged.Timeout)
	assert.Equal(t, map[string]string{"A": "1", "B": "override"}, merged.Headers)
	assert.True(t, merged.GetVerbose())
	assert.False(t, merged.GetBail())
	assert.True(t, merged.GetInsecure())
	assert.False(t, base.GetInsecure())

	// receiver is unchanged
	assert.Equal(t, "2", base.Headers["B"])
	assert.Equal(t, DefaultBaseURL, base.BaseURL)

	assert.Same(t, base, base.Merge(nil))

	negative := base.Merge(&Config{Retries: -1, Timeout: -1, RateLimit: -2})
	assert.Equal(t, -1, negative.Retries)
	assert.Equal(t, -1, negative.Timeout)
	assert.Equal(t, -2.0, negative.RateLimit)
	assert.Error(t, negative.Validate())
}

func TestConfig_SaveConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig().Merge(&Config{Retries: 2})

	for _, name := range []string{"out.json", "out.yaml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, cfg.SaveConfig(path))

		loaded, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 2, loaded.Retries, name)
		assert.Equal(t, DefaultBaseURL, loaded.BaseURL, name)
	}
}
