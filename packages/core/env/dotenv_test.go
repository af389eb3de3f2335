package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// unsetForTest clears keys for the duration of the test and restores
// whatever the process had afterwards.
func unsetForTest(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestParseDotEnv(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    map[string]string
	}{
		{
			name:    "settings",
			content: "CONTRACTCHECK_BASE_URL=http://localhost:3000\nCONTRACTCHECK_RETRIES=2",
			want: map[string]string{
				"CONTRACTCHECK_BASE_URL": "http://localhost:3000",
				"CONTRACTCHECK_RETRIES":  "2",
			},
		},
		{
			name:    "cypress base url with query",
			content: "CYPRESS_BASE_URL=https://serverest.dev/?a=b",
			want:    map[string]string{"CYPRESS_BASE_URL": "https://serverest.dev/?a=b"},
		},
		{
			name:    "export prefix",
			content: "export CONTRACTCHECK_TAGS=delete,negative",
			want:    map[string]string{"CONTRACTCHECK_TAGS": "delete,negative"},
		},
		{
			name:    "quoted values",
			content: "USUARIO_SENHA=\"senha com espacos\"\nUSUARIO_NOME='Fulano da Silva'",
			want: map[string]string{
				"USUARIO_SENHA": "senha com espacos",
				"USUARIO_NOME":  "Fulano da Silva",
			},
		},
		{
			name:    "comments blank lines and padding",
			content: "# fixture passwords\n\n  USUARIO_SENHA  =  teste  \n",
			want:    map[string]string{"USUARIO_SENHA": "teste"},
		},
		{
			name:    "hash after value is kept",
			content: "USUARIO_SENHA=teste#1",
			want:    map[string]string{"USUARIO_SENHA": "teste#1"},
		},
		{
			name:    "later line wins",
			content: "CONTRACTCHECK_RETRIES=1\nCONTRACTCHECK_RETRIES=3",
			want:    map[string]string{"CONTRACTCHECK_RETRIES": "3"},
		},
		{
			name:    "empty",
			content: "",
			want:    map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeEnvFile(t, t.TempDir(), tt.content)
			got, err := ParseDotEnv(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDotEnv_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
		line    string
	}{
		{"missing equals", "CONTRACTCHECK_BASE_URL=http://localhost:3000\nCONTRACTCHECK_BAIL", ":2:"},
		{"empty key", "=value", ":1:"},
		{"space in key", "# x\nBASE URL=http://localhost", ":2:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeEnvFile(t, t.TempDir(), tt.content)
			_, err := ParseDotEnv(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.line)
		})
	}

	_, err := ParseDotEnv(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestIsSetting(t *testing.T) {
	assert.True(t, IsSetting("CONTRACTCHECK_BASE_URL"))
	assert.True(t, IsSetting("CYPRESS_BASE_URL"))
	assert.False(t, IsSetting("CYPRESS_VIDEO"))
	assert.False(t, IsSetting("USUARIO_SENHA"))
}

func TestExporter_EnvironmentWins(t *testing.T) {
	t.Setenv("CONTRACTCHECK_BASE_URL", "http://from-os:3000")
	unsetForTest(t, "CYPRESS_BASE_URL", "USUARIO_SENHA")

	path := writeEnvFile(t, t.TempDir(),
		"CONTRACTCHECK_BASE_URL=http://from-file:3000\nCYPRESS_BASE_URL=http://cypress:3000\nUSUARIO_SENHA=teste\n")

	loaded, err := NewExporter().Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"CYPRESS_BASE_URL", "USUARIO_SENHA"}, loaded.Exported)
	assert.Equal(t, []string{"CONTRACTCHECK_BASE_URL"}, loaded.Shadowed)
	assert.Empty(t, loaded.Removed)
	assert.Equal(t, "http://from-os:3000", os.Getenv("CONTRACTCHECK_BASE_URL"))
	assert.Equal(t, "http://cypress:3000", os.Getenv("CYPRESS_BASE_URL"))

	exported, shadowed := loaded.Settings()
	assert.Equal(t, []string{"CYPRESS_BASE_URL"}, exported)
	assert.Equal(t, []string{"CONTRACTCHECK_BASE_URL"}, shadowed)
}

func TestExporter_ReloadAppliesEdits(t *testing.T) {
	unsetForTest(t, "CONTRACTCHECK_RETRIES", "CONTRACTCHECK_TAGS")
	dir := t.TempDir()
	e := NewExporter()

	path := writeEnvFile(t, dir, "CONTRACTCHECK_RETRIES=1\nCONTRACTCHECK_TAGS=delete\n")
	_, err := e.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "1", os.Getenv("CONTRACTCHECK_RETRIES"))

	writeEnvFile(t, dir, "CONTRACTCHECK_RETRIES=2\n")
	loaded, err := e.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"CONTRACTCHECK_RETRIES"}, loaded.Exported)
	assert.Equal(t, []string{"CONTRACTCHECK_TAGS"}, loaded.Removed)
	assert.Equal(t, "2", os.Getenv("CONTRACTCHECK_RETRIES"))
	_, set := os.LookupEnv("CONTRACTCHECK_TAGS")
	assert.False(t, set)

	// a value changed outside the exporter is no longer overwritten
	require.NoError(t, os.Setenv("CONTRACTCHECK_RETRIES", "9"))
	writeEnvFile(t, dir, "CONTRACTCHECK_RETRIES=3\n")
	loaded, err = e.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"CONTRACTCHECK_RETRIES"}, loaded.Shadowed)
	assert.Equal(t, "9", os.Getenv("CONTRACTCHECK_RETRIES"))
}

func TestExporter_ParseErrorExportsNothing(t *testing.T) {
	unsetForTest(t, "CONTRACTCHECK_RETRIES")
	path := writeEnvFile(t, t.TempDir(), "CONTRACTCHECK_RETRIES=1\nbroken\n")

	_, err := NewExporter().Load(path)
	require.Error(t, err)
	_, set := os.LookupEnv("CONTRACTCHECK_RETRIES")
	assert.False(t, set)
}
