package assistcli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_mergeWithDefaults(t *testing.T) {
	cfg, err := mergeWithDefaults(localConfig{})
	require.NoError(t, err)
	require.NotNil(t, cfg.Trace)
	assert.False(t, *cfg.Trace)
	require.NotNil(t, cfg.JSON)
	assert.False(t, *cfg.JSON)

	// Loaded values survive the merge.
	tr := true
	cfg, err = mergeWithDefaults(localConfig{Trace: &tr, DB: "/tmp/x.db"})
	require.NoError(t, err)
	assert.True(t, *cfg.Trace)
	assert.Equal(t, "/tmp/x.db", cfg.DB)
	require.NotNil(t, cfg.JSON)
	assert.False(t, *cfg.JSON)
}

func Test_loadLocalConfig_noFile(t *testing.T) {
	dir := t.TempDir()
	orig, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })

	cfg, path, err := loadLocalConfig()
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Empty(t, cfg.DB)
	require.NotNil(t, cfg.Trace)
	assert.False(t, *cfg.Trace)
}

func Test_loadLocalConfig_validYAMLInCwd(t *testing.T) {
	dir := t.TempDir()
	assistDir := filepath.Join(dir, ".assist")
	require.NoError(t, os.MkdirAll(assistDir, 0750))
	configPath := filepath.Join(assistDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
db: /var/lib/assist/history.db
valkey_addr: localhost:6379
nats_url: nats://localhost:4222
trace: true
`), 0644))

	orig, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })

	cfg, path, err := loadLocalConfig()
	require.NoError(t, err)
	assert.Equal(t, configPath, path)
	assert.Equal(t, "/var/lib/assist/history.db", cfg.DB)
	assert.Equal(t, "localhost:6379", cfg.ValkeyAddr)
	assert.Equal(t, "nats://localhost:4222", cfg.NATSURL)
	require.NotNil(t, cfg.Trace)
	assert.True(t, *cfg.Trace)
}

func Test_loadLocalConfig_invalidYAML(t *testing.T) {
	dir := t.TempDir()
	assistDir := filepath.Join(dir, ".assist")
	require.NoError(t, os.MkdirAll(assistDir, 0750))
	configPath := filepath.Join(assistDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("not: valid: yaml: here"), 0644))

	orig, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })

	_, _, err := loadLocalConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config.yaml")
}

func Test_firstNonFlagIsReserved(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want bool
	}{
		{"bare message", []string{"hello", "there"}, false},
		{"session subcommand", []string{"session", "list"}, true},
		{"flag then message", []string{"--db", "/tmp/x.db", "hello"}, false},
		{"flag then subcommand", []string{"--db", "/tmp/x.db", "upload", "a.png"}, true},
		{"flag with equals then subcommand", []string{"--db=/tmp/x.db", "voice", "a.wav"}, true},
		{"double dash then message", []string{"--", "session"}, true},
		{"no args", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, firstNonFlagIsReserved(tt.args))
		})
	}
}
