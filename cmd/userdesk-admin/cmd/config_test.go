package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfigFile(t, `
current-context: staging
contexts:
  staging:
    api-url: https://staging.example.com
    token: tok
`)

	cfg, err := loadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.CurrentContext)
	assert.Equal(t, "https://staging.example.com", cfg.Contexts["staging"].APIURL)
}

func TestLoadConfigFileRejectsCorruptYAML(t *testing.T) {
	path := writeConfigFile(t, "contexts: [not: a: map")

	_, err := loadConfigFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoadConfigFileMissing(t *testing.T) {
	_, err := loadConfigFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.True(t, os.IsNotExist(err))
}
