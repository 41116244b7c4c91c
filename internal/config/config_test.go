package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validKey = "2mXgSGzgmd4rdDXfgUm4nbJPa4fUrz9jJEuXfgpUT83B"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `{"owner_key": "`+validKey+`", "signer_key": "`+validKey+`"}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, DefaultLogFile, cfg.LogFile)
	assert.Equal(t, DefaultLogMaxSize, cfg.LogMaxSizeMB)

	owner, err := cfg.Owner()
	require.NoError(t, err)
	assert.Equal(t, validKey, owner.String())
}

func TestLoadConfigRejectsMissingKeys(t *testing.T) {
	path := writeConfig(t, `{"signer_key": "`+validKey+`"}`)
	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "owner_key")

	path = writeConfig(t, `{"owner_key": "`+validKey+`"}`)
	_, err = LoadConfig(path)
	assert.ErrorContains(t, err, "signer_key")
}

func TestLoadConfigRejectsBadKey(t *testing.T) {
	path := writeConfig(t, `{"owner_key": "not-base58!", "signer_key": "`+validKey+`"}`)
	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "invalid owner_key")
}

func TestLoadConfigRejectsBadWebhookURL(t *testing.T) {
	path := writeConfig(t, `{"owner_key": "`+validKey+`", "signer_key": "`+validKey+`", "webhook_url": "ftp://example.com"}`)
	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "webhook")
}
