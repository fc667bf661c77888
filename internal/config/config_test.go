package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kvsvcd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o640))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
listen_addr: ":8080"
db_path: /var/lib/kvsvcd/store.sqlite
log_dir: /var/log/kvsvcd
bearer_token: topsecret
default_list_limit: 50
max_list_limit: 500
max_body_bytes: 65536
cors_origins: ["https://example.com"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 50, cfg.DefaultListLimit)
	assert.Equal(t, 500, cfg.MaxListLimit)
	assert.Equal(t, []string{"https://example.com"}, cfg.CORSOrigins)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
listen_addr: ":8080"
db_path: /var/lib/kvsvcd/store.sqlite
bearer_token: topsecret
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.DefaultListLimit)
	assert.Equal(t, 1000, cfg.MaxListLimit)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
}

func TestLoad_RejectsUnknownField(t *testing.T) {
	path := writeConfig(t, `
listen_addr: ":8080"
db_path: /var/lib/kvsvcd/store.sqlite
bearer_token: topsecret
typo_field: oops
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate_RejectsLimitOrderingViolation(t *testing.T) {
	cfg := defaults()
	cfg.ListenAddr = ":8080"
	cfg.DBPath = "/var/lib/kvsvcd/store.sqlite"
	cfg.BearerToken = "topsecret"
	cfg.DefaultListLimit = 2000
	cfg.MaxListLimit = 1000

	err := Validate(&cfg)
	assert.Error(t, err)
}

func TestValidate_RejectsMaxListLimitAboveCeiling(t *testing.T) {
	cfg := defaults()
	cfg.ListenAddr = ":8080"
	cfg.DBPath = "/var/lib/kvsvcd/store.sqlite"
	cfg.BearerToken = "topsecret"
	cfg.DefaultListLimit = 100
	cfg.MaxListLimit = 5000

	err := Validate(&cfg)
	assert.Error(t, err)
}

func TestValidate_RejectsEmptyBearerToken(t *testing.T) {
	cfg := defaults()
	cfg.ListenAddr = ":8080"
	cfg.DBPath = "/var/lib/kvsvcd/store.sqlite"

	err := Validate(&cfg)
	assert.Error(t, err)
}

func TestValidate_RejectsMalformedListenAddr(t *testing.T) {
	cfg := defaults()
	cfg.ListenAddr = "not-an-address"
	cfg.DBPath = "/var/lib/kvsvcd/store.sqlite"
	cfg.BearerToken = "topsecret"

	err := Validate(&cfg)
	assert.Error(t, err)
}

func TestLoad_EnvOverridesBearerToken(t *testing.T) {
	path := writeConfig(t, `
listen_addr: ":8080"
db_path: /var/lib/kvsvcd/store.sqlite
bearer_token: fromfile
`)
	t.Setenv("KVSVC_BEARER_TOKEN", "fromenv")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "fromenv", cfg.BearerToken)
}
