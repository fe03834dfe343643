package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  address: ":9000"
auth:
  secret: "`+testSecret+`"
analysis:
  endpoint: "http://diet.internal/api/diet"
  timeout: 5s
selection:
  valkey:
    enabled: true
    addr: "localhost:6379"
`), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("ANALYSIS_TIMEOUT", "12s")
	t.Setenv("AUTH_DIRECT_SIGNIN", "true")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.HTTP.Address)
	require.Equal(t, "http://diet.internal/api/diet", cfg.Analysis.Endpoint)
	require.Equal(t, 12*time.Second, cfg.Analysis.Timeout)
	require.True(t, cfg.Auth.DirectSignIn)
	require.True(t, cfg.Selection.Valkey.Enabled)
	require.Equal(t, "foodeat:selection", cfg.Selection.Valkey.Prefix)
	require.Equal(t, "/api/auth/signin", cfg.Auth.SignInPath)
	require.Equal(t, "사진 분석 중 오류가 발생했습니다.", cfg.Analysis.FallbackError)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{name: "short secret", mutate: func(c *Config) { c.Auth.Secret = "short" }, errMsg: "auth.secret"},
		{name: "empty endpoint", mutate: func(c *Config) { c.Analysis.Endpoint = " " }, errMsg: "analysis.endpoint"},
		{name: "bad location", mutate: func(c *Config) { c.Analysis.DateLocation = "Nowhere/Land" }, errMsg: "analysis.dateLocation"},
		{name: "valkey without addr", mutate: func(c *Config) { c.Selection.Valkey.Enabled = true }, errMsg: "selection.valkey.addr"},
		{name: "s3 without bucket", mutate: func(c *Config) {
			c.Storage.S3.Enabled = true
			c.Storage.S3.Endpoint = "localhost:9000"
		}, errMsg: "storage.s3"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Auth.Secret = testSecret
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.errMsg)
		})
	}

	cfg := defaultConfig()
	cfg.Auth.Secret = testSecret
	require.NoError(t, cfg.Validate())
}

func TestAnalysisLocation(t *testing.T) {
	loc, err := AnalysisConfig{}.Location()
	require.NoError(t, err)
	require.Equal(t, time.UTC, loc)
}
