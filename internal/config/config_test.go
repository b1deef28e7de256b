package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reportFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := newFlags(false)
	require.NoError(t, fs.Parse(args))
	return fs
}

func notifyFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := newFlags(true)
	require.NoError(t, fs.Parse(args))
	return fs
}

func newFlags(withNotify bool) *pflag.FlagSet {
	fs := pflag.NewFlagSet("poolscope", pflag.ContinueOnError)
	fs.String("endpoint", "", "")
	fs.String("chain", "", "")
	fs.String("pool", "", "")
	fs.Duration("timeout", 0, "")
	fs.String("rpc", "", "")
	fs.String("metrics-file", "", "")
	fs.String("log-level", "info", "")
	if withNotify {
		fs.String("telegram-api", "", "")
		fs.String("parse-mode", "", "")
		fs.Bool("report-failures", true, "")
	}
	return fs
}

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "poolscope.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "https://api.curve.fi/v1/getPools/big", cfg.Endpoint)
	assert.Equal(t, "ethereum", cfg.Chain)
	assert.Equal(t, "sDAI/sUSDe", cfg.Pool)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.RPCURL)
	assert.Empty(t, cfg.MetricsFile)
}

func TestLoadPrecedence(t *testing.T) {
	path := writeConfigFile(t, "pool: file-pool\nchain: arbitrum\ntimeout: 5s\nendpoint: https://file.example/pools\n")
	t.Setenv("POOLSCOPE_POOL", "env-pool")
	t.Setenv("POOLSCOPE_CHAIN", "polygon")
	t.Setenv("POOLSCOPE_METRICS_FILE", "/var/lib/node_exporter/poolscope.prom")

	cfg, err := Load(path, reportFlags(t, "--pool", "flag-pool"))
	require.NoError(t, err)

	assert.Equal(t, "flag-pool", cfg.Pool)
	assert.Equal(t, "polygon", cfg.Chain)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "https://file.example/pools", cfg.Endpoint)
	assert.Equal(t, "/var/lib/node_exporter/poolscope.prom", cfg.MetricsFile)
}

func TestLoadUnchangedFlagDoesNotOverrideFile(t *testing.T) {
	path := writeConfigFile(t, "log-level: debug\n")

	cfg, err := Load(path, reportFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"empty pool", []string{"--pool", ""}},
		{"empty chain", []string{"--chain", " "}},
		{"negative timeout", []string{"--timeout", "-1s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load("", reportFlags(t, tt.args...))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadNotify(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", " 123:abc ")
	t.Setenv("CHAT_ID", "-1001")
	t.Setenv("POOLSCOPE_REPORT_FAILURES", "false")

	cfg, err := LoadNotify("", notifyFlags(t, "--pool", "crvUSD/USDC"))
	require.NoError(t, err)

	assert.Equal(t, "crvUSD/USDC", cfg.Pool)
	assert.Equal(t, "https://api.telegram.org", cfg.TelegramAPI)
	assert.Equal(t, "Markdown", cfg.ParseMode)
	assert.False(t, cfg.ReportFailures)
	assert.Equal(t, TelegramCredentials{BotToken: "123:abc", ChatID: "-1001"}, cfg.Credentials)
}

func TestLoadNotifyMissingCredentialsIsNotAnError(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("CHAT_ID", "")

	cfg, err := LoadNotify("", nil)
	require.NoError(t, err)
	assert.True(t, cfg.ReportFailures)
	assert.Empty(t, cfg.Credentials.BotToken)
	assert.Empty(t, cfg.Credentials.ChatID)
}

func TestLoadNotifyRejectsBadAPI(t *testing.T) {
	_, err := LoadNotify("", notifyFlags(t, "--telegram-api", "api.telegram.org"))
	assert.Error(t, err)
}
