package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"poolScope/internal/curve"
	"poolScope/internal/notify"
)

// EnvPrefix prefixes every environment variable read through viper.
const EnvPrefix = "POOLSCOPE"

const (
	defaultTimeout  = 30 * time.Second
	defaultLogLevel = "info"
)

// Config holds the settings shared by every subcommand.
type Config struct {
	Endpoint    string
	Chain       string
	Pool        string
	Timeout     time.Duration
	RPCURL      string
	MetricsFile string
	LogLevel    string
}

// NotifyConfig adds the Telegram settings used by the notify subcommand.
type NotifyConfig struct {
	Config

	TelegramAPI    string
	ParseMode      string
	ReportFailures bool
	Credentials    TelegramCredentials
}

// TelegramCredentials are read from the environment only.
type TelegramCredentials struct {
	BotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
	ChatID   string `envconfig:"CHAT_ID"`
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return Config{}, err
	}
	cfg := readConfig(v)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadNotify is Load plus the Telegram settings. Missing credentials are not an error here.
func LoadNotify(cfgFile string, flags *pflag.FlagSet) (NotifyConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return NotifyConfig{}, err
	}
	v.SetDefault("telegram-api", notify.DefaultTelegramAPI)
	v.SetDefault("parse-mode", notify.DefaultParseMode)
	v.SetDefault("report-failures", true)

	cfg := NotifyConfig{
		Config:         readConfig(v),
		TelegramAPI:    v.GetString("telegram-api"),
		ParseMode:      v.GetString("parse-mode"),
		ReportFailures: v.GetBool("report-failures"),
	}
	if err := cfg.Config.validate(); err != nil {
		return NotifyConfig{}, err
	}
	if !strings.HasPrefix(cfg.TelegramAPI, "http://") && !strings.HasPrefix(cfg.TelegramAPI, "https://") {
		return NotifyConfig{}, fmt.Errorf("telegram-api must be an http(s) url: %q", cfg.TelegramAPI)
	}

	creds, err := LoadTelegramCredentials()
	if err != nil {
		return NotifyConfig{}, err
	}
	cfg.Credentials = creds

	return cfg, nil
}

// LoadTelegramCredentials reads TELEGRAM_BOT_TOKEN and CHAT_ID.
func LoadTelegramCredentials() (TelegramCredentials, error) {
	var creds TelegramCredentials
	if err := envconfig.Process("", &creds); err != nil {
		return TelegramCredentials{}, fmt.Errorf("read telegram credentials: %w", err)
	}
	creds.BotToken = strings.TrimSpace(creds.BotToken)
	creds.ChatID = strings.TrimSpace(creds.ChatID)
	return creds, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("endpoint", curve.DefaultEndpoint)
	v.SetDefault("chain", curve.DefaultChain)
	v.SetDefault("pool", curve.DefaultPool)
	v.SetDefault("timeout", defaultTimeout)
	v.SetDefault("log-level", defaultLogLevel)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}

func readConfig(v *viper.Viper) Config {
	return Config{
		Endpoint:    strings.TrimSpace(v.GetString("endpoint")),
		Chain:       strings.TrimSpace(v.GetString("chain")),
		Pool:        v.GetString("pool"),
		Timeout:     v.GetDuration("timeout"),
		RPCURL:      strings.TrimSpace(v.GetString("rpc")),
		MetricsFile: v.GetString("metrics-file"),
		LogLevel:    v.GetString("log-level"),
	}
}

func (c Config) validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	if c.Chain == "" {
		return fmt.Errorf("chain is required")
	}
	if c.Pool == "" {
		return fmt.Errorf("pool is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}
