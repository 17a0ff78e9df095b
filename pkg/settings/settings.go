package settings

import (
	"bytes"
	_ "embed"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

//go:embed "defaults.yaml"
var defaultsYAML []byte

// StoreSettings configures the session store gateway.
type StoreSettings struct {
	BaseURL        string `yaml:"base_url" mapstructure:"base_url"`
	APIKey         string `yaml:"api_key" mapstructure:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// ChatSettings configures the completion gateway. Fallback overrides the
// built-in degraded reply when set.
type ChatSettings struct {
	Model    string `yaml:"model" mapstructure:"model"`
	APIKey   string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	Fallback string `yaml:"fallback" mapstructure:"fallback"`
}

type LogSettings struct {
	Level      string `yaml:"level" mapstructure:"level"`
	WithCaller bool   `yaml:"with_caller" mapstructure:"with_caller"`
}

type Settings struct {
	Store StoreSettings `yaml:"store" mapstructure:"store"`
	Chat  ChatSettings  `yaml:"chat" mapstructure:"chat"`
	Log   LogSettings   `yaml:"log" mapstructure:"log"`
}

const envPrefix = "CONVERSO"

// settingsKeys is the full key set; each one is bound to its CONVERSO_*
// environment variable so env overrides survive Unmarshal.
var settingsKeys = []string{
	"store.base_url",
	"store.api_key",
	"store.timeout_seconds",
	"chat.model",
	"chat.api_key",
	"chat.base_url",
	"chat.fallback",
	"log.level",
	"log.with_caller",
}

// Load builds the settings from the embedded defaults, an optional yaml
// config file merged on top, and CONVERSO_* environment variables on top of
// that (e.g. CONVERSO_CHAT_API_KEY).
func Load(configFile string) (*Settings, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewReader(defaultsYAML)); err != nil {
		return nil, errors.Wrap(err, "failed to read embedded default settings")
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.MergeInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to merge config file %s", configFile)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range settingsKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, errors.Wrapf(err, "failed to bind env for %s", key)
		}
	}

	ret := &Settings{}
	if err := v.Unmarshal(ret); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal settings")
	}

	return ret, nil
}

// Validate checks that every setting required to talk to the store and the
// completion service is present.
func (s *Settings) Validate() error {
	if s.Store.BaseURL == "" {
		return errors.New("store.base_url is required (or CONVERSO_STORE_BASE_URL)")
	}
	if s.Store.APIKey == "" {
		return errors.New("store.api_key is required (or CONVERSO_STORE_API_KEY)")
	}
	if s.Chat.Model == "" {
		return errors.New("chat.model is required (or CONVERSO_CHAT_MODEL)")
	}
	if s.Chat.APIKey == "" {
		return errors.New("chat.api_key is required (or CONVERSO_CHAT_API_KEY)")
	}
	return nil
}
