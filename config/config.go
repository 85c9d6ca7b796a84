// Package config loads producer settings from a YAML file and the
// environment.
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/heetch/topicproducer/common"
	"github.com/heetch/topicproducer/producer"
	"github.com/heetch/topicproducer/topic"
)

// Settings are the externally supplied producer settings.
type Settings struct {
	ClientID          string        `mapstructure:"client_id"`
	Brokers           []string      `mapstructure:"brokers"`
	SchemaRegistryURL string        `mapstructure:"schema_registry_url"`
	TopicQueryTimeout time.Duration `mapstructure:"topic_query_timeout"`
	// OnCreateFailure is "ignore", "fail" or "retry:<n>".
	OnCreateFailure string `mapstructure:"on_create_failure"`
	Log             Log    `mapstructure:"log"`
}

// Log holds the logger settings.
type Log struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

var defaults = map[string]interface{}{
	"client_id":           "topicproducer",
	"brokers":             []string{"localhost:9092", "localhost:9093", "localhost:9094"},
	"schema_registry_url": "http://localhost:8081",
	"topic_query_timeout": topic.DefaultTimeout,
	"on_create_failure":   "ignore",
	"log.level":           "info",
	"log.development":     false,
}

// Load reads the settings: defaults first, then the YAML file at path
// if path is not empty, then environment variables named after the
// keys with the given prefix, such as PREFIX_SCHEMA_REGISTRY_URL or
// PREFIX_LOG_LEVEL. The result is validated.
func Load(path, envPrefix string) (*Settings, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "config: cannot read %q", path)
		}
	}

	var s Settings
	if err := decode(v.AllSettings(), &s); err != nil {
		return nil, errors.Wrap(err, "config: cannot decode settings")
	}
	s.normalize()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// normalize strips the listener names some tools put in front of
// broker addresses, as in PLAINTEXT://localhost:9092.
func (s *Settings) normalize() {
	for i, b := range s.Brokers {
		b = strings.TrimSpace(b)
		if j := strings.Index(b, "://"); j >= 0 {
			b = b[j+len("://"):]
		}
		s.Brokers[i] = b
	}
}

// Validate checks the settings.
func (s *Settings) Validate() error {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(s.Log.Level)); err != nil {
		return errors.Errorf("config: invalid log level %q", s.Log.Level)
	}
	_, err := s.ProducerConfig(common.NopLogger)
	return err
}

// ProducerConfig returns the producer configuration matching the
// settings, logging to logger.
func (s *Settings) ProducerConfig(logger *zap.Logger) (producer.Config, error) {
	c := producer.NewConfig(s.ClientID, s.Brokers...)
	c.SchemaRegistryURL = s.SchemaRegistryURL
	c.TopicQueryTimeout = s.TopicQueryTimeout
	if s.TopicQueryTimeout > 0 {
		c.Admin.Timeout = s.TopicQueryTimeout
	}
	c.Logger = logger

	policy, err := topic.ParsePolicy(s.OnCreateFailure)
	if err != nil {
		return producer.Config{}, errors.Wrap(err, "config")
	}
	c.OnCreateFailure = policy

	if err := c.Validate(); err != nil {
		return producer.Config{}, errors.Wrap(err, "config")
	}
	return c, nil
}

// Logger builds the logger described by the settings.
func (s *Settings) Logger() (*zap.Logger, error) {
	return common.NewLogger(s.Log.Level, s.Log.Development)
}
