package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"go.uber.org/zap"

	"github.com/heetch/topicproducer/config"
	"github.com/heetch/topicproducer/topic"
)

const prefix = "TOPICPRODUCER_TEST"

func writeFile(c *qt.C, content string) string {
	path := filepath.Join(c.TempDir(), "config.yaml")
	err := os.WriteFile(path, []byte(content), 0o644)
	c.Assert(err, qt.IsNil)
	return path
}

func TestLoadDefaults(t *testing.T) {
	c := qt.New(t)

	s, err := config.Load("", prefix)
	c.Assert(err, qt.IsNil)
	c.Assert(s, qt.DeepEquals, &config.Settings{
		ClientID:          "topicproducer",
		Brokers:           []string{"localhost:9092", "localhost:9093", "localhost:9094"},
		SchemaRegistryURL: "http://localhost:8081",
		TopicQueryTimeout: topic.DefaultTimeout,
		OnCreateFailure:   "ignore",
		Log:               config.Log{Level: "info"},
	})
}

func TestLoadFile(t *testing.T) {
	c := qt.New(t)

	path := writeFile(c, `
client_id: rides
brokers:
  - PLAINTEXT://kafka-1:9092
  - kafka-2:9092
schema_registry_url: https://registry.example.com
topic_query_timeout: 2s
on_create_failure: retry:3
log:
  level: debug
  development: true
`)
	s, err := config.Load(path, prefix)
	c.Assert(err, qt.IsNil)
	c.Assert(s, qt.DeepEquals, &config.Settings{
		ClientID:          "rides",
		Brokers:           []string{"kafka-1:9092", "kafka-2:9092"},
		SchemaRegistryURL: "https://registry.example.com",
		TopicQueryTimeout: 2 * time.Second,
		OnCreateFailure:   "retry:3",
		Log:               config.Log{Level: "debug", Development: true},
	})
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	c := qt.New(t)

	path := writeFile(c, `
brokers: [kafka-1:9092]
on_create_failure: fail
`)
	t.Setenv(prefix+"_BROKERS", "kafka-3:9092,kafka-4:9092")
	t.Setenv(prefix+"_TOPIC_QUERY_TIMEOUT", "750ms")
	t.Setenv(prefix+"_LOG_DEVELOPMENT", "true")

	s, err := config.Load(path, prefix)
	c.Assert(err, qt.IsNil)
	c.Assert(s.Brokers, qt.DeepEquals, []string{"kafka-3:9092", "kafka-4:9092"})
	c.Assert(s.TopicQueryTimeout, qt.Equals, 750*time.Millisecond)
	c.Assert(s.OnCreateFailure, qt.Equals, "fail")
	c.Assert(s.Log.Development, qt.IsTrue)
}

var loadErrorTests = []struct {
	testName    string
	content     string
	expectError string
}{{
	testName:    "unknown-policy",
	content:     "on_create_failure: sometimes\n",
	expectError: `config: unknown create failure policy "sometimes"`,
}, {
	testName:    "bad-retry-count",
	content:     "on_create_failure: retry:many\n",
	expectError: `config: invalid retry count in policy "retry:many"`,
}, {
	testName:    "no-brokers",
	content:     "brokers: []\n",
	expectError: `config: producer: at least one broker is required`,
}, {
	testName:    "relative-registry-url",
	content:     "schema_registry_url: registry:8081\n",
	expectError: `config: producer: .*`,
}, {
	testName:    "negative-timeout",
	content:     "topic_query_timeout: -1s\n",
	expectError: `config: producer: negative topic query timeout -1s`,
}, {
	testName:    "bad-log-level",
	content:     "log:\n  level: loud\n",
	expectError: `config: invalid log level "loud"`,
}}

func TestLoadErrors(t *testing.T) {
	c := qt.New(t)
	for _, test := range loadErrorTests {
		c.Run(test.testName, func(c *qt.C) {
			_, err := config.Load(writeFile(c, test.content), prefix)
			c.Assert(err, qt.ErrorMatches, test.expectError)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	c := qt.New(t)
	_, err := config.Load(filepath.Join(c.TempDir(), "nope.yaml"), prefix)
	c.Assert(err, qt.ErrorMatches, `config: cannot read ".*nope.yaml": .*`)
}

func TestProducerConfig(t *testing.T) {
	c := qt.New(t)

	s := &config.Settings{
		ClientID:          "rides",
		Brokers:           []string{"kafka-1:9092"},
		SchemaRegistryURL: "http://registry:8081",
		TopicQueryTimeout: 3 * time.Second,
		OnCreateFailure:   "retry:2",
		Log:               config.Log{Level: "warn"},
	}
	logger := zap.NewExample()
	pc, err := s.ProducerConfig(logger)
	c.Assert(err, qt.IsNil)
	c.Assert(pc.ClientID, qt.Equals, "rides")
	c.Assert(pc.Brokers, qt.DeepEquals, []string{"kafka-1:9092"})
	c.Assert(pc.SchemaRegistryURL, qt.Equals, "http://registry:8081")
	c.Assert(pc.TopicQueryTimeout, qt.Equals, 3*time.Second)
	c.Assert(pc.Admin.Timeout, qt.Equals, 3*time.Second)
	c.Assert(pc.OnCreateFailure, qt.Equals, topic.Retry(2))
	c.Assert(pc.Logger, qt.Equals, logger)
}

func TestSettingsLogger(t *testing.T) {
	c := qt.New(t)

	s := &config.Settings{Log: config.Log{Level: "error"}}
	l, err := s.Logger()
	c.Assert(err, qt.IsNil)
	c.Assert(l.Core().Enabled(zap.WarnLevel), qt.IsFalse)
	c.Assert(l.Core().Enabled(zap.ErrorLevel), qt.IsTrue)
}
