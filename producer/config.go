package producer

import (
	"net"
	"net/url"
	"time"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/heetch/topicproducer/topic"
)

// Config is used to configure the Producer.
type Config struct {
	sarama.Config

	// Brokers holds the Kafka broker addresses, in host:port form.
	// There must be at least one entry.
	Brokers []string

	// SchemaRegistryURL is the base URL of the schema registry the key
	// and value schemas are registered with.
	SchemaRegistryURL string

	// TopicQueryTimeout bounds the request listing the topics of the
	// cluster. Defaults to 5 seconds.
	TopicQueryTimeout time.Duration

	// OnCreateFailure decides what happens when the topic cannot be
	// created. Defaults to topic.Ignore, which logs the failure and
	// carries on as if the topic existed.
	OnCreateFailure topic.Policy

	// Registry remembers the topics already confirmed or created.
	// Defaults to topic.DefaultRegistry, shared by the whole process.
	Registry *topic.Registry

	// Logger defaults to a no-op logger.
	Logger *zap.Logger

	// Converter turns messages into Kafka messages. Defaults to an
	// AvroConverter using the schemas of the topic.
	Converter MessageConverter
}

// NewConfig creates a config with sane defaults.
func NewConfig(clientID string, brokers ...string) Config {
	config := sarama.NewConfig()
	config.Version = sarama.V1_0_0_0
	config.ClientID = clientID
	config.Producer.RequiredAcks = sarama.WaitForAll // Wait for all in-sync replicas to ack the message
	config.Producer.Retry.Max = 3                    // Retry up to 3 times to produce the message
	// required for the SyncProducer, see https://godoc.org/github.com/Shopify/sarama#SyncProducer
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true
	// Same partitions as the JVM clients for the same keys.
	config.Producer.Partitioner = NewJVMCompatiblePartitioner
	config.Admin.Timeout = topic.DefaultTimeout

	return Config{
		Config:            *config,
		Brokers:           brokers,
		TopicQueryTimeout: topic.DefaultTimeout,
	}
}

// Validate checks the endpoints and the embedded sarama configuration.
func (c *Config) Validate() error {
	if len(c.Brokers) == 0 {
		return errors.New("producer: at least one broker is required")
	}
	for _, b := range c.Brokers {
		if _, _, err := net.SplitHostPort(b); err != nil {
			return errors.Wrapf(err, "producer: invalid broker address %q", b)
		}
	}
	u, err := url.Parse(c.SchemaRegistryURL)
	if err != nil {
		return errors.Wrap(err, "producer: invalid schema registry URL")
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Errorf("producer: schema registry URL %q must be an absolute http(s) URL", c.SchemaRegistryURL)
	}
	if c.TopicQueryTimeout < 0 {
		return errors.Errorf("producer: negative topic query timeout %v", c.TopicQueryTimeout)
	}
	return errors.Wrap(c.Config.Validate(), "producer: invalid sarama configuration")
}

func (c *Config) ensurer(admins topic.AdminFactory) *topic.Ensurer {
	return &topic.Ensurer{
		NewAdmin: admins,
		Registry: c.Registry,
		Timeout:  c.TopicQueryTimeout,
		Policy:   c.OnCreateFailure,
		Logger:   c.Logger,
	}
}
