package producer_test

import (
	"context"
	"crypto/rand"
	"fmt"
	"testing"

	"github.com/Shopify/sarama"
	qt "github.com/frankban/quicktest"
	"github.com/heetch/kafkatest"
	"github.com/pkg/errors"

	"github.com/heetch/topicproducer/producer"
	"github.com/heetch/topicproducer/schema"
	"github.com/heetch/topicproducer/topic"
)

func TestProducerWithKafka(t *testing.T) {
	c := qt.New(t)

	k, err := kafkatest.New()
	if errors.Is(err, kafkatest.ErrDisabled) {
		c.Skipf("skipping integration tests")
	}
	if err != nil {
		c.Skipf("skipping integration tests: %v", err)
	}
	c.Cleanup(func() { c.Check(k.Close(), qt.IsNil) })

	cfg := producer.NewConfig(randomName("clientid-"), k.Addrs()...)
	k.InitConfig(&cfg.Config)
	cfg.Registry = topic.NewRegistry()

	admin, err := sarama.NewClusterAdmin(k.Addrs(), k.Config())
	c.Assert(err, qt.IsNil)
	c.Cleanup(func() { c.Check(admin.Close(), qt.IsNil) })
	name := randomName("purchases-")
	c.Cleanup(func() { c.Check(admin.DeleteTopic(name), qt.IsNil) })

	sp, err := sarama.NewSyncProducer(k.Addrs(), &cfg.Config)
	c.Assert(err, qt.IsNil)

	p, err := producer.NewFrom(context.Background(), cfg, producer.Topic{
		Name:          name,
		KeySchema:     schema.MustParse(`"long"`),
		ValueSchema:   purchaseSchema,
		NumPartitions: 2,
	}, topic.NewAdminFactory(&cfg.Config, k.Addrs()...), sp, &fakeRegistry{})
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Registry.Contains(name), qt.IsTrue)

	msg, err := p.Publish(context.Background(), p.TimeMillis(), map[string]interface{}{
		"username": "bob",
		"amount":   3,
	})
	c.Assert(err, qt.IsNil)
	c.Assert(msg.Offset, qt.Equals, int64(0))
	c.Assert(p.Close(), qt.IsNil)
	c.Assert(p.Close(), qt.IsNil)

	topics, err := admin.ListTopics()
	c.Assert(err, qt.IsNil)
	c.Assert(topics[name].NumPartitions, qt.Equals, int32(2))
}

func randomName(prefix string) string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return fmt.Sprintf("%s%x", prefix, buf)
}
