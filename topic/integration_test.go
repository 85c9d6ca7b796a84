package topic_test

import (
	"context"
	"crypto/rand"
	"fmt"
	"testing"

	"github.com/Shopify/sarama"
	qt "github.com/frankban/quicktest"
	"github.com/heetch/kafkatest"
	"github.com/pkg/errors"

	"github.com/heetch/topicproducer/topic"
)

func newTestKafka(c *qt.C) *kafkatest.Kafka {
	k, err := kafkatest.New()
	if errors.Is(err, kafkatest.ErrDisabled) {
		c.Skipf("skipping integration tests")
	}
	if err != nil {
		c.Skipf("skipping integration tests: %v", err)
	}
	c.Cleanup(func() {
		c.Check(k.Close(), qt.IsNil)
	})
	return k
}

func TestEnsureWithKafka(t *testing.T) {
	c := qt.New(t)
	k := newTestKafka(c)

	cfg := k.Config()
	admin, err := sarama.NewClusterAdmin(k.Addrs(), cfg)
	c.Assert(err, qt.IsNil)
	c.Cleanup(func() { c.Check(admin.Close(), qt.IsNil) })

	name := randomName("topicproducer-")
	c.Cleanup(func() {
		c.Check(admin.DeleteTopic(name), qt.IsNil)
	})

	e := &topic.Ensurer{
		NewAdmin: topic.NewAdminFactory(cfg, k.Addrs()...),
		Registry: topic.NewRegistry(),
	}
	o, err := e.Ensure(context.Background(), topic.Spec{Name: name, NumPartitions: 3})
	c.Assert(err, qt.IsNil)
	c.Assert(o, qt.Equals, topic.OutcomeCreated)

	topics, err := admin.ListTopics()
	c.Assert(err, qt.IsNil)
	c.Assert(topics[name].NumPartitions, qt.Equals, int32(3))

	// A fresh registry asks the cluster again and finds the topic.
	e.Registry = topic.NewRegistry()
	o, err = e.Ensure(context.Background(), topic.Spec{Name: name})
	c.Assert(err, qt.IsNil)
	c.Assert(o, qt.Equals, topic.OutcomeExists)
}

func TestEnsureExistingWithKafka(t *testing.T) {
	c := qt.New(t)
	k := newTestKafka(c)
	name := k.NewTopic()

	e := &topic.Ensurer{
		NewAdmin: topic.NewAdminFactory(k.Config(), k.Addrs()...),
		Registry: topic.NewRegistry(),
	}
	o, err := e.Ensure(context.Background(), topic.Spec{Name: name})
	c.Assert(err, qt.IsNil)
	c.Assert(o, qt.Equals, topic.OutcomeExists)
}

func randomName(prefix string) string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return fmt.Sprintf("%s%x", prefix, buf)
}
