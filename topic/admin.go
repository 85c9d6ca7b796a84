package topic

import (
	"context"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"
)

// ErrBrokerUnreachable is returned, wrapped, when the cluster could not
// be asked about its topics.
var ErrBrokerUnreachable = errors.New("broker unreachable")

// Admin is the part of sarama.ClusterAdmin used to manage topics.
type Admin interface {
	ListTopics() (map[string]sarama.TopicDetail, error)
	CreateTopic(topic string, detail *sarama.TopicDetail, validateOnly bool) error
	Close() error
}

// AdminFactory opens a connection to the cluster administrative API.
type AdminFactory func() (Admin, error)

// NewAdminFactory returns an AdminFactory connecting to the given
// brokers with a sarama ClusterAdmin.
func NewAdminFactory(cfg *sarama.Config, addrs ...string) AdminFactory {
	return func() (Admin, error) {
		admin, err := sarama.NewClusterAdmin(addrs, cfg)
		if err != nil {
			return nil, errors.Wrapf(ErrBrokerUnreachable, "cannot connect to cluster at %q: %v", addrs, err)
		}
		return admin, nil
	}
}

// TopicExists reports whether the topic appears in the topic list of the
// cluster. It gives up when ctx is done; the listing request itself is
// left to finish in the background.
func TopicExists(ctx context.Context, admin Admin, topic string) (bool, error) {
	type result struct {
		topics map[string]sarama.TopicDetail
		err    error
	}
	ch := make(chan result, 1)
	go func() {
		topics, err := admin.ListTopics()
		ch <- result{topics, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return false, errors.Wrapf(ErrBrokerUnreachable, "cannot list topics: %v", r.err)
		}
		_, ok := r.topics[topic]
		return ok, nil
	case <-ctx.Done():
		return false, errors.Wrapf(ErrBrokerUnreachable, "cannot list topics: %v", ctx.Err())
	}
}

// alreadyExists reports whether err is the broker refusing to create a
// topic that is already there.
func alreadyExists(err error) bool {
	if errors.Is(err, sarama.ErrTopicAlreadyExists) {
		return true
	}
	var terr *sarama.TopicError
	return errors.As(err, &terr) && terr.Err == sarama.ErrTopicAlreadyExists
}
