// Package topictest provides an in-memory implementation of the cluster
// administrative interface, intended for tests of code that ensures
// topics without a Kafka backend.
package topictest

import (
	"sort"
	"sync"
	"time"

	"github.com/Shopify/sarama"

	"github.com/heetch/topicproducer/topic"
)

var _ topic.Admin = (*Admin)(nil)

// Creation records a create topic command received by an Admin.
type Creation struct {
	Name              string
	NumPartitions     int32
	ReplicationFactor int16
}

// Admin is a fake cluster holding a set of topics. Its behaviour can be
// tuned through the exported fields before use. All methods are safe for
// concurrent use.
type Admin struct {
	// ListErr is returned by ListTopics when non-nil.
	ListErr error
	// ListDelay is waited by ListTopics before answering.
	ListDelay time.Duration
	// CreateErrs holds the errors returned by successive CreateTopic
	// calls. Once exhausted, CreateTopic succeeds.
	CreateErrs []error
	// ConnectErr is returned by the factory from Factory when non-nil.
	ConnectErr error

	mu        sync.Mutex
	topics    map[string]sarama.TopicDetail
	lists     int
	creations []Creation
	connects  int
	closes    int
}

// NewAdmin returns an Admin whose cluster already has the given topics.
func NewAdmin(topics ...string) *Admin {
	a := &Admin{topics: make(map[string]sarama.TopicDetail)}
	for _, t := range topics {
		a.topics[t] = sarama.TopicDetail{NumPartitions: 1, ReplicationFactor: 1}
	}
	return a
}

// Factory returns an AdminFactory handing out a.
func (a *Admin) Factory() topic.AdminFactory {
	return func() (topic.Admin, error) {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.connects++
		if a.ConnectErr != nil {
			return nil, a.ConnectErr
		}
		return a, nil
	}
}

// ListTopics implements topic.Admin.
func (a *Admin) ListTopics() (map[string]sarama.TopicDetail, error) {
	if a.ListDelay > 0 {
		time.Sleep(a.ListDelay)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lists++
	if a.ListErr != nil {
		return nil, a.ListErr
	}
	topics := make(map[string]sarama.TopicDetail, len(a.topics))
	for name, d := range a.topics {
		topics[name] = d
	}
	return topics, nil
}

// CreateTopic implements topic.Admin.
func (a *Admin) CreateTopic(name string, detail *sarama.TopicDetail, validateOnly bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.creations = append(a.creations, Creation{
		Name:              name,
		NumPartitions:     detail.NumPartitions,
		ReplicationFactor: detail.ReplicationFactor,
	})
	if len(a.CreateErrs) > 0 {
		err := a.CreateErrs[0]
		a.CreateErrs = a.CreateErrs[1:]
		if err != nil {
			return err
		}
	}
	if _, ok := a.topics[name]; ok {
		return &sarama.TopicError{Err: sarama.ErrTopicAlreadyExists}
	}
	if !validateOnly {
		a.topics[name] = *detail
	}
	return nil
}

// Close implements topic.Admin.
func (a *Admin) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closes++
	return nil
}

// Topics returns the names of the topics of the fake cluster, sorted.
func (a *Admin) Topics() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	names := make([]string, 0, len(a.topics))
	for name := range a.topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Creations returns the create commands received so far.
func (a *Admin) Creations() []Creation {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Creation(nil), a.creations...)
}

// Calls returns the number of administrative calls received so far:
// connections, topic listings and create commands.
func (a *Admin) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.connects + a.lists + len(a.creations)
}

// Lists returns the number of ListTopics calls.
func (a *Admin) Lists() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lists
}

// Closed reports how many times Close has been called.
func (a *Admin) Closed() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closes
}
