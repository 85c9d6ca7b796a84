package topic

import (
	"context"
	"time"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/retry.v1"

	"github.com/heetch/topicproducer/common"
)

// ErrCreateTopic is returned, wrapped, when a topic could not be created
// and the Policy does not allow ignoring it.
var ErrCreateTopic = errors.New("cannot create topic")

const (
	// DefaultTimeout bounds the topic existence query.
	DefaultTimeout = 5 * time.Second
	// DefaultRetryDelay is the delay before the first creation retry.
	DefaultRetryDelay = 100 * time.Millisecond
)

// Spec describes a topic to create.
type Spec struct {
	Name string
	// NumPartitions defaults to 1.
	NumPartitions int32
	// ReplicationFactor defaults to 1.
	ReplicationFactor int16
}

// Validate checks that the spec can be sent to the cluster.
func (s Spec) Validate() error {
	if s.Name == "" {
		return errors.New("topic name is required")
	}
	if s.NumPartitions < 0 {
		return errors.Errorf("invalid partition count %d for topic %q", s.NumPartitions, s.Name)
	}
	if s.ReplicationFactor < 0 {
		return errors.Errorf("invalid replication factor %d for topic %q", s.ReplicationFactor, s.Name)
	}
	return nil
}

func (s Spec) detail() *sarama.TopicDetail {
	d := &sarama.TopicDetail{
		NumPartitions:     s.NumPartitions,
		ReplicationFactor: s.ReplicationFactor,
	}
	if d.NumPartitions == 0 {
		d.NumPartitions = 1
	}
	if d.ReplicationFactor == 0 {
		d.ReplicationFactor = 1
	}
	return d
}

// An Ensurer makes sure topics exist on the cluster, creating them when
// needed. Ensure is safe to call concurrently; at most one conversation
// with the cluster happens at a time for a given topic name and Registry.
type Ensurer struct {
	// NewAdmin opens the administrative connection. It is only called
	// for topics that are not registered yet. Required.
	NewAdmin AdminFactory

	// Registry remembers the topics already handled.
	// Defaults to DefaultRegistry.
	Registry *Registry

	// Timeout bounds the topic existence query.
	// Defaults to DefaultTimeout.
	Timeout time.Duration

	// Policy decides what happens when creation fails.
	// Defaults to Ignore.
	Policy Policy

	// RetryDelay is the initial delay between creation attempts under
	// the Retry policy. Defaults to DefaultRetryDelay.
	RetryDelay time.Duration

	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// Ensure makes sure the topic described by spec exists, unless it is
// already registered. Failing to query the cluster is always an error
// and leaves the Registry untouched. What happens when the topic cannot
// be created depends on e.Policy.
//
// Concurrent calls for the same topic share a single conversation with
// the cluster. That conversation does not depend on any caller's
// context: the existence query is bounded by e.Timeout and creation by
// the Policy. Cancelling ctx only stops the calling goroutine from
// waiting for it.
func (e *Ensurer) Ensure(ctx context.Context, spec Spec) (Outcome, error) {
	if err := spec.Validate(); err != nil {
		return "", err
	}
	reg := e.registry()
	if reg.Contains(spec.Name) {
		observe(OutcomeCached)
		return OutcomeCached, nil
	}

	leader := false
	ch := reg.inflight.DoChan(spec.Name, func() (interface{}, error) {
		leader = true
		// Another caller may have registered the topic
		// between Contains and DoChan.
		if reg.Contains(spec.Name) {
			return OutcomeCached, nil
		}
		return e.ensure(context.Background(), reg, spec)
	})
	select {
	case <-ctx.Done():
		return "", errors.Wrapf(ctx.Err(), "gave up waiting for topic %q", spec.Name)
	case res := <-ch:
		o, _ := res.Val.(Outcome)
		switch {
		case o == "":
		case leader:
			observe(o)
		default:
			// Answered by another caller's conversation.
			observe(OutcomeCached)
		}
		return o, res.Err
	}
}

func (e *Ensurer) ensure(ctx context.Context, reg *Registry, spec Spec) (Outcome, error) {
	log := common.OrNop(e.Logger).With(zap.String("topic", spec.Name))
	log.Info("ensuring topic")

	if e.NewAdmin == nil {
		return OutcomeQueryFailed, errors.New("topic: no admin factory configured")
	}
	admin, err := e.NewAdmin()
	if err != nil {
		return OutcomeQueryFailed, err
	}
	defer func() {
		if err := admin.Close(); err != nil {
			log.Warn("cannot close cluster admin", zap.Error(err))
		}
	}()

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	qctx, cancel := context.WithTimeout(ctx, timeout)
	exists, err := TopicExists(qctx, admin, spec.Name)
	cancel()
	if err != nil {
		return OutcomeQueryFailed, errors.Wrapf(err, "cannot check topic %q", spec.Name)
	}
	if exists {
		log.Info("topic already exists")
		reg.Add(spec.Name)
		return OutcomeExists, nil
	}

	detail := spec.detail()
	log.Info("creating topic",
		zap.Int32("partitions", detail.NumPartitions),
		zap.Int16("replicas", detail.ReplicationFactor),
	)
	if err := e.create(ctx, log, admin, spec.Name, detail); err != nil {
		log.Error("failed creating topic", zap.Error(err), zap.Stringer("policy", e.Policy))
		if e.Policy.kind != ignorePolicy {
			return OutcomeCreateFailed, errors.Wrapf(ErrCreateTopic, "topic %q: %v", spec.Name, err)
		}
		reg.Add(spec.Name)
		return OutcomeCreateFailed, nil
	}
	log.Info("topic created")
	reg.Add(spec.Name)
	return OutcomeCreated, nil
}

// create sends the create command as many times as the policy allows.
func (e *Ensurer) create(ctx context.Context, log *zap.Logger, admin Admin, name string, detail *sarama.TopicDetail) error {
	delay := e.RetryDelay
	if delay <= 0 {
		delay = DefaultRetryDelay
	}
	strategy := retry.LimitCount(e.Policy.attempts(), retry.Exponential{
		Initial:  delay,
		Factor:   2,
		MaxDelay: 30 * time.Second,
	})

	var err error
	n := 0
	for a := retry.StartWithCancel(strategy, nil, ctx.Done()); a.Next(); {
		if n > 0 {
			log.Warn("retrying topic creation", zap.Int("attempt", n+1), zap.Error(err))
		}
		n++
		createAttemptsTotal.Inc()
		err = admin.CreateTopic(name, detail, false)
		if err == nil || alreadyExists(err) {
			return nil
		}
	}
	if err == nil {
		// Cancelled before the first attempt.
		err = ctx.Err()
	}
	return err
}

func (e *Ensurer) registry() *Registry {
	if e.Registry == nil {
		return DefaultRegistry
	}
	return e.Registry
}
