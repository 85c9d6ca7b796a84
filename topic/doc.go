// Package topic makes sure Kafka topics exist before anything is
// produced to them.
//
// An Ensurer asks the cluster whether a topic exists and creates it with
// the requested partition and replica counts when it does not. Topics
// that have been confirmed or created are remembered in a Registry, so
// later producers for the same topic cost no administrative round-trip.
// The Registry is a local cache, not a source of truth: a topic created
// or deleted by somebody else is not noticed.
//
// What happens when creation fails is decided by the Ensurer's Policy.
// The default, Ignore, logs the failure and registers the topic anyway,
// which means creation is never attempted again for that name during the
// lifetime of the Registry. Use Retry or Fail to get a chance of
// recovering from transient broker errors.
package topic
