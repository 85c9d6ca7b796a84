package schema

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/riferrei/srclient"
)

// Registry registers schemas and returns their ids.
// Registering a schema that already exists under the subject returns
// the existing id.
type Registry interface {
	Register(ctx context.Context, subject string, s *Schema) (int, error)
}

// NewRegistry returns a Registry talking to the schema registry at url.
// Registrations are cached for the lifetime of the returned value.
//
// The srclient HTTP calls take no context: Register returns early when
// ctx is already done, but a request in flight runs to completion.
func NewRegistry(url string) Registry {
	return Cached(&srRegistry{client: srclient.CreateSchemaRegistryClient(url)})
}

type srRegistry struct {
	client *srclient.SchemaRegistryClient
}

// Register checks ctx only before sending the request.
func (r *srRegistry) Register(ctx context.Context, subject string, s *Schema) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	registered, err := r.client.CreateSchema(subject, s.String(), srclient.Avro)
	if err != nil {
		return 0, errors.Wrapf(err, "cannot register schema for subject %q", subject)
	}
	return registered.ID(), nil
}

// Cached wraps r so that each schema is registered at most once per
// subject. Failed registrations are not cached. It is safe for
// concurrent use.
func Cached(r Registry) Registry {
	return &cachedRegistry{
		registry: r,
		ids:      make(map[cacheKey]int),
	}
}

type cacheKey struct {
	subject string
	schema  string
}

type cachedRegistry struct {
	registry Registry

	mu  sync.RWMutex
	ids map[cacheKey]int
}

func (c *cachedRegistry) Register(ctx context.Context, subject string, s *Schema) (int, error) {
	k := cacheKey{subject, s.String()}
	c.mu.RLock()
	id, ok := c.ids[k]
	c.mu.RUnlock()
	if ok {
		return id, nil
	}

	id, err := c.registry.Register(ctx, subject, s)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.ids[k] = id
	c.mu.Unlock()
	return id, nil
}
