package schema_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/heetch/topicproducer/schema"
)

const purchaseSchema = `{
	"type": "record",
	"name": "purchase",
	"namespace": "com.example",
	"fields": [
		{"name": "username", "type": "string"},
		{"name": "amount", "type": "int"}
	]
}`

func TestParse(t *testing.T) {
	c := qt.New(t)

	s, err := schema.Parse(purchaseSchema)
	c.Assert(err, qt.IsNil)
	c.Assert(s.String(), qt.Equals, `{"name":"com.example.purchase","type":"record","fields":[{"name":"username","type":"string"},{"name":"amount","type":"int"}]}`)
	c.Assert(s.Codec(), qt.Not(qt.IsNil))

	_, err = schema.Parse(`{"type": "nope"}`)
	c.Assert(err, qt.ErrorMatches, `invalid avro schema: .*`)

	c.Assert(func() { schema.MustParse("{") }, qt.PanicMatches, `invalid avro schema: .*`)
}

func TestSubjects(t *testing.T) {
	c := qt.New(t)
	c.Assert(schema.KeySubject("purchases"), qt.Equals, "purchases-key")
	c.Assert(schema.ValueSubject("purchases"), qt.Equals, "purchases-value")
}

func TestFrame(t *testing.T) {
	c := qt.New(t)

	framed := schema.Frame(258, []byte("abc"))
	c.Assert(framed, qt.DeepEquals, []byte{0, 0, 0, 1, 2, 'a', 'b', 'c'})

	id, payload, err := schema.Unframe(framed)
	c.Assert(err, qt.IsNil)
	c.Assert(id, qt.Equals, 258)
	c.Assert(payload, qt.DeepEquals, []byte("abc"))

	_, _, err = schema.Unframe([]byte{0, 1})
	c.Assert(err, qt.ErrorMatches, "framed data too short: 2 bytes")

	_, _, err = schema.Unframe([]byte{3, 0, 0, 0, 1})
	c.Assert(err, qt.ErrorMatches, "unknown magic byte 3")
}

type countingRegistry struct {
	mu    sync.Mutex
	calls map[string]int
	err   error
}

func (r *countingRegistry) Register(ctx context.Context, subject string, s *schema.Schema) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = make(map[string]int)
	}
	r.calls[subject]++
	if r.err != nil {
		return 0, r.err
	}
	return len(subject), nil
}

func TestCached(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	s := schema.MustParse(`"string"`)

	inner := &countingRegistry{err: fmt.Errorf("registry down")}
	r := schema.Cached(inner)

	_, err := r.Register(ctx, "a-key", s)
	c.Assert(err, qt.ErrorMatches, "registry down")

	inner.err = nil
	for i := 0; i < 3; i++ {
		id, err := r.Register(ctx, "a-key", s)
		c.Assert(err, qt.IsNil)
		c.Assert(id, qt.Equals, 5)
	}
	_, err = r.Register(ctx, "a-key", schema.MustParse(`"long"`))
	c.Assert(err, qt.IsNil)
	c.Assert(inner.calls, qt.DeepEquals, map[string]int{"a-key": 3})
}

func TestNewRegistry(t *testing.T) {
	c := qt.New(t)

	var posts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.schemaregistry.v1+json")
		switch {
		case strings.HasPrefix(req.URL.Path, "/subjects/purchases-key"):
			if req.Method == http.MethodPost && strings.HasSuffix(req.URL.Path, "/versions") {
				posts++
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"subject": "purchases-key",
				"version": 1,
				"id":      42,
				"schema":  `"string"`,
			})
		case req.URL.Path == "/schemas/ids/42":
			// Registering fetches the schema back by id.
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id":     42,
				"schema": `"string"`,
			})
		default:
			http.NotFound(w, req)
		}
	}))
	defer srv.Close()

	r := schema.NewRegistry(srv.URL)
	s := schema.MustParse(`"string"`)
	for i := 0; i < 2; i++ {
		id, err := r.Register(context.Background(), "purchases-key", s)
		c.Assert(err, qt.IsNil)
		c.Assert(id, qt.Equals, 42)
	}
	c.Assert(posts, qt.Equals, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Register(ctx, "purchases-value", s)
	c.Assert(err, qt.Equals, context.Canceled)
}
