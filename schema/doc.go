// Package schema holds the Avro schema descriptors a producer is bound to
// and the client used to register them with a Confluent compatible schema
// registry.
//
// Schemas are registered under the topic name strategy: the key schema of
// topic "purchases" lives under the subject "purchases-key" and its value
// schema under "purchases-value". Registered payloads are framed with the
// registry wire format, a zero magic byte followed by the big-endian schema
// id, see Frame.
package schema
