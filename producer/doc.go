// Package producer provides a Kafka producer bound to a single topic,
// whose keys and bodies are encoded in Avro with schemas registered in a
// schema registry.
//
// Creating a Producer makes sure its topic exists: unless the topic has
// already been seen by the process, the cluster is asked for it and the
// topic is created with the requested partition and replica counts when
// missing. See package topic for the details and for the choice of what
// happens when creation fails.
//
// Messages are plain Go values. The way they are sent to Kafka is
// function of the MessageConverter used. The default AvroConverter
// encodes keys and bodies with the topic schemas and frames them with the
// schema registry wire format, while CodecConverter uses simple codecs,
// such as JSON, without any schema.
//
// Producers require a valid configuration to be able to run properly.
// The Config type allows to define the endpoints, the client id, the
// topic creation behaviour and also to customize Sarama's behaviour.
package producer
