package resource

import (
	"sync"

	"stream-compiler-service/pkg/assert"
	"stream-compiler-service/pkg/kafka"
	"stream-compiler-service/pkg/manager"
)

var (
	kafkaResourceOnce sync.Once
	kafkaSingleton    *KafkaResource
)

// KafkaResource manages the lifecycle of the shared Kafka client.
type KafkaResource struct{}

// DefaultKafkaResource returns the global Kafka resource instance.
func DefaultKafkaResource() *KafkaResource {
	assert.NotCircular()
	kafkaResourceOnce.Do(func() {
		kafkaSingleton = &KafkaResource{}
	})
	assert.NotNil(kafkaSingleton)
	return kafkaSingleton
}

// MustOpen establishes broker connectivity using global configuration.
func (r *KafkaResource) MustOpen() { kafka.DefaultClient().MustOpen() }

// Close tidy ups writers and readers held by the shared client.
func (r *KafkaResource) Close() { kafka.DefaultClient().Close() }

// Client exposes the shared Kafka client.
func (r *KafkaResource) Client() *kafka.Client {
	return kafka.DefaultClient()
}

// KafkaResourcePlugin wires the resource into the manager.
type KafkaResourcePlugin struct{}

// Name identifies the plugin slot.
func (p *KafkaResourcePlugin) Name() string {
	return "kafka"
}

// MustCreateResource returns the singleton Kafka resource for registration.
func (p *KafkaResourcePlugin) MustCreateResource() manager.Resource {
	return DefaultKafkaResource()
}
