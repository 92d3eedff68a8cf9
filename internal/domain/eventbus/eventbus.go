// Package eventbus carries in-process notifications between the proof
// pipeline and passive observers such as the audit recorder. The bus
// is constructed once at startup and injected, never ambient.
package eventbus

import (
	evbus "github.com/asaskevich/EventBus"
)

// Bus wraps the underlying pub/sub implementation behind the small
// surface the vision pipeline needs.
type Bus struct {
	bus evbus.Bus
}

func New() *Bus {
	return &Bus{bus: evbus.New()}
}

// Publish delivers an event to subscribers synchronously.
func (b *Bus) Publish(topic string, event ProofEvent) {
	b.bus.Publish(topic, event)
}

// Subscribe registers a synchronous handler for a topic.
func (b *Bus) Subscribe(topic string, handler func(ProofEvent)) error {
	return b.bus.Subscribe(topic, handler)
}

// SubscribeAsync registers a handler that runs on its own goroutine.
func (b *Bus) SubscribeAsync(topic string, handler func(ProofEvent)) error {
	return b.bus.SubscribeAsync(topic, handler, false)
}

// Unsubscribe removes a previously registered handler.
func (b *Bus) Unsubscribe(topic string, handler func(ProofEvent)) error {
	return b.bus.Unsubscribe(topic, handler)
}

// WaitAsync blocks until all in-flight async handlers finish. Used on
// shutdown so audit writes are not cut off mid-flight.
func (b *Bus) WaitAsync() {
	b.bus.WaitAsync()
}
