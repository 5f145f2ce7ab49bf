package pubsub

import "github.com/charmbracelet/log"

var _ PubSubClient = Nop{}

// Nop drops events. Used when no GCP project is configured.
type Nop struct{}

func (Nop) SendMessage(topic EventType, data any) error {
	log.Debug("Event not published", "topic", topic)
	return nil
}

func (Nop) ProcessMessage(data []byte, returnValue any) error {
	return decode(data, returnValue)
}
