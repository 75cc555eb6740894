package services

import (
	"encoding/json"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

const eventStream = "file-events"

// EventPublisher pushes domain events onto NATS JetStream. A nil publisher
// is valid and drops everything, so callers never branch on whether events
// are configured.
type EventPublisher struct {
	nc *nats.Conn
	js nats.JetStreamContext
}

// ConnectEvents connects to NATS, initializes JetStream and makes sure the
// file-events stream exists.
func ConnectEvents(url string) (*EventPublisher, error) {
	opts := []nats.Option{
		nats.Name("file-manager"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("[NATS] disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[NATS] reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Println("[NATS] connection closed")
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, err
	}

	if _, err := js.StreamInfo(eventStream); err != nil {
		_, err = js.AddStream(&nats.StreamConfig{
			Name:     eventStream,
			Subjects: []string{"files.*"},
			Storage:  nats.FileStorage,
			MaxAge:   30 * 24 * time.Hour,
		})
		if err != nil {
			log.Printf("[NATS] warning: failed to ensure stream %s: %v", eventStream, err)
		}
	}

	log.Println("[NATS] connected and JetStream initialized")
	return &EventPublisher{nc: nc, js: js}, nil
}

// Publish marshals the event and publishes it on the subject.
func (p *EventPublisher) Publish(subject string, event interface{}) error {
	if p == nil {
		return nil
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(subject, data)
	return err
}

// Close drains the connection.
func (p *EventPublisher) Close() {
	if p != nil && p.nc != nil {
		if err := p.nc.Drain(); err != nil {
			log.Printf("[NATS] warning: drain failed: %v", err)
		}
	}
}
