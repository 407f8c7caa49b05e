// Package relay moves telemetry events from the Kafka topic to Loki.
package relay

import (
	"context"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

const pushTimeout = 10 * time.Second

// MessageReader is the subset of *kafka.Reader used by Relay.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// Pusher delivers one raw event.
type Pusher interface {
	PushEventJSON(ctx context.Context, rawJSON []byte) error
}

// NewReader returns a consumer-group reader for topic.
func NewReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        time.Second,
		CommitInterval: time.Second,
	})
}

// Relay reads messages and pushes each one. Push failures are logged and the message is skipped.
type Relay struct {
	reader MessageReader
	pusher Pusher
}

// New returns a Relay.
func New(reader MessageReader, pusher Pusher) *Relay {
	return &Relay{reader: reader, pusher: pusher}
}

// Run consumes until ctx is canceled and returns the number of messages pushed successfully.
func (r *Relay) Run(ctx context.Context) int {
	pushed := 0
	for {
		msg, err := r.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("worker: stopped")
				return pushed
			}
			log.Printf("worker: kafka read error: %v", err)
			continue
		}
		pushCtx, cancel := context.WithTimeout(ctx, pushTimeout)
		if err := r.pusher.PushEventJSON(pushCtx, msg.Value); err != nil {
			log.Printf("worker: loki push failed for offset %d: %v", msg.Offset, err)
		} else {
			pushed++
		}
		cancel()
	}
}
