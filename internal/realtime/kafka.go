package realtime

import (
	"context"
	"fmt"

	"airportpos/internal/infra"
)

// KafkaPublisher mirrors bill events onto a Kafka topic, keyed by shop ID.
type KafkaPublisher struct {
	w infra.MessageWriter
}

func NewKafkaPublisher(w infra.MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{w: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev BillEvent) error {
	if err := infra.PublishJSON(ctx, p.w, ev.ShopID, ev); err != nil {
		return fmt.Errorf("realtime: kafka publish: %w", err)
	}
	return nil
}
