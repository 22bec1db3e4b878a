package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
)

// OrderCreatedEvent é publicado após o commit do checkout
type OrderCreatedEvent struct {
	OrderID   string      `json:"order_id"`
	UserID    string      `json:"user_id"`
	Total     float64     `json:"total"`
	Items     []OrderItem `json:"items"`
	CreatedAt time.Time   `json:"created_at"`
}

// CartMergedEvent é publicado após o commit do merge de login
type CartMergedEvent struct {
	UserCartID    string `json:"user_cart_id"`
	SessionCartID string `json:"session_cart_id"`
	MergedLines   int    `json:"merged_lines"`
	SkippedLines  int    `json:"skipped_lines"`
}

// Publisher abstrai a publicação de eventos de domínio. Falha de publicação
// nunca desfaz a operação já comitada; quem assina os tópicos decide o que
// fazer com atraso ou perda.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, event OrderCreatedEvent) error
	PublishCartMerged(ctx context.Context, event CartMergedEvent) error
}

// KafkaPublisher implementa Publisher usando Kafka
type KafkaPublisher struct {
	brokers    []string
	orderTopic string
	cartTopic  string
}

// NewKafkaPublisher cria uma nova instância de KafkaPublisher
func NewKafkaPublisher(brokers []string, orderTopic, cartTopic string) *KafkaPublisher {
	return &KafkaPublisher{
		brokers:    brokers,
		orderTopic: orderTopic,
		cartTopic:  cartTopic,
	}
}

func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, event OrderCreatedEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return p.publish(ctx, p.orderTopic, event.OrderID, event)
}

func (p *KafkaPublisher) PublishCartMerged(ctx context.Context, event CartMergedEvent) error {
	return p.publish(ctx, p.cartTopic, event.UserCartID, event)
}

func (p *KafkaPublisher) publish(ctx context.Context, topic, key string, event any) error {
	w := &kafkaGo.Writer{
		Addr:     kafkaGo.TCP(p.brokers...),
		Topic:    topic,
		Balancer: &kafkaGo.LeastBytes{},
	}
	defer w.Close()

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return w.WriteMessages(ctx, kafkaGo.Message{
		Key:   []byte(key),
		Value: payload,
	})
}
