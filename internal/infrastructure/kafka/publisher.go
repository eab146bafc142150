package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/tradeoverflow/trade-service/internal/domain"
)

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
	}
}

func (k *KafkaPublisher) Publish(topic string, msgs ...domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	kafkaMsgs := make([]kafka.Message, 0, len(msgs))
	now := time.Now()
	for _, msg := range msgs {
		kafkaMsgs = append(kafkaMsgs, kafka.Message{
			Topic: topic,
			Key:   msg.Key,
			Value: msg.Value,
			Time:  now,
		})
	}

	return k.writer.WriteMessages(context.Background(), kafkaMsgs...)
}

func (k *KafkaPublisher) Close() error {
	return k.writer.Close()
}
