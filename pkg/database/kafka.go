package database

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"marketplace_chat_service/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// NewKafkaWriterWithRetry dial the first broker until the topic metadata is reachable, then build a writer
func NewKafkaWriterWithRetry(k KafkaConnection) (*kafka.Writer, error) {
	if len(k.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}

	var err error
	for attempt := 1; attempt <= k.RetryCount; attempt++ {
		if err = ensureTopic(k.Brokers[0], k.Topic); err == nil {
			logger.Log.Info("kafka writer ready", zap.Strings("brokers", k.Brokers), zap.String("topic", k.Topic), zap.Int("attempt", attempt))
			return &kafka.Writer{
				Addr:         kafka.TCP(k.Brokers...),
				Topic:        k.Topic,
				Balancer:     &kafka.Hash{},
				RequiredAcks: kafka.RequireOne,
				BatchTimeout: 50 * time.Millisecond,
			}, nil
		}

		logger.Log.Warn("kafka dial failed, retrying...", zap.Int("attempt", attempt), zap.Error(err))
		time.Sleep(k.RetryInterval * time.Second)
	}

	return nil, fmt.Errorf("kafka: unable to reach %v after %d attempts: %w", k.Brokers, k.RetryCount, err)
}

// ensureTopic create the topic on the controller when missing
func ensureTopic(broker, topic string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", broker)
	if err != nil {
		return err
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return err
	}
	ctrl, err := kafka.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return err
	}
	defer ctrl.Close()

	return ctrl.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
}
