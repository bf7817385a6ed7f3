package repository

import (
	"context"
	"encoding/json"
	"time"

	"marketplace_chat_service/internal/chat/domain"

	"github.com/segmentio/kafka-go"
)

// MessageCreatedEvent notification service payload
type MessageCreatedEvent struct {
	Type           string    `json:"type"`
	ConversationID string    `json:"conversationId"`
	ListingID      string    `json:"listingId"`
	MessageID      string    `json:"messageId"`
	SenderID       string    `json:"senderId"`
	RecipientID    string    `json:"recipientId"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}

// EventRepository outbound domain events
type EventRepository interface {
	MessageCreated(ctx context.Context, conv *domain.Conversation, msg *domain.Message) error
}

// messageWriter the part of *kafka.Writer used here
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type kafkaEventRepository struct {
	writer messageWriter
}

// NewKafkaEventRepository create EventRepository on a kafka writer
func NewKafkaEventRepository(writer messageWriter) EventRepository {
	return &kafkaEventRepository{writer: writer}
}

// MessageCreated keyed by conversation so one conversation stays on one partition
func (k *kafkaEventRepository) MessageCreated(ctx context.Context, conv *domain.Conversation, msg *domain.Message) error {
	data, err := json.Marshal(MessageCreatedEvent{
		Type:           "chat.message.created",
		ConversationID: conv.ID,
		ListingID:      conv.ListingID,
		MessageID:      msg.ID,
		SenderID:       msg.SenderID,
		RecipientID:    conv.Counterpart(msg.SenderID),
		Content:        msg.Content,
		CreatedAt:      msg.CreatedAt,
	})
	if err != nil {
		return err
	}
	return k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(conv.ID),
		Value: data,
	})
}
