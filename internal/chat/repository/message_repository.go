package repository

import (
	"context"
	"strings"
	"time"

	"marketplace_chat_service/internal/chat/domain"
	errprocess "marketplace_chat_service/pkg/err"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageCollection mongo collection name
const MessageCollection = "messages"

// MessageRepository definition message store
type MessageRepository interface {
	EnsureIndexes(ctx context.Context) error
	// Append the only write path for new messages
	Append(ctx context.Context, conversationID, senderID, content string) (*domain.Message, error)
	// ListForConversation ascending creation order
	ListForConversation(ctx context.Context, conversationID string) ([]domain.Message, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]domain.Message, error)
	// MarkRead flip read for messages not authored by reader, returns how many changed
	MarkRead(ctx context.Context, conversationID, readerID string) (int64, error)
	CountUnread(ctx context.Context, conversationID, readerID string) (int64, error)
	CountUnreadByConversation(ctx context.Context, readerID string, conversationIDs []string) (map[string]int64, error)
}

type messageRepository struct {
	coll *mongo.Collection
}

// NewMongoMessageRepository create a mongo backed MessageRepository
func NewMongoMessageRepository(db *mongo.Database) MessageRepository {
	return &messageRepository{
		coll: db.Collection(MessageCollection),
	}
}

func (r *messageRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "conversation_id", Value: 1},
			{Key: "created_at", Value: 1},
			{Key: "_id", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "conversation_id", Value: 1},
			{Key: "read", Value: 1},
			{Key: "sender_id", Value: 1},
		}},
	})
	return err
}

func (r *messageRepository) Append(ctx context.Context, conversationID, senderID, content string) (*domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errprocess.Validation("content is required")
	}

	// v7 ids sort by creation time, breaking created_at ties
	id, err := uuid.NewV7()
	if err != nil {
		return nil, errprocess.Internal("message id", err)
	}
	msg := &domain.Message{
		ID:             id.String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		Read:           false,
		CreatedAt:      time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := r.coll.InsertOne(ctx, msg); err != nil {
		return nil, errprocess.Internal("append message", err)
	}
	return msg, nil
}

func (r *messageRepository) ListForConversation(ctx context.Context, conversationID string) ([]domain.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, errprocess.Internal("list messages", err)
	}
	messages := []domain.Message{}
	if err := cur.All(ctx, &messages); err != nil {
		return nil, errprocess.Internal("decode messages", err)
	}
	return messages, nil
}

func (r *messageRepository) FindByIDs(ctx context.Context, ids []string) (map[string]domain.Message, error) {
	result := make(map[string]domain.Message, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, errprocess.Internal("find messages", err)
	}
	var messages []domain.Message
	if err := cur.All(ctx, &messages); err != nil {
		return nil, errprocess.Internal("decode messages", err)
	}
	for _, m := range messages {
		result[m.ID] = m
	}
	return result, nil
}

func (r *messageRepository) MarkRead(ctx context.Context, conversationID, readerID string) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{
			"conversation_id": conversationID,
			"sender_id":       bson.M{"$ne": readerID},
			"read":            false,
		},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, errprocess.Internal("mark messages read", err)
	}
	return res.ModifiedCount, nil
}

func (r *messageRepository) CountUnread(ctx context.Context, conversationID, readerID string) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{
		"conversation_id": conversationID,
		"sender_id":       bson.M{"$ne": readerID},
		"read":            false,
	})
	if err != nil {
		return 0, errprocess.Internal("count unread", err)
	}
	return n, nil
}

// CountUnreadByConversation one aggregation for a whole conversation list; absent ids count zero
func (r *messageRepository) CountUnreadByConversation(ctx context.Context, readerID string, conversationIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return counts, nil
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "conversation_id", Value: bson.D{{Key: "$in", Value: conversationIDs}}},
			{Key: "read", Value: false},
			{Key: "sender_id", Value: bson.D{{Key: "$ne", Value: readerID}}},
		}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$conversation_id"},
			{Key: "unread_count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errprocess.Internal("aggregate unread", err)
	}

	var results []struct {
		ConversationID string `bson:"_id"`
		UnreadCount    int64  `bson:"unread_count"`
	}
	if err := cur.All(ctx, &results); err != nil {
		return nil, errprocess.Internal("decode unread", err)
	}
	for _, r := range results {
		counts[r.ConversationID] = r.UnreadCount
	}
	return counts, nil
}
