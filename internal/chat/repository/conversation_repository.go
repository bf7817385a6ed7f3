package repository

import (
	"context"
	"errors"
	"time"

	"marketplace_chat_service/internal/chat/domain"
	errprocess "marketplace_chat_service/pkg/err"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConversationCollection mongo collection name
const ConversationCollection = "conversations"

// ConversationRepository definition conversation store
type ConversationRepository interface {
	EnsureIndexes(ctx context.Context) error
	// FindOrCreate return the conversation for the triple, created is true only for the inserting caller
	FindOrCreate(ctx context.Context, listingID, buyerID, sellerID string) (*domain.Conversation, bool, error)
	ListForParticipant(ctx context.Context, identity string) ([]domain.Conversation, error)
	FindByID(ctx context.Context, conversationID string) (*domain.Conversation, error)
	// Get absent and not-participant both yield a not found error
	Get(ctx context.Context, conversationID, identity string) (*domain.Conversation, error)
	SetLatestMessage(ctx context.Context, conversationID, messageID string) error
}

type conversationRepository struct {
	coll *mongo.Collection
}

// NewMongoConversationRepository create a mongo backed ConversationRepository
func NewMongoConversationRepository(db *mongo.Database) ConversationRepository {
	return &conversationRepository{
		coll: db.Collection(ConversationCollection),
	}
}

// EnsureIndexes unique (listing, buyer, seller) plus participant lookups
func (r *conversationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "listing_id", Value: 1},
				{Key: "buyer_id", Value: 1},
				{Key: "seller_id", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("uniq_listing_buyer_seller"),
		},
		{Keys: bson.D{{Key: "buyer_id", Value: 1}, {Key: "updated_at", Value: -1}}},
		{Keys: bson.D{{Key: "seller_id", Value: 1}, {Key: "updated_at", Value: -1}}},
	})
	return err
}

func (r *conversationRepository) findByTriple(ctx context.Context, listingID, buyerID, sellerID string) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.coll.FindOne(ctx, bson.M{
		"listing_id": listingID,
		"buyer_id":   buyerID,
		"seller_id":  sellerID,
	}).Decode(&conv)
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// FindOrCreate lookup, insert, and on a duplicate key loss read the winner's row
func (r *conversationRepository) FindOrCreate(ctx context.Context, listingID, buyerID, sellerID string) (*domain.Conversation, bool, error) {
	conv, err := r.findByTriple(ctx, listingID, buyerID, sellerID)
	if err == nil {
		return conv, false, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, errprocess.Internal("find conversation", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, false, errprocess.Internal("conversation id", err)
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	conv = &domain.Conversation{
		ID:        id.String(),
		ListingID: listingID,
		BuyerID:   buyerID,
		SellerID:  sellerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := r.coll.InsertOne(ctx, conv); err != nil {
		if !mongo.IsDuplicateKeyError(err) {
			return nil, false, errprocess.Internal("insert conversation", err)
		}
		existing, findErr := r.findByTriple(ctx, listingID, buyerID, sellerID)
		if findErr != nil {
			return nil, false, errprocess.Internal("re-read conversation", findErr)
		}
		return existing, false, nil
	}
	return conv, true, nil
}

// ListForParticipant newest activity first
func (r *conversationRepository) ListForParticipant(ctx context.Context, identity string) ([]domain.Conversation, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"buyer_id": identity},
		bson.M{"seller_id": identity},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}})

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errprocess.Internal("list conversations", err)
	}
	conversations := []domain.Conversation{}
	if err := cur.All(ctx, &conversations); err != nil {
		return nil, errprocess.Internal("decode conversations", err)
	}
	return conversations, nil
}

func (r *conversationRepository) FindByID(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	var conv domain.Conversation
	if err := r.coll.FindOne(ctx, bson.M{"_id": conversationID}).Decode(&conv); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errprocess.NotFound("conversation not found")
		}
		return nil, errprocess.Internal("find conversation", err)
	}
	return &conv, nil
}

func (r *conversationRepository) Get(ctx context.Context, conversationID, identity string) (*domain.Conversation, error) {
	filter := bson.M{
		"_id": conversationID,
		"$or": bson.A{
			bson.M{"buyer_id": identity},
			bson.M{"seller_id": identity},
		},
	}
	var conv domain.Conversation
	if err := r.coll.FindOne(ctx, filter).Decode(&conv); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errprocess.NotFound("conversation not found")
		}
		return nil, errprocess.Internal("get conversation", err)
	}
	return &conv, nil
}

func (r *conversationRepository) SetLatestMessage(ctx context.Context, conversationID, messageID string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": conversationID},
		bson.M{"$set": bson.M{
			"latest_message_id": messageID,
			"updated_at":        time.Now().UTC().Truncate(time.Millisecond),
		}},
	)
	if err != nil {
		return errprocess.Internal("set latest message", err)
	}
	if res.MatchedCount == 0 {
		return errprocess.NotFound("conversation not found")
	}
	return nil
}
