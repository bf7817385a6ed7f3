package app

import (
	"context"

	"marketplace_chat_service/internal/chat/domain"
	listingdomain "marketplace_chat_service/internal/listing/domain"
	memberdomain "marketplace_chat_service/internal/member/domain"

	"github.com/stretchr/testify/mock"
)

// MockConversationRepository Mock ConversationRepository
type MockConversationRepository struct {
	mock.Mock
}

// EnsureIndexes mock ensure indexes
func (m *MockConversationRepository) EnsureIndexes(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// FindOrCreate mock find or create conversation
func (m *MockConversationRepository) FindOrCreate(ctx context.Context, listingID, buyerID, sellerID string) (*domain.Conversation, bool, error) {
	args := m.Called(ctx, listingID, buyerID, sellerID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Conversation), args.Bool(1), args.Error(2)
	}
	return nil, args.Bool(1), args.Error(2)
}

// ListForParticipant mock list conversations
func (m *MockConversationRepository) ListForParticipant(ctx context.Context, identity string) ([]domain.Conversation, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByID mock find conversation by id
func (m *MockConversationRepository) FindByID(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

// Get mock get conversation for participant
func (m *MockConversationRepository) Get(ctx context.Context, conversationID, identity string) (*domain.Conversation, error) {
	args := m.Called(ctx, conversationID, identity)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

// SetLatestMessage mock set latest message
func (m *MockConversationRepository) SetLatestMessage(ctx context.Context, conversationID, messageID string) error {
	return m.Called(ctx, conversationID, messageID).Error(0)
}

// MockMessageRepository Mock MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// EnsureIndexes mock ensure indexes
func (m *MockMessageRepository) EnsureIndexes(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// Append mock append message
func (m *MockMessageRepository) Append(ctx context.Context, conversationID, senderID, content string) (*domain.Message, error) {
	args := m.Called(ctx, conversationID, senderID, content)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// ListForConversation mock list messages
func (m *MockMessageRepository) ListForConversation(ctx context.Context, conversationID string) ([]domain.Message, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByIDs mock find messages by ids
func (m *MockMessageRepository) FindByIDs(ctx context.Context, ids []string) (map[string]domain.Message, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) != nil {
		return args.Get(0).(map[string]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// MarkRead mock mark read
func (m *MockMessageRepository) MarkRead(ctx context.Context, conversationID, readerID string) (int64, error) {
	args := m.Called(ctx, conversationID, readerID)
	return args.Get(0).(int64), args.Error(1)
}

// CountUnread mock count unread
func (m *MockMessageRepository) CountUnread(ctx context.Context, conversationID, readerID string) (int64, error) {
	args := m.Called(ctx, conversationID, readerID)
	return args.Get(0).(int64), args.Error(1)
}

// CountUnreadByConversation mock count unread per conversation
func (m *MockMessageRepository) CountUnreadByConversation(ctx context.Context, readerID string, conversationIDs []string) (map[string]int64, error) {
	args := m.Called(ctx, readerID, conversationIDs)
	if args.Get(0) != nil {
		return args.Get(0).(map[string]int64), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockMemberDirectory Mock MemberDirectory
type MockMemberDirectory struct {
	mock.Mock
}

// FindProfiles mock find profiles
func (m *MockMemberDirectory) FindProfiles(ctx context.Context, memberIDs []string) (map[string]memberdomain.Profile, error) {
	args := m.Called(ctx, memberIDs)
	if args.Get(0) != nil {
		return args.Get(0).(map[string]memberdomain.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

// Exists mock member exists
func (m *MockMemberDirectory) Exists(ctx context.Context, memberID string) (bool, error) {
	args := m.Called(ctx, memberID)
	return args.Bool(0), args.Error(1)
}

// MockListingCatalog Mock ListingCatalog
type MockListingCatalog struct {
	mock.Mock
}

// Exists mock listing exists
func (m *MockListingCatalog) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// FindByIDs mock find listings
func (m *MockListingCatalog) FindByIDs(ctx context.Context, ids []string) ([]listingdomain.Listing, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) != nil {
		return args.Get(0).([]listingdomain.Listing), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockNotifier Mock Notifier
type MockNotifier struct {
	mock.Mock
}

// ToRoom mock room fan-out
func (m *MockNotifier) ToRoom(ctx context.Context, roomID string, ev domain.WSResponse) error {
	return m.Called(ctx, roomID, ev).Error(0)
}

// ToAll mock global fan-out
func (m *MockNotifier) ToAll(ctx context.Context, ev domain.WSResponse) error {
	return m.Called(ctx, ev).Error(0)
}

// MockEventRepository Mock EventRepository
type MockEventRepository struct {
	mock.Mock
}

// MessageCreated mock publish event
func (m *MockEventRepository) MessageCreated(ctx context.Context, conv *domain.Conversation, msg *domain.Message) error {
	return m.Called(ctx, conv, msg).Error(0)
}
