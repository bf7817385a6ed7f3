package app

import (
	"context"
	"strings"
	"time"

	"marketplace_chat_service/internal/chat/domain"
	"marketplace_chat_service/internal/chat/repository"
	listingdomain "marketplace_chat_service/internal/listing/domain"
	memberdomain "marketplace_chat_service/internal/member/domain"
	errprocess "marketplace_chat_service/pkg/err"
	"marketplace_chat_service/pkg/logger"

	"go.uber.org/zap"
)

// MemberDirectory member lookups owned by the member module
type MemberDirectory interface {
	FindProfiles(ctx context.Context, memberIDs []string) (map[string]memberdomain.Profile, error)
	Exists(ctx context.Context, memberID string) (bool, error)
}

// ListingCatalog listing lookups owned by the catalog
type ListingCatalog interface {
	Exists(ctx context.Context, id string) (bool, error)
	FindByIDs(ctx context.Context, ids []string) ([]listingdomain.Listing, error)
}

// Notifier room and global fan-out
type Notifier interface {
	ToRoom(ctx context.Context, roomID string, ev domain.WSResponse) error
	ToAll(ctx context.Context, ev domain.WSResponse) error
}

// ChatUseCase the operations shared by the REST gateway and websocket sessions
type ChatUseCase struct {
	convRepo     repository.ConversationRepository
	msgRepo      repository.MessageRepository
	members      MemberDirectory
	listings     ListingCatalog
	notifier     Notifier
	events       repository.EventRepository
	storeTimeout time.Duration
}

// NewChatUseCase create ChatUseCase; events may be nil
func NewChatUseCase(
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	members MemberDirectory,
	listings ListingCatalog,
	notifier Notifier,
	events repository.EventRepository,
	storeTimeout time.Duration,
) *ChatUseCase {
	if storeTimeout <= 0 {
		storeTimeout = 5 * time.Second
	}
	return &ChatUseCase{
		convRepo:     convRepo,
		msgRepo:      msgRepo,
		members:      members,
		listings:     listings,
		notifier:     notifier,
		events:       events,
		storeTimeout: storeTimeout,
	}
}

func (uc *ChatUseCase) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, uc.storeTimeout)
}

// OpenConversation find or create the buyer's conversation with sellerID over listingID
func (uc *ChatUseCase) OpenConversation(ctx context.Context, buyerID, listingID, sellerID string) (*domain.ConversationSummary, bool, error) {
	if listingID == "" || sellerID == "" {
		return nil, false, errprocess.Validation("listingId and sellerId are required")
	}
	if buyerID == sellerID {
		return nil, false, errprocess.Validation("cannot open a conversation with yourself")
	}

	sctx, cancel := uc.storeCtx(ctx)
	defer cancel()

	ok, err := uc.listings.Exists(sctx, listingID)
	if err != nil {
		return nil, false, errprocess.Internal("check listing", err)
	}
	if !ok {
		return nil, false, errprocess.NotFound("listing not found")
	}
	ok, err = uc.members.Exists(sctx, sellerID)
	if err != nil {
		return nil, false, errprocess.Internal("check seller", err)
	}
	if !ok {
		return nil, false, errprocess.NotFound("seller not found")
	}

	conv, created, err := uc.convRepo.FindOrCreate(sctx, listingID, buyerID, sellerID)
	if err != nil {
		return nil, false, err
	}

	summaries, err := uc.summarize(sctx, buyerID, []domain.Conversation{*conv}, !created)
	if err != nil {
		return nil, false, err
	}
	if created {
		logger.Log.Info("conversation created",
			zap.String("conversation_id", conv.ID),
			zap.String("listing_id", listingID),
			zap.String("buyer_id", buyerID),
			zap.String("seller_id", sellerID),
		)
	}
	return &summaries[0], created, nil
}

// ListConversations newest activity first, each with the caller's unread count
func (uc *ChatUseCase) ListConversations(ctx context.Context, identity string) ([]domain.ConversationSummary, error) {
	sctx, cancel := uc.storeCtx(ctx)
	defer cancel()

	convs, err := uc.convRepo.ListForParticipant(sctx, identity)
	if err != nil {
		return nil, err
	}
	return uc.summarize(sctx, identity, convs, true)
}

// ConversationIDs rooms a websocket session joins
func (uc *ChatUseCase) ConversationIDs(ctx context.Context, identity string) ([]string, error) {
	sctx, cancel := uc.storeCtx(ctx)
	defer cancel()

	convs, err := uc.convRepo.ListForParticipant(sctx, identity)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(convs))
	for _, c := range convs {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

// History ordered messages; a non-participant sees not found
func (uc *ChatUseCase) History(ctx context.Context, conversationID, identity string) ([]domain.MessageView, error) {
	sctx, cancel := uc.storeCtx(ctx)
	defer cancel()

	if _, err := uc.convRepo.Get(sctx, conversationID, identity); err != nil {
		return nil, err
	}
	msgs, err := uc.msgRepo.ListForConversation(sctx, conversationID)
	if err != nil {
		return nil, err
	}

	senderIDs := make([]string, 0, 2)
	for _, m := range msgs {
		senderIDs = append(senderIDs, m.SenderID)
	}
	profiles := uc.profiles(sctx, senderIDs)

	views := make([]domain.MessageView, 0, len(msgs))
	for i := range msgs {
		views = append(views, msgs[i].View(participant(profiles, msgs[i].SenderID)))
	}
	return views, nil
}

// PostMessage the single post path: persist, move the latest pointer, then notify
func (uc *ChatUseCase) PostMessage(ctx context.Context, conversationID, senderID, content string) (*domain.MessageView, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errprocess.Validation("content is required")
	}

	sctx, cancel := uc.storeCtx(ctx)
	defer cancel()

	conv, err := uc.participantConversation(sctx, conversationID, senderID)
	if err != nil {
		return nil, err
	}

	msg, err := uc.msgRepo.Append(sctx, conversationID, senderID, content)
	if err != nil {
		return nil, err
	}
	if err := uc.convRepo.SetLatestMessage(sctx, conversationID, msg.ID); err != nil {
		logger.Log.Error("set latest message failed, message not broadcast",
			zap.String("conversation_id", conversationID),
			zap.String("message_id", msg.ID),
			zap.Error(err),
		)
		return nil, err
	}

	view := msg.View(participant(uc.profiles(sctx, []string{senderID}), senderID))

	// persisted; delivery below is best effort
	if err := uc.notifier.ToRoom(ctx, conversationID, domain.WSResponse{Action: domain.ReceiveMessage, Payload: view}); err != nil {
		logger.Log.Error("notify room failed", zap.String("conversation_id", conversationID), zap.Error(err))
	}
	if err := uc.notifier.ToAll(ctx, domain.WSResponse{
		Action:  domain.ChatUpdated,
		Payload: domain.ChatUpdatedPayload{ConversationID: conversationID, UpdatedAt: msg.CreatedAt},
	}); err != nil {
		logger.Log.Error("notify chat updated failed", zap.String("conversation_id", conversationID), zap.Error(err))
	}
	if uc.events != nil {
		if err := uc.events.MessageCreated(sctx, conv, msg); err != nil {
			logger.Log.Warn("publish message created event failed", zap.String("message_id", msg.ID), zap.Error(err))
		}
	}

	logger.Log.Debug("message posted", zap.String("conversation_id", conversationID), zap.String("message_id", msg.ID))
	return &view, nil
}

// MarkRead mark the other side's messages read and notify the room
func (uc *ChatUseCase) MarkRead(ctx context.Context, conversationID, readerID string) (int64, error) {
	sctx, cancel := uc.storeCtx(ctx)
	defer cancel()

	if _, err := uc.participantConversation(sctx, conversationID, readerID); err != nil {
		return 0, err
	}
	updated, err := uc.msgRepo.MarkRead(sctx, conversationID, readerID)
	if err != nil {
		return 0, err
	}

	if err := uc.notifier.ToRoom(ctx, conversationID, domain.WSResponse{
		Action:  domain.MessagesRead,
		Payload: domain.MessagesReadPayload{ConversationID: conversationID, ReaderID: readerID, Updated: updated},
	}); err != nil {
		logger.Log.Error("notify messages read failed", zap.String("conversation_id", conversationID), zap.Error(err))
	}
	return updated, nil
}

// participantConversation write-path check: absent is not found, non-participant is forbidden
func (uc *ChatUseCase) participantConversation(ctx context.Context, conversationID, identity string) (*domain.Conversation, error) {
	conv, err := uc.convRepo.FindByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.IsParticipant(identity) {
		return nil, errprocess.Forbidden("not a participant of this conversation")
	}
	return conv, nil
}

// profiles best-effort name resolution; a directory failure degrades to ids only
func (uc *ChatUseCase) profiles(ctx context.Context, ids []string) map[string]memberdomain.Profile {
	profiles, err := uc.members.FindProfiles(ctx, unique(ids))
	if err != nil {
		logger.Log.Warn("resolve member profiles failed", zap.Error(err))
		return map[string]memberdomain.Profile{}
	}
	return profiles
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func participant(profiles map[string]memberdomain.Profile, id string) domain.Participant {
	return domain.Participant{ID: id, Name: profiles[id].Name}
}

func (uc *ChatUseCase) summarize(ctx context.Context, identity string, convs []domain.Conversation, countUnread bool) ([]domain.ConversationSummary, error) {
	summaries := make([]domain.ConversationSummary, 0, len(convs))
	if len(convs) == 0 {
		return summaries, nil
	}

	convIDs := make([]string, 0, len(convs))
	listingIDs := make([]string, 0, len(convs))
	memberIDs := make([]string, 0, 2*len(convs))
	latestIDs := make([]string, 0, len(convs))
	for _, c := range convs {
		convIDs = append(convIDs, c.ID)
		listingIDs = append(listingIDs, c.ListingID)
		memberIDs = append(memberIDs, c.BuyerID, c.SellerID)
		if c.LatestMessageID != "" {
			latestIDs = append(latestIDs, c.LatestMessageID)
		}
	}

	unread := map[string]int64{}
	if countUnread {
		var err error
		if unread, err = uc.msgRepo.CountUnreadByConversation(ctx, identity, convIDs); err != nil {
			return nil, err
		}
	}
	latest := map[string]domain.Message{}
	if len(latestIDs) > 0 {
		var err error
		if latest, err = uc.msgRepo.FindByIDs(ctx, latestIDs); err != nil {
			return nil, err
		}
	}
	listings := map[string]listingdomain.Listing{}
	if found, err := uc.listings.FindByIDs(ctx, listingIDs); err != nil {
		logger.Log.Warn("resolve listings failed", zap.Error(err))
	} else {
		for _, l := range found {
			listings[l.ID] = l
		}
	}
	profiles := uc.profiles(ctx, memberIDs)

	for _, c := range convs {
		s := domain.ConversationSummary{
			ID:          c.ID,
			Listing:     domain.ListingRef{ID: c.ListingID},
			Buyer:       participant(profiles, c.BuyerID),
			Seller:      participant(profiles, c.SellerID),
			UnreadCount: unread[c.ID],
			CreatedAt:   c.CreatedAt,
			UpdatedAt:   c.UpdatedAt,
		}
		if l, ok := listings[c.ListingID]; ok {
			s.Listing.Title = l.Title
			s.Listing.Images = l.Images
		}
		if m, ok := latest[c.LatestMessageID]; ok {
			v := m.View(participant(profiles, m.SenderID))
			s.LatestMessage = &v
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}
