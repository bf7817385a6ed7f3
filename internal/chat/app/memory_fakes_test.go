package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"marketplace_chat_service/internal/chat/domain"
	listingdomain "marketplace_chat_service/internal/listing/domain"
	memberdomain "marketplace_chat_service/internal/member/domain"
	errprocess "marketplace_chat_service/pkg/err"

	"github.com/gofiber/websocket/v2"
)

// memConversations in-memory ConversationRepository
type memConversations struct {
	mu    sync.Mutex
	seq   int
	convs map[string]*domain.Conversation
}

func newMemConversations() *memConversations {
	return &memConversations{convs: map[string]*domain.Conversation{}}
}

func (r *memConversations) EnsureIndexes(context.Context) error { return nil }

func (r *memConversations) FindOrCreate(_ context.Context, listingID, buyerID, sellerID string) (*domain.Conversation, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.convs {
		if c.ListingID == listingID && c.BuyerID == buyerID && c.SellerID == sellerID {
			cp := *c
			return &cp, false, nil
		}
	}
	r.seq++
	now := time.Now().UTC()
	c := &domain.Conversation{
		ID:        fmt.Sprintf("conv-%d", r.seq),
		ListingID: listingID,
		BuyerID:   buyerID,
		SellerID:  sellerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.convs[c.ID] = c
	cp := *c
	return &cp, true, nil
}

func (r *memConversations) ListForParticipant(_ context.Context, identity string) ([]domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Conversation{}
	for _, c := range r.convs {
		if c.IsParticipant(identity) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *memConversations) FindByID(_ context.Context, conversationID string) (*domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convs[conversationID]
	if !ok {
		return nil, errprocess.NotFound("conversation not found")
	}
	cp := *c
	return &cp, nil
}

func (r *memConversations) Get(ctx context.Context, conversationID, identity string) (*domain.Conversation, error) {
	c, err := r.FindByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !c.IsParticipant(identity) {
		return nil, errprocess.NotFound("conversation not found")
	}
	return c, nil
}

func (r *memConversations) SetLatestMessage(_ context.Context, conversationID, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convs[conversationID]
	if !ok {
		return errprocess.NotFound("conversation not found")
	}
	c.LatestMessageID = messageID
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// memMessages in-memory MessageRepository
type memMessages struct {
	mu   sync.Mutex
	seq  int
	msgs []domain.Message
}

func (r *memMessages) EnsureIndexes(context.Context) error { return nil }

func (r *memMessages) Append(_ context.Context, conversationID, senderID, content string) (*domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errprocess.Validation("content is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	m := domain.Message{
		ID:             fmt.Sprintf("msg-%03d", r.seq),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}
	r.msgs = append(r.msgs, m)
	return &m, nil
}

func (r *memMessages) ListForConversation(_ context.Context, conversationID string) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Message{}
	for _, m := range r.msgs {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memMessages) FindByIDs(_ context.Context, ids []string) (map[string]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]domain.Message{}
	for _, id := range ids {
		for _, m := range r.msgs {
			if m.ID == id {
				out[id] = m
			}
		}
	}
	return out, nil
}

func (r *memMessages) MarkRead(_ context.Context, conversationID, readerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.msgs {
		m := &r.msgs[i]
		if m.ConversationID == conversationID && m.SenderID != readerID && !m.Read {
			m.Read = true
			n++
		}
	}
	return n, nil
}

func (r *memMessages) CountUnread(_ context.Context, conversationID, readerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.msgs {
		if m.ConversationID == conversationID && m.SenderID != readerID && !m.Read {
			n++
		}
	}
	return n, nil
}

func (r *memMessages) CountUnreadByConversation(ctx context.Context, readerID string, conversationIDs []string) (map[string]int64, error) {
	out := map[string]int64{}
	for _, id := range conversationIDs {
		n, _ := r.CountUnread(ctx, id, readerID)
		if n > 0 {
			out[id] = n
		}
	}
	return out, nil
}

// memDirectory in-memory MemberDirectory
type memDirectory struct {
	mu       sync.Mutex
	profiles map[string]memberdomain.Profile
}

func (d *memDirectory) add(id, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.profiles == nil {
		d.profiles = map[string]memberdomain.Profile{}
	}
	d.profiles[id] = memberdomain.Profile{MemberID: id, Name: name}
}

func (d *memDirectory) FindProfiles(_ context.Context, ids []string) (map[string]memberdomain.Profile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := map[string]memberdomain.Profile{}
	for _, id := range ids {
		if p, ok := d.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (d *memDirectory) Exists(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.profiles[id]
	return ok, nil
}

// memCatalog in-memory ListingCatalog
type memCatalog struct {
	listings map[string]listingdomain.Listing
}

func (c *memCatalog) Exists(_ context.Context, id string) (bool, error) {
	_, ok := c.listings[id]
	return ok, nil
}

func (c *memCatalog) FindByIDs(_ context.Context, ids []string) ([]listingdomain.Listing, error) {
	out := []listingdomain.Listing{}
	for _, id := range ids {
		if l, ok := c.listings[id]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

// recordSocket realtime.Socket that keeps every text frame
type recordSocket struct {
	mu     sync.Mutex
	frames []domain.WSResponse
}

func (s *recordSocket) WriteMessage(messageType int, data []byte) error {
	if messageType != websocket.TextMessage {
		return nil
	}
	var frame struct {
		Action  domain.Action   `json:"action"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, domain.WSResponse{Action: frame.Action, Payload: frame.Payload})
	return nil
}

func (s *recordSocket) WriteControl(int, []byte, time.Time) error { return nil }
func (s *recordSocket) SetWriteDeadline(time.Time) error         { return nil }
func (s *recordSocket) Close() error                             { return nil }

// waitFor poll until a frame with action satisfies match, payload decoded into v
func (s *recordSocket) waitFor(action domain.Action, v interface{}, match func() bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	seen := 0
	for time.Now().Before(deadline) {
		s.mu.Lock()
		frames := append([]domain.WSResponse(nil), s.frames...)
		s.mu.Unlock()
		for ; seen < len(frames); seen++ {
			f := frames[seen]
			if f.Action != action {
				continue
			}
			raw, _ := f.Payload.(json.RawMessage)
			if v != nil && json.Unmarshal(raw, v) != nil {
				continue
			}
			if match == nil || match() {
				return true
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}
