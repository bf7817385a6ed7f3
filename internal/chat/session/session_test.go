package session

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"marketplace_chat_service/internal/chat/domain"
	"marketplace_chat_service/internal/chat/presence"
	"marketplace_chat_service/internal/chat/realtime"
	errprocess "marketplace_chat_service/pkg/err"
	"marketplace_chat_service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) ConversationIDs(ctx context.Context, identity string) ([]string, error) {
	args := m.Called(ctx, identity)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *MockChatService) PostMessage(ctx context.Context, conversationID, senderID, content string) (*domain.MessageView, error) {
	args := m.Called(ctx, conversationID, senderID, content)
	v, _ := args.Get(0).(*domain.MessageView)
	return v, args.Error(1)
}

func (m *MockChatService) MarkRead(ctx context.Context, conversationID, readerID string) (int64, error) {
	args := m.Called(ctx, conversationID, readerID)
	return args.Get(0).(int64), args.Error(1)
}

type recordBus struct {
	mu     sync.Mutex
	online [][]string
}

func (b *recordBus) ToAll(_ context.Context, ev domain.WSResponse) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ids, ok := ev.Payload.([]string); ok && ev.Action == domain.GetOnlineUsers {
		b.online = append(b.online, ids)
	}
	return nil
}

func (b *recordBus) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.online)
}

type nopSocket struct {
	mu     sync.Mutex
	frames []string
}

func (n *nopSocket) WriteMessage(_ int, data []byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.frames = append(n.frames, string(data))
	return nil
}
func (n *nopSocket) WriteControl(int, []byte, time.Time) error { return nil }
func (n *nopSocket) SetWriteDeadline(time.Time) error         { return nil }
func (n *nopSocket) Close() error                              { return nil }

func (n *nopSocket) actions() []domain.Action {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []domain.Action
	for _, f := range n.frames {
		var ev domain.WSResponse
		if json.Unmarshal([]byte(f), &ev) == nil {
			out = append(out, ev.Action)
		}
	}
	return out
}

type fixture struct {
	chats    *MockChatService
	presence *presence.Registry
	hub      *realtime.Hub
	bus      *recordBus
	deps     Deps
}

func newFixture() *fixture {
	f := &fixture{
		chats:    &MockChatService{},
		presence: presence.NewRegistry(),
		hub:      realtime.NewHub(),
		bus:      &recordBus{},
	}
	f.deps = Deps{Machine: NewMachine(f.chats), Presence: f.presence, Rooms: f.hub, Bus: f.bus}
	return f
}

func (f *fixture) open(t *testing.T, identity string) (*Session, *nopSocket) {
	t.Helper()
	ws := &nopSocket{}
	conn := realtime.NewConnection(identity, ws, 16, 0)
	conn.Start()
	f.hub.Attach(conn)
	s := New(f.deps, conn)
	require.NoError(t, s.Handle(context.Background(), Authenticate{Identity: identity}))
	return s, ws
}

func TestMain(m *testing.M) {
	logger.SetNewNop()
	m.Run()
}

func TestTransition_Table(t *testing.T) {
	chats := &MockChatService{}
	chats.On("ConversationIDs", mock.Anything, "buyer-1").Return([]string{"c1", "c2"}, nil)
	m := NewMachine(chats)
	ctx := context.Background()

	connecting := State{Phase: Connecting}
	authed := State{Phase: Authenticated, Identity: "buyer-1"}
	joined := State{Phase: Joined, Identity: "buyer-1"}

	_, _, err := m.Transition(ctx, connecting, SendMessage{ConversationID: "c1", Content: "x"})
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, _, err = m.Transition(ctx, connecting, Authenticate{})
	assert.True(t, errprocess.IsAuthentication(err))

	next, effects, err := m.Transition(ctx, connecting, Authenticate{Identity: "buyer-1"})
	require.NoError(t, err)
	assert.Equal(t, authed, next)
	assert.Equal(t, []Effect{RegisterPresence{}, BroadcastOnline{}}, effects)

	next, effects, err = m.Transition(ctx, authed, JoinChats{})
	require.NoError(t, err)
	assert.Equal(t, joined, next)
	assert.Contains(t, effects, JoinRoom{ConversationID: "c1"})
	assert.Contains(t, effects, JoinRoom{ConversationID: "c2"})

	next, effects, err = m.Transition(ctx, connecting, Close{})
	require.NoError(t, err)
	assert.Equal(t, Disconnected, next.Phase)
	assert.Empty(t, effects)

	next, effects, err = m.Transition(ctx, joined, Close{})
	require.NoError(t, err)
	assert.Equal(t, Disconnected, next.Phase)
	assert.Equal(t, []Effect{UnregisterPresence{}, BroadcastOnline{}}, effects)

	_, _, err = m.Transition(ctx, next, JoinChats{})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestTransition_MarkReadRejectsForeignReader(t *testing.T) {
	m := NewMachine(&MockChatService{})
	s := State{Phase: Joined, Identity: "buyer-1"}

	next, effects, err := m.Transition(context.Background(), s, MarkRead{ConversationID: "c1", ReaderID: "seller-1"})
	assert.True(t, errprocess.IsForbidden(err))
	assert.Equal(t, s, next)
	assert.Nil(t, effects)
}

func TestSession_CloseRunsCleanupOnce(t *testing.T) {
	f := newFixture()
	s, _ := f.open(t, "buyer-1")
	assert.Equal(t, []string{"buyer-1"}, f.presence.ListOnline())
	assert.Equal(t, 1, f.bus.count())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Close()
		}()
	}
	wg.Wait()

	assert.Empty(t, f.presence.ListOnline())
	assert.Equal(t, 2, f.bus.count())
	assert.Equal(t, Disconnected, s.State().Phase)
}

func TestSession_DelayedDisconnectKeepsReconnect(t *testing.T) {
	f := newFixture()
	first, _ := f.open(t, "buyer-1")
	second, _ := f.open(t, "buyer-1")

	first.Close()
	assert.Equal(t, []string{"buyer-1"}, f.presence.ListOnline())

	second.Close()
	assert.Empty(t, f.presence.ListOnline())
}

func TestSession_SendFailureReportedToOriginOnly(t *testing.T) {
	f := newFixture()
	f.chats.On("PostMessage", mock.Anything, "c1", "stranger", "hi").
		Return(nil, errprocess.Forbidden("not a participant of this conversation"))

	s, ws := f.open(t, "stranger")
	_, other := f.open(t, "seller-1")

	err := s.Dispatch(context.Background(), []byte(`{"action":"sendMessage","payload":{"conversationId":"c1","content":"hi"}}`))
	assert.True(t, errprocess.IsForbidden(err))
	assert.Equal(t, Authenticated, s.State().Phase)

	assert.Eventually(t, func() bool {
		for _, a := range ws.actions() {
			if a == domain.MessageError {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
	assert.NotContains(t, other.actions(), domain.MessageError)
}

func TestSession_JoinChatsJoinsRooms(t *testing.T) {
	f := newFixture()
	f.chats.On("ConversationIDs", mock.Anything, "buyer-1").Return([]string{"c1"}, nil)

	s, _ := f.open(t, "buyer-1")
	require.NoError(t, s.Dispatch(context.Background(), []byte(`{"action":"joinChats"}`)))
	assert.Equal(t, Joined, s.State().Phase)
	assert.Equal(t, 1, f.hub.RoomSize("c1"))
}

func TestSession_HandshakeTimeout(t *testing.T) {
	f := newFixture()
	conn := realtime.NewConnection("", &nopSocket{}, 4, 0)
	conn.Start()
	s := New(f.deps, conn)

	s.ArmHandshake(10 * time.Millisecond)
	select {
	case <-conn.Done():
	case <-time.After(time.Second):
		t.Fatal("connection not closed after handshake timeout")
	}
	assert.Equal(t, Disconnected, s.State().Phase)
}

func TestDecode(t *testing.T) {
	ev, err := Decode([]byte(`{"action":"markMessagesAsRead","payload":{"conversationId":"c1","readerId":"b1"}}`))
	require.NoError(t, err)
	assert.Equal(t, MarkRead{ConversationID: "c1", ReaderID: "b1"}, ev)

	_, err = Decode([]byte(`{"action":"dance"}`))
	assert.True(t, errprocess.IsValidation(err))

	_, err = Decode([]byte(`not json`))
	assert.True(t, errprocess.IsValidation(err))

	_, err = Decode([]byte(`{"action":"sendMessage"}`))
	assert.True(t, errprocess.IsValidation(err))
}
