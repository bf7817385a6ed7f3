package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"marketplace_chat_service/internal/chat/domain"
	"marketplace_chat_service/internal/chat/realtime"
	errprocess "marketplace_chat_service/pkg/err"
	"marketplace_chat_service/pkg/logger"

	"go.uber.org/zap"
)

// Presence registry used by a session
type Presence interface {
	Register(identity, handle string)
	Unregister(identity, handle string) bool
	ListOnline() []string
}

// Rooms local room membership
type Rooms interface {
	Join(roomID string, conn *realtime.Connection)
}

// Broadcaster global fan-out
type Broadcaster interface {
	ToAll(ctx context.Context, ev domain.WSResponse) error
}

// Deps collaborators shared by every session of the process
type Deps struct {
	Machine  *Machine
	Presence Presence
	Rooms    Rooms
	Bus      Broadcaster
}

// Session runs the machine for one connection and applies its effects
type Session struct {
	deps Deps
	conn *realtime.Connection

	mu        sync.Mutex
	state     State
	closeOnce sync.Once
}

// New create a Session in Connecting
func New(deps Deps, conn *realtime.Connection) *Session {
	return &Session{
		deps:  deps,
		conn:  conn,
		state: State{Phase: Connecting},
	}
}

// State current state snapshot
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ArmHandshake close the session if it is still Connecting after timeout
func (s *Session) ArmHandshake(timeout time.Duration) *time.Timer {
	return time.AfterFunc(timeout, func() {
		if s.State().Phase == Connecting {
			logger.Log.Warn("websocket handshake timeout", zap.String("conn", s.conn.ID))
			s.Close()
		}
	})
}

// Handle run one event; failures are reported to this connection only
func (s *Session) Handle(ctx context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, effects, err := s.deps.Machine.Transition(ctx, s.state, ev)
	if err != nil {
		logger.Log.Debug("session event rejected",
			zap.String("conn", s.conn.ID),
			zap.String("member", s.state.Identity),
			zap.String("phase", s.state.Phase.String()),
			zap.Error(err),
		)
		if errprocess.KindOf(err) == errprocess.KindInternal {
			logger.Log.Error("session event failed", zap.String("conn", s.conn.ID), zap.Error(err))
		}
		s.emit(domain.NewError(errprocess.PublicMessage(err)))
		return err
	}

	s.state = next
	s.apply(ctx, effects)
	return nil
}

// Close run disconnect cleanup exactly once, then close the socket
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		_ = s.Handle(context.Background(), Close{})
		s.conn.Close()
	})
}

// Dispatch decode an inbound frame and handle it
func (s *Session) Dispatch(ctx context.Context, raw []byte) error {
	ev, err := Decode(raw)
	if err != nil {
		s.mu.Lock()
		s.emit(domain.NewError(errprocess.PublicMessage(err)))
		s.mu.Unlock()
		return err
	}
	return s.Handle(ctx, ev)
}

func (s *Session) apply(ctx context.Context, effects []Effect) {
	for _, eff := range effects {
		switch e := eff.(type) {
		case RegisterPresence:
			s.deps.Presence.Register(s.state.Identity, s.conn.ID)
		case UnregisterPresence:
			s.deps.Presence.Unregister(s.state.Identity, s.conn.ID)
		case BroadcastOnline:
			online := s.deps.Presence.ListOnline()
			if err := s.deps.Bus.ToAll(ctx, domain.WSResponse{Action: domain.GetOnlineUsers, Payload: online}); err != nil {
				logger.Log.Error("broadcast online users failed", zap.Error(err))
			}
		case JoinRoom:
			s.deps.Rooms.Join(e.ConversationID, s.conn)
		case EmitSelf:
			s.emit(e.Frame)
		}
	}
}

func (s *Session) emit(frame domain.WSResponse) {
	data, err := json.Marshal(frame)
	if err != nil {
		logger.Log.Error("marshal websocket frame", zap.Error(err))
		return
	}
	_ = s.conn.Send(data)
}

// Decode map an inbound frame to an Event
func Decode(raw []byte) (Event, error) {
	var req domain.WSRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, errprocess.Validation("invalid frame")
	}

	switch req.Action {
	case domain.JoinChats:
		return JoinChats{}, nil
	case domain.SendMessage:
		var p domain.SendMessagePayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return nil, err
		}
		return SendMessage{ConversationID: p.ConversationID, Content: p.Content}, nil
	case domain.MarkMessagesAsRead:
		var p domain.MarkReadPayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return nil, err
		}
		return MarkRead{ConversationID: p.ConversationID, ReaderID: p.ReaderID}, nil
	}
	return nil, errprocess.Validation("unknown action: " + string(req.Action))
}

func decodePayload(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return errprocess.Validation("payload is required")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errprocess.Validation("invalid payload")
	}
	return nil
}
