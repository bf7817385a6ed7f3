package session

import (
	"context"
	"errors"
	"fmt"

	"marketplace_chat_service/internal/chat/domain"
	errprocess "marketplace_chat_service/pkg/err"
)

var (
	// ErrNotAuthenticated event before Authenticate
	ErrNotAuthenticated = errprocess.Authentication("not authenticated", nil)
	// ErrClosed event after Close
	ErrClosed = errors.New("session closed")
)

// ChatService operations a session delegates to; shared with the REST gateway
type ChatService interface {
	ConversationIDs(ctx context.Context, identity string) ([]string, error)
	PostMessage(ctx context.Context, conversationID, senderID, content string) (*domain.MessageView, error)
	MarkRead(ctx context.Context, conversationID, readerID string) (int64, error)
}

// Machine transition function over State; holds no per-connection data
type Machine struct {
	chats ChatService
}

// NewMachine create Machine
func NewMachine(chats ChatService) *Machine {
	return &Machine{chats: chats}
}

// Transition compute next state and effects. On error the state is unchanged.
func (m *Machine) Transition(ctx context.Context, s State, ev Event) (State, []Effect, error) {
	if _, ok := ev.(Close); ok {
		return m.close(s)
	}

	switch s.Phase {
	case Connecting:
		auth, ok := ev.(Authenticate)
		if !ok {
			return s, nil, ErrNotAuthenticated
		}
		if auth.Identity == "" {
			return s, nil, errprocess.Authentication("missing identity", nil)
		}
		next := State{Phase: Authenticated, Identity: auth.Identity}
		return next, []Effect{RegisterPresence{}, BroadcastOnline{}}, nil

	case Authenticated, Joined:
		return m.active(ctx, s, ev)

	case Disconnected:
		return s, nil, ErrClosed
	}
	return s, nil, fmt.Errorf("unknown phase %d", s.Phase)
}

func (m *Machine) active(ctx context.Context, s State, ev Event) (State, []Effect, error) {
	switch e := ev.(type) {
	case JoinChats:
		ids, err := m.chats.ConversationIDs(ctx, s.Identity)
		if err != nil {
			return s, nil, err
		}
		effects := make([]Effect, 0, len(ids)+1)
		for _, id := range ids {
			effects = append(effects, JoinRoom{ConversationID: id})
		}
		effects = append(effects, EmitSelf{Frame: domain.WSResponse{
			Action:  domain.ChatsJoined,
			Payload: domain.ChatsJoinedPayload{ConversationIDs: ids},
		}})
		return State{Phase: Joined, Identity: s.Identity}, effects, nil

	case SendMessage:
		if e.ConversationID == "" {
			return s, nil, errprocess.Validation("conversationId is required")
		}
		// room and global notifications are emitted by the chat service
		if _, err := m.chats.PostMessage(ctx, e.ConversationID, s.Identity, e.Content); err != nil {
			return s, nil, err
		}
		return s, nil, nil

	case MarkRead:
		if e.ConversationID == "" {
			return s, nil, errprocess.Validation("conversationId is required")
		}
		if e.ReaderID != "" && e.ReaderID != s.Identity {
			return s, nil, errprocess.Forbidden("readerId does not match the connection identity")
		}
		if _, err := m.chats.MarkRead(ctx, e.ConversationID, s.Identity); err != nil {
			return s, nil, err
		}
		return s, nil, nil

	case Authenticate:
		return s, nil, errprocess.Validation("already authenticated")
	}
	return s, nil, errprocess.Validation(fmt.Sprintf("unsupported event %T", ev))
}

func (m *Machine) close(s State) (State, []Effect, error) {
	next := State{Phase: Disconnected, Identity: s.Identity}
	switch s.Phase {
	case Authenticated, Joined:
		return next, []Effect{UnregisterPresence{}, BroadcastOnline{}}, nil
	default:
		return next, nil, nil
	}
}
