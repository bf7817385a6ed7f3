package session

import "marketplace_chat_service/internal/chat/domain"

// Phase connection protocol state
type Phase int

const (
	// Connecting upgraded, identity not yet bound
	Connecting Phase = iota
	// Authenticated presence registered
	Authenticated
	// Joined rooms joined for the identity's conversations
	Joined
	// Disconnected terminal
	Disconnected
)

func (p Phase) String() string {
	switch p {
	case Connecting:
		return "connecting"
	case Authenticated:
		return "authenticated"
	case Joined:
		return "joined"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// State machine state of one connection
type State struct {
	Phase    Phase
	Identity string
}

// Event input to Transition
type Event interface {
	event()
}

// Authenticate bind the verified identity
type Authenticate struct {
	Identity string
}

// JoinChats join one room per conversation of the identity
type JoinChats struct{}

// SendMessage relay a message through the shared post path
type SendMessage struct {
	ConversationID string
	Content        string
}

// MarkRead relay a read receipt
type MarkRead struct {
	ConversationID string
	ReaderID       string
}

// Close transport closed, from any state
type Close struct{}

func (Authenticate) event() {}
func (JoinChats) event()    {}
func (SendMessage) event()  {}
func (MarkRead) event()     {}
func (Close) event()        {}

// Effect side effect requested by a transition, applied by the Session
type Effect interface {
	effect()
}

// RegisterPresence map identity to this connection
type RegisterPresence struct{}

// UnregisterPresence drop identity if still mapped to this connection
type UnregisterPresence struct{}

// BroadcastOnline push the online snapshot to everyone
type BroadcastOnline struct{}

// JoinRoom subscribe this connection to a conversation room
type JoinRoom struct {
	ConversationID string
}

// EmitSelf send a frame to this connection only
type EmitSelf struct {
	Frame domain.WSResponse
}

func (RegisterPresence) effect()   {}
func (UnregisterPresence) effect() {}
func (BroadcastOnline) effect()    {}
func (JoinRoom) effect()           {}
func (EmitSelf) effect()           {}
