package domain

import (
	"encoding/json"
	"time"
)

// Action websocket event name
type Action string

const (
	// JoinChats client asks to join one room per conversation
	JoinChats Action = "joinChats"
	// SendMessage client posts {conversationId, content}
	SendMessage Action = "sendMessage"
	// MarkMessagesAsRead client posts {conversationId, readerId}
	MarkMessagesAsRead Action = "markMessagesAsRead"

	// ReceiveMessage persisted message pushed to the room
	ReceiveMessage Action = "receiveMessage"
	// ChatUpdated global hint that a conversation summary changed
	ChatUpdated Action = "chatUpdated"
	// MessagesRead read receipt pushed to the room
	MessagesRead Action = "messagesRead"
	// GetOnlineUsers online identity snapshot pushed to everyone
	GetOnlineUsers Action = "getOnlineUsers"
	// MessageError failure reported to the originating connection only
	MessageError Action = "messageError"
	// ChatsJoined ack listing the rooms a connection joined
	ChatsJoined Action = "chatsJoined"
)

// WSRequest websocket inbound frame
type WSRequest struct {
	Action  Action          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// WSResponse websocket outbound frame
type WSResponse struct {
	Action  Action      `json:"action"`
	Payload interface{} `json:"payload,omitempty"`
}

// SendMessagePayload payload of sendMessage
type SendMessagePayload struct {
	ConversationID string `json:"conversationId"`
	Content        string `json:"content"`
}

// MarkReadPayload payload of markMessagesAsRead
type MarkReadPayload struct {
	ConversationID string `json:"conversationId"`
	ReaderID       string `json:"readerId"`
}

// MessagesReadPayload payload of messagesRead
type MessagesReadPayload struct {
	ConversationID string `json:"conversationId"`
	ReaderID       string `json:"readerId"`
	Updated        int64  `json:"updated"`
}

// ChatUpdatedPayload payload of chatUpdated; goes to every connection, so it never carries message content
type ChatUpdatedPayload struct {
	ConversationID string    `json:"conversationId"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ErrorPayload payload of messageError
type ErrorPayload struct {
	Error string `json:"error"`
}

// ChatsJoinedPayload payload of chatsJoined
type ChatsJoinedPayload struct {
	ConversationIDs []string `json:"conversationIds"`
}

// NewError build a messageError frame
func NewError(msg string) WSResponse {
	return WSResponse{Action: MessageError, Payload: ErrorPayload{Error: msg}}
}
