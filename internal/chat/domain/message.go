package domain

import "time"

// Message one chat message; only Read ever changes after insert
type Message struct {
	ID             string    `bson:"_id" json:"id"`
	ConversationID string    `bson:"conversation_id" json:"conversationId"`
	SenderID       string    `bson:"sender_id" json:"senderId"`
	Content        string    `bson:"content" json:"content"`
	Read           bool      `bson:"read" json:"read"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
}

// MessageView message with the sender resolved
type MessageView struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"conversationId"`
	Sender         Participant `json:"sender"`
	Content        string      `json:"content"`
	Read           bool        `json:"read"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// View attach sender display attributes
func (m *Message) View(sender Participant) MessageView {
	if sender.ID == "" {
		sender.ID = m.SenderID
	}
	return MessageView{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Sender:         sender,
		Content:        m.Content,
		Read:           m.Read,
		CreatedAt:      m.CreatedAt,
	}
}
