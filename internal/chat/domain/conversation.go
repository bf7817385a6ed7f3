package domain

import "time"

// Conversation durable buyer/seller thread scoped to one listing
type Conversation struct {
	ID              string    `bson:"_id" json:"id"`
	ListingID       string    `bson:"listing_id" json:"listingId"`
	BuyerID         string    `bson:"buyer_id" json:"buyerId"`
	SellerID        string    `bson:"seller_id" json:"sellerId"`
	LatestMessageID string    `bson:"latest_message_id,omitempty" json:"latestMessageId,omitempty"`
	CreatedAt       time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updated_at" json:"updatedAt"`
}

// IsParticipant identity is the buyer or the seller
func (c *Conversation) IsParticipant(identity string) bool {
	return identity != "" && (c.BuyerID == identity || c.SellerID == identity)
}

// Counterpart the other participant
func (c *Conversation) Counterpart(identity string) string {
	if c.BuyerID == identity {
		return c.SellerID
	}
	return c.BuyerID
}

// Participant display attributes of a buyer, seller or sender
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListingRef listing attributes shown on a conversation
type ListingRef struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Images []string `json:"images,omitempty"`
}

// ConversationSummary conversation as returned to a participant
type ConversationSummary struct {
	ID            string       `json:"id"`
	Listing       ListingRef   `json:"listing"`
	Buyer         Participant  `json:"buyer"`
	Seller        Participant  `json:"seller"`
	LatestMessage *MessageView `json:"latestMessage,omitempty"`
	UnreadCount   int64        `json:"unreadCount"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}
