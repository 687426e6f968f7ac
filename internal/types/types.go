package types

import (
	"time"
)

type User struct {
	Id           int       `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	EmailAddress string    `json:"email_address,omitempty"`
	Password     string    `json:"-"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

type Message struct {
	Id             int        `json:"id"`
	ConversationId string     `json:"conversation_id"`
	SenderId       int        `json:"sender_id"`
	Content        string     `json:"content"`
	Read           bool       `json:"read"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	Timestamp      time.Time  `json:"timestamp"`
}

type Conversation struct {
	Id               string    `json:"id"`
	ListingId        int       `json:"listing_id,omitempty"`
	OtherParticipant User      `json:"other_participant"`
	LastMessage      *Message  `json:"last_message,omitempty"`
	UnreadCount      int       `json:"unread_count"`
	LastMessageAt    time.Time `json:"last_message_at"`
	CreatedAt        time.Time `json:"created_at,omitempty"`
}

type MessagePage struct {
	Messages   []Message `json:"messages"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"total_pages"`
}
