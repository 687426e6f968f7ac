package database

import (
	"database/sql"
	"time"
)

type User struct {
	Id           int
	FirstName    string
	LastName     string
	EmailAddress string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Listing struct {
	Id        int
	OwnerId   int
	Title     string
	CreatedAt time.Time
}

type Conversation struct {
	Id             int
	ExternalId     string
	Participant1Id int
	Participant2Id int
	ListingId      sql.NullInt64
	LastMessageAt  time.Time
	CreatedAt      time.Time
}

type Message struct {
	Id             int
	ConversationId int
	SenderId       int
	Content        string
	Read           bool
	ReadAt         sql.NullTime
	CreatedAt      time.Time
}

type CreateAccountParams struct {
	FirstName    string
	LastName     string
	EmailAddress string
	PasswordHash string
}

type CreateConversationParams struct {
	ExternalId     string
	Participant1Id int
	Participant2Id int
	ListingId      int
	FirstMessage   string
}
