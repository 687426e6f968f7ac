package database

type ChatRepository interface {
	Ping() error
	CreateAccount(params CreateAccountParams) (User, error)
	GetAccountById(accountId int) (User, error)
	GetAccountByEmail(email string) (User, error)
	GetListingById(listingId int) (Listing, error)
	CreateConversation(params CreateConversationParams) (Conversation, Message, error)
	GetConversationByExternalId(externalId string) (Conversation, error)
	FindConversation(listingId, accountId, otherId int) (Conversation, error)
	ListConversations(accountId int) ([]Conversation, error)
	ListConversationExternalIds(accountId int) ([]string, error)
	CreateMessage(conversationId, senderId int, content string) (Message, error)
	GetMessages(conversationId, limit, offset int) ([]Message, error)
	CountMessages(conversationId int) (int, error)
	GetLastMessage(conversationId int) (Message, error)
	MarkMessagesRead(conversationId, readerId int) (int, error)
	UnreadCount(conversationId, accountId int) (int, error)
	TotalUnreadCount(accountId int) (int, error)
}
