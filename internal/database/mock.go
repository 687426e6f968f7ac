package database

import (
	"github.com/stretchr/testify/mock"
)

type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockChatRepository) CreateAccount(params CreateAccountParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockChatRepository) GetAccountById(accountId int) (User, error) {
	args := m.Called(accountId)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockChatRepository) GetAccountByEmail(email string) (User, error) {
	args := m.Called(email)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockChatRepository) GetListingById(listingId int) (Listing, error) {
	args := m.Called(listingId)
	return args.Get(0).(Listing), args.Error(1)
}
func (m *MockChatRepository) CreateConversation(params CreateConversationParams) (Conversation, Message, error) {
	args := m.Called(params)
	return args.Get(0).(Conversation), args.Get(1).(Message), args.Error(2)
}
func (m *MockChatRepository) GetConversationByExternalId(externalId string) (Conversation, error) {
	args := m.Called(externalId)
	return args.Get(0).(Conversation), args.Error(1)
}
func (m *MockChatRepository) FindConversation(listingId, accountId, otherId int) (Conversation, error) {
	args := m.Called(listingId, accountId, otherId)
	return args.Get(0).(Conversation), args.Error(1)
}
func (m *MockChatRepository) ListConversations(accountId int) ([]Conversation, error) {
	args := m.Called(accountId)
	return args.Get(0).([]Conversation), args.Error(1)
}
func (m *MockChatRepository) ListConversationExternalIds(accountId int) ([]string, error) {
	args := m.Called(accountId)
	return args.Get(0).([]string), args.Error(1)
}
func (m *MockChatRepository) CreateMessage(conversationId, senderId int, content string) (Message, error) {
	args := m.Called(conversationId, senderId, content)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockChatRepository) GetMessages(conversationId, limit, offset int) ([]Message, error) {
	args := m.Called(conversationId, limit, offset)
	return args.Get(0).([]Message), args.Error(1)
}
func (m *MockChatRepository) CountMessages(conversationId int) (int, error) {
	args := m.Called(conversationId)
	return args.Int(0), args.Error(1)
}
func (m *MockChatRepository) GetLastMessage(conversationId int) (Message, error) {
	args := m.Called(conversationId)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockChatRepository) MarkMessagesRead(conversationId, readerId int) (int, error) {
	args := m.Called(conversationId, readerId)
	return args.Int(0), args.Error(1)
}
func (m *MockChatRepository) UnreadCount(conversationId, accountId int) (int, error) {
	args := m.Called(conversationId, accountId)
	return args.Int(0), args.Error(1)
}
func (m *MockChatRepository) TotalUnreadCount(accountId int) (int, error) {
	args := m.Called(accountId)
	return args.Int(0), args.Error(1)
}
