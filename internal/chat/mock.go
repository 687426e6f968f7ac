package chat

import (
	"github.com/propchat/propchat/internal/types"
	"github.com/stretchr/testify/mock"
)

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) GetConversations(accountId int) ([]types.Conversation, error) {
	args := m.Called(accountId)
	return args.Get(0).([]types.Conversation), args.Error(1)
}
func (m *MockChatService) GetConversation(externalId string, accountId int) (types.Conversation, error) {
	args := m.Called(externalId, accountId)
	return args.Get(0).(types.Conversation), args.Error(1)
}
func (m *MockChatService) GetMessages(externalId string, accountId, page, limit int) (types.MessagePage, error) {
	args := m.Called(externalId, accountId, page, limit)
	return args.Get(0).(types.MessagePage), args.Error(1)
}
func (m *MockChatService) StartConversation(accountId, listingId int, content string) (types.Conversation, error) {
	args := m.Called(accountId, listingId, content)
	return args.Get(0).(types.Conversation), args.Error(1)
}
func (m *MockChatService) SendMessage(externalId string, accountId int, content string) (types.Message, error) {
	args := m.Called(externalId, accountId, content)
	return args.Get(0).(types.Message), args.Error(1)
}
func (m *MockChatService) MarkConversationRead(externalId string, accountId int) error {
	args := m.Called(externalId, accountId)
	return args.Error(0)
}
func (m *MockChatService) UnreadCount(accountId int) (int, error) {
	args := m.Called(accountId)
	return args.Int(0), args.Error(1)
}
func (m *MockChatService) ConversationIds(accountId int) ([]string, error) {
	args := m.Called(accountId)
	return args.Get(0).([]string), args.Error(1)
}

type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) EmitNewMessage(conversationId string, msg types.Message) {
	m.Called(conversationId, msg)
}
func (m *MockBroadcaster) EmitNewConversation(accountId int, conv types.Conversation) {
	m.Called(accountId, conv)
}
