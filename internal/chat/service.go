package chat

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"slices"

	"github.com/propchat/propchat/internal/database"
	"github.com/propchat/propchat/internal/types"
	"github.com/teris-io/shortid"
)

const (
	defaultPage  = 1
	defaultLimit = 50
	maxLimit     = 100
)

// Service is the full conversation surface consumed by the API layer.
type Service interface {
	GetConversations(accountId int) ([]types.Conversation, error)
	GetConversation(externalId string, accountId int) (types.Conversation, error)
	GetMessages(externalId string, accountId, page, limit int) (types.MessagePage, error)
	StartConversation(accountId, listingId int, content string) (types.Conversation, error)
	SendMessage(externalId string, accountId int, content string) (types.Message, error)
	MarkConversationRead(externalId string, accountId int) error
	UnreadCount(accountId int) (int, error)
	ConversationIds(accountId int) ([]string, error)
}

// Broadcaster is the narrow realtime surface the service fans events out
// through. The gateway implements it; broadcast is best-effort on top of a
// committed write and is never retried.
type Broadcaster interface {
	EmitNewMessage(conversationId string, msg types.Message)
	EmitNewConversation(accountId int, conv types.Conversation)
}

type ChatService struct {
	log *log.Logger
	db  database.ChatRepository
	bc  Broadcaster
}

func NewChatService(logger *log.Logger, db database.ChatRepository) *ChatService {
	return &ChatService{
		log: logger,
		db:  db,
	}
}

// SetBroadcaster wires the realtime gateway in after construction, since
// the gateway itself is constructed with a reference to this service.
func (s *ChatService) SetBroadcaster(bc Broadcaster) {
	s.bc = bc
}

// GetConversations returns every conversation the account participates
// in, newest activity first, enriched with the other participant's
// profile, the last message and the unread count.
func (s *ChatService) GetConversations(accountId int) ([]types.Conversation, error) {
	dbConvs, err := s.db.ListConversations(accountId)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	conversations := make([]types.Conversation, 0, len(dbConvs))
	for _, dbConv := range dbConvs {
		conv, err := s.enrichConversation(dbConv, accountId)
		if err != nil {
			return nil, err
		}

		conversations = append(conversations, conv)
	}

	return conversations, nil
}

func (s *ChatService) GetConversation(externalId string, accountId int) (types.Conversation, error) {
	dbConv, err := s.findConversation(externalId, accountId)
	if err != nil {
		return types.Conversation{}, err
	}

	return s.enrichConversation(dbConv, accountId)
}

// GetMessages returns one page of messages in chronological order. As a
// side effect it marks every unread message from the other participant as
// read: fetching a page acknowledges it.
func (s *ChatService) GetMessages(externalId string, accountId, page, limit int) (types.MessagePage, error) {
	dbConv, err := s.findConversation(externalId, accountId)
	if err != nil {
		return types.MessagePage{}, err
	}

	if page < 1 {
		page = defaultPage
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	total, err := s.db.CountMessages(dbConv.Id)
	if err != nil {
		return types.MessagePage{}, fmt.Errorf("count messages: %w", err)
	}

	dbMsgs, err := s.db.GetMessages(dbConv.Id, limit, (page-1)*limit)
	if err != nil {
		return types.MessagePage{}, fmt.Errorf("get messages: %w", err)
	}

	messages := make([]types.Message, 0, len(dbMsgs))
	for _, dbMsg := range dbMsgs {
		messages = append(messages, s.toMessage(dbMsg, dbConv.ExternalId))
	}
	// the query returns newest first, callers get oldest first
	slices.Reverse(messages)

	if _, err := s.db.MarkMessagesRead(dbConv.Id, accountId); err != nil {
		return types.MessagePage{}, fmt.Errorf("mark messages read: %w", err)
	}

	return types.MessagePage{
		Messages:   messages,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

// StartConversation opens a conversation with the listing's owner, or
// appends to the existing one for this listing and participant pair.
func (s *ChatService) StartConversation(accountId, listingId int, content string) (types.Conversation, error) {
	listing, err := s.db.GetListingById(listingId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Conversation{}, ErrNotFound
		}
		return types.Conversation{}, fmt.Errorf("get listing: %w", err)
	}

	if listing.OwnerId == accountId {
		return types.Conversation{}, ErrForbidden
	}

	dbConv, err := s.db.FindConversation(listingId, accountId, listing.OwnerId)
	if err == nil {
		// existing conversation, append the message
		dbMsg, err := s.db.CreateMessage(dbConv.Id, accountId, content)
		if err != nil {
			return types.Conversation{}, fmt.Errorf("create message: %w", err)
		}

		msg := s.toMessage(dbMsg, dbConv.ExternalId)
		if s.bc != nil {
			s.bc.EmitNewMessage(dbConv.ExternalId, msg)
		}

		conv, err := s.enrichConversation(dbConv, accountId)
		if err != nil {
			return types.Conversation{}, err
		}
		conv.LastMessage = &msg
		conv.LastMessageAt = msg.Timestamp

		return conv, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return types.Conversation{}, fmt.Errorf("find conversation: %w", err)
	}

	externalId, err := shortid.Generate()
	if err != nil {
		return types.Conversation{}, fmt.Errorf("generate conversation id: %w", err)
	}

	newConv, dbMsg, err := s.db.CreateConversation(database.CreateConversationParams{
		ExternalId:     externalId,
		Participant1Id: accountId,
		Participant2Id: listing.OwnerId,
		ListingId:      listingId,
		FirstMessage:   content,
	})
	if err != nil {
		return types.Conversation{}, fmt.Errorf("create conversation: %w", err)
	}

	msg := s.toMessage(dbMsg, newConv.ExternalId)

	// the owner's sessions have no room for a conversation they didn't
	// know existed, so notify their user room instead
	if s.bc != nil {
		ownerConv, err := s.enrichConversation(newConv, listing.OwnerId)
		if err != nil {
			s.log.Println("enrich conversation for owner:", err)
		} else {
			ownerConv.LastMessage = &msg
			s.bc.EmitNewConversation(listing.OwnerId, ownerConv)
		}
	}

	conv, err := s.enrichConversation(newConv, accountId)
	if err != nil {
		return types.Conversation{}, err
	}
	conv.LastMessage = &msg

	return conv, nil
}

func (s *ChatService) SendMessage(externalId string, accountId int, content string) (types.Message, error) {
	dbConv, err := s.findConversation(externalId, accountId)
	if err != nil {
		return types.Message{}, err
	}

	dbMsg, err := s.db.CreateMessage(dbConv.Id, accountId, content)
	if err != nil {
		return types.Message{}, fmt.Errorf("create message: %w", err)
	}

	msg := s.toMessage(dbMsg, dbConv.ExternalId)
	if s.bc != nil {
		s.bc.EmitNewMessage(dbConv.ExternalId, msg)
	}

	return msg, nil
}

// MarkConversationRead flags every unread message from the other
// participant as read. Used by the gateway's mark_as_read event.
func (s *ChatService) MarkConversationRead(externalId string, accountId int) error {
	dbConv, err := s.findConversation(externalId, accountId)
	if err != nil {
		return err
	}

	if _, err := s.db.MarkMessagesRead(dbConv.Id, accountId); err != nil {
		return fmt.Errorf("mark messages read: %w", err)
	}

	return nil
}

// UnreadCount returns the total number of unread messages addressed to
// the account across all of its conversations.
func (s *ChatService) UnreadCount(accountId int) (int, error) {
	count, err := s.db.TotalUnreadCount(accountId)
	if err != nil {
		return 0, fmt.Errorf("total unread count: %w", err)
	}

	return count, nil
}

// ConversationIds lists the external ids of every conversation the
// account participates in, for room auto-join at connect time.
func (s *ChatService) ConversationIds(accountId int) ([]string, error) {
	ids, err := s.db.ListConversationExternalIds(accountId)
	if err != nil {
		return nil, fmt.Errorf("list conversation ids: %w", err)
	}

	return ids, nil
}

// findConversation resolves an external id and enforces that the account
// is one of the two participants, before any side effect.
func (s *ChatService) findConversation(externalId string, accountId int) (database.Conversation, error) {
	dbConv, err := s.db.GetConversationByExternalId(externalId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return database.Conversation{}, ErrNotFound
		}
		return database.Conversation{}, fmt.Errorf("get conversation: %w", err)
	}

	if dbConv.Participant1Id != accountId && dbConv.Participant2Id != accountId {
		return database.Conversation{}, ErrForbidden
	}

	return dbConv, nil
}

func (s *ChatService) enrichConversation(dbConv database.Conversation, accountId int) (types.Conversation, error) {
	otherId := otherParticipantId(dbConv, accountId)

	other, err := s.db.GetAccountById(otherId)
	if err != nil {
		return types.Conversation{}, fmt.Errorf("get other participant: %w", err)
	}

	conv := types.Conversation{
		Id: dbConv.ExternalId,
		OtherParticipant: types.User{
			Id:        other.Id,
			FirstName: other.FirstName,
			LastName:  other.LastName,
		},
		LastMessageAt: dbConv.LastMessageAt,
		CreatedAt:     dbConv.CreatedAt,
	}
	if dbConv.ListingId.Valid {
		conv.ListingId = int(dbConv.ListingId.Int64)
	}

	lastMsg, err := s.db.GetLastMessage(dbConv.Id)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return types.Conversation{}, fmt.Errorf("get last message: %w", err)
		}
	} else {
		msg := s.toMessage(lastMsg, dbConv.ExternalId)
		conv.LastMessage = &msg
	}

	unread, err := s.db.UnreadCount(dbConv.Id, accountId)
	if err != nil {
		return types.Conversation{}, fmt.Errorf("unread count: %w", err)
	}
	conv.UnreadCount = unread

	return conv, nil
}

func (s *ChatService) toMessage(dbMsg database.Message, externalId string) types.Message {
	msg := types.Message{
		Id:             dbMsg.Id,
		ConversationId: externalId,
		SenderId:       dbMsg.SenderId,
		Content:        dbMsg.Content,
		Read:           dbMsg.Read,
		Timestamp:      dbMsg.CreatedAt,
	}
	if dbMsg.ReadAt.Valid {
		readAt := dbMsg.ReadAt.Time
		msg.ReadAt = &readAt
	}

	return msg
}

// otherParticipantId is the canonical rule for interpreting a
// conversation from one side.
func otherParticipantId(conv database.Conversation, accountId int) int {
	if conv.Participant1Id == accountId {
		return conv.Participant2Id
	}
	return conv.Participant1Id
}
