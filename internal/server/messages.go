package server

import (
	"net/http"
	"time"

	"github.com/propchat/propchat/internal/types"
)

// Outbound event names.
const (
	EventJoinedConversation = "joined_conversation"
	EventLeftConversation   = "left_conversation"
	EventUserTyping         = "user_typing"
	EventUserStoppedTyping  = "user_stopped_typing"
	EventMessagesRead       = "messages_read"
	EventNewMessage         = "new_message"
	EventNewConversation    = "new_conversation"
	EventError              = "error"
)

// ClientEvent is the inbound envelope; exactly one of the pointer fields
// is set, named after the wire event.
type ClientEvent struct {
	Id          int                `json:"id,omitempty"`
	Join        *JoinConversation  `json:"join_conversation,omitempty"`
	Leave       *LeaveConversation `json:"leave_conversation,omitempty"`
	TypingStart *Typing            `json:"typing_start,omitempty"`
	TypingStop  *Typing            `json:"typing_stop,omitempty"`
	MarkAsRead  *MarkAsRead        `json:"mark_as_read,omitempty"`
}

type JoinConversation struct {
	ConversationId string `json:"conversation_id"`
}

type LeaveConversation struct {
	ConversationId string `json:"conversation_id"`
}

type Typing struct {
	ConversationId string `json:"conversation_id"`
}

type MarkAsRead struct {
	ConversationId string `json:"conversation_id"`
}

type ServerEvent struct {
	Event        string              `json:"event"`
	Id           int                 `json:"id,omitempty"`
	Timestamp    time.Time           `json:"timestamp"`
	Conversation *types.Conversation `json:"conversation,omitempty"`
	Message      *types.Message      `json:"message,omitempty"`
	Typing       *TypingNotification `json:"typing,omitempty"`
	Read         *ReadNotification   `json:"read,omitempty"`
	Error        *ErrorPayload       `json:"error,omitempty"`
}

type TypingNotification struct {
	AccountId      int    `json:"user_id"`
	ConversationId string `json:"conversation_id"`
}

type ReadNotification struct {
	AccountId      int    `json:"user_id"`
	ConversationId string `json:"conversation_id"`
}

type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newErrorEvent(id, code int, message string) *ServerEvent {
	return &ServerEvent{
		Event:     EventError,
		Id:        id,
		Timestamp: Now(),
		Error: &ErrorPayload{
			Code:    code,
			Message: message,
		},
	}
}

func ErrConversationNotFound(id int) *ServerEvent {
	return newErrorEvent(id, http.StatusNotFound, "conversation not found")
}

func ErrNotParticipant(id int) *ServerEvent {
	return newErrorEvent(id, http.StatusForbidden, "not a participant")
}

func ErrInternalError(id int) *ServerEvent {
	return newErrorEvent(id, http.StatusInternalServerError, "internal server error")
}

func ErrInvalidEvent(id int) *ServerEvent {
	return newErrorEvent(id, http.StatusBadRequest, "invalid event format")
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
