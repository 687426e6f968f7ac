package database

import (
	"fmt"
	"time"
)

const (
	defaultMessageLimit = 50

	messageColumns = "id, conversation_id, sender_id, content, read, read_at, created_at"

	conversationColumns = "id, external_id, participant1_id, participant2_id, listing_id, last_message_at, created_at"
)

func (db *PgChatRepository) CreateAccount(params CreateAccountParams) (User, error) {
	res := db.conn.QueryRow(
		"INSERT INTO users (first_name, last_name, email, password_hash, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5, $5) RETURNING id, first_name, last_name, email, created_at, updated_at",
		params.FirstName,
		params.LastName,
		params.EmailAddress,
		params.PasswordHash,
		time.Now().UTC(),
	)

	var u User
	err := res.Scan(
		&u.Id,
		&u.FirstName,
		&u.LastName,
		&u.EmailAddress,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (db *PgChatRepository) GetAccountById(accountId int) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, first_name, last_name, email, created_at, updated_at FROM users "+
			"WHERE id = $1 LIMIT 1",
		accountId,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.FirstName,
		&user.LastName,
		&user.EmailAddress,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	return user, err
}

func (db *PgChatRepository) GetAccountByEmail(email string) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, first_name, last_name, email, password_hash, created_at, updated_at FROM users "+
			"WHERE email = $1 LIMIT 1",
		email,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.FirstName,
		&user.LastName,
		&user.EmailAddress,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	return user, err
}

func (db *PgChatRepository) GetListingById(listingId int) (Listing, error) {
	row := db.conn.QueryRow(
		"SELECT id, owner_id, title, created_at FROM listings WHERE id = $1 LIMIT 1",
		listingId,
	)

	var listing Listing
	err := row.Scan(
		&listing.Id,
		&listing.OwnerId,
		&listing.Title,
		&listing.CreatedAt,
	)

	return listing, err
}

// CreateConversation inserts a conversation and its first message in a
// single transaction so a conversation never exists without a message.
func (db *PgChatRepository) CreateConversation(params CreateConversationParams) (Conversation, Message, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return Conversation{}, Message{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	res := tx.QueryRow(
		"INSERT INTO conversations (external_id, participant1_id, participant2_id, listing_id, last_message_at, created_at) "+
			"VALUES ($1, $2, $3, $4, $5, $5) RETURNING "+conversationColumns,
		params.ExternalId,
		params.Participant1Id,
		params.Participant2Id,
		params.ListingId,
		now,
	)

	var conv Conversation
	err = res.Scan(
		&conv.Id,
		&conv.ExternalId,
		&conv.Participant1Id,
		&conv.Participant2Id,
		&conv.ListingId,
		&conv.LastMessageAt,
		&conv.CreatedAt,
	)
	if err != nil {
		return Conversation{}, Message{}, err
	}

	msgRow := tx.QueryRow(
		"INSERT INTO messages (conversation_id, sender_id, content, created_at) "+
			"VALUES ($1, $2, $3, $4) RETURNING "+messageColumns,
		conv.Id,
		params.Participant1Id,
		params.FirstMessage,
		now,
	)

	var msg Message
	err = msgRow.Scan(
		&msg.Id,
		&msg.ConversationId,
		&msg.SenderId,
		&msg.Content,
		&msg.Read,
		&msg.ReadAt,
		&msg.CreatedAt,
	)
	if err != nil {
		return Conversation{}, Message{}, err
	}

	if err = tx.Commit(); err != nil {
		return Conversation{}, Message{}, err
	}

	return conv, msg, nil
}

func (db *PgChatRepository) GetConversationByExternalId(externalId string) (Conversation, error) {
	row := db.conn.QueryRow(
		"SELECT "+conversationColumns+" FROM conversations WHERE external_id = $1 LIMIT 1",
		externalId,
	)

	var conv Conversation
	err := row.Scan(
		&conv.Id,
		&conv.ExternalId,
		&conv.Participant1Id,
		&conv.Participant2Id,
		&conv.ListingId,
		&conv.LastMessageAt,
		&conv.CreatedAt,
	)

	return conv, err
}

// FindConversation looks up the conversation for a listing and an
// unordered participant pair.
func (db *PgChatRepository) FindConversation(listingId, accountId, otherId int) (Conversation, error) {
	row := db.conn.QueryRow(
		"SELECT "+conversationColumns+" FROM conversations "+
			"WHERE listing_id = $1 AND ((participant1_id = $2 AND participant2_id = $3) "+
			"OR (participant1_id = $3 AND participant2_id = $2)) LIMIT 1",
		listingId,
		accountId,
		otherId,
	)

	var conv Conversation
	err := row.Scan(
		&conv.Id,
		&conv.ExternalId,
		&conv.Participant1Id,
		&conv.Participant2Id,
		&conv.ListingId,
		&conv.LastMessageAt,
		&conv.CreatedAt,
	)

	return conv, err
}

func (db *PgChatRepository) ListConversations(accountId int) ([]Conversation, error) {
	rows, err := db.conn.Query(
		"SELECT "+conversationColumns+" FROM conversations "+
			"WHERE participant1_id = $1 OR participant2_id = $1 ORDER BY last_message_at DESC",
		accountId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversations []Conversation
	for rows.Next() {
		var conv Conversation
		if err = rows.Scan(
			&conv.Id,
			&conv.ExternalId,
			&conv.Participant1Id,
			&conv.Participant2Id,
			&conv.ListingId,
			&conv.LastMessageAt,
			&conv.CreatedAt,
		); err != nil {
			break
		}

		conversations = append(conversations, conv)
	}

	return conversations, err
}

func (db *PgChatRepository) ListConversationExternalIds(accountId int) ([]string, error) {
	rows, err := db.conn.Query(
		"SELECT external_id FROM conversations WHERE participant1_id = $1 OR participant2_id = $1",
		accountId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			break
		}

		ids = append(ids, id)
	}

	return ids, err
}

// CreateMessage inserts a message and advances the conversation's
// last_message_at in one transaction.
func (db *PgChatRepository) CreateMessage(conversationId, senderId int, content string) (Message, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return Message{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	res := tx.QueryRow(
		"INSERT INTO messages (conversation_id, sender_id, content, created_at) "+
			"VALUES ($1, $2, $3, $4) RETURNING "+messageColumns,
		conversationId,
		senderId,
		content,
		now,
	)

	var msg Message
	err = res.Scan(
		&msg.Id,
		&msg.ConversationId,
		&msg.SenderId,
		&msg.Content,
		&msg.Read,
		&msg.ReadAt,
		&msg.CreatedAt,
	)
	if err != nil {
		return Message{}, err
	}

	_, err = tx.Exec(
		"UPDATE conversations SET last_message_at = $1 WHERE id = $2",
		now,
		conversationId,
	)
	if err != nil {
		return Message{}, err
	}

	if err = tx.Commit(); err != nil {
		return Message{}, err
	}

	return msg, nil
}

// GetMessages returns a page of messages ordered newest first.
func (db *PgChatRepository) GetMessages(conversationId, limit, offset int) ([]Message, error) {
	if limit <= 0 {
		limit = defaultMessageLimit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := db.conn.Query(
		"SELECT "+messageColumns+" FROM messages "+
			"WHERE conversation_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3",
		conversationId,
		limit,
		offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages = make([]Message, 0, limit)
	for rows.Next() {
		var msg Message
		if err = rows.Scan(
			&msg.Id,
			&msg.ConversationId,
			&msg.SenderId,
			&msg.Content,
			&msg.Read,
			&msg.ReadAt,
			&msg.CreatedAt,
		); err != nil {
			break
		}

		messages = append(messages, msg)
	}

	return messages, err
}

func (db *PgChatRepository) CountMessages(conversationId int) (int, error) {
	row := db.conn.QueryRow(
		"SELECT COUNT(*) FROM messages WHERE conversation_id = $1",
		conversationId,
	)

	var count int
	err := row.Scan(&count)

	return count, err
}

func (db *PgChatRepository) GetLastMessage(conversationId int) (Message, error) {
	row := db.conn.QueryRow(
		"SELECT "+messageColumns+" FROM messages "+
			"WHERE conversation_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1",
		conversationId,
	)

	var msg Message
	err := row.Scan(
		&msg.Id,
		&msg.ConversationId,
		&msg.SenderId,
		&msg.Content,
		&msg.Read,
		&msg.ReadAt,
		&msg.CreatedAt,
	)

	return msg, err
}

// MarkMessagesRead flags every unread message in the conversation not
// sent by the reader and returns the number of rows updated.
func (db *PgChatRepository) MarkMessagesRead(conversationId, readerId int) (int, error) {
	res, err := db.conn.Exec(
		"UPDATE messages SET read = TRUE, read_at = $1 "+
			"WHERE conversation_id = $2 AND sender_id != $3 AND read = FALSE",
		time.Now().UTC(),
		conversationId,
		readerId,
	)
	if err != nil {
		return 0, err
	}

	updated, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	return int(updated), nil
}

func (db *PgChatRepository) UnreadCount(conversationId, accountId int) (int, error) {
	row := db.conn.QueryRow(
		"SELECT COUNT(*) FROM messages "+
			"WHERE conversation_id = $1 AND sender_id != $2 AND read = FALSE",
		conversationId,
		accountId,
	)

	var count int
	err := row.Scan(&count)

	return count, err
}

func (db *PgChatRepository) TotalUnreadCount(accountId int) (int, error) {
	row := db.conn.QueryRow(
		"SELECT COUNT(*) FROM messages m "+
			"JOIN conversations c ON c.id = m.conversation_id "+
			"WHERE (c.participant1_id = $1 OR c.participant2_id = $1) "+
			"AND m.sender_id != $1 AND m.read = FALSE",
		accountId,
	)

	var count int
	err := row.Scan(&count)

	return count, err
}
