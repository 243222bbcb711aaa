package storage

import (
	"context"

	"marketzone/backend/internal/models"
)

const pairClause = "(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)"

// Insert зберігає нове повідомлення. ID та CreatedAt заповнюються тут,
// Read завжди false.
func (s *Service) Insert(ctx context.Context, msg *models.Message) error {
	msg.ID = 0
	msg.Read = false
	msg.CreatedAt = s.clock.Now()
	if msg.MessageType == "" {
		msg.MessageType = models.MessageTypeText
	}

	db, cancel := s.db(ctx)
	defer cancel()

	if err := db.Create(msg).Error; err != nil {
		return unavailable("insert message", err)
	}
	return nil
}

// ListBetween повертає переписку двох користувачів у хронологічному порядку.
func (s *Service) ListBetween(ctx context.Context, a, b string) ([]models.Message, error) {
	db, cancel := s.db(ctx)
	defer cancel()

	var msgs []models.Message
	err := db.Where(pairClause, a, b, b, a).
		Order("created_at asc, id asc").
		Find(&msgs).Error
	if err != nil {
		return nil, unavailable("list conversation", err)
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	return msgs, nil
}

// CountUnread рахує всі непрочитані повідомлення, адресовані userID.
func (s *Service) CountUnread(ctx context.Context, userID string) (int64, error) {
	db, cancel := s.db(ctx)
	defer cancel()

	var n int64
	err := db.Model(&models.Message{}).
		Where("receiver_id = ? AND read = ?", userID, false).
		Count(&n).Error
	if err != nil {
		return 0, unavailable("count unread", err)
	}
	return n, nil
}

// CountUnreadFrom рахує непрочитані повідомлення від fromID до toID.
func (s *Service) CountUnreadFrom(ctx context.Context, fromID, toID string) (int64, error) {
	db, cancel := s.db(ctx)
	defer cancel()

	var n int64
	err := db.Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND read = ?", fromID, toID, false).
		Count(&n).Error
	if err != nil {
		return 0, unavailable("count unread from", err)
	}
	return n, nil
}

// MarkRead flips every unread message from fromID to toID in one UPDATE and
// returns how many rows changed. Concurrent calls never count a row twice.
func (s *Service) MarkRead(ctx context.Context, fromID, toID string) (int64, error) {
	db, cancel := s.db(ctx)
	defer cancel()

	res := db.Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND read = ?", fromID, toID, false).
		Update("read", true)
	if res.Error != nil {
		return 0, unavailable("mark read", res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteConversation видаляє всі повідомлення між a і b в обидва боки.
func (s *Service) DeleteConversation(ctx context.Context, a, b string) (int64, error) {
	db, cancel := s.db(ctx)
	defer cancel()

	res := db.Where(pairClause, a, b, b, a).Delete(&models.Message{})
	if res.Error != nil {
		return 0, unavailable("delete conversation", res.Error)
	}
	return res.RowsAffected, nil
}

// ListAllInvolving returns every message userID sent or received, newest first.
func (s *Service) ListAllInvolving(ctx context.Context, userID string) ([]models.Message, error) {
	db, cancel := s.db(ctx)
	defer cancel()

	var msgs []models.Message
	err := db.Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at desc, id desc").
		Find(&msgs).Error
	if err != nil {
		return nil, unavailable("list messages for user", err)
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	return msgs, nil
}
