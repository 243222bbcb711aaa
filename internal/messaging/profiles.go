package messaging

import (
	"context"

	"marketzone/backend/internal/models"
)

// Populate attaches sender and receiver profiles to msgs with one directory
// lookup. Order is preserved.
func (s *Service) Populate(ctx context.Context, msgs []models.Message) ([]models.MessageView, error) {
	views := make([]models.MessageView, 0, len(msgs))
	if len(msgs) == 0 {
		return views, nil
	}

	profiles, err := s.users.GetUsers(ctx, participantIDs(msgs))
	if err != nil {
		return nil, err
	}
	snippet := func(id string) *models.UserSnippet {
		u, ok := profiles[id]
		if !ok {
			return nil
		}
		sn := u.Snippet()
		return &sn
	}

	for _, m := range msgs {
		views = append(views, models.MessageView{
			Message:  m,
			Sender:   snippet(m.SenderID),
			Receiver: snippet(m.ReceiverID),
		})
	}
	return views, nil
}
